package adminquery_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/theplant/adminquery"
)

func TestRequestFromValues(t *testing.T) {
	values, err := url.ParseQuery("name=Jo&ids=1&ids=3&tags[]=a&page=2")
	require.NoError(t, err)

	require.Equal(t, Request{
		"name": "Jo",
		"ids":  []string{"1", "3"},
		"tags": []string{"a"},
		"page": "2",
	}, RequestFromValues(values))
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"ids":[1,"x",3],"isActive":true,"limit":5}`))
	require.NoError(t, err)
	require.Equal(t, true, req["isActive"])

	config := FilterConfig{
		"ids":      {TargetField: "id", Operator: OpIn, ValueType: TypeInt},
		"isActive": {TargetField: "isActive", Operator: OpEquals, ValueType: TypeBoolean},
	}
	c := NewCompiler()
	require.Equal(t, ConditionTree{
		"id":       {{Op: OpIn, Value: []any{int64(1), int64(3)}}},
		"isActive": {{Op: OpEquals, Value: true}},
	}, c.CompileCondition(req, config))
	require.Equal(t, 5, *c.CompilePagination(req).Take)

	req, err = DecodeRequest(nil)
	require.NoError(t, err)
	require.Empty(t, req)

	req, err = DecodeRequest([]byte(`null`))
	require.NoError(t, err)
	require.Equal(t, Request{}, req)

	_, err = DecodeRequest([]byte(`{"ids":`))
	require.ErrorContains(t, err, "decode filter request")
}
