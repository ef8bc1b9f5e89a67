package adminquery

import (
	"net/url"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// RequestFromValues converts decoded query-string values into a Request.
// Keys with a single value map to a string, repeated keys to a []string.
// Keys written as "key[]" are folded into "key".
func RequestFromValues(values url.Values) Request {
	req := make(Request, len(values))
	for key, vs := range values {
		name := key
		bracketed := len(key) > 2 && key[len(key)-2:] == "[]"
		if bracketed {
			name = key[:len(key)-2]
		}
		switch {
		case len(vs) == 0:
			continue
		case len(vs) == 1 && !bracketed:
			if existing, ok := req[name].([]string); ok {
				req[name] = append(existing, vs[0])
				continue
			}
			req[name] = vs[0]
		default:
			var merged []string
			switch existing := req[name].(type) {
			case string:
				merged = append(merged, existing)
			case []string:
				merged = append(merged, existing...)
			}
			req[name] = append(merged, vs...)
		}
	}
	return req
}

var jsoniterForRequest = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// DecodeRequest decodes a JSON object into a Request. Numbers are kept as
// json.Number so that coercion decides their final type.
func DecodeRequest(data []byte) (Request, error) {
	if len(data) == 0 {
		return Request{}, nil
	}
	var req Request
	if err := jsoniterForRequest.Unmarshal(data, &req); err != nil {
		return nil, errors.Wrap(err, "decode filter request")
	}
	if req == nil {
		req = Request{}
	}
	return req, nil
}
