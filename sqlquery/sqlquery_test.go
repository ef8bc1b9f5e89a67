package sqlquery_test

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/theplant/adminquery"
	"github.com/theplant/adminquery/sqlquery"
)

var categories = sqlquery.Table{
	Name:    "categories",
	Columns: []string{"id", "name", "status", "created_at"},
}

func TestSelect(t *testing.T) {
	testCases := []struct {
		name       string
		table      sqlquery.Table
		req        *adminquery.ListRequest
		expectSQL  string
		expectArgs []any
	}{
		{
			name:      "everything",
			table:     categories,
			req:       &adminquery.ListRequest{},
			expectSQL: `SELECT * FROM "categories"`,
		},
		{
			name:  "conditions orders and window",
			table: categories,
			req: &adminquery.ListRequest{
				Condition: adminquery.ConditionTree{
					"name":      {{Op: adminquery.OpContains, Value: "Bo_k", Fold: true}},
					"status":    {{Op: adminquery.OpIn, Value: []any{"Active", "Draft"}}},
					"createdAt": {{Op: adminquery.OpGte, Value: "2024-01-01"}},
					"id":        {{Op: adminquery.OpLt, Value: int64(100)}},
				},
				OrderBy: []adminquery.Order{
					{Field: "createdAt", Direction: adminquery.Desc},
					{Field: "id", Direction: adminquery.Asc},
				},
				Pagination: adminquery.Pagination{Skip: lo.ToPtr(20), Take: lo.ToPtr(10)},
			},
			expectSQL:  `SELECT * FROM "categories" WHERE "created_at" >= ? AND "id" < ? AND "name" ILIKE ? AND "status" IN (?,?) ORDER BY "created_at" DESC, "id" LIMIT 10 OFFSET 20`,
			expectArgs: []any{"2024-01-01", int64(100), `%Bo\_k%`, "Active", "Draft"},
		},
		{
			name:  "range on one column",
			table: categories,
			req: &adminquery.ListRequest{
				Condition: adminquery.ConditionTree{
					"createdAt": {
						{Op: adminquery.OpGte, Value: "2024-01-01"},
						{Op: adminquery.OpLte, Value: "2024-12-31"},
					},
				},
			},
			expectSQL:  `SELECT * FROM "categories" WHERE "created_at" >= ? AND "created_at" <= ?`,
			expectArgs: []any{"2024-01-01", "2024-12-31"},
		},
		{
			name:  "schema qualified",
			table: sqlquery.Table{Schema: "public", Name: "lists", Columns: []string{"item"}},
			req: &adminquery.ListRequest{
				Condition: adminquery.ConditionTree{
					"item": {{Op: adminquery.OpEquals, Value: "milk"}},
				},
			},
			expectSQL:  `SELECT * FROM "public"."lists" WHERE "item" = ?`,
			expectArgs: []any{"milk"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, args, err := sqlquery.Select(tc.table, tc.req)
			require.NoError(t, err)
			require.Equal(t, tc.expectSQL, sql)
			if tc.expectArgs == nil {
				require.Empty(t, args)
			} else {
				require.Equal(t, tc.expectArgs, args)
			}
		})
	}
}

func TestCount(t *testing.T) {
	sql, args, err := sqlquery.Count(categories, adminquery.ConditionTree{
		"name": {{Op: adminquery.OpContains, Value: "x"}},
	})
	require.NoError(t, err)
	require.Equal(t, `SELECT count(*) FROM "categories" WHERE "name" LIKE ?`, sql)
	require.Equal(t, []any{"%x%"}, args)
}

func TestUnknownColumn(t *testing.T) {
	_, _, err := sqlquery.Select(categories, &adminquery.ListRequest{
		OrderBy: []adminquery.Order{{Field: "password", Direction: adminquery.Asc}},
	})
	require.ErrorIs(t, err, sqlquery.ErrUnknownColumn)

	_, _, err = sqlquery.Count(categories, adminquery.ConditionTree{
		`name"; DROP TABLE categories; --`: {{Op: adminquery.OpEquals, Value: "x"}},
	})
	require.ErrorIs(t, err, sqlquery.ErrUnknownColumn)
}
