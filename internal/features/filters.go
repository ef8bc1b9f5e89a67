package features

import (
	"github.com/samber/lo"

	"github.com/theplant/adminquery"
)

// Suffixes of the range keys derived for temporal columns.
const (
	FromSuffix = "From"
	ToSuffix   = "To"
)

// ColumnFilters derives a filter table from column types. Keys are the
// camelCase column names. Text columns match by substring, numbers and
// booleans by equality, and temporal columns get "<key>From" and "<key>To"
// range keys instead of a plain one.
func ColumnFilters(columns []Column) adminquery.FilterConfig {
	cfg := make(adminquery.FilterConfig, len(columns))
	for _, col := range columns {
		key := lo.CamelCase(col.Name)
		switch col.Type {
		case "text", "varchar", "bpchar", "char", "citext", "name":
			cfg[key] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpContains, ValueType: adminquery.TypeString}
		case "int2", "int4", "int8":
			cfg[key] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpEquals, ValueType: adminquery.TypeInt}
		case "numeric", "float4", "float8":
			cfg[key] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpEquals, ValueType: adminquery.TypeNumber}
		case "bool":
			cfg[key] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpEquals, ValueType: adminquery.TypeBoolean}
		case "date", "timestamp", "timestamptz":
			cfg[key+FromSuffix] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpGte, ValueType: adminquery.TypeDate}
			cfg[key+ToSuffix] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpLte, ValueType: adminquery.TypeDate}
		default:
			cfg[key] = adminquery.FieldConfig{TargetField: col.Name, Operator: adminquery.OpEquals}
		}
	}
	return cfg
}
