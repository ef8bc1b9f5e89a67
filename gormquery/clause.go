package gormquery

import (
	"gorm.io/gorm/clause"
)

// inSubquery renders `column IN (SELECT selected FROM table WHERE where)`.
type inSubquery struct {
	Column   clause.Column
	Table    string
	Selected clause.Column
	Where    clause.Expression
}

func (e inSubquery) Build(builder clause.Builder) {
	builder.WriteQuoted(e.Column)
	_, _ = builder.WriteString(" IN (SELECT ")
	builder.WriteQuoted(e.Selected)
	_, _ = builder.WriteString(" FROM ")
	builder.WriteQuoted(clause.Table{Name: e.Table})
	_, _ = builder.WriteString(" WHERE ")
	e.Where.Build(builder)
	_ = builder.WriteByte(')')
}

// relatedValue renders the correlated sub-select
// `(SELECT selected FROM table WHERE key = ref LIMIT 1)` that reads a column
// of a single-valued relation.
type relatedValue struct {
	Selected clause.Expression
	Table    string
	Key      clause.Column
	Ref      clause.Column
}

func (e relatedValue) Build(builder clause.Builder) {
	_, _ = builder.WriteString("(SELECT ")
	e.Selected.Build(builder)
	_, _ = builder.WriteString(" FROM ")
	builder.WriteQuoted(clause.Table{Name: e.Table})
	_, _ = builder.WriteString(" WHERE ")
	builder.WriteQuoted(e.Key)
	_, _ = builder.WriteString(" = ")
	builder.WriteQuoted(e.Ref)
	_, _ = builder.WriteString(" LIMIT 1)")
}

// quotedColumn adapts a column to clause.Expression.
type quotedColumn clause.Column

func (c quotedColumn) Build(builder clause.Builder) {
	builder.WriteQuoted(clause.Column(c))
}

type orderTerm struct {
	Value clause.Expression
	Desc  bool
}

// orderTerms is an ORDER BY list whose entries may be arbitrary expressions.
type orderTerms []orderTerm

func (terms orderTerms) Build(builder clause.Builder) {
	for idx, term := range terms {
		if idx > 0 {
			_ = builder.WriteByte(',')
		}
		term.Value.Build(builder)
		if term.Desc {
			_, _ = builder.WriteString(" DESC")
		}
	}
}
