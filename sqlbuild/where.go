package sqlbuild

import "strings"

// Where accumulates AND-joined predicates and their bound values.
// Placeholders are numbered by emitted predicate, so a filter that is
// skipped does not reserve a slot.
type Where struct {
	d     Dialect
	preds []string
	args  []any
}

// Where returns an empty accumulator for b's dialect.
func (b Builder) Where() *Where { return &Where{d: b.dialect()} }

// Cond appends `<column> <op> <placeholder>` bound to value.
func (w *Where) Cond(column, op string, value any) *Where {
	w.args = append(w.args, value)
	w.preds = append(w.preds, column+" "+op+" "+w.d.Placeholder(len(w.args)))
	return w
}

// Contains appends a case-insensitive substring match on column.
func (w *Where) Contains(column, substr string) *Where {
	return w.Cond(column, w.d.ILike(), "%"+substr+"%")
}

// Clause returns "WHERE p1 AND p2 ..." or "" when nothing was added, so the
// caller never emits a bare WHERE.
func (w *Where) Clause() string {
	if len(w.preds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(w.preds, " AND ")
}

// Args returns the bound values in placeholder order.
func (w *Where) Args() []any {
	if len(w.args) == 0 {
		return []any{}
	}
	return w.args
}
