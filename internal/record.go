package internal

// Record is a single row destined for a table. Values follow the order of
// the table's columns; a nil value is written as NULL.
type Record struct {
	values []any
}

func NewRecord(values []any) *Record {
	return &Record{
		values: values,
	}
}

func (r *Record) Values() []any {
	return r.values
}
