package loader

import "fmt"

// TableLoadError describes a single table that could not be loaded.
type TableLoadError struct {
	Table string
	// File is empty for dictionary tables.
	File string
	Err  error
}

func (e *TableLoadError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("table %s from %s: %v", e.Table, e.File, e.Err)
}

func (e *TableLoadError) Unwrap() error {
	return e.Err
}
