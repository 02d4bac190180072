// Package loader moves NASR data into the database.
//
// LoadDictTables inserts the small static tables carried in the config.
// DataTableLoader reads one CSV file, normalizes it and appends it to its
// table, building point geometries for spatial files. Orchestrator runs both
// in a fixed order.
//
// A failing table never stops a run: the error is logged as a
// TableLoadError and loading moves on to the next table.
package loader
