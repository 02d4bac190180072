package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/turbolytics/nasr-loader/internal"
	"github.com/turbolytics/nasr-loader/internal/config"
)

// DefaultLoadOrder lists NASR files so that tables referenced by foreign
// keys are loaded before the tables referencing them.
var DefaultLoadOrder = []string{
	"AWOS.csv",

	"FIX_BASE.csv",
	"FIX_CHRT.csv",
	"FIX_NAV.csv",

	"LID.csv",

	"NAV_BASE.csv",
	"NAV_CKPT.csv",
	"NAV_RMK.csv",

	"RDR.csv",

	"WXL_BASE.csv",
	"WXL_SVC.csv",
}

type Orchestrator struct {
	config *config.Configuration
	sink   internal.Sink
	tables *DataTableLoader
	logger *zap.Logger
}

func NewOrchestrator(c *config.Configuration, source internal.Source, sink internal.Sink, l *zap.Logger) *Orchestrator {
	opts := []Option{WithLogger(l)}
	if c.SpatialChunkSize > 0 {
		opts = append(opts, WithChunkSize(c.SpatialChunkSize))
	}

	return &Orchestrator{
		config: c,
		sink:   sink,
		tables: NewDataTableLoader(source, c.CSVSettings, sink, opts...),
		logger: l,
	}
}

// Plan resolves the load order into data file settings. A file missing from
// data_tables is a configuration error.
func Plan(c *config.Configuration) ([]config.DataFileSettings, error) {
	order := c.LoadOrder
	if len(order) == 0 {
		order = DefaultLoadOrder
	}

	plan := make([]config.DataFileSettings, 0, len(order))
	var missing []string
	for _, name := range order {
		s, ok := c.DataTable(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		plan = append(plan, s)
	}
	if len(missing) > 0 {
		return nil, &config.Error{
			Fields: []string{"data_tables"},
			Err:    fmt.Errorf("no data_tables entry for %v", missing),
		}
	}
	return plan, nil
}

// Run loads the dictionary tables and then every planned data file.
// Only a bad plan fails the run; table failures are logged and skipped.
func (o *Orchestrator) Run(ctx context.Context) error {
	plan, err := Plan(o.config)
	if err != nil {
		return err
	}

	LoadDictTables(ctx, o.config.DictTables, o.sink, o.logger)

	for _, s := range plan {
		o.tables.LoadTable(ctx, s)
	}
	return nil
}
