package loader

import (
	"go.uber.org/zap"
)

// attempt logs one table insert: a start line, then either the inserted row
// count or the error. Loaders call startAttempt and finish around their own
// body.
type attempt struct {
	logger *zap.Logger
}

func startAttempt(l *zap.Logger, table string) attempt {
	a := attempt{logger: l.With(zap.String("table", table))}
	a.logger.Info("inserting data...")
	return a
}

// finish reports whether the table was loaded.
func (a attempt) finish(rows int, err error) bool {
	if err != nil {
		a.logger.Error("table load failed", zap.Error(err))
		return false
	}
	a.logger.Info("rows inserted", zap.Int("rows", rows))
	return true
}
