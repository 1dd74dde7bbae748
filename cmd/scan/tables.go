package main

import (
	"context"

	"github.com/Garik-/smfstat/pkg/histogram"
	"go.uber.org/zap"
)

type stats struct {
	files  int
	failed int
	bytes  int64
}

// fillTables decodes every path and records the observations into set. A file
// that fails to decode is reported and keeps what it recorded before failing.
func fillTables(parent context.Context, paths <-chan string, cntRoutines int, set *histogram.Set) (stats, error) {
	log := tablesLog.Named("fillTables")
	ctx, cancel := context.WithCancel(parent)
	results, done := decodeWorker(ctx, paths, cntRoutines)

	defer func() {
		log.Debug("cancel")
		cancel()
		<-done // wait decodeWorker closed
	}()

	var st stats

	for result := range results {
		st.files++
		st.bytes += result.bytes

		for _, o := range result.observations {
			set.Record(o.Bucket, o.Column, o.Length)
		}

		if result.err != nil {
			st.failed++
			log.Warn("skipping remainder of file", zap.String("file", result.name), zap.Error(result.err))
			continue
		}

		log.Debug("result", zap.String("file", result.name), zap.Int("observations", len(result.observations)))
	}

	return st, parent.Err()
}
