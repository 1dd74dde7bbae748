package main

import (
	"bufio"
	"context"
	"os"

	"github.com/Garik-/smfstat/pkg/midi"
	"github.com/remeh/sizedwaitgroup"
	"go.uber.org/zap"
)

type result struct {
	name         string
	observations midi.Observations
	bytes        int64
	err          error
}

func decodeFile(name string) *result {
	out := &result{name: name}
	f, err := os.Open(name)
	if err != nil {
		out.err = err
		return out
	}

	defer f.Close()

	textLog.Info("new file", zap.String("file", name))

	decoder := midi.NewDecoder(bufio.NewReader(f),
		midi.WithLogger(decoderLog.With(zap.String("file", name))),
		midi.WithTextLog(textLog.With(zap.String("file", name))))

	out.err = decoder.Decode(&out.observations)
	out.bytes = decoder.BytesRead()
	return out
}

func decodeWorker(ctx context.Context, paths <-chan string, cntRoutines int) (<-chan *result, <-chan struct{}) {
	out := make(chan *result)
	done := make(chan struct{}, 1)

	go func() {
		log := decoderLog.Named("decodeWorker")
		wg := sizedwaitgroup.New(cntRoutines)

	loop:
		for path := range paths {
			if err := wg.AddWithContext(ctx); err != nil {
				log.Debug("context done")
				break loop
			}

			go func(path string) {
				defer wg.Done()

				select {
				case out <- decodeFile(path):
				case <-ctx.Done():
					log.Debug("context done", zap.String("file", path))
				}
			}(path)
		}

		wg.Wait()
		close(out)

		done <- struct{}{}
		close(done)
	}()

	return out, done
}
