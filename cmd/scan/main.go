package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Garik-/smfstat/pkg/histogram"
	"github.com/Garik-/smfstat/pkg/midi"
	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"go.uber.org/zap"
)

const (
	maxGoroutines = 10
)

var (
	listFlag    = flag.String("l", "", "The path to the list of midi files used instead of <input dir>,\nfind . -type f -name \"*.mid\" > midi_list.txt")
	maxFlag     = flag.Int("p", maxGoroutines, "Number of files processed in parallel, must be > 0")
	extFlag     = flag.String("ext", defaultExtensions, "Comma separated file extensions to analyze")
	mergeFlag   = flag.Bool("merge", false, "Add counts to the tables already in <output dir>")
	textLogFlag = flag.Bool("textlog", false, "Write the contents of text events to <output dir>/log.txt")
	verboseFlag = flag.Bool("v", false, "Debug logging")
)

type config struct {
	input    string
	output   string
	list     string
	ext      string
	parallel int
	merge    bool
	textLog  bool
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input dir> <output dir>\n       %s [flags] -l <list> <output dir>\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	wantArgs := 2
	if *listFlag != "" {
		wantArgs = 1
	}

	if flag.NArg() != wantArgs || *maxFlag <= 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config{
		output:   flag.Arg(wantArgs - 1),
		list:     *listFlag,
		ext:      *extFlag,
		parallel: *maxFlag,
		merge:    *mergeFlag,
		textLog:  *textLogFlag,
	}
	if *listFlag == "" {
		cfg.input = flag.Arg(0)
	}

	log, err := newLogger(*verboseFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	setLoggers(log)

	code := run(cfg, log)
	_ = log.Sync()
	os.Exit(code)
}

// run scans the input and saves the tables. It returns the process exit code.
func run(cfg config, log *zap.Logger) int {
	if err := os.MkdirAll(cfg.output, 0755); err != nil {
		log.Error("output directory", zap.Error(err))
		return 1
	}

	if cfg.textLog {
		l, err := newTextLog(cfg.output)
		if err != nil {
			log.Error("text log", zap.Error(err))
			return 1
		}
		textLog = l
		defer func() {
			_ = l.Sync()
			textLog = zap.NewNop()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var paths <-chan string
	if cfg.list != "" {
		f, err := os.Open(cfg.list)
		if err != nil {
			log.Error("file list", zap.Error(err))
			return 1
		}
		defer f.Close()

		paths = readList(ctx, f)
	} else {
		var err error
		paths, err = walkDir(ctx, cfg.input, parseExtensions(cfg.ext), log)
		if err != nil {
			log.Error("input directory", zap.Error(err))
			return 1
		}
		log.Info("beginning analysis", zap.String("dir", cfg.input))
	}

	set := histogram.NewSet(tablesLog)
	if cfg.merge {
		if err := set.Load(cfg.output, midi.Buckets); err != nil {
			log.Error("loading tables", zap.Error(err))
			return 1
		}
	}

	start := time.Now()
	st, err := fillTables(ctx, paths, cfg.parallel, set)
	if err != nil {
		log.Warn("interrupted, saving partial tables", zap.Error(err))
	}

	saved, err := set.Save(cfg.output, cfg.merge)
	if err != nil {
		log.Error("saving tables", zap.Error(err))
		return 1
	}

	log.Info("analysis completed",
		zap.Int("files", st.files),
		zap.Int("failed", st.failed),
		zap.String("read", humanize.Bytes(uint64(st.bytes))),
		zap.String("elapsed", durafmt.Parse(time.Since(start)).LimitFirstN(2).String()),
		zap.Strings("tables", saved))

	return 0
}
