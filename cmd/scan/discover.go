package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const defaultExtensions = ".mid,.midi,.smf,.kar"

func parseExtensions(list string) []string {
	var exts []string
	for _, ext := range strings.Split(list, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	return exts
}

func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

func isRegular(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}

	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// walkDir sends every regular file under root with one of exts. Entries that
// can not be read are logged and skipped.
func walkDir(ctx context.Context, root string, exts []string, log *zap.Logger) (<-chan string, error) {
	fi, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}

	out := make(chan string)

	go func() {
		defer close(out)

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn("could not read", zap.String("path", path), zap.Error(err))
				return nil
			}

			if d.IsDir() || !hasExtension(path, exts) {
				return nil
			}

			if !isRegular(path, d) {
				log.Warn("could not read file", zap.String("path", path))
				return nil
			}

			if err := ctx.Err(); err != nil {
				return err
			}

			select {
			case out <- path:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})

		if err != nil {
			log.Debug("walk stopped", zap.Error(err))
		}
	}()

	return out, nil
}

// readList sends each non-empty line of r as a path.
func readList(ctx context.Context, r io.Reader) <-chan string {
	out := make(chan string)

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanLines)

	go func() {
		defer close(out)

		for scanner.Scan() {
			path := strings.TrimSpace(scanner.Text())
			if path == "" {
				continue
			}

			select {
			case out <- path:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
