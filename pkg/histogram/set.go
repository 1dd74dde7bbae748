package histogram

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Set holds one table per bucket. It is safe for concurrent use.
type Set struct {
	mu     sync.Mutex
	tables map[string]*Table
	log    *zap.Logger
}

func NewSet(log *zap.Logger) *Set {
	if log == nil {
		log = zap.NewNop()
	}
	return &Set{tables: make(map[string]*Table), log: log}
}

// Record counts one occurrence of length in the column of the bucket's table.
func (s *Set) Record(bucket, column string, length uint64) {
	s.mu.Lock()
	s.table(bucket).Column(column).Inc(length)
	s.mu.Unlock()
}

func (s *Set) table(name string) *Table {
	t, ok := s.tables[name]
	if !ok {
		t = NewTable()
		s.tables[name] = t
	}
	return t
}

// Table returns the named table, or nil if nothing was recorded into it.
func (s *Set) Table(name string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables[name]
}

func (s *Set) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names()
}

func (s *Set) names() []string {
	names := make([]string, 0, len(s.tables))
	for name := range s.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func tablePath(dir, name string) string {
	return filepath.Join(dir, name+".csv")
}

// Load merges <dir>/<name>.csv into the set for every name whose file exists.
func (s *Set) Load(dir string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range names {
		path := tablePath(dir, name)

		t := NewTable()
		err := t.LoadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return err
		}

		s.table(name).Merge(t)
		s.log.Debug("loaded", zap.String("path", path), zap.Int("columns", len(t.Columns)))
	}

	return nil
}

// Save writes every table to <dir>/<name>.csv. Unless overwrite is set an
// existing file is kept and the table goes to <dir>/<name>_new.csv instead.
func (s *Set) Save(dir string, overwrite bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var paths []string
	for _, name := range s.names() {
		path := tablePath(dir, name)
		if !overwrite {
			if _, err := os.Stat(path); err == nil {
				path = tablePath(dir, name+"_new")
			}
		}

		if err := s.tables[name].SaveFile(path); err != nil {
			return paths, err
		}

		s.log.Debug("saved", zap.String("path", path))
		paths = append(paths, path)
	}

	return paths, nil
}
