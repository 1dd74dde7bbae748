package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Garik-/smfstat/pkg/histogram"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var textFile = []byte{
	'M', 'T', 'h', 'd', 0x00, 0x00, 0x00, 0x06, 0x00, 0x00, 0x00, 0x01, 0x00, 0x60,
	'M', 'T', 'r', 'k', 0x00, 0x00, 0x00, 0x0A,
	0x00, 0xFF, 0x01, 0x02, 'H', 'i',
	0x00, 0xFF, 0x2F, 0x00,
}

// the first track is fine, the second one uses running status after a sysex
var brokenFile = []byte{
	'M', 'T', 'h', 'd', 0x00, 0x00, 0x00, 0x06, 0x00, 0x01, 0x00, 0x02, 0x00, 0x60,
	'M', 'T', 'r', 'k', 0x00, 0x00, 0x00, 0x04,
	0x00, 0xFF, 0x2F, 0x00,
	'M', 'T', 'r', 'k', 0x00, 0x00, 0x00, 0x0A,
	0x00, 0xF0, 0x02, 0x7F, 0xF7,
	0x00, 0x3C, 0x40,
	0x00, 0x00,
}

func writeFiles(t *testing.T, files map[string][]byte) chan string {
	t.Helper()

	dir := t.TempDir()
	paths := make(chan string, len(files))
	for name, data := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, data, 0644))
		paths <- path
	}
	close(paths)
	return paths
}

func TestFillTables(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{
		"text1.mid":  textFile,
		"text2.mid":  textFile,
		"broken.mid": brokenFile,
		"riff.mid":   []byte("RIFF\x00\x00\x00\x04RMID"),
	})

	set := histogram.NewSet(nil)
	st, err := fillTables(context.Background(), paths, 2, set)
	require.NoError(t, err)

	assert.Equal(t, 4, st.files)
	assert.Equal(t, 2, st.failed)
	assert.Equal(t, int64(2*len(textFile)+len(brokenFile)+4), st.bytes)

	assert.Equal(t, histogram.Histogram{2: 2}, set.Table("text raw bytes").Columns["Text Event"])
	assert.Equal(t, histogram.Histogram{2: 2}, set.Table("text codepoints").Columns["Text Event"])
	assert.Equal(t, histogram.Histogram{2: 2}, set.Table("text UTF-8 bytes").Columns["Text Event"])
	assert.Equal(t, histogram.Histogram{0: 3}, set.Table("non-text meta").Columns["End of Track"])
	assert.Equal(t, histogram.Histogram{2: 1}, set.Table("sysex").Columns["Universal SysEx (realtime)"])
}

func TestFillTablesMissingFile(t *testing.T) {
	paths := make(chan string, 1)
	paths <- filepath.Join(t.TempDir(), "missing.mid")
	close(paths)

	set := histogram.NewSet(nil)
	st, err := fillTables(context.Background(), paths, 1, set)
	require.NoError(t, err)
	assert.Equal(t, stats{files: 1, failed: 1}, st)
	assert.Empty(t, set.Names())
}

func TestDecodeFileTextLog(t *testing.T) {
	paths := writeFiles(t, map[string][]byte{"text.mid": textFile})
	path := <-paths

	out := t.TempDir()
	l, err := newTextLog(out)
	require.NoError(t, err)

	textLog = l
	defer func() { textLog = zap.NewNop() }()

	res := decodeFile(path)
	require.NoError(t, res.err)
	require.NoError(t, l.Sync())

	b, err := os.ReadFile(filepath.Join(out, "log.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "new file")
	assert.Less(t, strings.Index(string(b), "new file"), strings.Index(string(b), "Text Event"))
	assert.Contains(t, string(b), "Text Event")
	assert.Contains(t, string(b), "Hi")
	assert.Contains(t, string(b), path)
}
