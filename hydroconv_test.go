package hydroconv

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phil-mansfield/hydroconv/hydro"
)

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(file, []byte(text), 0644))
	return file
}

func summaryLine(t *testing.T, out, label string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, label+":") {
			return strings.TrimSpace(strings.TrimPrefix(line, label+":"))
		}
	}
	t.Fatalf("no '%s' line in summary:\n%s", label, out)
	return ""
}

func TestManagerLoad(t *testing.T) {
	dir := t.TempDir()
	file1 := writeFile(t, dir, "case.1",
		" 1.0 1 1 5.0 0.5\n 2.0 1 1 5.5 0.7\n")
	hst := writeFile(t, dir, "other.hst", "     3     3  4.0\n")

	man := NewManager(logr.Discard())
	hd, err := man.Load([]string{file1, hst})
	require.NoError(t, err)
	assert.Equal(t, 1, hd.Nb)
	assert.Equal(t, 2, hd.Nf)
	assert.Equal(t, hydro.Some(4.0), hd.C[0][2][2])

	buf := &bytes.Buffer{}
	require.NoError(t, PrintSummary(buf, hd))
	out := buf.String()
	assert.Equal(t, "case", summaryLine(t, out, "Name"))
	assert.Equal(t, "1", summaryLine(t, out, "Bodies"))
	assert.Equal(t, "yes", summaryLine(t, out, "Added mass"))
	assert.Equal(t, "yes", summaryLine(t, out, "Hydrostatic restoring"))
	assert.Equal(t, "no", summaryLine(t, out, "RAO"))
	assert.Equal(t, "0 entries", summaryLine(t, out, "QTF sum"))
}

func TestManagerLoadErrors(t *testing.T) {
	dir := t.TempDir()
	man := NewManager(logr.Discard())

	_, err := man.Load(nil)
	assert.Error(t, err)

	_, err = man.Load([]string{filepath.Join(dir, "notes.txt")})
	assert.Error(t, err)

	two := writeFile(t, dir, "two.1",
		" 1.0 1 1 5.0 0.5\n 1.0 7 7 6.0 0.6\n"+
			" 2.0 1 1 5.5 0.7\n 2.0 7 7 6.5 0.8\n")
	one := writeFile(t, dir, "one.hst", "     1     1  3.0\n")
	_, err = man.Load([]string{two, one})
	var cerr *hydro.ConsistencyError
	assert.True(t, errors.As(err, &cerr), "error %v", err)
}

func TestManagerSave(t *testing.T) {
	dir := t.TempDir()
	file1 := writeFile(t, dir, "case.1",
		" 1.0 1 1 5.0 0.5\n 2.0 1 1 5.5 0.7\n")
	man := NewManager(logr.Discard())
	hd, err := man.Load([]string{file1})
	require.NoError(t, err)

	out := filepath.Join(dir, "copy")
	require.NoError(t, man.Save(hd, out, false, -1))
	got, err := man.Load([]string{out + ".1"})
	require.NoError(t, err)
	assert.Equal(t, hd.Nf, got.Nf)
	assert.InDeltaSlice(t, hd.W, got.W, 1e-6)
	assert.InDelta(t, 5.5, got.A[0][0][1].Val, 1e-4)
}
