package mesh

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/hydroconv/hydro"
)

// text is a line cursor over a mesh file.
type text struct {
	file  string
	lines []string
	pos   int
}

func readText(file string) (*text, error) {
	b, err := os.ReadFile(file)
	if err != nil { return nil, err }
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return &text{file: file, lines: strings.Split(s, "\n")}, nil
}

func (t *text) EOF() bool { return t.pos >= len(t.lines) }

// Next returns the fields of the next line.
func (t *text) Next() []string {
	if t.EOF() { return nil }
	t.pos++
	return strings.Fields(t.lines[t.pos-1])
}

// NextData returns the fields of the next line which is not blank.
func (t *text) NextData() []string {
	for !t.EOF() {
		if fs := t.Next(); len(fs) > 0 { return fs }
	}
	return nil
}

// Find advances past the next line containing s and reports whether one
// was found.
func (t *text) Find(s string) bool {
	for !t.EOF() {
		t.pos++
		if strings.Contains(t.lines[t.pos-1], s) { return true }
	}
	return false
}

func (t *text) Errorf(format string, args ...interface{}) error {
	line, txt := t.pos, ""
	if t.pos > 0 && t.pos <= len(t.lines) { txt = t.lines[t.pos-1] }
	return &hydro.FormatError{
		File: t.file, Line: line, Text: txt, Msg: fmt.Sprintf(format, args...),
	}
}

// Floats parses fs[from:from+len(out)] into out.
func (t *text) Floats(fs []string, from int, out []float64) error {
	if len(fs) < from+len(out) {
		return t.Errorf("Expected %d values, found %d.", from+len(out), len(fs))
	}
	for i := range out {
		x, err := strconv.ParseFloat(strings.Replace(fs[from+i], "D", "E", 1), 64)
		if err != nil {
			return t.Errorf("'%s' is not a number.", fs[from+i])
		}
		out[i] = x
	}
	return nil
}

// Ints parses fs[from:from+len(out)] into out.
func (t *text) Ints(fs []string, from int, out []int) error {
	if len(fs) < from+len(out) {
		return t.Errorf("Expected %d values, found %d.", from+len(out), len(fs))
	}
	for i := range out {
		n, err := strconv.Atoi(fs[from+i])
		if err != nil {
			return t.Errorf("'%s' is not an integer.", fs[from+i])
		}
		out[i] = n
	}
	return nil
}
