package bemcal

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/hydroconv/hydro"
)

// lines is a cursor over the lines of a case file.
type lines struct {
	file string
	ls   []string
	pos  int
}

func readCaseFile(file string) (*lines, error) {
	b, err := os.ReadFile(file)
	if err != nil { return nil, err }
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return &lines{file: file, ls: strings.Split(s, "\n")}, nil
}

func (l *lines) EOF() bool { return l.pos >= len(l.ls) }

func (l *lines) Next() string {
	if l.EOF() { return "" }
	l.pos++
	return l.ls[l.pos-1]
}

// NextData returns the fields of the next non-blank line, with anything
// after a '!' dropped.
func (l *lines) NextData() []string {
	for !l.EOF() {
		line := l.Next()
		if i := strings.Index(line, "!"); i >= 0 { line = line[:i] }
		if fs := strings.Fields(line); len(fs) > 0 { return fs }
	}
	return nil
}

func (l *lines) Errorf(format string, args ...interface{}) error {
	text := ""
	if l.pos > 0 && l.pos <= len(l.ls) { text = l.ls[l.pos-1] }
	return &hydro.FormatError{
		File: l.file, Line: l.pos, Text: text, Msg: fmt.Sprintf(format, args...),
	}
}

func (l *lines) Float(fs []string, i int) (float64, error) {
	if i >= len(fs) { return 0, l.Errorf("Missing value %d.", i+1) }
	x, err := strconv.ParseFloat(strings.Replace(fs[i], "D", "E", 1), 64)
	if err != nil { return 0, l.Errorf("'%s' is not a number.", fs[i]) }
	return x, nil
}

func (l *lines) Int(fs []string, i int) (int, error) {
	if i >= len(fs) { return 0, l.Errorf("Missing value %d.", i+1) }
	n, err := strconv.Atoi(fs[i])
	if err != nil { return 0, l.Errorf("'%s' is not an integer.", fs[i]) }
	return n, nil
}

// Floats parses every field from i onwards.
func (l *lines) Floats(fs []string, i int) ([]float64, error) {
	out := make([]float64, 0, len(fs))
	for ; i < len(fs); i++ {
		x, err := l.Float(fs, i)
		if err != nil { return nil, err }
		out = append(out, x)
	}
	return out, nil
}
