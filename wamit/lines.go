package wamit

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/phil-mansfield/hydroconv/hydro"
)

// lineReader is a cursor over a fully buffered text file. Pos and Seek let
// the loaders make a counting pass and a filling pass over the same lines.
type lineReader struct {
	file  string
	lines []string
	pos   int // index of the next line
}

func readLines(file string) (*lineReader, error) {
	b, err := os.ReadFile(file)
	if err != nil { return nil, err }
	text := strings.ReplaceAll(string(b), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" { lines = lines[:n-1] }
	return &lineReader{file: file, lines: lines}, nil
}

func (r *lineReader) EOF() bool   { return r.pos >= len(r.lines) }
func (r *lineReader) Pos() int    { return r.pos }
func (r *lineReader) Seek(p int)  { r.pos = p }

// Next returns the next line, or "" at the end of the file.
func (r *lineReader) Next() string {
	if r.EOF() { return "" }
	r.pos++
	return r.lines[r.pos-1]
}

// Skip discards n lines.
func (r *lineReader) Skip(n int) {
	r.pos += n
	if r.pos > len(r.lines) { r.pos = len(r.lines) }
}

// current returns the 1-based number and text of the last line read.
func (r *lineReader) current() (int, string) {
	if r.pos == 0 || r.pos > len(r.lines) { return r.pos, "" }
	return r.pos, r.lines[r.pos-1]
}

// Errorf returns a FormatError pointing at the last line read.
func (r *lineReader) Errorf(format string, args ...interface{}) error {
	line, text := r.current()
	return &hydro.FormatError{
		File: r.file, Line: line, Text: text, Msg: fmt.Sprintf(format, args...),
	}
}

// Locate attaches the last line read to err.
func (r *lineReader) Locate(err error) error {
	line, text := r.current()
	return hydro.Locate(err, r.file, line, text)
}

// fields is one whitespace-split line.
type fields struct {
	r  *lineReader
	fs []string
}

func (r *lineReader) Fields(line string) fields {
	return fields{r, strings.Fields(line)}
}

// JoinedFields splits a line in which Fortran output has run negative numbers
// into the preceding field, e.g. "1.5E+02-3.0E+01".
func (r *lineReader) JoinedFields(line string) fields {
	var out []string
	for _, tok := range strings.Fields(line) {
		start := 0
		for i := 1; i < len(tok); i++ {
			if tok[i] != '-' { continue }
			prev := tok[i-1]
			if prev >= '0' && prev <= '9' || prev == '.' {
				out = append(out, tok[start:i])
				start = i
			}
		}
		out = append(out, tok[start:])
	}
	return fields{r, out}
}

func (f fields) Len() int { return len(f.fs) }

func (f fields) Text(i int) string {
	if i >= len(f.fs) { return "" }
	return f.fs[i]
}

// Float parses field i, failing with a FormatError.
func (f fields) Float(i int) (float64, error) {
	if i >= len(f.fs) { return 0, f.r.Errorf("Missing field %d.", i+1) }
	x, ok := parseFloat(f.fs[i])
	if !ok { return 0, f.r.Errorf("Field %d, '%s', is not a number.", i+1, f.fs[i]) }
	return x, nil
}

// Int parses field i as an integer.
func (f fields) Int(i int) (int, error) {
	if i >= len(f.fs) { return 0, f.r.Errorf("Missing field %d.", i+1) }
	n, err := strconv.Atoi(f.fs[i])
	if err != nil {
		return 0, f.r.Errorf("Field %d, '%s', is not an integer.", i+1, f.fs[i])
	}
	return n, nil
}

// IsFloat reports whether field i exists and is a number.
func (f fields) IsFloat(i int) bool {
	if i >= len(f.fs) { return false }
	_, ok := parseFloat(f.fs[i])
	return ok
}

// Floats parses every field from i on.
func (f fields) Floats(from int, out []float64) error {
	for i := range out {
		x, err := f.Float(from + i)
		if err != nil { return err }
		out[i] = x
	}
	return nil
}

// parseFloat also accepts Fortran double precision exponents.
func parseFloat(s string) (float64, bool) {
	x, err := strconv.ParseFloat(s, 64)
	if err == nil { return x, true }
	if strings.ContainsAny(s, "dD") {
		s = strings.NewReplacer("d", "e", "D", "E").Replace(s)
		x, err = strconv.ParseFloat(s, 64)
		return x, err == nil
	}
	return 0, false
}

// scanFloat returns the first number at the start of s, ignoring leading
// whitespace.
func scanFloat(s string) (float64, bool) {
	fs := strings.Fields(s)
	if len(fs) == 0 { return 0, false }
	return parseFloat(fs[0])
}

// skipHeader positions r on the first line which starts with a number and
// reports whether one exists.
func (r *lineReader) skipHeader() bool {
	for !r.EOF() {
		p := r.Pos()
		if _, ok := scanFloat(r.Next()); ok {
			r.Seek(p)
			return true
		}
	}
	return false
}
