package hydro

import (
	"fmt"
	"strings"
)

// FormatError is returned when a file contains a token that cannot be parsed
// or a section that is not where it is expected. Line is 1-based; zero means
// the location is unknown.
type FormatError struct {
	File string
	Line int
	Text string
	Msg  string
}

func (e *FormatError) Error() string {
	return locate(e.File, e.Line, e.Text, e.Msg)
}

// ConsistencyError is returned when a file disagrees with what has already
// been loaded into a dataset, or references a key which does not exist.
type ConsistencyError struct {
	File     string
	Line     int
	Text     string
	Field    string
	Expected interface{}
	Found    interface{}
}

func (e *ConsistencyError) Error() string {
	msg := fmt.Sprintf(
		"%s mismatch: expected %v, found %v", e.Field, e.Expected, e.Found,
	)
	return locate(e.File, e.Line, e.Text, msg)
}

// Locate fills in the file and line of FormatErrors and ConsistencyErrors
// which were created without them. Other errors are returned unchanged.
func Locate(err error, file string, line int, text string) error {
	switch e := err.(type) {
	case *FormatError:
		if e.File == "" { e.File = file }
		if e.Line == 0 { e.Line, e.Text = line, text }
	case *ConsistencyError:
		if e.File == "" { e.File = file }
		if e.Line == 0 { e.Line, e.Text = line, text }
	}
	return err
}

func locate(file string, line int, text, msg string) string {
	sb := &strings.Builder{}
	if file != "" {
		sb.WriteString(file)
		if line > 0 { fmt.Fprintf(sb, ":%d", line) }
		sb.WriteString(": ")
	}
	sb.WriteString(msg)
	if text = strings.TrimSpace(text); text != "" {
		fmt.Fprintf(sb, "\n\t%q", text)
	}
	return sb.String()
}
