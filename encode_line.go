package bank

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// tableLine builds one snapshot line: a JSON object whose first field is the
// table the line belongs to, followed by the fields of its row.
type tableLine struct {
	buf bytes.Buffer
	err error
}

func newTableLine(table string) *tableLine {
	l := new(tableLine)
	name, _ := json.Marshal(table)
	l.buf.WriteString(`{"table":`)
	l.buf.Write(name)
	return l
}

// Row marshals v, which must encode as an object, and merges its fields.
func (l *tableLine) Row(v any) *tableLine {
	if l.err != nil {
		return l
	}
	raw, err := json.Marshal(v)
	if err != nil {
		l.err = err
		return l
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) < 2 || raw[0] != '{' || raw[len(raw)-1] != '}' {
		l.err = fmt.Errorf("cannot merge non object %q", raw)
		return l
	}
	if fields := bytes.TrimSpace(raw[1 : len(raw)-1]); len(fields) > 0 {
		l.buf.WriteByte(',')
		l.buf.Write(fields)
	}
	return l
}

// Bytes returns the finished object.
func (l *tableLine) Bytes() ([]byte, error) {
	if l.err != nil {
		return nil, l.err
	}
	return append(bytes.Clone(l.buf.Bytes()), '}'), nil
}
