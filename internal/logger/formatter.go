package logger

import (
	"bytes"
	log "github.com/sirupsen/logrus"
	"path/filepath"
	"strings"
)

// lineFormatter writes one plain line per entry:
// "<time> - <LEVEL> - <source file> - <message>".
type lineFormatter struct {
	TimestampFormat string
}

func (f *lineFormatter) Format(entry *log.Entry) ([]byte, error) {
	source := "-"
	if entry.HasCaller() {
		source = filepath.Base(entry.Caller.File)
	}

	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	b.WriteString(entry.Time.Format(f.TimestampFormat))
	b.WriteString(" - ")
	b.WriteString(strings.ToUpper(entry.Level.String()))
	b.WriteString(" - ")
	b.WriteString(source)
	b.WriteString(" - ")
	b.WriteString(strings.TrimRight(entry.Message, "\n"))
	b.WriteByte('\n')

	return b.Bytes(), nil
}
