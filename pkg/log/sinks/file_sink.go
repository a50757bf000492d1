package sinks

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pagesift/pagesift/pkg/log"
)

// FileSink writes each event as one JSON line to a per-run log file, mirroring
// what the console sink shows but in a machine-readable form. The file is
// truncated on open; every run gets its own path.
type FileSink struct {
	file    *os.File
	encoder *json.Encoder
}

func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %q: %w", path, err)
	}
	return &FileSink{file: f, encoder: json.NewEncoder(f)}, nil
}

func (fs *FileSink) Write(event *log.LogEvent) error {
	entry := map[string]any{
		"level":   levelToString(event.Level),
		"time":    event.Timestamp,
		"message": event.Message,
	}
	for k, v := range event.Fields {
		entry[k] = v
	}

	if err := fs.encoder.Encode(entry); err != nil {
		return fmt.Errorf("writing log event to file sink: %w", err)
	}
	return nil
}

func (fs *FileSink) Close() error {
	if fs.file != nil {
		return fs.file.Close()
	}
	return nil
}
