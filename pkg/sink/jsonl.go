// Package sink writes crawl output: append-only JSONL streams per record
// type plus the vocabulary JSON written at session close.
package sink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"tunai-collect/pkg/utils"
)

// JSONLWriter appends records to a file, one JSON object per line. Every
// write is synced to disk so an interrupted run keeps everything emitted
// before the interruption. Owned by a single session; not safe for
// concurrent use.
type JSONLWriter struct {
	path  string
	file  *os.File
	count int
	log   *logrus.Entry
}

// NewJSONLWriter opens (or creates) the file for appending. Open failure
// is wrapped with ErrSinkOpen: a session that cannot persist output must
// not crawl.
func NewJSONLWriter(path string, log *logrus.Entry) (*JSONLWriter, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: opening '%s': %w", utils.ErrSinkOpen, path, err)
	}
	log.Debugf("Opened sink file: %s", path)
	return &JSONLWriter{
		path: path,
		file: file,
		log:  log,
	}, nil
}

// Write marshals v, appends it as one line, and syncs.
func (w *JSONLWriter) Write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: marshaling record for '%s': %w", utils.ErrParsing, w.path, err)
	}
	data = append(data, '\n')

	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("%w: writing record to '%s': %w", utils.ErrFilesystem, w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("%w: syncing '%s': %w", utils.ErrFilesystem, w.path, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written by this writer.
func (w *JSONLWriter) Count() int {
	return w.count
}

// Path returns the file path this writer appends to.
func (w *JSONLWriter) Path() string {
	return w.path
}

// Close closes the underlying file.
func (w *JSONLWriter) Close() error {
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	if err != nil {
		return fmt.Errorf("%w: closing '%s': %w", utils.ErrFilesystem, w.path, err)
	}
	return nil
}
