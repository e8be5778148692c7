package output

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/masmgr/declmine/internal/classify"
)

// NDJSONRecordWriter writes one JSON object per line.
type NDJSONRecordWriter struct {
	sink io.WriteCloser
	buf  *bufio.Writer
	err  error
}

// ndjsonRecord uses the CSV column names as keys.
type ndjsonRecord struct {
	DiffType          string  `json:"diff_type"`
	LineContent       string  `json:"line_content"`
	DeclarationType   string  `json:"declaration_type"`
	Indentation       int     `json:"indentation"`
	SecondsSinceEpoch int64   `json:"seconds_since_epoch"`
	CommitHash        string  `json:"commit_hash"`
	FileName          string  `json:"file_name"`
	ProjectName       string  `json:"project_name"`
	Committer         *string `json:"committer"`
}

// NewNDJSONRecordWriter creates a writer over sink.
func NewNDJSONRecordWriter(sink io.WriteCloser) *NDJSONRecordWriter {
	return &NDJSONRecordWriter{sink: sink, buf: bufio.NewWriter(sink)}
}

// Write appends one line.
func (w *NDJSONRecordWriter) Write(rec classify.Record) error {
	if w.err != nil {
		return w.err
	}
	line := ndjsonRecord{
		DiffType:          rec.DiffType.String(),
		LineContent:       rec.LineContent,
		DeclarationType:   rec.DeclarationType.String(),
		Indentation:       rec.Indentation,
		SecondsSinceEpoch: rec.SecondsSinceEpoch,
		CommitHash:        rec.CommitHash,
		FileName:          rec.FileName,
		ProjectName:       rec.ProjectName,
	}
	if rec.Committer != "" {
		line.Committer = &rec.Committer
	}
	if err := writeNDJSONLine(w.buf, line); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close flushes buffered lines and closes the underlying stream.
func (w *NDJSONRecordWriter) Close() error {
	errs := []error{w.err}
	if err := w.buf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("flush records: %w", err))
	}
	errs = append(errs, w.sink.Close())
	return errors.Join(errs...)
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
