package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/masmgr/declmine/internal/classify"
)

// CSVRecordWriter writes records as CSV with a header row.
type CSVRecordWriter struct {
	sink   io.WriteCloser
	writer *csv.Writer
	err    error
}

// NewCSVRecordWriter writes the header row to sink and returns the writer.
func NewCSVRecordWriter(sink io.WriteCloser) (*CSVRecordWriter, error) {
	w := &CSVRecordWriter{sink: sink, writer: csv.NewWriter(sink)}
	if err := w.writer.Write(classify.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	return w, nil
}

// Write appends one row.
func (w *CSVRecordWriter) Write(rec classify.Record) error {
	if w.err != nil {
		return w.err
	}
	row := []string{
		rec.DiffType.String(),
		rec.LineContent,
		rec.DeclarationType.String(),
		strconv.Itoa(rec.Indentation),
		strconv.FormatInt(rec.SecondsSinceEpoch, 10),
		rec.CommitHash,
		rec.FileName,
		rec.ProjectName,
		rec.Committer,
	}
	if err := w.writer.Write(row); err != nil {
		w.err = fmt.Errorf("serialize record: %w", err)
		return w.err
	}
	return nil
}

// Close flushes buffered rows and closes the underlying stream.
func (w *CSVRecordWriter) Close() error {
	w.writer.Flush()
	errs := []error{w.err}
	if err := w.writer.Error(); err != nil && !errors.Is(w.err, err) {
		errs = append(errs, fmt.Errorf("flush records: %w", err))
	}
	errs = append(errs, w.sink.Close())
	return errors.Join(errs...)
}
