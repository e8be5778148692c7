// Package output writes classified records to one stream per repository.
package output

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/masmgr/declmine/internal/classify"
)

// Compile-time interface conformance checks.
var (
	_ RecordWriter = (*CSVRecordWriter)(nil)
	_ RecordWriter = (*NDJSONRecordWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatCSV    OutputFormat = "csv"
	FormatNDJSON OutputFormat = "ndjson"
)

// ParseFormat parses a format name. The empty string selects CSV.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "ndjson", "jsonl":
		return FormatNDJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected csv or ndjson)", s)
	}
}

// Compression selects the stream codec wrapped around the output file.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
)

// ParseCompression parses a codec name. "none" and the empty string select
// uncompressed output.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip", "gz":
		return CompressionGzip, nil
	case "zstd", "zst":
		return CompressionZstd, nil
	default:
		return "", fmt.Errorf("unknown compression %q (expected none, gzip or zstd)", s)
	}
}

// OutputOptions controls where and how records are written.
type OutputOptions struct {
	Format      OutputFormat
	Dir         string
	Compression Compression
}

// RecordWriter appends records to a stream. Close flushes buffered rows and
// reports any earlier serialization failure.
type RecordWriter interface {
	Write(rec classify.Record) error
	Close() error
}

// FileName returns the output file name for a project.
func FileName(project string, options OutputOptions) string {
	ext := ".csv"
	if options.Format == FormatNDJSON {
		ext = ".ndjson"
	}
	switch options.Compression {
	case CompressionGzip:
		ext += ".gz"
	case CompressionZstd:
		ext += ".zst"
	}
	return project + ext
}

// Create opens the output stream of a project, truncating any previous run's
// file, and writes the header when the format has one.
func Create(project string, options OutputOptions) (RecordWriter, string, error) {
	path := filepath.Join(options.Dir, FileName(project, options))

	sink, err := openOutputFile(path, options.Compression)
	if err != nil {
		return nil, path, err
	}

	var w RecordWriter
	switch options.Format {
	case FormatNDJSON:
		w = NewNDJSONRecordWriter(sink)
	default:
		w, err = NewCSVRecordWriter(sink)
	}
	if err != nil {
		sink.Close()
		return nil, path, err
	}

	return w, path, nil
}
