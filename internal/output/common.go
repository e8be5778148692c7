package output

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// outputFile is a created file, optionally behind a compressing stream. Close
// finishes the stream before closing the file.
type outputFile struct {
	io.Writer
	file  *os.File
	codec io.Closer
}

func openOutputFile(path string, compression Compression) (*outputFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	switch compression {
	case CompressionGzip:
		gz := gzip.NewWriter(file)
		return &outputFile{Writer: gz, file: file, codec: gz}, nil
	case CompressionZstd:
		enc, err := zstd.NewWriter(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create zstd stream: %w", err)
		}
		return &outputFile{Writer: enc, file: file, codec: enc}, nil
	default:
		return &outputFile{Writer: file, file: file}, nil
	}
}

func (f *outputFile) Close() error {
	var errs []error
	if f.codec != nil {
		if err := f.codec.Close(); err != nil {
			errs = append(errs, fmt.Errorf("finish compressed stream: %w", err))
		}
	}
	if err := f.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close output file: %w", err))
	}
	return errors.Join(errs...)
}
