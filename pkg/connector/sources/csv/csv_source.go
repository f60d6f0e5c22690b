// Package csv provides the CSV row source for habitable.
//
// The source reads a comma-separated file whose first non-comment line is a
// header and yields one models.Record per following line. Lines starting with
// '#' are comments and are skipped wherever they appear. Gzip-compressed
// input is detected from its magic bytes and decompressed on the fly.
//
// Malformed rows do not stop the scan: each one is yielded as a decode error
// and reading resumes at the next line.
package csv

import (
	"bufio"
	"bytes"
	"encoding/csv"
	stderrors "errors"
	"io"
	"iter"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/ajitpratap0/habitable/pkg/errors"
	"github.com/ajitpratap0/habitable/pkg/models"
)

var gzipMagic = []byte{0x1f, 0x8b}

const utf8BOM = "\ufeff"

// CSVSource is a single-pass CSV row source. It is not restartable; create a
// new source to read the file again.
type CSVSource struct {
	path   string
	logger *zap.Logger

	file    *os.File
	gz      *gzip.Reader
	reader  *csv.Reader
	headers []string

	rowsRead int
	eof      bool
}

// NewCSVSource creates a source for the file at path. Open must be called
// before records are read.
func NewCSVSource(path string, logger *zap.Logger) *CSVSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVSource{
		path:   path,
		logger: logger.With(zap.String("source", "csv"), zap.String("file", path)),
	}
}

// Open acquires the file handle. Failures are file access errors.
func (s *CSVSource) Open() error {
	file, err := os.Open(s.path)
	if err != nil {
		return errors.FileAccess(err, s.path)
	}
	s.file = file

	buffered := bufio.NewReader(file)
	var input io.Reader = buffered

	magic, err := buffered.Peek(len(gzipMagic))
	if err != nil && !stderrors.Is(err, io.EOF) {
		_ = s.Close()
		return errors.FileAccess(err, s.path)
	}
	if bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			_ = s.Close()
			return errors.FileAccess(err, s.path)
		}
		s.gz = gz
		input = gz
		s.logger.Debug("reading gzip-compressed input")
	}

	s.reader = csv.NewReader(input)
	s.reader.Comment = '#'
	// 0: every row must have as many fields as the header
	s.reader.FieldsPerRecord = 0

	s.logger.Debug("CSV source opened")
	return nil
}

// Headers returns the column names once the header line has been read.
func (s *CSVSource) Headers() []string {
	return s.headers
}

// RowsRead returns the number of records decoded so far.
func (s *CSVSource) RowsRead() int {
	return s.rowsRead
}

// Next decodes the next row. It returns io.EOF once the input is exhausted.
// A malformed row yields a decode error; calling Next again continues with
// the following line. A malformed header ends the scan.
func (s *CSVSource) Next() (*models.Record, error) {
	if s.eof {
		return nil, io.EOF
	}
	if s.reader == nil {
		s.eof = true
		return nil, errors.New(errors.ErrorTypeInternal, "source not opened").
			WithDetail("path", s.path)
	}

	if s.headers == nil {
		if err := s.readHeader(); err != nil {
			s.eof = true
			return nil, err
		}
	}

	row, err := s.reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			s.eof = true
			return nil, io.EOF
		}
		return nil, s.rowError(err)
	}

	line, _ := s.reader.FieldPos(0)
	record := models.NewRecord(line, len(s.headers))
	for i, header := range s.headers {
		record.Set(header, row[i])
	}
	s.rowsRead++
	return record, nil
}

// Records returns an iterator over the remaining rows. Each step yields either
// a record or a decode error. The source is closed when iteration ends,
// whether by exhaustion, a terminal error or the consumer breaking out.
func (s *CSVSource) Records() iter.Seq2[*models.Record, error] {
	return func(yield func(*models.Record, error) bool) {
		defer func() {
			if err := s.Close(); err != nil {
				s.logger.Warn("failed to close file", zap.Error(err))
			}
			s.logger.Debug("CSV source closed", zap.Int("rows_read", s.rowsRead))
		}()

		for {
			record, err := s.Next()
			if stderrors.Is(err, io.EOF) {
				return
			}
			if !yield(record, err) {
				return
			}
		}
	}
}

// Close releases the file handle. It is safe to call more than once.
func (s *CSVSource) Close() error {
	s.eof = true
	var firstErr error
	if s.gz != nil {
		firstErr = s.gz.Close()
		s.gz = nil
	}
	if s.file != nil {
		if err := s.file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.file = nil
	}
	return firstErr
}

func (s *CSVSource) readHeader() error {
	headers, err := s.reader.Read()
	if err != nil {
		if stderrors.Is(err, io.EOF) {
			return io.EOF
		}
		return s.rowError(err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], utf8BOM)
	}
	s.headers = headers
	s.logger.Debug("header decoded", zap.Strings("columns", headers))
	return nil
}

// rowError classifies a reader failure. Parse errors are decode errors the
// scan can resume from; anything else is an I/O failure that ends the scan.
func (s *CSVSource) rowError(err error) *errors.Error {
	var parseErr *csv.ParseError
	if stderrors.As(err, &parseErr) {
		return errors.Decode(err, parseErr.StartLine).WithDetail("path", s.path)
	}
	s.eof = true
	return errors.FileAccess(err, s.path)
}
