// Package sink implements an append-only, per-line-atomic writer the
// homology driver treats as an opaque collaborator.
package sink

import (
	"bufio"
	"os"
	"sync"

	"github.com/klauspost/pgzip"
	"github.com/pkg/errors"
)

// Sink is an append-only line writer. Write must be atomic with respect to
// other Write calls (no interleaving of two lines); Close flushes and
// releases the underlying file.
type Sink interface {
	Write(line string) error
	Close() error
}

// fileSink serializes whole-line writes behind a mutex: no two Write calls
// may interleave their output.
type fileSink struct {
	mu     sync.Mutex
	file   *os.File
	gz     *pgzip.Writer // non-nil when compression is enabled
	writer *bufio.Writer
}

// Options configures how the sink is opened.
type Options struct {
	// Compress gzips the output stream with pgzip.
	Compress         bool
	CompressionLevel int // passed to pgzip.NewWriterLevel (0 selects pgzip.DefaultCompression); ignored if Compress is false
}

// Open opens path in append mode, creating it if necessary, and returns a
// Sink ready for concurrent Write calls.
func Open(path string, opt Options) (Sink, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "opening output sink %s", path)
	}

	s := &fileSink{file: f}
	if opt.Compress {
		level := opt.CompressionLevel
		if level == 0 {
			level = pgzip.DefaultCompression
		}
		gz, err := pgzip.NewWriterLevel(f, level)
		if err != nil {
			f.Close()
			return nil, errors.Wrap(err, "initializing gzip output sink")
		}
		s.gz = gz
		s.writer = bufio.NewWriter(gz)
	} else {
		s.writer = bufio.NewWriter(f)
	}
	return s, nil
}

// Write appends line followed by a newline, as one atomic operation with
// respect to other writers.
func (s *fileSink) Write(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.writer.WriteString(line); err != nil {
		return errors.Wrap(err, "writing output line")
	}
	if err := s.writer.WriteByte('\n'); err != nil {
		return errors.Wrap(err, "writing output line")
	}
	return nil
}

// Close flushes any buffered data and releases the underlying file.
func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writer.Flush(); err != nil {
		return errors.Wrap(err, "flushing output sink")
	}
	if s.gz != nil {
		if err := s.gz.Close(); err != nil {
			return errors.Wrap(err, "closing gzip output sink")
		}
	}
	return errors.Wrap(s.file.Close(), "closing output sink")
}
