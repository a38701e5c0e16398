package util

import (
	"errors"
	"fmt"
	"io"
)

// ErrFileTooLarge means content ran past the configured size limit.
var ErrFileTooLarge = errors.New("file is too large")

// SizeLimitReader reads from R until more than Limit bytes have been
// read, then fails with ErrFileTooLarge.
type SizeLimitReader struct {
	R     io.Reader
	Limit int64
	read  int64
}

// NewSizeLimitReader limits r to limit bytes. A limit of zero or less
// means no limit.
func NewSizeLimitReader(r io.Reader, limit int64) *SizeLimitReader {
	return &SizeLimitReader{R: r, Limit: limit}
}

func (s *SizeLimitReader) Read(p []byte) (int, error) {
	n, err := s.R.Read(p)
	s.read += int64(n)
	if s.Limit > 0 && s.read > s.Limit {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.Limit)
	}
	return n, err
}
