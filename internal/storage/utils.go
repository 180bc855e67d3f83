package storage

import (
	"errors"
	"io"
)

// ErrTooLarge is returned by a LimitedReader once more than its limit was read
var ErrTooLarge = errors.New("content exceeds size limit")

// sizeWriter tracks the total number of bytes written
type sizeWriter struct {
	size int64
}

// Write implements io.Writer interface
func (sw *sizeWriter) Write(p []byte) (int, error) {
	n := len(p)
	sw.size += int64(n)
	return n, nil
}

// Size returns the total number of bytes written
func (sw *sizeWriter) Size() int64 {
	return sw.size
}

// NewSizeWriter creates a new sizeWriter instance
func NewSizeWriter() *sizeWriter {
	return &sizeWriter{}
}

// LimitedReader counts the bytes read from R and fails with ErrTooLarge
// as soon as more than Limit bytes have been read.
type LimitedReader struct {
	R       io.Reader
	Limit   int64
	counter *sizeWriter
}

// NewLimitedReader wraps r with a byte counter and a size limit
func NewLimitedReader(r io.Reader, limit int64) *LimitedReader {
	counter := NewSizeWriter()
	return &LimitedReader{
		R:       io.TeeReader(r, counter),
		Limit:   limit,
		counter: counter,
	}
}

// Read implements io.Reader interface
func (lr *LimitedReader) Read(p []byte) (int, error) {
	n, err := lr.R.Read(p)
	if lr.counter.Size() > lr.Limit {
		return n, ErrTooLarge
	}
	return n, err
}

// Size returns the number of bytes read so far
func (lr *LimitedReader) Size() int64 {
	return lr.counter.Size()
}
