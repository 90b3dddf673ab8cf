package iolib

import (
	"bytes"
	"io"
	"math"

	"github.com/pkg/errors"
)

// LimitReader creates new [LimitedReader]
func LimitReader(r io.Reader, n uint) io.Reader { return &LimitedReader{r, n} }

// LimitedReader is uint port of [io.LimitedReader]
type LimitedReader struct {
	R io.Reader // underlying reader
	N uint      // max bytes remaining
}

func (l *LimitedReader) Read(p []byte) (n int, err error) {
	if l.N == 0 {
		return 0, io.EOF
	}
	if uint(len(p)) > l.N {
		p = p[:l.N]
	}
	n, err = l.R.Read(p)
	l.N -= uint(n)
	return
}

var ErrLimitExceeded = errors.New("read limit exceeded")

// ReadAllLimit reads r until EOF.
// It fails with [ErrLimitExceeded] when r yields more than limit bytes.
// Zero limit means no limit.
func ReadAllLimit(r io.Reader, limit uint) ([]byte, error) {
	if limit == 0 || limit == math.MaxUint {
		return io.ReadAll(r)
	}

	buf := bytes.NewBuffer(nil)
	// Read one more byte to tell "exactly limit" apart from "over limit".
	n, err := buf.ReadFrom(LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if uint(n) > limit {
		return nil, ErrLimitExceeded
	}

	return buf.Bytes(), nil
}
