package iolib

import (
	"bufio"
	"bytes"
	"io"

	"github.com/pkg/errors"
)

var ErrZeroLenDelim = errors.New("delim has zero length")

// ReadUntil reads from r until delim. The output will include delim.
// Hitting EOF before delim results in [io.ErrUnexpectedEOF].
func ReadUntil(r *bufio.Reader, delim []byte) ([]byte, error) {
	if len(delim) == 0 {
		return nil, ErrZeroLenDelim
	}

	buf := bytes.NewBuffer(nil)
	for {
		b, err := r.ReadBytes(delim[len(delim)-1])
		buf.Write(b)
		if err != nil {
			if err == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}

		if bytes.HasSuffix(buf.Bytes(), delim) {
			return buf.Bytes(), nil
		}
	}
}
