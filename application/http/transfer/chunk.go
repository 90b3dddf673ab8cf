package transfer

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"flowgrind-stop/application/http"
	iolib "flowgrind-stop/lib/io"

	"github.com/pkg/errors"
)

// ChunkedReader converts chunked http message body into byte stream.
// Chunk extensions are ignored.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7.1
type ChunkedReader struct {
	br *bufio.Reader

	remain  uint // bytes left in current chunk
	inChunk bool
	done    bool

	Trailers http.Headers // filled after the last chunk
}

var _ io.Reader = (*ChunkedReader)(nil)

func NewChunkedReader(r io.Reader) *ChunkedReader {
	return &ChunkedReader{br: bufio.NewReader(r)}
}

func (cr *ChunkedReader) Read(p []byte) (int, error) {
	if cr.done {
		return 0, io.EOF
	}

	if !cr.inChunk {
		size, err := cr.readChunkSize()
		if err != nil {
			return 0, errors.Wrap(err, "decoding chunk")
		}

		if size == 0 {
			// Last chunk.
			if err := cr.readTrailers(); err != nil {
				return 0, errors.Wrap(err, "decoding trailers")
			}
			cr.done = true
			return 0, io.EOF
		}

		cr.remain, cr.inChunk = size, true
	}

	if uint(len(p)) > cr.remain {
		p = p[:cr.remain]
	}

	n, err := cr.br.Read(p)
	cr.remain -= uint(n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return n, errors.Wrap(err, "reading chunk data")
	}

	if cr.remain == 0 {
		crlf := make([]byte, len(http.CRLF))
		if _, err := io.ReadFull(cr.br, crlf); err != nil {
			return n, errors.Wrap(err, "reading chunk delimiter")
		}
		if !bytes.Equal(crlf, http.CRLF) {
			return n, errors.New("CRLF delimiter not found")
		}
		cr.inChunk = false
	}

	return n, nil
}

func (cr *ChunkedReader) readLine() ([]byte, error) {
	line, err := iolib.ReadUntil(cr.br, http.CRLF)
	if err != nil {
		return nil, err
	}
	return line[:len(line)-len(http.CRLF)], nil
}

func (cr *ChunkedReader) readChunkSize() (uint, error) {
	line, err := cr.readLine()
	if err != nil {
		return 0, errors.Wrap(err, "reading chunk size line")
	}

	sizeRaw, _, _ := bytes.Cut(line, []byte{';'})
	sizeRaw = bytes.Trim(sizeRaw, string(http.OWS))

	size, err := strconv.ParseUint(string(sizeRaw), 16, 64)
	if err != nil {
		return 0, errors.Errorf("malformed chunk size: %q", string(sizeRaw))
	}

	return uint(size), nil
}

func (cr *ChunkedReader) readTrailers() error {
	trailers := make(http.Headers, 0)
	for {
		line, err := cr.readLine()
		if err != nil {
			return errors.Wrap(err, "reading line")
		}

		if len(line) == 0 {
			break
		}

		field, err := http.ParseField(line)
		if err != nil {
			return errors.Wrap(err, "parsing field")
		}

		trailers = append(trailers, field)
	}

	cr.Trailers = trailers

	return nil
}

// ChunkedWriter writes each Write as a single chunk.
// Close writes the last chunk without trailers; it does not close w.
type ChunkedWriter struct {
	w io.Writer
}

var _ io.WriteCloser = (*ChunkedWriter)(nil)

func NewChunkedWriter(w io.Writer) *ChunkedWriter {
	return &ChunkedWriter{w: w}
}

func (cw *ChunkedWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		// Zero sized chunk would be the last chunk.
		return 0, nil
	}

	buf := bytes.NewBuffer(nil)
	buf.WriteString(strconv.FormatUint(uint64(len(p)), 16))
	buf.Write(http.CRLF)
	buf.Write(p)
	buf.Write(http.CRLF)

	if _, err := cw.w.Write(buf.Bytes()); err != nil {
		return 0, errors.Wrap(err, "writing chunk")
	}

	return len(p), nil
}

func (cw *ChunkedWriter) Close() error {
	if _, err := cw.w.Write([]byte("0\r\n\r\n")); err != nil {
		return errors.Wrap(err, "writing last chunk")
	}
	return nil
}
