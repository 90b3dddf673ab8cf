package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	iolib "flowgrind-stop/lib/io"

	"github.com/pkg/errors"
)

type DecodeOptions struct {
	// AllowSoleLF specifies wheter a single LF character should be recognized as a valid line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	AllowSoleLF bool

	// LenientWhitespace replaces all [Whitespaces] into [SP].
	// And also trims preceding and trailinig whitespace.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-3
	LenientWhitespace bool

	// MaxFieldLineLength sets the limit of field line length on headers.
	MaxFieldLineLength uint

	// MaxRequestLineLength sets the limit of request line length.
	// Recommended: >= 8000
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3-5
	MaxRequestLineLength uint

	// MaxStatusLineLength sets the limit of status line length.
	MaxStatusLineLength uint
}

var DefaultDecodeOptions = DecodeOptions{
	AllowSoleLF:          false,
	LenientWhitespace:    false,
	MaxFieldLineLength:   8192,
	MaxRequestLineLength: 8192,
	MaxStatusLineLength:  8192,
}

type MessageDecoder struct {
	br   *bufio.Reader
	opts DecodeOptions
}

var (
	errLineTooLong       = errors.New("line length exceeeds limit")
	ErrMissingCRBeforeLF = errors.New("missing CR before LF")
)

func (md *MessageDecoder) readLine(limit uint) ([]byte, error) {
	b, err := iolib.ReadUntil(md.br, []byte{LF})
	if err != nil {
		return nil, err
	}

	if limit > 0 && uint(len(b)) > limit {
		return nil, errLineTooLong
	}

	b = b[:len(b)-1] // Remove LF.

	if !md.opts.AllowSoleLF {
		if len(b) == 0 || b[len(b)-1] != CR {
			return nil, ErrMissingCRBeforeLF
		}
		b = b[:len(b)-1] // Remove CR.
	} else {
		b = bytes.TrimSuffix(b, []byte{CR})
	}

	if md.opts.LenientWhitespace {
		for _, c := range Whitespaces {
			b = bytes.ReplaceAll(b, []byte{c}, []byte{SP})
		}
		b = bytes.Trim(b, string([]byte{SP}))

		return b, nil
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-4
	b = bytes.ReplaceAll(b, []byte{CR}, []byte{SP})

	return b, nil
}

// readStartLine skips empty lines preceding the message.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-6
func (md *MessageDecoder) readStartLine(limit uint) ([]byte, error) {
	for {
		b, err := md.readLine(limit)
		if err != nil {
			return nil, err
		}
		if len(b) > 0 {
			return b, nil
		}
	}
}

var (
	ErrFieldLineTooLong   = errors.New("field line length exceeds limit")
	ErrMalformedFieldLine = errors.New("field line is malformed")
)

func (md *MessageDecoder) decodeHeaders(headers *Headers) error {
	tmpHeaders := make(Headers, 0)
	for {
		fieldLine, err := md.readLine(md.opts.MaxFieldLineLength)
		if err != nil {
			if errors.Is(err, errLineTooLong) {
				return ErrFieldLineTooLong
			}
			return errors.Wrap(err, "reading line")
		}

		if len(fieldLine) == 0 {
			// An empty line. This means that there are no more headers.
			break
		}

		field, err := ParseField(fieldLine)
		if err != nil {
			return ErrMalformedFieldLine
		}

		tmpHeaders = append(tmpHeaders, field)
	}

	*headers = tmpHeaders

	return nil
}

var (
	ErrRequestLineTooLong   = errors.New("request line length exceeds limit")
	ErrMalformedRequestLine = errors.New("request line is malformed")
)

type RequestDecoder struct{ MessageDecoder }

func NewRequestDecoder(r io.Reader, opts DecodeOptions) *RequestDecoder {
	return &RequestDecoder{
		MessageDecoder{br: bufio.NewReader(r), opts: opts},
	}
}

// r MUST be a non-nil pointer.
// Body of r reads whatever follows the header section.
func (rd *RequestDecoder) Decode(r *Request) error {
	line, err := rd.readStartLine(rd.opts.MaxRequestLineLength)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return ErrRequestLineTooLong
		}
		return errors.Wrap(err, "reading request line")
	}

	if err := parseRequestLine(line, r); err != nil {
		return errors.Wrap(ErrMalformedRequestLine, err.Error())
	}

	if err := rd.decodeHeaders(&r.Headers); err != nil {
		return errors.Wrap(err, "parsing headers")
	}

	r.Body = rd.br

	return nil
}

func parseRequestLine(line []byte, r *Request) error {
	parts := bytes.Split(line, []byte{SP})
	if len(parts) != 3 {
		return errors.New("request line should have three parts")
	}

	method := string(parts[0])
	if !IsValidToken(method) {
		return errors.New("method is not a valid token")
	}

	target := string(parts[1])
	if len(target) == 0 {
		return errors.New("request target should not be empty")
	}

	ver, err := ParseVersion(parts[2])
	if err != nil {
		return errors.Wrap(err, "parsing version")
	}

	r.Method, r.Target, r.Version = method, target, ver

	return nil
}

var (
	ErrStatusLineTooLong   = errors.New("status line length exceeds limit")
	ErrMalformedStatusLine = errors.New("status line is malformed")
)

type ResponseDecoder struct{ MessageDecoder }

func NewResponseDecoder(r io.Reader, opts DecodeOptions) *ResponseDecoder {
	return &ResponseDecoder{
		MessageDecoder{br: bufio.NewReader(r), opts: opts},
	}
}

// r MUST be a non-nil pointer.
// Body of r reads whatever follows the header section.
func (rd *ResponseDecoder) Decode(r *Response) error {
	line, err := rd.readStartLine(rd.opts.MaxStatusLineLength)
	if err != nil {
		if errors.Is(err, errLineTooLong) {
			return ErrStatusLineTooLong
		}
		return errors.Wrap(err, "reading status line")
	}

	if err := parseStatusLine(line, r); err != nil {
		return errors.Wrap(ErrMalformedStatusLine, err.Error())
	}

	if err := rd.decodeHeaders(&r.Headers); err != nil {
		return errors.Wrap(err, "parsing headers")
	}

	r.Body = rd.br

	return nil
}

func parseStatusLine(line []byte, r *Response) error {
	parts := bytes.SplitN(line, []byte{SP}, 3)
	if len(parts) < 2 {
		return errors.New("status line should have version and status code")
	}

	ver, err := ParseVersion(parts[0])
	if err != nil {
		return errors.Wrap(err, "parsing version")
	}

	statusCodeStr := string(parts[1])
	statusCode, err := strconv.ParseUint(statusCodeStr, 10, 64)
	if err != nil || len(statusCodeStr) != 3 {
		return errors.Errorf("status code is malformed: %q", statusCodeStr)
	}

	// reason-phrase is optional.
	reasonPhrase := ""
	if len(parts) == 3 {
		reasonPhrase = string(parts[2])
	}

	r.Version, r.StatusCode, r.ReasonPhrase = ver, uint(statusCode), reasonPhrase

	return nil
}
