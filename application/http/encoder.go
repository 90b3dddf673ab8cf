package http

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

type EncodeOptions struct {
	// UseSoleLF specifies wheter a single LF character should be used as a line terminator.
	//
	// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-2.2-3
	UseSoleLF bool
}

var DefaultEncodeOptions = EncodeOptions{
	UseSoleLF: false,
}

type MessageEncoder struct {
	bw   *bufio.Writer
	opts EncodeOptions
}

func (me *MessageEncoder) writeLine(line []byte) error {
	if _, err := me.bw.Write(line); err != nil {
		return errors.Wrap(err, "writing line")
	}

	term := CRLF
	if me.opts.UseSoleLF {
		term = term[1:]
	}

	if _, err := me.bw.Write(term); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (me *MessageEncoder) encodeHeaders(headers Headers) error {
	for _, field := range headers {
		if err := me.writeLine(field.Text()); err != nil {
			return errors.Wrap(err, "writing field")
		}
	}

	// Write a empty line as all the headers are written.
	if err := me.writeLine(nil); err != nil {
		return errors.Wrap(err, "writing line terminator")
	}

	return nil
}

func (me *MessageEncoder) encodeBody(body io.Reader) error {
	if body != nil {
		if _, err := me.bw.ReadFrom(body); err != nil {
			return errors.Wrap(err, "writing body")
		}
	}

	if err := me.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing message")
	}

	return nil
}

type RequestEncoder struct{ MessageEncoder }

func NewRequestEncoder(w io.Writer, opts EncodeOptions) *RequestEncoder {
	return &RequestEncoder{
		MessageEncoder{
			bw:   bufio.NewWriter(w),
			opts: opts,
		},
	}
}

func (re *RequestEncoder) Encode(request Request) error {
	if err := re.encodeRequestLine(request); err != nil {
		return errors.Wrap(err, "encoding request line")
	}

	if err := re.encodeHeaders(request.Headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if err := re.encodeBody(request.Body); err != nil {
		return errors.Wrap(err, "encoding request body")
	}

	return nil
}

func (re *RequestEncoder) encodeRequestLine(request Request) error {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(request.Method)
	buf.WriteByte(SP)
	buf.WriteString(request.Target)
	buf.WriteByte(SP)
	buf.Write(request.Version.Text())

	if err := re.writeLine(buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}

type ResponseEncoder struct{ MessageEncoder }

func NewResponseEncoder(w io.Writer, opts EncodeOptions) *ResponseEncoder {
	return &ResponseEncoder{
		MessageEncoder{
			bw:   bufio.NewWriter(w),
			opts: opts,
		},
	}
}

func (re *ResponseEncoder) Encode(response Response) error {
	if err := re.encodeStatusLine(response); err != nil {
		return errors.Wrap(err, "encoding status line")
	}

	if err := re.encodeHeaders(response.Headers); err != nil {
		return errors.Wrap(err, "encoding headers")
	}

	if err := re.encodeBody(response.Body); err != nil {
		return errors.Wrap(err, "encoding response body")
	}

	return nil
}

func (re *ResponseEncoder) encodeStatusLine(response Response) error {
	buf := bytes.NewBuffer(nil)

	buf.Write(response.Version.Text())
	buf.WriteByte(SP)
	buf.WriteString(strconv.FormatUint(uint64(response.StatusCode), 10))
	buf.WriteByte(SP)
	buf.WriteString(response.ReasonPhrase)

	if err := re.writeLine(buf.Bytes()); err != nil {
		return errors.Wrap(err, "writing line")
	}

	return nil
}
