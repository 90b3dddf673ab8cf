package http

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type MessageDecoderTestSuite struct {
	suite.Suite
}

func TestMessageDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(MessageDecoderTestSuite))
}

func (s *MessageDecoderTestSuite) TestReadLine() {
	testcases := []struct {
		desc     string
		opts     DecodeOptions
		limit    uint
		input    string
		expected string
		wantErr  error
	}{
		{
			desc:     "simple line with CRLF",
			input:    "Hello\r\n",
			expected: "Hello",
		},
		{
			desc:    "line exceeding limit",
			input:   "Hey\r\n",
			limit:   1,
			wantErr: errLineTooLong,
		},
		{
			desc:    "Sole LF (fail)",
			input:   "Hello\n",
			wantErr: ErrMissingCRBeforeLF,
		},
		{
			desc:     "Sole LF (success)",
			opts:     DecodeOptions{AllowSoleLF: true},
			input:    "Hello\n",
			expected: "Hello",
		},
		{
			desc:     "CRLF is still accepted with sole LF allowed",
			opts:     DecodeOptions{AllowSoleLF: true},
			input:    "Hello\r\n",
			expected: "Hello",
		},
		{
			desc:     "line with bare CR",
			input:    "Hello \r World!\r\n",
			expected: "Hello   World!",
		},
		{
			desc:     "line with lenient whitespace",
			opts:     DecodeOptions{LenientWhitespace: true},
			input:    "\tHello\x0bWorld! \r\n",
			expected: "Hello World!",
		},
		{
			desc:    "unterminated line",
			input:   "Hello",
			wantErr: io.ErrUnexpectedEOF,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			md := MessageDecoder{
				br:   bufio.NewReader(strings.NewReader(tc.input)),
				opts: tc.opts,
			}

			line, err := md.readLine(tc.limit)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, string(line))
		})
	}
}

func (s *MessageDecoderTestSuite) TestDecodeHeaders() {
	testcases := []struct {
		desc     string
		opts     DecodeOptions
		input    string
		expected Headers
		wantErr  error
	}{
		{
			desc: "simple headers",
			input: "" +
				"Host: example.com\r\n" +
				"Content-Length:  12 \r\n" +
				"\r\n",
			expected: Headers{
				{Name: "Host", Value: "example.com"},
				{Name: "Content-Length", Value: "12"},
			},
		},
		{
			desc:     "no headers",
			input:    "\r\n",
			expected: Headers{},
		},
		{
			desc:    "whitespace before colon",
			input:   "Host : example.com\r\n\r\n",
			wantErr: ErrMalformedFieldLine,
		},
		{
			desc:    "missing colon",
			input:   "Host example.com\r\n\r\n",
			wantErr: ErrMalformedFieldLine,
		},
		{
			desc:    "field line too long",
			opts:    DecodeOptions{MaxFieldLineLength: 5},
			input:   "Host: example.com\r\n\r\n",
			wantErr: ErrFieldLineTooLong,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			md := MessageDecoder{
				br:   bufio.NewReader(strings.NewReader(tc.input)),
				opts: tc.opts,
			}

			var headers Headers
			err := md.decodeHeaders(&headers)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.expected, headers)
		})
	}
}

type RequestDecoderTestSuite struct {
	suite.Suite
}

func TestRequestDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(RequestDecoderTestSuite))
}

func (s *RequestDecoderTestSuite) TestDecode() {
	input := "" +
		"\r\n" +
		"POST /RPC2 HTTP/1.1\r\n" +
		"Host: localhost:5999\r\n" +
		"Content-Length: 5\r\n" +
		"\r\n" +
		"Hello"

	var req Request
	dec := NewRequestDecoder(strings.NewReader(input), DefaultDecodeOptions)
	s.Require().NoError(dec.Decode(&req))

	s.Equal(MethodPost, req.Method)
	s.Equal("/RPC2", req.Target)
	s.Equal(Version11, req.Version)
	s.Equal(Headers{
		{Name: "Host", Value: "localhost:5999"},
		{Name: "Content-Length", Value: "5"},
	}, req.Headers)

	body, err := io.ReadAll(req.Body)
	s.Require().NoError(err)
	s.Equal("Hello", string(body))
}

func (s *RequestDecoderTestSuite) TestDecodeRequestLine() {
	testcases := []struct {
		desc    string
		input   string
		wantErr error
	}{
		{desc: "two parts", input: "POST /RPC2\r\n\r\n", wantErr: ErrMalformedRequestLine},
		{desc: "invalid method", input: "P(ST /RPC2 HTTP/1.1\r\n\r\n", wantErr: ErrMalformedRequestLine},
		{desc: "bad version", input: "POST /RPC2 HTTP/one\r\n\r\n", wantErr: ErrMalformedRequestLine},
		{
			desc:    "too long",
			input:   "POST /" + strings.Repeat("a", 9000) + " HTTP/1.1\r\n\r\n",
			wantErr: ErrRequestLineTooLong,
		},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			var req Request
			dec := NewRequestDecoder(strings.NewReader(tc.input), DefaultDecodeOptions)
			s.ErrorIs(dec.Decode(&req), tc.wantErr)
		})
	}
}

type ResponseDecoderTestSuite struct {
	suite.Suite
}

func TestResponseDecoderTestSuite(t *testing.T) {
	suite.Run(t, new(ResponseDecoderTestSuite))
}

func (s *ResponseDecoderTestSuite) TestDecode() {
	input := "" +
		"HTTP/1.1 200 OK\r\n" +
		"Content-Type: text/xml\r\n" +
		"\r\n" +
		"<xml/>"

	var res Response
	dec := NewResponseDecoder(strings.NewReader(input), DefaultDecodeOptions)
	s.Require().NoError(dec.Decode(&res))

	s.Equal(Version11, res.Version)
	s.Equal(StatusOK, res.StatusCode)
	s.Equal("OK", res.ReasonPhrase)

	contentType, ok := res.Headers.Get("content-type")
	s.True(ok)
	s.Equal("text/xml", contentType)

	body, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	s.Equal("<xml/>", string(body))
}

func (s *ResponseDecoderTestSuite) TestDecodeStatusLine() {
	testcases := []struct {
		desc     string
		input    string
		code     uint
		phrase   string
		wantErr  error
	}{
		{desc: "with reason phrase", input: "HTTP/1.1 404 Not Found\r\n\r\n", code: 404, phrase: "Not Found"},
		{desc: "without reason phrase", input: "HTTP/1.0 500\r\n\r\n", code: 500},
		{desc: "empty reason phrase", input: "HTTP/1.1 204 \r\n\r\n", code: 204},
		{desc: "two digit status", input: "HTTP/1.1 20 OK\r\n\r\n", wantErr: ErrMalformedStatusLine},
		{desc: "no version", input: "200 OK\r\n\r\n", wantErr: ErrMalformedStatusLine},
		{desc: "only version", input: "HTTP/1.1\r\n\r\n", wantErr: ErrMalformedStatusLine},
	}

	for _, tc := range testcases {
		s.Run(tc.desc, func() {
			var res Response
			dec := NewResponseDecoder(strings.NewReader(tc.input), DefaultDecodeOptions)
			err := dec.Decode(&res)
			if tc.wantErr != nil {
				s.ErrorIs(err, tc.wantErr)
				return
			}

			s.Require().NoError(err)
			s.Equal(tc.code, res.StatusCode)
			s.Equal(tc.phrase, res.ReasonPhrase)
		})
	}
}
