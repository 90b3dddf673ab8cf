package client

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"flowgrind-stop/application/http"
	"flowgrind-stop/application/http/transfer"
	"flowgrind-stop/application/util/uri"
	"flowgrind-stop/application/xmlrpc"
	iolib "flowgrind-stop/lib/io"
	"flowgrind-stop/transport"
	"flowgrind-stop/transport/tcp"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const defaultHTTPPort uint16 = 80

// Client performs XML-RPC calls over HTTP/1.1.
// Each call uses its own connection, which is closed afterwards.
type Client struct {
	opts Options

	logger *slog.Logger
	clock  clock.Clock

	connDialer transport.ConnDialer
}

func New(
	d transport.ConnDialer,
	logger *slog.Logger,
	clock clock.Clock,
	opts Options,
) *Client {
	return &Client{
		connDialer: d,
		logger:     logger,
		clock:      clock,
		opts:       opts,
	}
}

// Call invokes method on the server at endpoint and returns its result.
// Every failure is returned as a *[xmlrpc.Fault]:
// the server's own fault, or a locally generated one
// describing what went wrong on the way.
func (c *Client) Call(ctx context.Context, endpoint uri.URI, method string, params ...xmlrpc.Value) (xmlrpc.Value, error) {
	start := c.clock.Now()

	result, err := c.call(ctx, endpoint, method, params)

	c.logger.Debug("xml-rpc call finished",
		slog.String("endpoint", endpoint.String()),
		slog.String("method", method),
		slog.Duration("elapsed", c.clock.Since(start)),
		slog.Any("error", err),
	)

	if err != nil {
		return nil, c.toFault(err)
	}

	return result, nil
}

func (c *Client) call(ctx context.Context, endpoint uri.URI, method string, params []xmlrpc.Value) (xmlrpc.Value, error) {
	addr, err := c.convertToAddr(endpoint)
	if err != nil {
		return nil, errors.Wrap(err, "converting endpoint to addr")
	}

	body := bytes.NewBuffer(nil)
	call := xmlrpc.MethodCall{Method: method, Params: params}
	if err := xmlrpc.NewEncoder(body).EncodeCall(call); err != nil {
		return nil, errors.Wrap(err, "encoding method call")
	}

	if c.opts.Timeout.Call > 0 {
		var cancel context.CancelFunc
		ctx, cancel = c.clock.WithTimeout(ctx, c.opts.Timeout.Call)
		defer cancel()
	}

	conn, err := c.connDialer.Dial(ctx, addr)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to server")
	}
	defer conn.Close()

	// Unblock pending reads and writes when the caller quits.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadLine(deadline)
		conn.SetWriteDeadLine(deadline)
	}

	request := http.Request{
		Method:  http.MethodPost,
		Target:  endpoint.RequestTarget(),
		Version: http.Version11,
		Headers: c.requestHeaders(*endpoint.Authority, uint(body.Len())),
		Body:    body,
	}

	result, err := c.roundtrip(conn, request)
	if err != nil && ctx.Err() != nil {
		// Closing conn on cancellation makes the real cause invisible.
		return nil, errors.Wrap(ctx.Err(), err.Error())
	}

	return result, err
}

func (c *Client) convertToAddr(endpoint uri.URI) (transport.Addr, error) {
	if err := endpoint.IsValid(); err != nil {
		return nil, err
	}
	if endpoint.Scheme != "http" {
		return nil, errors.Errorf("unsupported scheme: %q", endpoint.Scheme)
	}
	if endpoint.Authority == nil {
		return nil, errors.New("endpoint has no authority")
	}

	port := defaultHTTPPort
	if endpoint.Authority.Port != nil {
		port = *endpoint.Authority.Port
	}

	host := strings.TrimSuffix(strings.TrimPrefix(endpoint.Authority.Host, "["), "]")

	return tcp.NewAddr(host, port), nil
}

func (c *Client) requestHeaders(authority uri.Authority, contentLength uint) http.Headers {
	headers := http.Headers{
		{Name: "Host", Value: authority.HostPort()},
	}
	if c.opts.Send.UserAgent != "" {
		headers.Set("User-Agent", c.opts.Send.UserAgent)
	}
	headers.Set("Content-Type", "text/xml")
	headers.Set("Content-Length", strconv.FormatUint(uint64(contentLength), 10))
	headers.Set("Connection", "close")

	return headers
}

func (c *Client) roundtrip(conn transport.Conn, request http.Request) (xmlrpc.Value, error) {
	if err := http.NewRequestEncoder(conn, c.opts.Send.Encode).Encode(request); err != nil {
		return nil, errors.Wrap(err, "writing request")
	}

	var response http.Response
	dec := http.NewResponseDecoder(conn, c.opts.Receive.Decode)
	if err := dec.Decode(&response); err != nil {
		return nil, errors.Wrap(err, "reading response")
	}

	if response.StatusCode != http.StatusOK {
		return nil, xmlrpc.NewFault(xmlrpc.NetworkError,
			"HTTP response code is %d, not %d", response.StatusCode, http.StatusOK)
	}

	body, err := c.readBody(response)
	if err != nil {
		return nil, err
	}

	return xmlrpc.NewDecoder(bytes.NewReader(body)).DecodeResponse()
}

func (c *Client) readBody(response http.Response) ([]byte, error) {
	var (
		r      io.Reader
		length uint
		ok     bool
	)

	if coding, chunked := response.Headers.Get("Transfer-Encoding"); chunked {
		// Transfer-Encoding overrides Content-Length.
		// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.3
		br, err := transfer.NewBodyReader(&connClosedReader{r: response.Body}, coding)
		if err != nil {
			return nil, xmlrpc.NewFault(xmlrpc.NetworkError, "%s", err)
		}
		r = br
	} else {
		var err error
		length, ok, err = response.Headers.ContentLength()
		if err != nil {
			return nil, xmlrpc.NewFault(xmlrpc.NetworkError, "%s", err)
		}

		switch {
		case ok:
			if limit := c.opts.Receive.MaxBodySize; limit > 0 && length > limit {
				return nil, xmlrpc.NewFault(xmlrpc.LimitExceededError,
					"response body of %d bytes exceeds limit of %d bytes", length, limit)
			}
			// Body is delimited by Content-Length.
			// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.6
			r = iolib.LimitReader(response.Body, length)
		default:
			// The message is finished when server closes connection.
			// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.3-2.8
			r = &connClosedReader{r: response.Body}
		}
	}

	body, err := iolib.ReadAllLimit(r, c.opts.Receive.MaxBodySize)
	if err != nil {
		if errors.Is(err, iolib.ErrLimitExceeded) {
			return nil, xmlrpc.NewFault(xmlrpc.LimitExceededError,
				"response body exceeds limit of %d bytes", c.opts.Receive.MaxBodySize)
		}
		return nil, errors.Wrap(err, "reading response body")
	}

	if ok && uint(len(body)) < length {
		return nil, errors.Wrap(io.ErrUnexpectedEOF, "reading response body")
	}

	return body, nil
}

func (c *Client) toFault(err error) *xmlrpc.Fault {
	var fault *xmlrpc.Fault
	if errors.As(err, &fault) {
		return fault
	}

	if errors.Is(err, transport.ErrDeadLineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &xmlrpc.Fault{Code: xmlrpc.TimeoutError, String: err.Error()}
	}

	return &xmlrpc.Fault{Code: xmlrpc.NetworkError, String: err.Error()}
}

// connClosedReader overwrites [transport.ErrConnClosed] as [io.EOF].
type connClosedReader struct{ r io.Reader }

func (r *connClosedReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	if errors.Is(err, transport.ErrConnClosed) {
		return n, io.EOF
	}
	return n, err
}
