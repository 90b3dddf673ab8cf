// Package tcp provides TCP transport on top of the operating system's sockets.
package tcp

import (
	"context"
	"net"
	"os"
	"strconv"
	"time"

	"flowgrind-stop/transport"

	"github.com/pkg/errors"
)

type Addr struct {
	Host string
	Port uint16
}

var _ transport.Addr = Addr{}

func NewAddr(host string, port uint16) Addr {
	return Addr{Host: host, Port: port}
}

func (a Addr) Protocol() transport.Protocol { return transport.TCP }

func (a Addr) String() string {
	return net.JoinHostPort(a.Host, strconv.FormatUint(uint64(a.Port), 10))
}

func addrFrom(a net.Addr) Addr {
	tcpAddr, ok := a.(*net.TCPAddr)
	if !ok {
		return Addr{}
	}
	return Addr{Host: tcpAddr.IP.String(), Port: uint16(tcpAddr.Port)}
}

type DialOptions struct {
	// KeepAlive is passed to [net.Dialer]. Zero means the system default.
	KeepAlive time.Duration
}

type Dialer struct {
	d net.Dialer
}

var _ transport.ConnDialer = (*Dialer)(nil)

func NewDialer(opts DialOptions) *Dialer {
	return &Dialer{d: net.Dialer{KeepAlive: opts.KeepAlive}}
}

func (d *Dialer) Dial(ctx context.Context, addr transport.Addr) (transport.Conn, error) {
	if addr.Protocol() != transport.TCP {
		return nil, errors.Errorf("unsupported protocol: %s", addr.Protocol())
	}

	con, err := d.d.DialContext(ctx, string(transport.TCP), addr.String())
	if err != nil {
		return nil, errors.Wrapf(convertErr(err), "dialing %s", addr)
	}

	return &conn{con: con}, nil
}

type conn struct {
	con net.Conn
}

var _ transport.Conn = (*conn)(nil)

func (c *conn) Read(p []byte) (int, error) {
	n, err := c.con.Read(p)
	return n, convertErr(err)
}

func (c *conn) Write(p []byte) (int, error) {
	n, err := c.con.Write(p)
	return n, convertErr(err)
}

func (c *conn) Close() error {
	return convertErr(c.con.Close())
}

func (c *conn) LocalAddr() transport.Addr  { return addrFrom(c.con.LocalAddr()) }
func (c *conn) RemoteAddr() transport.Addr { return addrFrom(c.con.RemoteAddr()) }

// Setting deadline on net.Conn only fails when the conn is closed,
// which the following Read or Write reports anyway.
func (c *conn) SetReadDeadLine(t time.Time)  { _ = c.con.SetReadDeadline(t) }
func (c *conn) SetWriteDeadLine(t time.Time) { _ = c.con.SetWriteDeadline(t) }

// convertErr maps socket errors onto transport errors.
// io.EOF is kept as is so readers can detect the end of stream.
func convertErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, net.ErrClosed):
		return errors.Wrap(transport.ErrConnClosed, err.Error())
	case errors.Is(err, os.ErrDeadlineExceeded):
		return errors.Wrap(transport.ErrDeadLineExceeded, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(transport.ErrDeadLineExceeded, err.Error())
	}

	return err
}
