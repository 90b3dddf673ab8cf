package flowgrind

import (
	"strconv"
	"strings"

	"flowgrind-stop/application/util/uri"
	"flowgrind-stop/lib/types/pointer"

	"github.com/pkg/errors"
)

const (
	// DefaultListenPort is the port daemons listen on for control requests.
	DefaultListenPort uint16 = 5999

	// RPCPath is where daemons serve XML-RPC requests.
	RPCPath = "/RPC2"

	// MaxAddressLength bounds an address given by the user.
	MaxAddressLength = 950
)

var (
	ErrAddressTooLong = errors.New("address too long")
	ErrNoAddress      = errors.New("no address given")
	ErrInvalidPort    = errors.New("invalid port given")
)

// Endpoint is the control endpoint of a single daemon.
type Endpoint struct {
	Host string
	Port uint16
}

// ParseAddress converts "host" or "host:port" into [Endpoint].
// Only the first colon separates host from port.
// A missing port means [DefaultListenPort].
func ParseAddress(address string) (Endpoint, error) {
	if len(address) > MaxAddressLength {
		return Endpoint{}, ErrAddressTooLong
	}

	host, rawPort, hasPort := strings.Cut(address, ":")
	if host == "" {
		return Endpoint{}, ErrNoAddress
	}

	if !hasPort {
		return Endpoint{Host: host, Port: DefaultListenPort}, nil
	}

	port, err := parsePort(rawPort)
	if err != nil {
		return Endpoint{}, errors.Wrap(ErrInvalidPort, err.Error())
	}

	return Endpoint{Host: host, Port: port}, nil
}

// parsePort accepts decimal digits only, in range of 1 ~ 65535.
func parsePort(s string) (uint16, error) {
	if s == "" {
		return 0, errors.New("port is empty")
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, errors.Errorf("port is not a number: %q", s)
		}
	}

	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil || n == 0 {
		return 0, errors.Errorf("port out of range: %s", s)
	}

	return uint16(n), nil
}

// Label returns "host:port".
func (e Endpoint) Label() string {
	return e.Host + ":" + strconv.FormatUint(uint64(e.Port), 10)
}

// URL returns the URL of the XML-RPC endpoint.
func (e Endpoint) URL() uri.URI {
	return uri.URI{
		Scheme:    "http",
		Authority: &uri.Authority{Host: e.Host, Port: pointer.To(e.Port)},
		Path:      RPCPath,
	}
}
