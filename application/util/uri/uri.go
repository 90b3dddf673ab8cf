package uri

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NOTE: Manually created URI should not have escaped characters.
type URI struct {
	Scheme    string
	Authority *Authority
	Path      string
	Query     *string
}

type Authority struct {
	Host string

	// NOTE: Port can be digits of any length. But practically it is in range of 0 ~ 65535.
	// Reference: datatracker.ietf.org/doc/html/rfc3986#section-3.2.3
	Port *uint16
}

// HostPort returns "host:port", or just host when port is absent.
// IPv6 literals are enclosed in brackets.
func (a Authority) HostPort() string {
	host := a.Host
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		host = "[" + host + "]"
	}
	if a.Port == nil {
		return host
	}
	return host + ":" + strconv.FormatUint(uint64(*a.Port), 10)
}

func (u *URI) IsValid() error {
	if err := assertValidScheme(u.Scheme); err != nil {
		return errors.Wrap(err, "scheme is not valid")
	}

	if u.Authority != nil && u.Authority.Host == "" {
		return errors.New("host should not be empty")
	}

	// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.3
	if u.Authority != nil && u.Path != "" && !strings.HasPrefix(u.Path, "/") {
		return errors.New("path should begin with '/' when authority is present")
	}

	return nil
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.3
func (u *URI) String() string {
	b := new(strings.Builder)
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}

	if u.Authority != nil {
		b.WriteString("//")
		b.WriteString(escape(u.Authority.HostPort(), encodeHost))
	}

	b.WriteString(u.RequestTarget())

	return b.String()
}

// RequestTarget returns the origin-form of u, which is the path and the query.
// An empty path becomes "/".
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (u *URI) RequestTarget() string {
	b := new(strings.Builder)

	path := u.Path
	if path == "" && u.Authority != nil {
		path = "/"
	}
	b.WriteString(escape(path, encodePath))

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(escape(*u.Query, encodeQuery))
	}

	return b.String()
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-3.1
func assertValidScheme(scheme string) error {
	if scheme == "" {
		return errors.New("scheme should not be empty")
	}

	if !isAlpha(scheme[0]) {
		return errors.New("scheme should start with alphabet")
	}

	for i := 1; i < len(scheme); i++ {
		c := scheme[i]
		if isAlpha(c) || isDigit(c) || c == '+' || c == '-' || c == '.' {
			continue
		}
		return errors.Errorf("invalid character on scheme: %q", c)
	}

	return nil
}
