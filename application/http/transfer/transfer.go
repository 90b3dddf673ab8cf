// Package transfer implements transfer codings of HTTP/1.1 message bodies.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-7
package transfer

import (
	"io"
	"strings"

	"github.com/pkg/errors"
)

type Coding string

const (
	CodingChunked  Coding = "chunked"
	CodingIdentity Coding = "identity"
)

var ErrUnsupportedCoding = errors.New("unsupported transfer coding")

// NewBodyReader decodes body according to the value of Transfer-Encoding field.
// Only chunked, optionally preceded by identity, is supported.
func NewBodyReader(body io.Reader, transferEncoding string) (io.Reader, error) {
	codings := strings.Split(transferEncoding, ",")

	r := body
	for i := len(codings) - 1; i >= 0; i-- {
		coding := Coding(strings.ToLower(strings.TrimSpace(codings[i])))
		switch coding {
		case CodingIdentity, "":
		case CodingChunked:
			if i != len(codings)-1 {
				// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-6.1-7
				return nil, errors.New("chunked must be the final transfer coding")
			}
			r = NewChunkedReader(r)
		default:
			return nil, errors.Wrap(ErrUnsupportedCoding, string(coding))
		}
	}

	return r, nil
}
