package client

import (
	"time"

	"flowgrind-stop/application/http"
)

type Options struct {
	Send    SendOptions
	Receive ReceiveOptions
	Timeout TimeoutOptions
}

type SendOptions struct {
	Encode http.EncodeOptions

	// UserAgent is sent as User-Agent field when not empty.
	UserAgent string
}

type ReceiveOptions struct {
	Decode http.DecodeOptions

	// MaxBodySize limits the size of a response body.
	// Zero means no limit.
	MaxBodySize uint
}

type TimeoutOptions struct {
	// Call bounds a whole call from dial to the end of response.
	// Zero leaves it to the transport.
	Call time.Duration
}

// DefaultMaxBodySize follows the XML size limit of xmlrpc-c.
const DefaultMaxBodySize uint = 512 << 10

var DefaultOptions = Options{
	Send: SendOptions{
		Encode: http.DefaultEncodeOptions,
	},
	Receive: ReceiveOptions{
		Decode:      http.DefaultDecodeOptions,
		MaxBodySize: DefaultMaxBodySize,
	},
}
