package transport

type Protocol string

const (
	TCP Protocol = "tcp"
)

type Addr interface {
	Protocol() Protocol
	String() string
}
