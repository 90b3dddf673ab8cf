package xmlrpc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Fault codes generated locally, numbered the way xmlrpc-c does.
const (
	InternalError              = -500
	TypeError                  = -501
	IndexError                 = -502
	ParseError                 = -503
	NetworkError               = -504
	TimeoutError               = -505
	NoSuchMethodError          = -506
	RequestRefusedError        = -507
	IntrospectionDisabledError = -508
	LimitExceededError         = -509
	InvalidUTF8Error           = -510
)

// Fault is either reported by the remote end or generated locally
// when the call could not be completed.
type Fault struct {
	Code   int
	String string
}

func (f *Fault) Error() string {
	return f.String + " (" + strconv.Itoa(f.Code) + ")"
}

func NewFault(code int, format string, args ...any) *Fault {
	return &Fault{Code: code, String: fmt.Sprintf(format, args...)}
}

// FaultFrom returns the fault carried by err.
// Errors that are not faults become [TimeoutError] or [NetworkError] faults.
func FaultFrom(err error) *Fault {
	if err == nil {
		return nil
	}

	var fault *Fault
	if errors.As(err, &fault) {
		return fault
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Fault{Code: TimeoutError, String: err.Error()}
	}

	return &Fault{Code: NetworkError, String: err.Error()}
}
