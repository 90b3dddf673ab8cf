package flowgrind

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"flowgrind-stop/application/util/uri"
	"flowgrind-stop/application/xmlrpc"

	"github.com/pkg/errors"
)

const (
	MethodStopFlow = "stop_flow"

	// AllFlows as flow id makes the daemon stop every flow it runs.
	AllFlows = -1
)

// Caller performs a remote procedure call.
type Caller interface {
	Call(ctx context.Context, endpoint uri.URI, method string, params ...xmlrpc.Value) (xmlrpc.Value, error)
}

// StopFlow asks the daemon at endpoint to stop the flow with flowID.
func StopFlow(ctx context.Context, caller Caller, endpoint Endpoint, flowID int) error {
	params := xmlrpc.Struct{{Name: "flow_id", Value: int32(flowID)}}

	// Result carries nothing of interest.
	if _, err := caller.Call(ctx, endpoint.URL(), MethodStopFlow, params); err != nil {
		return errors.Wrapf(err, "stopping flow %d on %s", flowID, endpoint.Label())
	}

	return nil
}

// Stopper stops all flows on daemons one address at a time.
// Progress goes to stdout and failures to stderr.
type Stopper struct {
	caller Caller

	stdout io.Writer
	stderr io.Writer

	logger *slog.Logger
}

func NewStopper(caller Caller, stdout, stderr io.Writer, logger *slog.Logger) *Stopper {
	return &Stopper{
		caller: caller,
		stdout: stdout,
		stderr: stderr,
		logger: logger,
	}
}

// StopAll stops addresses in the given order.
func (s *Stopper) StopAll(ctx context.Context, addresses []string) {
	for _, address := range addresses {
		s.Stop(ctx, address)
	}
}

// Stop stops all flows on the daemon at address.
// The outcome is only reported, so a failing address never affects others.
func (s *Stopper) Stop(ctx context.Context, address string) {
	endpoint, err := ParseAddress(address)
	if err != nil {
		s.reportAddressErr(address, err)
		return
	}

	fmt.Fprintf(s.stdout, "Stopping all flows on %s\n", endpoint.Label())

	if err := StopFlow(ctx, s.caller, endpoint, AllFlows); err != nil {
		s.logger.Debug("stop failed", slog.String("endpoint", endpoint.Label()), slog.String("error", err.Error()))

		fault := xmlrpc.FaultFrom(err)
		fmt.Fprintf(s.stderr, "Could not stop flows on %s: %s (%d)\n",
			endpoint.Label(), fault.String, fault.Code)
	}
}

func (s *Stopper) reportAddressErr(address string, err error) {
	switch {
	case errors.Is(err, ErrAddressTooLong):
		fmt.Fprintf(s.stderr, "Address too long: %s\n", address)
	case errors.Is(err, ErrNoAddress):
		fmt.Fprintf(s.stderr, "Error, no address given: %s\n", address)
	case errors.Is(err, ErrInvalidPort):
		fmt.Fprintf(s.stderr, "Error, invalid port given: %s\n", address)
	default:
		fmt.Fprintf(s.stderr, "Error, %s: %s\n", err, address)
	}
}
