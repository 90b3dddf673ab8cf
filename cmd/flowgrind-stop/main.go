// Command flowgrind-stop stops all flows on the flowgrind daemons at the given addresses.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"flowgrind-stop/application/flowgrind"
	"flowgrind-stop/application/xmlrpc/client"
	"flowgrind-stop/transport/tcp"

	"github.com/benbjohnson/clock"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "0.8.2"

const defaultProgname = "flowgrind-stop"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Getenv, os.Stdout, os.Stderr, nil)
	stop()
	os.Exit(code)
}

// logLevelEnv names the environment variable holding the log level, e.g. "debug".
const logLevelEnv = "FLOWGRIND_STOP_LOG_LEVEL"

// run executes the command with args, where args[0] is the invocation path.
// A nil caller makes run talk to daemons over the network.
func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer, caller flowgrind.Caller) int {
	progname := defaultProgname
	if len(args) > 0 {
		progname = filepath.Base(args[0])
		args = args[1:]
	}

	level := slog.LevelWarn
	if raw := getenv(logLevelEnv); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = slog.LevelWarn
		}
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if caller == nil {
		opts := client.DefaultOptions
		opts.Send.UserAgent = "Flowgrind/" + version
		caller = client.New(tcp.NewDialer(tcp.DialOptions{}), logger, clock.New(), opts)
	}

	stopper := flowgrind.NewStopper(caller, stdout, stderr, logger)

	cmd := newCommand(progname, stopper, stderr)

	if err := cmd.Execute(ctx, args); err != nil {
		printHint(stderr, progname, err)
		return 1
	}

	return 0
}
