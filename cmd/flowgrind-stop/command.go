package main

import (
	"context"
	"fmt"
	"io"

	"flowgrind-stop/application/flowgrind"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

const usageText = `Usage: %[1]s [OPTION]... [ADDRESS]...
Stop all flows on the daemons running at the given addresses.

Mandatory arguments to long options are mandatory for short options too.
  -h, --help     display this help and exit
  -v, --version  print version information and exit

Example:
   %[1]s localhost 127.2.3.4:5999 example.com
`

type action uint8

const (
	actionStop action = iota
	actionHelp
	actionVersion
)

// command parses options in argument order.
// The first of help and version wins, as does a parse error met before them.
// Every other argument is an address, including ones that look like commands.
type command struct {
	progname string
	stopper  *flowgrind.Stopper
	stderr   io.Writer

	flags  *pflag.FlagSet
	action action
}

func newCommand(progname string, stopper *flowgrind.Stopper, stderr io.Writer) *command {
	c := &command{
		progname: progname,
		stopper:  stopper,
		stderr:   stderr,
	}

	flags := pflag.NewFlagSet(progname, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.Usage = func() {}

	flags.VarPF(&actionFlag{name: "help", action: actionHelp, chosen: &c.action},
		"help", "h", "display this help and exit").NoOptDefVal = "true"
	flags.VarPF(&actionFlag{name: "version", action: actionVersion, chosen: &c.action},
		"version", "v", "print version information and exit").NoOptDefVal = "true"

	c.flags = flags

	return c
}

func (c *command) Execute(ctx context.Context, args []string) error {
	err := c.flags.Parse(args)

	switch c.action {
	case actionHelp:
		fmt.Fprintf(c.stderr, usageText, c.progname)
		return nil
	case actionVersion:
		fmt.Fprintf(c.stderr, "%s version: %s\n", c.progname, version)
		return nil
	}

	if err != nil {
		return err
	}

	c.stopper.StopAll(ctx, c.flags.Args())
	return nil
}

// actionFlag is a boolean option that selects an action once set.
type actionFlag struct {
	name   string
	action action
	chosen *action
}

var _ pflag.Value = (*actionFlag)(nil)

func (f *actionFlag) String() string { return "false" }

func (f *actionFlag) Type() string { return "bool" }

func (f *actionFlag) Set(value string) error {
	if value != "true" {
		return errors.Errorf("option '--%s' doesn't allow an argument", f.name)
	}
	if *f.chosen == actionStop {
		*f.chosen = f.action
	}
	return nil
}

func printHint(w io.Writer, progname string, err error) {
	fmt.Fprintf(w, "%s: %s\n", progname, err)
	fmt.Fprintf(w, "Try '%s -h' for more information\n", progname)
}
