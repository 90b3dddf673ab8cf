package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"flowgrind-stop/application/util/uri"
	"flowgrind-stop/application/xmlrpc"

	"github.com/stretchr/testify/suite"
)

type recordingCaller struct {
	urls   []string
	faults map[string]*xmlrpc.Fault
}

func (c *recordingCaller) Call(ctx context.Context, endpoint uri.URI, method string, params ...xmlrpc.Value) (xmlrpc.Value, error) {
	url := endpoint.String()
	c.urls = append(c.urls, url)
	if fault, ok := c.faults[url]; ok {
		return nil, fault
	}
	return int32(0), nil
}

type CommandTestSuite struct {
	suite.Suite

	caller *recordingCaller
	env    map[string]string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func TestCommandTestSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}

func (s *CommandTestSuite) SetupTest() {
	s.caller = &recordingCaller{faults: map[string]*xmlrpc.Fault{}}
	s.env = map[string]string{}
	s.stdout = bytes.NewBuffer(nil)
	s.stderr = bytes.NewBuffer(nil)
}

func (s *CommandTestSuite) getenv(key string) string { return s.env[key] }

func (s *CommandTestSuite) run(args ...string) int {
	return run(context.Background(), append([]string{"/usr/local/bin/flowgrind-stop"}, args...), s.getenv, s.stdout, s.stderr, s.caller)
}

func (s *CommandTestSuite) TestHelp() {
	testcases := [][]string{
		{"-h", "localhost"},
		{"--help", "localhost"},
		{"-hv"},
		{"-h", "-v"},
		{"-h", "--bogus"},
		{"localhost", "-h", "-x"},
	}

	for _, args := range testcases {
		s.Run(strings.Join(args, " "), func() {
			s.SetupTest()

			s.Equal(0, s.run(args...))

			s.Empty(s.caller.urls)
			s.Empty(s.stdout.String())
			s.Equal(fmt.Sprintf(usageText, "flowgrind-stop"), s.stderr.String())
			s.True(strings.HasPrefix(s.stderr.String(), "Usage: flowgrind-stop [OPTION]... [ADDRESS]...\n"))
		})
	}
}

func (s *CommandTestSuite) TestVersion() {
	testcases := [][]string{
		{"-v"},
		{"--version"},
		{"localhost", "-v"},
		{"-vh"},
		{"-v", "-h"},
		{"-v", "--bogus"},
	}

	for _, args := range testcases {
		s.Run(strings.Join(args, " "), func() {
			s.SetupTest()

			s.Equal(0, s.run(args...))

			s.Empty(s.caller.urls)
			s.Empty(s.stdout.String())
			s.Equal("flowgrind-stop version: "+version+"\n", s.stderr.String())
		})
	}
}

func (s *CommandTestSuite) TestUnknownOption() {
	testcases := [][]string{
		{"localhost", "-x"},
		{"localhost", "--bogus"},
		{"localhost", "--help=maybe"},
		{"-x", "-h"},
		{"--bogus", "-v"},
	}

	for _, args := range testcases {
		s.Run(strings.Join(args, " "), func() {
			s.SetupTest()

			s.Equal(1, s.run(args...))

			s.Empty(s.caller.urls)
			s.Empty(s.stdout.String())
			s.True(strings.HasSuffix(s.stderr.String(), "Try 'flowgrind-stop -h' for more information\n"))
		})
	}
}

func (s *CommandTestSuite) TestNoAddresses() {
	s.Equal(0, s.run())

	s.Empty(s.caller.urls)
	s.Empty(s.stdout.String())
	s.Empty(s.stderr.String())
}

func (s *CommandTestSuite) TestStop() {
	s.caller.faults["http://b:5999/RPC2"] = &xmlrpc.Fault{Code: xmlrpc.NetworkError, String: "connection refused"}

	s.Equal(0, s.run("10.0.0.1:9000", "badhost:", "b", "example.org"))

	s.Equal([]string{
		"http://10.0.0.1:9000/RPC2",
		"http://b:5999/RPC2",
		"http://example.org:5999/RPC2",
	}, s.caller.urls)

	s.Equal(""+
		"Stopping all flows on 10.0.0.1:9000\n"+
		"Stopping all flows on b:5999\n"+
		"Stopping all flows on example.org:5999\n", s.stdout.String())
	s.Equal(""+
		"Error, invalid port given: badhost:\n"+
		"Could not stop flows on b:5999: connection refused (-504)\n", s.stderr.String())
}

func (s *CommandTestSuite) TestEndOfOptions() {
	s.Equal(0, s.run("--", "-h"))

	// "-h" is an address here, which is a hostname without port.
	s.Equal([]string{"http://-h:5999/RPC2"}, s.caller.urls)
}

func (s *CommandTestSuite) TestCommandLikeAddresses() {
	s.Equal(0, s.run("__complete", "x"))

	s.Equal([]string{
		"http://__complete:5999/RPC2",
		"http://x:5999/RPC2",
	}, s.caller.urls)
	s.Empty(s.stderr.String())
}

func (s *CommandTestSuite) TestLogLevel() {
	s.caller.faults["http://b:5999/RPC2"] = &xmlrpc.Fault{Code: xmlrpc.NetworkError, String: "connection refused"}

	s.Run("default", func() {
		s.stderr.Reset()

		s.Equal(0, s.run("b"))
		s.NotContains(s.stderr.String(), "level=DEBUG")
	})

	s.Run("debug", func() {
		s.stderr.Reset()
		s.env[logLevelEnv] = "debug"

		s.Equal(0, s.run("b"))
		s.Contains(s.stderr.String(), `level=DEBUG msg="stop failed" endpoint=b:5999`)
	})

	s.Run("invalid", func() {
		s.stderr.Reset()
		s.env[logLevelEnv] = "loud"

		s.Equal(0, s.run("b"))
		s.NotContains(s.stderr.String(), "level=")
	})
}

func (s *CommandTestSuite) TestProgname() {
	s.Equal(1, run(context.Background(), []string{"./bin/fg-stop", "-x"}, s.getenv, s.stdout, s.stderr, s.caller))
	s.True(strings.HasSuffix(s.stderr.String(), "Try 'fg-stop -h' for more information\n"))
}
