// Package flowgrind talks to flowgrind daemons through their XML-RPC control endpoint.
package flowgrind
