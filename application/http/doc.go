// Package http implements the HTTP/1.1 message syntax used to carry remote calls.
//
// Only what a single request-response exchange needs is covered:
// message lines, header fields and bodies delimited by Content-Length
// or by connection close.
//
// Reference:
//
// - https://datatracker.ietf.org/doc/html/rfc9110
//
// - https://datatracker.ietf.org/doc/html/rfc9112
package http
