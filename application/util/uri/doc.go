// Package uri models the URIs remote calls are addressed to.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc3986
package uri
