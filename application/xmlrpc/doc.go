// Package xmlrpc implements XML-RPC documents: method calls, responses and faults.
//
// Reference: http://xmlrpc.com/spec.md
package xmlrpc
