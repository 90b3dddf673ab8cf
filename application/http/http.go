package http

import "io"

const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

const StatusOK uint = 200

type Request struct {
	Method  string
	Target  string
	Version Version

	Headers Headers

	Body io.Reader
}

type Response struct {
	Version      Version
	StatusCode   uint
	ReasonPhrase string

	Headers Headers

	Body io.Reader
}
