package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	testcases := []struct {
		input    string
		expected Version
		wantErr  bool
	}{
		{input: "HTTP/1.1", expected: Version{1, 1}},
		{input: "HTTP/1.0", expected: Version{1, 0}},
		{input: "HTTP/2", wantErr: true},
		{input: "HTTPS/1.1", wantErr: true},
		{input: "HTTP/a.b", wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			ver, err := ParseVersion([]byte(tc.input))
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, ver)
			assert.Equal(t, tc.input, ver.String())
		})
	}
}

func TestHeaders(t *testing.T) {
	h := Headers{{Name: "Content-Type", Value: "text/xml"}}

	v, ok := h.Get("CONTENT-TYPE")
	assert.True(t, ok)
	assert.Equal(t, "text/xml", v)

	_, ok = h.Get("Host")
	assert.False(t, ok)

	h.Set("content-type", "application/xml")
	h.Set("Host", "example.com")
	assert.Equal(t, Headers{
		{Name: "Content-Type", Value: "application/xml"},
		{Name: "Host", Value: "example.com"},
	}, h)
}

func TestContentLength(t *testing.T) {
	testcases := []struct {
		desc    string
		headers Headers
		length  uint
		ok      bool
		wantErr bool
	}{
		{desc: "absent", headers: Headers{}},
		{desc: "present", headers: Headers{{Name: "Content-Length", Value: "42"}}, length: 42, ok: true},
		{desc: "negative", headers: Headers{{Name: "Content-Length", Value: "-1"}}, ok: true, wantErr: true},
		{desc: "garbage", headers: Headers{{Name: "Content-Length", Value: "4 2"}}, ok: true, wantErr: true},
	}

	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			length, ok, err := tc.headers.ContentLength()
			assert.Equal(t, tc.ok, ok)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.length, length)
		})
	}
}
