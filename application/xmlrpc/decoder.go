package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
)

type xmlMethodCall struct {
	XMLName    xml.Name   `xml:"methodCall"`
	MethodName string     `xml:"methodName"`
	Params     []xmlParam `xml:"params>param"`
}

type xmlMethodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []xmlParam `xml:"params>param"`
	Fault   *xmlParam  `xml:"fault"`
}

type xmlParam struct {
	Value xmlValue `xml:"value"`
}

type xmlValue struct {
	Int      *string    `xml:"int"`
	I4       *string    `xml:"i4"`
	I8       *string    `xml:"i8"`
	Boolean  *string    `xml:"boolean"`
	String   *string    `xml:"string"`
	Double   *string    `xml:"double"`
	DateTime *string    `xml:"dateTime.iso8601"`
	Base64   *string    `xml:"base64"`
	Struct   *xmlStruct `xml:"struct"`
	Array    *xmlArray  `xml:"array"`
	Nil      *struct{}  `xml:"nil"`

	// Text is used when the value has no type element.
	Text string `xml:",chardata"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

type Decoder struct {
	r io.Reader
}

func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

func (d *Decoder) decode(v any) error {
	dec := xml.NewDecoder(d.r)
	if err := dec.Decode(v); err != nil {
		return NewFault(ParseError, "malformed XML-RPC document: %s", err)
	}
	return nil
}

func (d *Decoder) DecodeCall() (MethodCall, error) {
	var raw xmlMethodCall
	if err := d.decode(&raw); err != nil {
		return MethodCall{}, err
	}

	if raw.MethodName == "" {
		return MethodCall{}, NewFault(ParseError, "method name is empty")
	}

	params, err := convertParams(raw.Params)
	if err != nil {
		return MethodCall{}, err
	}

	return MethodCall{Method: raw.MethodName, Params: params}, nil
}

// DecodeResponse returns the single result value of a response.
// A fault response is returned as a *[Fault] error.
func (d *Decoder) DecodeResponse() (Value, error) {
	var raw xmlMethodResponse
	if err := d.decode(&raw); err != nil {
		return nil, err
	}

	if raw.Fault != nil {
		return nil, convertFault(raw.Fault.Value)
	}

	if len(raw.Params) != 1 {
		return nil, NewFault(ParseError, "response has %d params, expected 1", len(raw.Params))
	}

	return convertValue(raw.Params[0].Value)
}

func convertParams(raw []xmlParam) ([]Value, error) {
	params := make([]Value, 0, len(raw))
	for idx, p := range raw {
		v, err := convertValue(p.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "param #%d", idx)
		}
		params = append(params, v)
	}
	return params, nil
}

// convertFault always returns a non-nil fault.
func convertFault(raw xmlValue) *Fault {
	v, err := convertValue(raw)
	if err != nil {
		return NewFault(ParseError, "malformed fault: %s", err)
	}

	s, ok := v.(Struct)
	if !ok {
		return NewFault(ParseError, "fault is not a struct")
	}

	code, ok := s.Get("faultCode")
	if !ok {
		return NewFault(ParseError, "fault has no faultCode")
	}
	str, ok := s.Get("faultString")
	if !ok {
		return NewFault(ParseError, "fault has no faultString")
	}

	fault := &Fault{}
	switch code := code.(type) {
	case int32:
		fault.Code = int(code)
	case int64:
		fault.Code = int(code)
	default:
		return NewFault(ParseError, "faultCode is %T, not an integer", code)
	}
	if fault.String, ok = str.(string); !ok {
		return NewFault(ParseError, "faultString is %T, not a string", str)
	}

	return fault
}

func convertValue(raw xmlValue) (Value, error) {
	switch {
	case raw.Int != nil:
		return parseInt32(*raw.Int)
	case raw.I4 != nil:
		return parseInt32(*raw.I4)
	case raw.I8 != nil:
		n, err := strconv.ParseInt(strings.TrimSpace(*raw.I8), 10, 64)
		if err != nil {
			return nil, NewFault(ParseError, "malformed i8: %q", *raw.I8)
		}
		return n, nil
	case raw.Boolean != nil:
		switch strings.TrimSpace(*raw.Boolean) {
		case "0":
			return false, nil
		case "1":
			return true, nil
		}
		return nil, NewFault(ParseError, "malformed boolean: %q", *raw.Boolean)
	case raw.String != nil:
		return checkUTF8(*raw.String)
	case raw.Double != nil:
		f, err := strconv.ParseFloat(strings.TrimSpace(*raw.Double), 64)
		if err != nil {
			return nil, NewFault(ParseError, "malformed double: %q", *raw.Double)
		}
		return f, nil
	case raw.DateTime != nil:
		t, err := time.Parse(dateTimeLayout, strings.TrimSpace(*raw.DateTime))
		if err != nil {
			return nil, NewFault(ParseError, "malformed dateTime.iso8601: %q", *raw.DateTime)
		}
		return t, nil
	case raw.Base64 != nil:
		b, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(*raw.Base64), ""))
		if err != nil {
			return nil, NewFault(ParseError, "malformed base64: %s", err)
		}
		return b, nil
	case raw.Struct != nil:
		s := make(Struct, 0, len(raw.Struct.Members))
		for _, m := range raw.Struct.Members {
			v, err := convertValue(m.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "member %q", m.Name)
			}
			s = append(s, Member{Name: m.Name, Value: v})
		}
		return s, nil
	case raw.Array != nil:
		arr := make([]Value, 0, len(raw.Array.Values))
		for idx, elem := range raw.Array.Values {
			v, err := convertValue(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "array element #%d", idx)
			}
			arr = append(arr, v)
		}
		return arr, nil
	case raw.Nil != nil:
		return nil, nil
	}

	// No type element means string.
	// Reference: http://xmlrpc.com/spec.md#scalar-values
	return checkUTF8(raw.Text)
}

func parseInt32(s string) (Value, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return nil, NewFault(ParseError, "malformed int: %q", s)
	}
	return int32(n), nil
}

func checkUTF8(s string) (Value, error) {
	if !utf8.ValidString(s) {
		return nil, NewFault(InvalidUTF8Error, "string is not valid UTF-8")
	}
	return s, nil
}
