package xmlrpc

import (
	"bufio"
	"encoding/base64"
	"encoding/xml"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\r\n"

type Encoder struct {
	bw *bufio.Writer
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{bw: bufio.NewWriter(w)}
}

func (e *Encoder) EncodeCall(call MethodCall) error {
	e.bw.WriteString(xmlHeader)
	e.bw.WriteString("<methodCall>")
	e.bw.WriteString("<methodName>")
	if err := xml.EscapeText(e.bw, []byte(call.Method)); err != nil {
		return errors.Wrap(err, "writing method name")
	}
	e.bw.WriteString("</methodName>")

	if err := e.encodeParams(call.Params); err != nil {
		return errors.Wrap(err, "encoding params")
	}

	e.bw.WriteString("</methodCall>\r\n")

	return e.flush()
}

func (e *Encoder) EncodeResponse(v Value) error {
	e.bw.WriteString(xmlHeader)
	e.bw.WriteString("<methodResponse>")

	if err := e.encodeParams([]Value{v}); err != nil {
		return errors.Wrap(err, "encoding params")
	}

	e.bw.WriteString("</methodResponse>\r\n")

	return e.flush()
}

func (e *Encoder) EncodeFault(f Fault) error {
	e.bw.WriteString(xmlHeader)
	e.bw.WriteString("<methodResponse><fault>")

	faultValue := Struct{
		{Name: "faultCode", Value: int32(f.Code)},
		{Name: "faultString", Value: f.String},
	}
	if err := e.encodeValue(faultValue); err != nil {
		return errors.Wrap(err, "encoding fault")
	}

	e.bw.WriteString("</fault></methodResponse>\r\n")

	return e.flush()
}

func (e *Encoder) flush() error {
	if err := e.bw.Flush(); err != nil {
		return errors.Wrap(err, "flushing document")
	}
	return nil
}

func (e *Encoder) encodeParams(params []Value) error {
	e.bw.WriteString("<params>")
	for idx, param := range params {
		e.bw.WriteString("<param>")
		if err := e.encodeValue(param); err != nil {
			return errors.Wrapf(err, "encoding param #%d", idx)
		}
		e.bw.WriteString("</param>")
	}
	e.bw.WriteString("</params>")

	return nil
}

func (e *Encoder) encodeValue(v Value) error {
	e.bw.WriteString("<value>")

	switch v := v.(type) {
	case nil:
		e.bw.WriteString("<nil/>")
	case int32:
		e.writeScalar("i4", strconv.FormatInt(int64(v), 10))
	case int64:
		e.writeScalar("i8", strconv.FormatInt(v, 10))
	case int:
		if v < math.MinInt32 || v > math.MaxInt32 {
			e.writeScalar("i8", strconv.Itoa(v))
		} else {
			e.writeScalar("i4", strconv.Itoa(v))
		}
	case bool:
		b := "0"
		if v {
			b = "1"
		}
		e.writeScalar("boolean", b)
	case string:
		e.bw.WriteString("<string>")
		if err := xml.EscapeText(e.bw, []byte(v)); err != nil {
			return errors.Wrap(err, "writing string")
		}
		e.bw.WriteString("</string>")
	case float64:
		e.writeScalar("double", strconv.FormatFloat(v, 'f', -1, 64))
	case time.Time:
		e.writeScalar("dateTime.iso8601", v.Format(dateTimeLayout))
	case []byte:
		e.writeScalar("base64", base64.StdEncoding.EncodeToString(v))
	case []Value:
		e.bw.WriteString("<array><data>")
		for idx, elem := range v {
			if err := e.encodeValue(elem); err != nil {
				return errors.Wrapf(err, "encoding array element #%d", idx)
			}
		}
		e.bw.WriteString("</data></array>")
	case Struct:
		e.bw.WriteString("<struct>")
		for _, m := range v {
			e.bw.WriteString("<member><name>")
			if err := xml.EscapeText(e.bw, []byte(m.Name)); err != nil {
				return errors.Wrap(err, "writing member name")
			}
			e.bw.WriteString("</name>")
			if err := e.encodeValue(m.Value); err != nil {
				return errors.Wrapf(err, "encoding member %q", m.Name)
			}
			e.bw.WriteString("</member>")
		}
		e.bw.WriteString("</struct>")
	default:
		return NewFault(TypeError, "unsupported value type %T", v)
	}

	e.bw.WriteString("</value>")

	return nil
}

// writeScalar writes text which needs no escaping.
func (e *Encoder) writeScalar(tag, text string) {
	e.bw.WriteString("<" + tag + ">")
	e.bw.WriteString(text)
	e.bw.WriteString("</" + tag + ">")
}
