package xmlrpc

// Value holds one of the following Go types:
//
//   - int32 (<i4>, <int>), int64 (<i8>); int is accepted on encoding.
//   - bool (<boolean>)
//   - string (<string> or untyped text)
//   - float64 (<double>)
//   - time.Time (<dateTime.iso8601>)
//   - []byte (<base64>)
//   - []Value (<array>)
//   - Struct (<struct>)
//   - nil (<nil/>)
type Value = any

// Reference: http://xmlrpc.com/spec.md#timedate
const dateTimeLayout = "20060102T15:04:05"

type Member struct {
	Name  string
	Value Value
}

// Struct keeps members in document order.
type Struct []Member

func (s Struct) Get(name string) (Value, bool) {
	for _, m := range s {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

type MethodCall struct {
	Method string
	Params []Value
}
