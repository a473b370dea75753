package sample

import (
	"fmt"
	"time"

	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
)

// Encoding describes how a value's payload should be interpreted.
type Encoding uint8

const (
	// EncodingBytes is an opaque byte payload.
	EncodingBytes Encoding = 0

	// EncodingText is a UTF-8 string payload.
	EncodingText Encoding = 1

	// EncodingJSON is a JSON document payload.
	EncodingJSON Encoding = 2
)

// String returns the MIME-style encoding name.
func (e Encoding) String() string {
	switch e {
	case EncodingBytes:
		return "application/octet-stream"
	case EncodingText:
		return "text/plain"
	case EncodingJSON:
		return "application/json"
	default:
		return "unknown"
	}
}

// Value is an immutable payload plus its encoding.
type Value struct {
	// Payload is the raw payload. Callers must not mutate it after
	// handing the value to a session operation.
	Payload []byte

	// Encoding describes the payload.
	Encoding Encoding
}

// NewValue builds an opaque byte value.
func NewValue(payload []byte) Value {
	return Value{Payload: payload, Encoding: EncodingBytes}
}

// StringValue builds a text value.
func StringValue(s string) Value {
	return Value{Payload: []byte(s), Encoding: EncodingText}
}

// JSONValue builds a JSON value from an already-encoded document.
func JSONValue(doc []byte) Value {
	return Value{Payload: doc, Encoding: EncodingJSON}
}

// String renders text payloads as-is and other encodings as a length.
func (v Value) String() string {
	switch v.Encoding {
	case EncodingText, EncodingJSON:
		return string(v.Payload)
	default:
		return fmt.Sprintf("<%d bytes>", len(v.Payload))
	}
}

// Kind tags a sample as a publication or a deletion.
type Kind uint8

const (
	// KindPut is a value publication.
	KindPut Kind = 0

	// KindDelete is a deletion marker.
	KindDelete Kind = 1
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPut:
		return "PUT"
	case KindDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Valid reports whether the discriminant is defined.
func (k Kind) Valid() bool { return k <= KindDelete }

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "PUT", "put":
		return KindPut, nil
	case "DELETE", "delete":
		return KindDelete, nil
	default:
		return 0, fmt.Errorf("unknown sample kind %q", s)
	}
}

// Sample is one data unit delivered to a subscriber: a value bound to
// a concrete key, tagged put or delete. Samples are immutable once
// produced.
type Sample struct {
	// KeyExpr is the concrete key the sample was published on.
	KeyExpr keyexpr.KeyExpr

	// Value is the payload. Empty for deletion markers.
	Value Value

	// Kind tags the sample as put or delete.
	Kind Kind

	// Timestamp is when the publishing session submitted the sample.
	Timestamp time.Time

	// Source identifies the publishing peer.
	Source proto.PeerID
}

// Reply is one response to a distributed query. A query may yield
// zero or many replies, delivered asynchronously.
type Reply struct {
	// Sample carries the replied value when Err is empty.
	Sample Sample

	// Replier identifies the answering peer.
	Replier proto.PeerID

	// Err carries an application-level error reply, empty on success.
	Err string
}

// OK reports whether the reply carries a sample rather than an error.
func (r Reply) OK() bool { return r.Err == "" }
