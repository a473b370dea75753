package sample

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/zlink-protocol/zlink-go/pkg/keyexpr"
	"github.com/zlink-protocol/zlink-go/pkg/proto"
)

// encMode is the CBOR encoder mode for samples crossing an engine
// boundary. Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode, lenient for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnixMicro,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// wireSample is the CBOR wire form of a Sample.
type wireSample struct {
	KeyExpr   string    `cbor:"1,keyasint"`
	Payload   []byte    `cbor:"2,keyasint,omitempty"`
	Encoding  uint8     `cbor:"3,keyasint,omitempty"`
	Kind      uint8     `cbor:"4,keyasint,omitempty"`
	Timestamp time.Time `cbor:"5,keyasint"`
	Source    []byte    `cbor:"6,keyasint"`
}

// EncodeSample encodes a sample to its CBOR wire form.
func EncodeSample(s Sample) ([]byte, error) {
	return encMode.Marshal(wireSample{
		KeyExpr:   s.KeyExpr.String(),
		Payload:   s.Value.Payload,
		Encoding:  uint8(s.Value.Encoding),
		Kind:      uint8(s.Kind),
		Timestamp: s.Timestamp,
		Source:    s.Source[:],
	})
}

// DecodeSample decodes a sample from its CBOR wire form.
func DecodeSample(data []byte) (Sample, error) {
	var w wireSample
	if err := decMode.Unmarshal(data, &w); err != nil {
		return Sample{}, fmt.Errorf("failed to decode sample: %w", err)
	}
	k, err := keyexpr.New(w.KeyExpr)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid key expression in sample: %w", err)
	}
	var src proto.PeerID
	if len(w.Source) != proto.PeerIDLen {
		return Sample{}, fmt.Errorf("%w: source in sample", proto.ErrBadPeerID)
	}
	copy(src[:], w.Source)
	return Sample{
		KeyExpr:   k,
		Value:     Value{Payload: w.Payload, Encoding: Encoding(w.Encoding)},
		Kind:      Kind(w.Kind),
		Timestamp: w.Timestamp,
		Source:    src,
	}, nil
}
