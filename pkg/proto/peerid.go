package proto

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// PeerID errors.
var (
	ErrBadPeerID = errors.New("invalid peer ID")
)

// PeerIDLen is the peer identifier length in bytes.
const PeerIDLen = 16

// PeerID uniquely identifies a peer of the overlay network.
// It is opaque to callers; the textual form is lowercase hex.
type PeerID [PeerIDLen]byte

// RandomPeerID generates a fresh random peer identifier.
func RandomPeerID() PeerID {
	return PeerID(uuid.New())
}

// DerivePeerID deterministically derives a peer identifier from an
// identity seed, so a process keeps a stable ID across restarts when
// its configuration carries one.
func DerivePeerID(seed string) PeerID {
	sum := blake2b.Sum256([]byte("zlink-peer-id:" + seed))
	var id PeerID
	copy(id[:], sum[:PeerIDLen])
	return id
}

// ParsePeerID parses the hex textual form.
func ParsePeerID(s string) (PeerID, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return PeerID{}, fmt.Errorf("%w: %v", ErrBadPeerID, err)
	}
	if len(raw) != PeerIDLen {
		return PeerID{}, fmt.Errorf("%w: got %d bytes, want %d", ErrBadPeerID, len(raw), PeerIDLen)
	}
	var id PeerID
	copy(id[:], raw)
	return id, nil
}

// String returns the lowercase hex form.
func (id PeerID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether the ID is the all-zero value.
func (id PeerID) IsZero() bool {
	return id == PeerID{}
}
