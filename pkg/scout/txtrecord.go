package scout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zlink-protocol/zlink-go/pkg/proto"
)

// Service constants for mDNS.
const (
	// ServiceType is the mDNS service type zlink peers announce.
	ServiceType = "_zlink._udp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the port announced when the configuration does
	// not set one.
	DefaultPort = 7447
)

// TXT record keys.
const (
	// TXTKeyID is the peer identifier, in hex.
	TXTKeyID = "id"

	// TXTKeyWhatAmI is the peer role name.
	TXTKeyWhatAmI = "wai"

	// TXTKeyLocators is the comma-separated locator list.
	TXTKeyLocators = "loc"
)

// TXT record errors.
var (
	ErrInvalidTXTRecord = errors.New("invalid zlink TXT record")
)

// EncodeHelloTXT encodes a Hello into TXT record strings.
func EncodeHelloTXT(h proto.Hello) []string {
	txt := []string{
		fmt.Sprintf("%s=%s", TXTKeyID, h.ID),
		fmt.Sprintf("%s=%s", TXTKeyWhatAmI, h.WhatAmI),
	}
	if len(h.Locators) > 0 {
		txt = append(txt, fmt.Sprintf("%s=%s", TXTKeyLocators, strings.Join(h.Locators, ",")))
	}
	return txt
}

// DecodeHelloTXT parses TXT record strings back into a Hello.
func DecodeHelloTXT(txt []string) (proto.Hello, error) {
	fields := make(map[string]string, len(txt))
	for _, s := range txt {
		k, v, ok := strings.Cut(s, "=")
		if ok {
			fields[k] = v
		}
	}

	idText, ok := fields[TXTKeyID]
	if !ok {
		return proto.Hello{}, fmt.Errorf("%w: missing %q", ErrInvalidTXTRecord, TXTKeyID)
	}
	id, err := proto.ParsePeerID(idText)
	if err != nil {
		return proto.Hello{}, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}

	waiText, ok := fields[TXTKeyWhatAmI]
	if !ok {
		return proto.Hello{}, fmt.Errorf("%w: missing %q", ErrInvalidTXTRecord, TXTKeyWhatAmI)
	}
	wai, err := proto.ParseWhatAmI(waiText)
	if err != nil {
		return proto.Hello{}, fmt.Errorf("%w: %v", ErrInvalidTXTRecord, err)
	}

	var locators []string
	if loc := fields[TXTKeyLocators]; loc != "" {
		locators = strings.Split(loc, ",")
	}

	return proto.Hello{ID: id, WhatAmI: wai, Locators: locators}, nil
}
