// Package addr implements the 802.15.4 addressing types: PAN id, short and
// extended addresses, and the tagged Address union that carries either a
// short or an extended address alongside its PAN id.
package addr

import "fmt"

// PanId identifies a personal area network. 0xFFFF is the broadcast PAN id.
type PanId uint16

// BroadcastPanId is the PAN-id broadcast value.
const BroadcastPanId PanId = 0xFFFF

func (p PanId) String() string {
	if p == BroadcastPanId {
		return "PAN<broadcast>"
	}
	return fmt.Sprintf("PAN<%d>", uint16(p))
}

// ShortAddress is a 16-bit device address allocated within a PAN.
type ShortAddress uint16

const (
	// NoShortAddress marks a device associated but without a short address.
	NoShortAddress ShortAddress = 0xFFFE
	// BroadcastShortAddress is the short-address broadcast value.
	BroadcastShortAddress ShortAddress = 0xFFFF
)

func (s ShortAddress) String() string {
	switch s {
	case NoShortAddress:
		return "Short<none>"
	case BroadcastShortAddress:
		return "Short<broadcast>"
	default:
		return fmt.Sprintf("Short<%d>", uint16(s))
	}
}

// ExtendedAddress is a 64-bit EUI-64 device address.
type ExtendedAddress uint64

func (e ExtendedAddress) String() string {
	return fmt.Sprintf("Ext<%016x>", uint64(e))
}

// Kind distinguishes the two Address variants.
type Kind uint8

const (
	KindShort Kind = iota
	KindExtended
)

// Address is the tagged union of Short(pan, short) | Extended(pan, ext).
// Exactly one of Short/Extended is meaningful, selected by Kind.
type Address struct {
	Kind     Kind
	Pan      PanId
	Short    ShortAddress
	Extended ExtendedAddress
}

// NewShort builds a short-addressed Address.
func NewShort(pan PanId, short ShortAddress) Address {
	return Address{Kind: KindShort, Pan: pan, Short: short}
}

// NewExtended builds an extended-addressed Address.
func NewExtended(pan PanId, ext ExtendedAddress) Address {
	return Address{Kind: KindExtended, Pan: pan, Extended: ext}
}

// IsShort reports whether the address carries a short address.
func (a Address) IsShort() bool { return a.Kind == KindShort }

// IsExtended reports whether the address carries an extended address.
func (a Address) IsExtended() bool { return a.Kind == KindExtended }

func (a Address) String() string {
	if a.IsShort() {
		return fmt.Sprintf("%s/%s", a.Pan, a.Short)
	}
	return fmt.Sprintf("%s/%s", a.Pan, a.Extended)
}

// Equal reports whether two addresses denote the same endpoint.
func (a Address) Equal(b Address) bool {
	if a.Pan != b.Pan || a.Kind != b.Kind {
		return false
	}
	if a.IsShort() {
		return a.Short == b.Short
	}
	return a.Extended == b.Extended
}
