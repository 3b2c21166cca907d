package wire

import "github.com/aethermac/lrwpan/addr"

// BeaconOrder is 0-14 or OnDemand (15).
type BeaconOrder uint8

const BeaconOrderOnDemand BeaconOrder = 15

// SuperframeOrder is 0-14 or Inactive (15).
type SuperframeOrder uint8

const SuperframeOrderInactive SuperframeOrder = 15

// SuperframeSpecification is the two-byte superframe specification field
// carried by beacons.
//
// Byte 0 = BO | (SO << 4); byte 1 = final_cap_slot | BLE<<4 | PAN_COORD<<6 |
// ASSOC_PERMIT<<7, matching spec.md §4.1's bit layout.
type SuperframeSpecification struct {
	BeaconOrder          BeaconOrder
	SuperframeOrder      SuperframeOrder
	FinalCapSlot         uint8
	BatteryLifeExtension bool
	PanCoordinator       bool
	AssociationPermit    bool
}

func (s SuperframeSpecification) Encode() [2]byte {
	var b [2]byte
	b[0] = byte(s.BeaconOrder&0x0f) | byte(s.SuperframeOrder&0x0f)<<4
	b[1] = s.FinalCapSlot & 0x0f
	if s.BatteryLifeExtension {
		b[1] |= 1 << 4
	}
	if s.PanCoordinator {
		b[1] |= 1 << 6
	}
	if s.AssociationPermit {
		b[1] |= 1 << 7
	}
	return b
}

func ParseSuperframeSpecification(b [2]byte) SuperframeSpecification {
	return SuperframeSpecification{
		BeaconOrder:          BeaconOrder(b[0] & 0x0f),
		SuperframeOrder:      SuperframeOrder((b[0] >> 4) & 0x0f),
		FinalCapSlot:         b[1] & 0x0f,
		BatteryLifeExtension: b[1]&(1<<4) != 0,
		PanCoordinator:       b[1]&(1<<6) != 0,
		AssociationPermit:    b[1]&(1<<7) != 0,
	}
}

// GtsDirection is the direction bit of a GTS descriptor.
type GtsDirection uint8

const (
	GtsDirectionTransmit GtsDirection = iota
	GtsDirectionReceive
)

// GtsDescriptor describes a single guaranteed time slot allocation.
type GtsDescriptor struct {
	ShortAddress addr.ShortAddress
	StartingSlot uint8
	Length       uint8
	Direction    GtsDirection
}

// GtsInfo is the beacon's GTS information block: up to 7 descriptors plus
// the permit bit that gates new GTS requests.
type GtsInfo struct {
	Permit      bool
	Descriptors []GtsDescriptor // len() <= 7
}

// MaxGtsDescriptors is the largest number of descriptors a beacon's GTS
// block can carry (count packs into 3 bits).
const MaxGtsDescriptors = 7

// PendingAddress lists the short and extended addresses for which the
// coordinator holds pending (indirect) data, each capped at 7 entries.
type PendingAddress struct {
	Short    []addr.ShortAddress
	Extended []addr.ExtendedAddress
}

// MaxPendingShort and MaxPendingExtended are the per-list caps: the header
// byte packs counts into 3 bits each (spec.md §4.1).
const (
	MaxPendingShort    = 7
	MaxPendingExtended = 7
)

// Beacon is the decoded content of a Beacon frame.
type Beacon struct {
	Superframe SuperframeSpecification
	Gts        GtsInfo
	Pending    PendingAddress
	Payload    []byte
}
