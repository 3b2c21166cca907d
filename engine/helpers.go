package engine

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/pib"
)

// ownAddress picks this device's own address for frames it originates:
// its short address once assigned one, its extended address otherwise.
func ownAddress(macPib *pib.MacPib) addr.Address {
	if macPib.ShortAddress != addr.BroadcastShortAddress && macPib.ShortAddress != addr.NoShortAddress {
		return addr.NewShort(macPib.PanId, macPib.ShortAddress)
	}
	return addr.NewExtended(macPib.PanId, macPib.ExtendedAddress)
}

func ownAddrPtr(macPib *pib.MacPib) *addr.Address {
	a := ownAddress(macPib)
	return &a
}

func addrPtr(a addr.Address) *addr.Address { return &a }
