package sap

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/wire"
)

// PanDescriptor summarizes one PAN discovered during an active or passive
// scan, built from a received beacon.
type PanDescriptor struct {
	CoordAddress   addr.Address
	ChannelNumber  uint8
	ChannelPage    wire.ChannelPage
	SuperframeSpec wire.SuperframeSpecification
	GtsPermit      bool
	LinkQuality    uint8
	Timestamp      lrwpantime.Instant
	SecurityInfo   SecurityInfo
}
