package sap

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/wire"
)

// AssociateIndication is MLME-ASSOCIATE.indication, delivered to a
// coordinator when an association request command arrives.
type AssociateIndication struct {
	DeviceAddress         addr.ExtendedAddress
	CapabilityInformation wire.CapabilityInformation
	SecurityInfo          SecurityInfo
}

// AssociateResponse answers an AssociateIndication.
type AssociateResponse struct {
	DeviceAddress     addr.ExtendedAddress
	AssocShortAddress addr.ShortAddress
	Status            wire.AssociationStatus
	SecurityInfo      SecurityInfo
}

// DisassociateIndication is MLME-DISASSOCIATE.indication.
type DisassociateIndication struct {
	DeviceAddress      addr.ExtendedAddress
	DisassociateReason wire.DisassociationReason
	SecurityInfo       SecurityInfo
}

// BeaconNotifyIndication is MLME-BEACON-NOTIFY.indication, delivered once
// per beacon received during a scan when macAutoRequest is false, and once
// per beacon received outside a scan while the coordinator's beacon is
// tracked.
type BeaconNotifyIndication struct {
	Bsn            uint8
	PanDescriptor  PanDescriptor
	PendingAddress wire.PendingAddress
	SduLength      uint8
	Sdu            []byte
}

// CommStatusIndication is MLME-COMM-STATUS.indication: reports an
// asynchronous failure (security, channel access) not tied to a pending
// confirm.
type CommStatusIndication struct {
	PanId        addr.PanId
	SrcAddr      addr.Address
	DstAddr      addr.Address
	Status       Status
	SecurityInfo SecurityInfo
}

// GtsIndication is MLME-GTS.indication.
type GtsIndication struct {
	DeviceAddress   addr.ShortAddress
	Characteristics GtsCharacteristics
	SecurityInfo    SecurityInfo
}

// OrphanIndication is MLME-ORPHAN.indication: a device believes it was
// previously associated and is seeking its coordinator.
type OrphanIndication struct {
	OrphanAddress addr.ExtendedAddress
	SecurityInfo  SecurityInfo
}

// OrphanResponse answers an OrphanIndication.
type OrphanResponse struct {
	OrphanAddress     addr.ExtendedAddress
	ShortAddress      addr.ShortAddress
	AssociatedMember  bool
	SecurityInfo      SecurityInfo
}

// SyncLossIndication is MLME-SYNC-LOSS.indication: the device lost track of
// its coordinator's beacon.
type SyncLossIndication struct {
	LossReason   Status
	PanId        addr.PanId
	ChannelNumber uint8
	ChannelPage  wire.ChannelPage
	SecurityInfo SecurityInfo
}

// DpsIndication is MLME-DPS.indication. Never emitted; kept for interface
// completeness (see DpsRequest).
type DpsIndication struct{}

// DataIndication is MCPS-DATA.indication: an inbound data frame.
type DataIndication struct {
	SrcAddr      addr.Address
	DstAddr      addr.Address
	MsduLength   uint16
	Msdu         []byte
	Lqi          uint8
	Timestamp    int64
	SecurityInfo SecurityInfo
}
