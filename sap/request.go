package sap

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/wire"
)

// ScanType selects the channel scan procedure MLME-SCAN.request runs.
type ScanType uint8

const (
	ScanTypeEnergyDetect ScanType = iota
	ScanTypeActive
	ScanTypePassive
	ScanTypeOrphan
)

// AddressMode selects how an address parameter should be interpreted: by
// the standard's NoAddress/Short/Extended addressing-mode values.
type AddressMode uint8

const (
	AddressModeNone AddressMode = iota
	AddressModeShort
	AddressModeExtended
)

// GtsCharacteristics describes a requested GTS: its length, its direction
// (wire.GtsDirection) and whether it is allocated or deallocated.
type GtsCharacteristics struct {
	Length      uint8
	Direction   wire.GtsDirection
	Allocate    bool // characteristics type: true = allocate, false = deallocate
}

// AssociateRequest is MLME-ASSOCIATE.request.
type AssociateRequest struct {
	ChannelNumber         uint8
	ChannelPage           wire.ChannelPage
	CoordAddress          addr.Address
	CapabilityInformation wire.CapabilityInformation
	SecurityInfo          SecurityInfo
}

// DisassociateRequest is MLME-DISASSOCIATE.request.
type DisassociateRequest struct {
	DeviceAddress       addr.Address
	DisassociateReason  wire.DisassociationReason
	TxIndirect          bool
	SecurityInfo        SecurityInfo
}

// GetRequest is MLME-GET.request: pib_attribute names a phy* or mac*
// attribute understood by pib.PhyPib/pib.MacPib.
type GetRequest struct {
	PibAttribute string
}

// GtsRequest is MLME-GTS.request.
type GtsRequest struct {
	Characteristics GtsCharacteristics
	SecurityInfo    SecurityInfo
}

// ResetRequest is MLME-RESET.request.
type ResetRequest struct {
	SetDefaultPib bool
}

// RxEnableRequest is MLME-RX-ENABLE.request.
type RxEnableRequest struct {
	DeferPermit  bool
	RxOnTime     uint32
	RxOnDuration uint32
}

// ScanRequest is MLME-SCAN.request.
type ScanRequest struct {
	ScanType     ScanType
	ScanChannels []uint8
	ScanDuration uint8
	ChannelPage  wire.ChannelPage
	SecurityInfo SecurityInfo
}

// SetRequest is MLME-SET.request.
type SetRequest struct {
	PibAttribute string
	Value        interface{}
}

// StartRequest is MLME-START.request.
type StartRequest struct {
	PanId                  addr.PanId
	ChannelNumber          uint8
	ChannelPage            wire.ChannelPage
	StartTime              uint32
	BeaconOrder            wire.BeaconOrder
	SuperframeOrder        wire.SuperframeOrder
	PanCoordinator         bool
	BatteryLifeExtension   bool
	CoordRealignment       bool
	CoordRealignSecurity   SecurityInfo
	BeaconSecurity         SecurityInfo
}

// SyncRequest is MLME-SYNC.request: track the beacon of the coordinator
// through which the device is associated.
type SyncRequest struct {
	ChannelNumber uint8
	ChannelPage   wire.ChannelPage
	TrackBeacon   bool
}

// PollRequest is MLME-POLL.request: solicit data from the coordinator.
type PollRequest struct {
	CoordAddress addr.Address
	SecurityInfo SecurityInfo
}

// DpsRequest is MLME-DPS.request (dynamic preamble selection). Modeled but
// always answered with StatusDpsNotSupported since UWB ranging is outside
// this implementation's scope.
type DpsRequest struct {
	SecurityInfo SecurityInfo
}

// SoundingRequest is MLME-SOUNDING.request, answered with
// StatusSoundingNotSupported for the same reason as DpsRequest.
type SoundingRequest struct{}

// CalibrateRequest is MLME-CALIBRATE.request: requests ranging counter
// calibration, again UWB-only and unsupported here.
type CalibrateRequest struct{}

// DataRequest is MCPS-DATA.request.
type DataRequest struct {
	SrcAddrMode  AddressMode
	DstPanId     addr.PanId
	DstAddr      *addr.Address
	Msdu         []byte
	MsduHandle   uint8
	AckTx        bool
	GtsTx        bool
	IndirectTx   bool
	SecurityInfo SecurityInfo
}

// PurgeRequest is MCPS-PURGE.request: cancel a previously queued indirect
// transaction by handle.
type PurgeRequest struct {
	MsduHandle uint8
}
