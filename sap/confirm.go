package sap

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/wire"
)

// AssociateConfirm is MLME-ASSOCIATE.confirm.
type AssociateConfirm struct {
	AssocShortAddress addr.ShortAddress
	Status            Status
	SecurityInfo      SecurityInfo
}

// DisassociateConfirm is MLME-DISASSOCIATE.confirm.
type DisassociateConfirm struct {
	Status Status
}

// GetConfirm is MLME-GET.confirm.
type GetConfirm struct {
	Status       Status
	PibAttribute string
	Value        interface{}
}

// GtsConfirm is MLME-GTS.confirm.
type GtsConfirm struct {
	Characteristics GtsCharacteristics
	Status          Status
}

// ResetConfirm is MLME-RESET.confirm.
type ResetConfirm struct {
	Status Status
}

// RxEnableConfirm is MLME-RX-ENABLE.confirm.
type RxEnableConfirm struct {
	Status Status
}

// ScanConfirm is MLME-SCAN.confirm.
type ScanConfirm struct {
	Status             Status
	ScanType           ScanType
	ChannelPage        wire.ChannelPage
	UnscannedChannels  []uint8
	ResultListSize     uint8
	EnergyDetectList   []uint8
	PanDescriptorList  []PanDescriptor
}

// SetConfirm is MLME-SET.confirm.
type SetConfirm struct {
	Status       Status
	PibAttribute string
}

// StartConfirm is MLME-START.confirm.
type StartConfirm struct {
	Status Status
}

// SyncConfirm — the standard leaves MLME-SYNC without a confirm (tracking
// failures surface as MLME-SYNC-LOSS.indication instead); kept as an alias
// of () on the Go side via sap.Request/Confirm dispatch, modeled here so
// the SAP dispatcher has something to hand back the requester immediately.
type SyncConfirm struct{}

// PollConfirm is MLME-POLL.confirm.
type PollConfirm struct {
	Status Status
}

// DpsConfirm is MLME-DPS.confirm.
type DpsConfirm struct {
	Status Status
}

// SoundingConfirm is MLME-SOUNDING.confirm.
type SoundingConfirm struct {
	Status       Status
	SoundingList []SoundingData
}

// SoundingData is one UWB channel-sounding sample; kept for interface
// completeness even though no sounding data is ever produced.
type SoundingData struct {
	Time      int16
	Amplitude int16
}

// CalibrateConfirm is MLME-CALIBRATE.confirm.
type CalibrateConfirm struct {
	Status Status
}

// DataConfirm is MCPS-DATA.confirm.
type DataConfirm struct {
	MsduHandle uint8
	Status     Status
	Timestamp  int64
}

// PurgeConfirm is MCPS-PURGE.confirm.
type PurgeConfirm struct {
	MsduHandle uint8
	Status     Status
}
