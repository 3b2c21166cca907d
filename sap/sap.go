package sap

// RequestKind tags which MLME/MCPS primitive a Request carries.
type RequestKind uint8

const (
	RequestAssociate RequestKind = iota
	RequestDisassociate
	RequestGet
	RequestGts
	RequestReset
	RequestRxEnable
	RequestScan
	RequestSet
	RequestStart
	RequestSync
	RequestPoll
	RequestDps
	RequestSounding
	RequestCalibrate
	RequestData
	RequestPurge
)

// Request is the tagged union of every request the engine's commander
// accepts; exactly one of the typed fields is meaningful, selected by Kind.
type Request struct {
	Kind RequestKind

	Associate    AssociateRequest
	Disassociate DisassociateRequest
	Get          GetRequest
	Gts          GtsRequest
	Reset        ResetRequest
	RxEnable     RxEnableRequest
	Scan         ScanRequest
	Set          SetRequest
	Start        StartRequest
	Sync         SyncRequest
	Poll         PollRequest
	Dps          DpsRequest
	Sounding     SoundingRequest
	Calibrate    CalibrateRequest
	Data         DataRequest
	Purge        PurgeRequest
}

// Confirm is the tagged union of answers to a Request, tagged the same way.
type Confirm struct {
	Kind RequestKind

	Associate    AssociateConfirm
	Disassociate DisassociateConfirm
	Get          GetConfirm
	Gts          GtsConfirm
	Reset        ResetConfirm
	RxEnable     RxEnableConfirm
	Scan         ScanConfirm
	Set          SetConfirm
	Start        StartConfirm
	Sync         SyncConfirm
	Poll         PollConfirm
	Dps          DpsConfirm
	Sounding     SoundingConfirm
	Calibrate    CalibrateConfirm
	Data         DataConfirm
	Purge        PurgeConfirm
}

// IndicationKind tags which MLME indication an Indication carries.
type IndicationKind uint8

const (
	IndicationAssociate IndicationKind = iota
	IndicationDisassociate
	IndicationBeaconNotify
	IndicationCommStatus
	IndicationGts
	IndicationOrphan
	IndicationSyncLoss
	IndicationDps
	IndicationData
)

// Indication is the tagged union of events the engine delivers upward
// without having been asked for them.
type Indication struct {
	Kind IndicationKind

	Associate    AssociateIndication
	Disassociate DisassociateIndication
	BeaconNotify BeaconNotifyIndication
	CommStatus   CommStatusIndication
	Gts          GtsIndication
	Orphan       OrphanIndication
	SyncLoss     SyncLossIndication
	Dps          DpsIndication
	Data         DataIndication
}

// Response answers an Indication that expects one back (association,
// orphan); ResponseNone is used for indications that don't.
type ResponseKind uint8

const (
	ResponseNone ResponseKind = iota
	ResponseAssociate
	ResponseOrphan
)

type Response struct {
	Kind ResponseKind

	Associate AssociateResponse
	Orphan    OrphanResponse
}
