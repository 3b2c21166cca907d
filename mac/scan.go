package mac

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
)

// ScanAction is what the scan process wants the engine to do next.
type ScanAction struct {
	Finish  bool
	Channel uint8
	Page    wire.ChannelPage
	Type    sap.ScanType
}

// ScanProcess drives a single in-flight MLME-SCAN.request: it walks the
// requested channel list one at a time, waiting
// aBaseSuperframeDuration * (2^ScanDuration + 1) symbols on each before
// moving to the next, and accumulates results until every
// channel has been visited (or, for an active/passive scan, the descriptor
// list fills up).
type ScanProcess struct {
	Request  sap.ScanRequest
	Respond  func(sap.ScanConfirm)

	symbolPeriod lrwpantime.Duration
	endTime      lrwpantime.Instant
	results      sap.ScanConfirm

	originalPanId   addr.PanId
	skippedChannels int
	beaconsFound    bool
}

// NewScanProcess starts tracking a scan request. For active/passive
// scans the caller's macPanId should first be replaced with the broadcast
// PAN id; originalPanId is what gets restored when the scan ends.
func NewScanProcess(req sap.ScanRequest, symbolPeriod lrwpantime.Duration, now lrwpantime.Instant, originalPanId addr.PanId, respond func(sap.ScanConfirm)) *ScanProcess {
	return &ScanProcess{
		Request:      req,
		Respond:      respond,
		symbolPeriod: symbolPeriod,
		endTime:      now,
		results: sap.ScanConfirm{
			Status:            sap.StatusSuccess,
			ScanType:          req.ScanType,
			ChannelPage:       req.ChannelPage,
			UnscannedChannels: append([]uint8(nil), req.ScanChannels...),
		},
		originalPanId: originalPanId,
	}
}

// NextWaitDuration is how long the engine should wait before the next
// NextAction becomes due.
func (p *ScanProcess) NextWaitDuration(now lrwpantime.Instant) lrwpantime.Duration {
	return p.endTime.Sub(now)
}

// NextAction reports what should happen once the wait above has elapsed.
func (p *ScanProcess) NextAction() ScanAction {
	if p.skippedChannels < len(p.results.UnscannedChannels) {
		return ScanAction{
			Channel: p.results.UnscannedChannels[p.skippedChannels],
			Page:    p.results.ChannelPage,
			Type:    p.results.ScanType,
		}
	}
	return ScanAction{Finish: true}
}

// scanDuration is aBase * (2^scanDuration + 1) symbols, per 5.1.2.1.
func (p *ScanProcess) scanDuration() lrwpantime.Duration {
	sd := p.Request.ScanDuration
	if sd > 14 {
		sd = 14
	}
	symbols := uint32(wire.BaseSuperframeDuration) * ((uint32(1) << sd) + 1)
	return lrwpantime.Symbols(symbols, p.symbolPeriod)
}

// RegisterActionExecuted advances past a successfully started channel scan
// (or notes the scan is finished) and reschedules endTime.
func (p *ScanProcess) RegisterActionExecuted(action ScanAction) {
	p.endTime = p.endTime.Add(p.scanDuration())
	if !action.Finish {
		p.results.UnscannedChannels = removeAt(p.results.UnscannedChannels, p.skippedChannels)
	}
}

// RegisterActionFailed records that a channel could not be scanned (e.g.
// the PHY could not retune) and skips to the next one.
func (p *ScanProcess) RegisterActionFailed(now lrwpantime.Instant) {
	p.skippedChannels++
	p.endTime = now
}

// RegisterReceivedBeacon folds a received beacon into the scan results (for
// macAutoRequest scans) or reports it should be surfaced as a
// BeaconNotifyIndication instead (for non-auto-request scans).
//
// autoRequest selects which of the two the caller should do; when true the
// descriptor is appended to results (unless it duplicates one already
// there) and this returns false unless the result list is now full
// (full=true). When false the caller is
// responsible for building and sending the BeaconNotifyIndication itself;
// this method only marks that a beacon was seen.
func (p *ScanProcess) RegisterReceivedBeacon(descr sap.PanDescriptor, autoRequest bool) (full bool) {
	p.beaconsFound = true

	if !autoRequest {
		return false
	}

	for _, existing := range p.results.PanDescriptorList {
		if existing.CoordAddress.Equal(descr.CoordAddress) && existing.ChannelNumber == descr.ChannelNumber {
			return false
		}
	}

	p.results.PanDescriptorList = append(p.results.PanDescriptorList, descr)
	p.results.ResultListSize++

	if len(p.results.PanDescriptorList) >= maxPanDescriptors {
		p.skippedChannels = len(p.results.UnscannedChannels)
		p.endTime = lrwpantime.Zero
		p.results.Status = sap.StatusLimitReached
		return true
	}
	return false
}

// RegisterRealignmentReceived marks an orphan scan as having heard back
// from its coordinator, so Finish's no-reply heuristic reports success
// instead of NoBeacon the same way a beacon would for an active/passive
// scan.
func (p *ScanProcess) RegisterRealignmentReceived() {
	p.beaconsFound = true
}

// RegisterEnergyReading folds one channel's energy sample into the scan
// results, for an energy-detect scan (5.1.2.1).
func (p *ScanProcess) RegisterEnergyReading(level uint8) {
	p.results.EnergyDetectList = append(p.results.EnergyDetectList, level)
}

// maxPanDescriptors bounds the scan result list the same way the beacon
// pending-address lists are bounded: a plain, generous cap rather than an
// allocation-free fixed array.
const maxPanDescriptors = 16

// Finish completes the scan, restoring macPanId and answering the original
// MLME-SCAN.request. status overrides a clean Success completion (used by
// an aborting caller); pass sap.StatusSuccess for a normal finish.
func (p *ScanProcess) Finish(setPanId func(addr.PanId), status sap.Status) {
	setPanId(p.originalPanId)
	if status != sap.StatusSuccess {
		p.results.Status = status
	}

	if p.results.Status == sap.StatusSuccess &&
		!sameChannels(p.results.UnscannedChannels, p.Request.ScanChannels) &&
		!p.beaconsFound {
		p.results.Status = sap.StatusNoBeacon
	}

	p.Respond(p.results)
}

func removeAt(s []uint8, i int) []uint8 {
	if i < 0 || i >= len(s) {
		return s
	}
	out := make([]uint8, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func sameChannels(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
