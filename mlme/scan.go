package mlme

import (
	"context"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
)

// Scan implements MLME-SCAN.request (5.1.2.1): starts the channel walk
// tracked by state.CurrentScan and answers immediately only to reject a
// request (a read failure, or a scan already running). A successful
// request answers later, when the scan finishes or is aborted, via
// respond — driven by the engine calling CurrentScan.NextAction /
// RegisterActionExecuted / RegisterActionFailed / RegisterReceivedBeacon
// / Finish as it walks the requested channels.
func Scan(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, req sap.ScanRequest, respond func(sap.ScanConfirm)) {
	if state.CurrentScan != nil {
		respond(sap.ScanConfirm{
			Status:      sap.StatusScanInProgress,
			ScanType:    req.ScanType,
			ChannelPage: req.ChannelPage,
		})
		return
	}

	now, err := tx.Instant(ctx)
	if err != nil {
		respond(sap.ScanConfirm{
			Status:      sap.StatusPhyError,
			ScanType:    req.ScanType,
			ChannelPage: req.ChannelPage,
		})
		return
	}

	originalPanId := macPib.PanId
	state.CurrentScan = mac.NewScanProcess(req, tx.SymbolPeriod(), now, originalPanId, func(confirm sap.ScanConfirm) {
		state.CurrentScan = nil
		respond(confirm)
	})

	if req.ScanType == sap.ScanTypeActive || req.ScanType == sap.ScanTypePassive {
		macPib.PanId = addr.BroadcastPanId
	}
}
