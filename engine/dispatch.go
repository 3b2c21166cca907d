package engine

import (
	"context"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/mlme"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
)

// handleRequest dispatches one SAP request to its mlme handler and answers
// it through the commander's mailbox. Associate, Poll, Scan and Data hand
// the mlme handler a respond closure instead, which may answer later:
// Associate and Poll through a scheduled data request (see
// handleDeadline/deadlineIndependentDataRequest), Scan when the scan
// finishes, and an indirect Data send when its transaction is sent or
// expires.
func (e *Engine) handleRequest(ctx context.Context, id uint64, req sap.Request) {
	respond := func(kind sap.RequestKind, fill func(*sap.Confirm)) {
		c := sap.Confirm{Kind: kind}
		fill(&c)
		e.requests.Respond(id, c)
	}

	switch req.Kind {
	case sap.RequestAssociate:
		mlme.Associate(ctx, e.tx, &e.macPib, e.state, req.Associate, func(c sap.AssociateConfirm) {
			e.requests.Respond(id, sap.Confirm{Kind: sap.RequestAssociate, Associate: c})
		})

	case sap.RequestDisassociate:
		respond(sap.RequestDisassociate, func(c *sap.Confirm) {
			c.Disassociate = e.disassociate(ctx, req.Disassociate)
		})

	case sap.RequestGet:
		respond(sap.RequestGet, func(c *sap.Confirm) {
			c.Get = mlme.Get(e.tx.PhyPib(), &e.macPib, req.Get)
		})

	case sap.RequestGts:
		respond(sap.RequestGts, func(c *sap.Confirm) {
			c.Gts = sap.GtsConfirm{Characteristics: req.Gts.Characteristics, Status: sap.StatusDenied}
		})

	case sap.RequestReset:
		respond(sap.RequestReset, func(c *sap.Confirm) {
			c.Reset = mlme.Reset(ctx, e.tx, &e.macPib, e.state, e.rng, req.Reset)
		})

	case sap.RequestRxEnable:
		respond(sap.RequestRxEnable, func(c *sap.Confirm) {
			c.RxEnable = e.rxEnable(ctx, req.RxEnable)
		})

	case sap.RequestScan:
		mlme.Scan(ctx, e.tx, &e.macPib, e.state, req.Scan, func(c sap.ScanConfirm) {
			e.requests.Respond(id, sap.Confirm{Kind: sap.RequestScan, Scan: c})
		})

	case sap.RequestSet:
		respond(sap.RequestSet, func(c *sap.Confirm) {
			c.Set = mlme.Set(e.tx.PhyPib(), &e.macPib, req.Set)
		})

	case sap.RequestStart:
		respond(sap.RequestStart, func(c *sap.Confirm) {
			c.Start = mlme.Start(ctx, e.tx, &e.macPib, e.state, req.Start)
			if c.Start.Status == sap.StatusSuccess {
				e.armBeaconSchedule(ctx, req.Start)
			}
		})

	case sap.RequestSync:
		e.state.CoordinatorBeaconTracked = req.Sync.TrackBeacon
		respond(sap.RequestSync, func(c *sap.Confirm) {})

	case sap.RequestPoll:
		mlme.Poll(ctx, e.tx, &e.macPib, e.state, req.Poll, func(c sap.PollConfirm) {
			e.requests.Respond(id, sap.Confirm{Kind: sap.RequestPoll, Poll: c})
		})

	case sap.RequestDps:
		respond(sap.RequestDps, func(c *sap.Confirm) { c.Dps = sap.DpsConfirm{Status: sap.StatusDpsNotSupported} })

	case sap.RequestSounding:
		respond(sap.RequestSounding, func(c *sap.Confirm) {
			c.Sounding = sap.SoundingConfirm{Status: sap.StatusSoundingNotSupported}
		})

	case sap.RequestCalibrate:
		respond(sap.RequestCalibrate, func(c *sap.Confirm) {
			c.Calibrate = sap.CalibrateConfirm{Status: sap.StatusRangingNotSupported}
		})

	case sap.RequestData:
		mlme.Data(ctx, e.tx, &e.macPib, e.state, req.Data, func(c sap.DataConfirm) {
			e.requests.Respond(id, sap.Confirm{Kind: sap.RequestData, Data: c})
		})

	case sap.RequestPurge:
		respond(sap.RequestPurge, func(c *sap.Confirm) {
			c.Purge = mlme.Purge(e.state, req.Purge)
		})
	}
}

// disassociate implements MLME-DISASSOCIATE.request (5.1.4.1): sends (or
// queues indirectly) a disassociation notification to the named device and
// drops the local association state.
func (e *Engine) disassociate(ctx context.Context, req sap.DisassociateRequest) sap.DisassociateConfirm {
	e.macPib.Dsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         e.macPib.Dsn,
			HasSeq:      true,
			Flags:       wire.Flags{AckRequest: true},
			Destination: &req.DeviceAddress,
			Source:      ownAddrPtr(&e.macPib),
		},
		Content: wire.Content{
			Kind:    wire.ContentCommand,
			Command: &wire.Command{Kind: wire.CmdDisassociationNotification, DisassociationReason: req.DisassociateReason},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		return sap.DisassociateConfirm{Status: sap.StatusInvalidParameter}
	}

	if req.TxIndirect {
		e.state.Pending.Add(req.DeviceAddress, 0, append([]byte(nil), buf[:n]...), 0, func(bool) {})
	} else if _, err := e.tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle}); err != nil {
		return sap.DisassociateConfirm{Status: sap.StatusPhyError}
	}

	e.macPib.PanId = addr.BroadcastPanId
	e.macPib.ShortAddress = addr.BroadcastShortAddress
	e.macPib.CoordShortAddress = addr.BroadcastShortAddress
	e.macPib.AssociatedPanCoord = false
	return sap.DisassociateConfirm{Status: sap.StatusSuccess}
}

// rxEnable implements a simplified MLME-RX-ENABLE.request: this engine has
// no slotted/superframe-relative receiver scheduling to offer beyond "on
// now" or "off now", so DeferPermit and RxOnTime are accepted but not acted
// on beyond the immediate on/off switch.
func (e *Engine) rxEnable(ctx context.Context, req sap.RxEnableRequest) sap.RxEnableConfirm {
	var err error
	if req.RxOnDuration > 0 {
		err = e.tx.StartReceive(ctx)
	} else {
		err = e.tx.StopReceive(ctx)
	}
	if err != nil {
		return sap.RxEnableConfirm{Status: sap.StatusPhyError}
	}
	return sap.RxEnableConfirm{Status: sap.StatusSuccess}
}
