package engine

import (
	"context"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/mlme"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
)

// handlePhyWaitDone is called once the radio goroutine reports the PHY has
// something to report: a received frame, a completed send, or a timer the
// transceiver itself was waiting on. Process does the bookkeeping and hands
// back a frame only when one was actually received.
func (e *Engine) handlePhyWaitDone(ctx context.Context, pctx phy.ProcessingContext) {
	msg, err := e.tx.Process(ctx, pctx)
	if err != nil {
		e.log.Error("processing radio event: %v", err)
		return
	}
	if msg == nil {
		return
	}
	e.processMessage(ctx, msg)
}

// handleDeadline runs whatever nextDeadline determined was due.
func (e *Engine) handleDeadline(ctx context.Context, what deadlineKind) {
	now, err := e.tx.Instant(ctx)
	if err != nil {
		e.log.Error("reading current instant: %v", err)
		return
	}

	switch what {
	case deadlineScanAction:
		e.performScanAction(ctx, now)
	case deadlineIndependentDataRequest:
		if req, ok := e.state.Scheduler.TakeIndependentDataRequest(); ok {
			e.performIndependentDataRequest(ctx, req)
		}
	case deadlinePendingExpiry:
		e.state.Pending.ExpireBefore(now)
	case deadlineBeacon:
		e.sendBeacon(ctx)
		e.nextBeaconAt = now.Add(lrwpantime.Symbols(e.macPib.BeaconInterval(), e.tx.SymbolPeriod()))
	}
}

// processMessage decodes one inbound over-the-air frame and routes it by
// content kind. A requested ack goes out before anything else so the
// sender's own ack-wait timer doesn't lapse while we're still dispatching.
func (e *Engine) processMessage(ctx context.Context, msg *phy.ReceivedMessage) {
	codec := wire.NewCodec(wire.FooterNone)
	frame, _, err := codec.Decode(msg.Data)
	if err != nil {
		e.log.Debug("dropping undecodable frame: %v", err)
		return
	}

	if frame.Header.FrameType == wire.FrameTypeAcknowledgement {
		return
	}

	if frame.Header.Flags.AckRequest && frame.Header.HasSeq {
		e.sendAck(ctx, frame, msg.Timestamp)
	}

	switch frame.Content.Kind {
	case wire.ContentBeacon:
		e.handleBeaconFrame(ctx, frame, msg)
	case wire.ContentCommand:
		e.handleCommandFrame(ctx, frame, msg)
	case wire.ContentData:
		e.handleDataFrame(ctx, frame, msg)
	}
}

// sendAck acknowledges frame macSIFSPeriod symbols after receivedAt, the
// instant it arrived, but never sooner than aTurnaroundTime symbols after it.
func (e *Engine) sendAck(ctx context.Context, frame *wire.Frame, receivedAt lrwpantime.Instant) {
	pending := frame.Header.Source != nil && e.state.Pending.Has(*frame.Header.Source)
	ack := wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeAcknowledgement,
			Version:   wire.FrameVersion2003,
			Seq:       frame.Header.Seq,
			HasSeq:    true,
			Flags:     wire.Flags{FramePending: pending},
		},
		Content: wire.Content{Kind: wire.ContentAcknowledgement},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &ack)
	if err != nil {
		e.log.Error("encoding ack: %v", err)
		return
	}
	delay := uint32(e.macPib.SifsPeriod)
	if delay < wire.TurnaroundTime {
		delay = wire.TurnaroundTime
	}
	sendAt := receivedAt.Add(lrwpantime.Symbols(delay, e.tx.SymbolPeriod()))
	if _, err := e.tx.Send(ctx, buf[:n], &sendAt, false, false, phy.SendContinuation{Kind: phy.ContinuationIdle}); err != nil {
		e.log.Error("sending ack: %v", err)
	}
}

// handleBeaconFrame folds a received beacon into an in-progress scan, or, for
// a device tracking its coordinator's beacon outside a scan, surfaces it as
// a BeaconNotifyIndication.
func (e *Engine) handleBeaconFrame(ctx context.Context, frame *wire.Frame, msg *phy.ReceivedMessage) {
	b := frame.Content.Beacon
	if b == nil || frame.Header.Source == nil {
		return
	}

	descr := sap.PanDescriptor{
		CoordAddress:   *frame.Header.Source,
		ChannelNumber:  e.tx.PhyPib().CurrentChannel,
		ChannelPage:    msg.Page,
		SuperframeSpec: b.Superframe,
		GtsPermit:      b.Gts.Permit,
		LinkQuality:    msg.Lqi,
		Timestamp:      msg.Timestamp,
	}

	if e.state.CurrentScan != nil {
		autoRequest := e.macPib.AutoRequest
		e.state.CurrentScan.RegisterReceivedBeacon(descr, autoRequest)
		if !autoRequest {
			e.notifyBeacon(ctx, b, descr)
		}
		return
	}

	if e.state.CoordinatorBeaconTracked {
		e.notifyBeacon(ctx, b, descr)
	}
}

func (e *Engine) notifyBeacon(ctx context.Context, b *wire.Beacon, descr sap.PanDescriptor) {
	e.indicate(ctx, sap.Indication{
		Kind: sap.IndicationBeaconNotify,
		BeaconNotify: sap.BeaconNotifyIndication{
			PanDescriptor:  descr,
			PendingAddress: b.Pending,
			SduLength:      uint8(len(b.Payload)),
			Sdu:            b.Payload,
		},
	})
}

func (e *Engine) handleCommandFrame(ctx context.Context, frame *wire.Frame, msg *phy.ReceivedMessage) {
	cmd := frame.Content.Command
	if cmd == nil || frame.Header.Source == nil {
		return
	}
	src := *frame.Header.Source

	switch cmd.Kind {
	case wire.CmdAssociationRequest:
		if !src.IsExtended() {
			return
		}
		e.indicateAssociate(ctx, mlme.IndicateAssociateRequest(src.Extended, cmd.Capability))

	case wire.CmdDataRequest:
		data, confirm, ok := e.state.Pending.Take(src)
		if !ok {
			return
		}
		result, err := e.tx.Send(ctx, data, nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle})
		sent := err == nil && !result.ChannelAccessFailure
		if confirm != nil {
			confirm(sent)
		}

	case wire.CmdDisassociationNotification:
		if e.isCurrentCoordinator(src) {
			e.macPib.PanId = addr.BroadcastPanId
			e.macPib.ShortAddress = addr.BroadcastShortAddress
			e.macPib.CoordShortAddress = addr.BroadcastShortAddress
			e.macPib.AssociatedPanCoord = false
		}
		e.indicate(ctx, sap.Indication{
			Kind: sap.IndicationDisassociate,
			Disassociate: sap.DisassociateIndication{
				DeviceAddress:      src.Extended,
				DisassociateReason: cmd.DisassociationReason,
			},
		})

	case wire.CmdBeaconRequest:
		if e.state.IsPanCoordinator || e.state.BeaconMode != mac.BeaconModeOff {
			e.sendBeacon(ctx)
		}

	case wire.CmdCoordinatorRealignment:
		if !e.isCurrentCoordinator(src) {
			return
		}
		r := cmd.Realignment
		page := e.tx.PhyPib().CurrentPage
		if r.Page != nil {
			page = wire.ChannelPage(*r.Page)
		}
		e.macPib.PanId = r.PanId
		e.macPib.CoordShortAddress = r.ShortAddress
		if err := e.tx.UpdatePhyPib(ctx, func(p *pib.PhyPib) {
			p.CurrentChannel = r.Channel
			p.CurrentPage = page
		}); err != nil {
			e.log.Error("applying coordinator realignment: %v", err)
			return
		}
		if scan := e.state.CurrentScan; scan != nil && scan.Request.ScanType == sap.ScanTypeOrphan {
			scan.RegisterRealignmentReceived()
			scan.Finish(func(addr.PanId) {}, sap.StatusSuccess)
			e.state.CurrentScan = nil
		}

	case wire.CmdOrphanNotification:
		if !src.IsExtended() {
			return
		}
		e.indicateOrphan(ctx, src.Extended)
	}
}

func (e *Engine) isCurrentCoordinator(src addr.Address) bool {
	if src.IsShort() {
		return src.Short == e.macPib.CoordShortAddress
	}
	return src.Extended == e.macPib.CoordExtendedAddress
}

func (e *Engine) handleDataFrame(ctx context.Context, frame *wire.Frame, msg *phy.ReceivedMessage) {
	var src, dst addr.Address
	if frame.Header.Source != nil {
		src = *frame.Header.Source
	}
	if frame.Header.Destination != nil {
		dst = *frame.Header.Destination
	}

	e.indicate(ctx, sap.Indication{
		Kind: sap.IndicationData,
		Data: sap.DataIndication{
			SrcAddr:    src,
			DstAddr:    dst,
			MsduLength: uint16(len(frame.Payload)),
			Msdu:       frame.Payload,
			Lqi:        msg.Lqi,
			Timestamp:  int64(msg.Timestamp),
		},
	})
}

// indicate delivers an indication that expects no answer without blocking
// the engine loop: the mailbox's consumer is expected to respond with
// sap.ResponseNone as soon as it sees it, but that may take a moment, and
// the engine has beacons and scans of its own to keep moving meanwhile.
func (e *Engine) indicate(ctx context.Context, ind sap.Indication) {
	go func() {
		e.indications.Request(ctx, ind)
	}()
}

// indicateAssociate delivers an MLME-ASSOCIATE.indication and, once the MAC
// user answers it, hands the decision back to the engine goroutine via
// e.jobs so the response frame is built and queued without racing the
// engine's own PIB/state access.
func (e *Engine) indicateAssociate(ctx context.Context, ind sap.AssociateIndication) {
	go func() {
		resp, err := e.indications.Request(ctx, sap.Indication{Kind: sap.IndicationAssociate, Associate: ind})
		if err != nil {
			return
		}
		job := func(ctx context.Context) { e.completeAssociateResponse(ctx, resp.Associate) }
		select {
		case e.jobs <- job:
		case <-ctx.Done():
		}
	}()
}

func (e *Engine) completeAssociateResponse(ctx context.Context, resp sap.AssociateResponse) {
	data, err := mlme.BuildAssociateResponseFrame(&e.macPib, resp.DeviceAddress, resp)
	if err != nil {
		e.log.Error("building association response frame: %v", err)
		return
	}

	now, err := e.tx.Instant(ctx)
	if err != nil {
		e.log.Error("reading current instant: %v", err)
		return
	}

	persistence := lrwpantime.Symbols(uint32(e.macPib.TransactionPersistenceTime)*uint32(wire.BaseSuperframeDuration), e.tx.SymbolPeriod())
	dev := addr.NewExtended(e.macPib.PanId, resp.DeviceAddress)
	e.state.Pending.Add(dev, 0, data, now.Add(persistence), func(bool) {})
}

// indicateOrphan delivers an MLME-ORPHAN.indication for a device the engine
// doesn't recognize as currently associated: the MAC user decides whether
// it remembers the device and, if so, what short address to reassign it.
func (e *Engine) indicateOrphan(ctx context.Context, device addr.ExtendedAddress) {
	go func() {
		resp, err := e.indications.Request(ctx, sap.Indication{
			Kind:   sap.IndicationOrphan,
			Orphan: sap.OrphanIndication{OrphanAddress: device},
		})
		if err != nil {
			return
		}
		job := func(ctx context.Context) { e.completeOrphanResponse(ctx, resp.Orphan) }
		select {
		case e.jobs <- job:
		case <-ctx.Done():
		}
	}()
}

// completeOrphanResponse sends a CoordinatorRealignment command directly to
// an orphaned device the MAC user recognized as a former associated member
// (5.1.2.1): unlike an association response, this goes out immediately
// rather than through the pending-data table, since the device doesn't
// know to poll for it.
func (e *Engine) completeOrphanResponse(ctx context.Context, resp sap.OrphanResponse) {
	if !resp.AssociatedMember {
		return
	}

	page := uint8(e.tx.PhyPib().CurrentPage)
	e.macPib.Dsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         e.macPib.Dsn,
			HasSeq:      true,
			Destination: addrPtr(addr.NewExtended(e.macPib.PanId, resp.OrphanAddress)),
			Source:      ownAddrPtr(&e.macPib),
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind: wire.CmdCoordinatorRealignment,
				Realignment: wire.CoordinatorRealignment{
					PanId:        e.macPib.PanId,
					Channel:      e.tx.PhyPib().CurrentChannel,
					ShortAddress: resp.ShortAddress,
					Page:         &page,
				},
			},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		e.log.Error("encoding orphan realignment: %v", err)
		return
	}
	if _, err := e.tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle}); err != nil {
		e.log.Error("sending orphan realignment: %v", err)
	}
}

// armBeaconSchedule sets when this device's next beacon goes out, after a
// successful MLME-START.request turned beacon mode on. A tracking device
// offsets from its parent's beacon by req.StartTime symbols; a PAN
// coordinator (or an autonomous beacon source) starts at the next tick.
func (e *Engine) armBeaconSchedule(ctx context.Context, req sap.StartRequest) {
	if e.state.BeaconMode == mac.BeaconModeOff {
		return
	}
	now, err := e.tx.Instant(ctx)
	if err != nil {
		return
	}
	var offset lrwpantime.Duration
	if e.state.BeaconMode == mac.BeaconModeOnTracking {
		offset = lrwpantime.Symbols(req.StartTime, e.tx.SymbolPeriod())
	}
	e.nextBeaconAt = now.Add(offset)
}

// sendBeacon builds and transmits this device's own beacon, then flushes
// whatever broadcast traffic was queued behind it (5.1.1.1: broadcasts are
// sent immediately following the beacon that announces them).
func (e *Engine) sendBeacon(ctx context.Context) {
	e.macPib.Bsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeBeacon,
			Version:   wire.FrameVersion2003,
			Seq:       e.macPib.Bsn,
			HasSeq:    true,
			Source:    ownAddrPtr(&e.macPib),
		},
		Content: wire.Content{
			Kind: wire.ContentBeacon,
			Beacon: &wire.Beacon{
				Superframe: wire.SuperframeSpecification{
					BeaconOrder:          e.macPib.BeaconOrder,
					SuperframeOrder:      e.macPib.SuperframeOrder,
					FinalCapSlot:         wire.NumSuperframeSlots - 1,
					BatteryLifeExtension: e.macPib.BattLifeExt,
					PanCoordinator:       e.state.IsPanCoordinator,
					AssociationPermit:    e.macPib.AssociationPermit,
				},
				Gts:     e.state.CurrentGts,
				Pending: e.state.Pending.GetPendingAddresses(),
				Payload: e.macPib.BeaconPayload,
			},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		e.log.Error("encoding beacon: %v", err)
		return
	}

	result, err := e.tx.Send(ctx, buf[:n], nil, false, false, phy.SendContinuation{Kind: phy.ContinuationIdle})
	if err != nil {
		e.log.Error("sending beacon: %v", err)
		return
	}

	e.macPib.BeaconTxTime = int64(result.SentAt)
	e.flushBroadcasts(ctx)
}

func (e *Engine) flushBroadcasts(ctx context.Context) {
	for {
		msg, ok := e.state.Scheduler.TakeScheduledBroadcast()
		if !ok {
			return
		}
		result, err := e.tx.Send(ctx, msg.Data, nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle})
		sent := err == nil && !result.ChannelAccessFailure
		if msg.Callback != nil {
			msg.Callback(sent)
		}
	}
}

// performScanAction drives state.CurrentScan one step: tune to the next
// unscanned channel (sending a beacon request first for an active scan),
// or finish the scan once every channel has been visited.
func (e *Engine) performScanAction(ctx context.Context, now lrwpantime.Instant) {
	scan := e.state.CurrentScan
	if scan == nil {
		return
	}

	action := scan.NextAction()
	if action.Finish {
		scan.Finish(func(id addr.PanId) { e.macPib.PanId = id }, sap.StatusSuccess)
		e.state.CurrentScan = nil
		return
	}

	if err := e.tx.UpdatePhyPib(ctx, func(p *pib.PhyPib) {
		p.CurrentChannel = action.Channel
		p.CurrentPage = action.Page
	}); err != nil {
		scan.RegisterActionFailed(now)
		return
	}
	scan.RegisterActionExecuted(action)

	switch action.Type {
	case sap.ScanTypeActive:
		e.sendBeaconRequest(ctx)
	case sap.ScanTypeEnergyDetect:
		level, err := e.tx.EnergyDetect(ctx)
		if err != nil {
			e.log.Error("energy detect on channel %d: %v", action.Channel, err)
			return
		}
		scan.RegisterEnergyReading(level)
	case sap.ScanTypeOrphan:
		e.sendOrphanNotification(ctx)
	}
}

func (e *Engine) sendOrphanNotification(ctx context.Context) {
	e.macPib.Dsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         e.macPib.Dsn,
			HasSeq:      true,
			Destination: addrPtr(addr.NewShort(addr.BroadcastPanId, addr.BroadcastShortAddress)),
			Source:      addrPtr(addr.NewExtended(addr.BroadcastPanId, e.macPib.ExtendedAddress)),
		},
		Content: wire.Content{
			Kind:    wire.ContentCommand,
			Command: &wire.Command{Kind: wire.CmdOrphanNotification, OrphanAddress: e.macPib.ExtendedAddress},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		e.log.Error("encoding orphan notification: %v", err)
		return
	}
	if _, err := e.tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle}); err != nil {
		e.log.Error("sending orphan notification: %v", err)
	}
}

func (e *Engine) sendBeaconRequest(ctx context.Context) {
	e.macPib.Dsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         e.macPib.Dsn,
			HasSeq:      true,
			Destination: addrPtr(addr.NewShort(addr.BroadcastPanId, addr.BroadcastShortAddress)),
		},
		Content: wire.Content{Kind: wire.ContentCommand, Command: &wire.Command{Kind: wire.CmdBeaconRequest}},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		e.log.Error("encoding beacon request: %v", err)
		return
	}
	if _, err := e.tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle}); err != nil {
		e.log.Error("sending beacon request: %v", err)
	}
}

// performIndependentDataRequest sends the data-request command a scheduled
// follow-up (association or poll) needs, then waits up to
// macMaxFrameTotalWaitTime for the coordinator's answer.
func (e *Engine) performIndependentDataRequest(ctx context.Context, req mac.ScheduledDataRequest) {
	var coord addr.Address
	if e.macPib.ShortAddress != addr.BroadcastShortAddress && e.macPib.CoordShortAddress != addr.BroadcastShortAddress {
		coord = addr.NewShort(e.macPib.PanId, e.macPib.CoordShortAddress)
	} else {
		coord = addr.NewExtended(e.macPib.PanId, e.macPib.CoordExtendedAddress)
	}

	e.macPib.Dsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         e.macPib.Dsn,
			HasSeq:      true,
			Flags:       wire.Flags{AckRequest: true},
			Destination: addrPtr(coord),
			Source:      ownAddrPtr(&e.macPib),
		},
		Content: wire.Content{Kind: wire.ContentCommand, Command: &wire.Command{Kind: wire.CmdDataRequest}},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		req.Callback(mac.DataRequestResult{Status: sap.StatusInvalidParameter})
		return
	}

	symbolPeriod := e.tx.SymbolPeriod()
	totalWait := lrwpantime.Symbols(e.macPib.MaxFrameTotalWaitTime(e.tx.PhyPib()), symbolPeriod)
	turnaround := lrwpantime.Symbols(wire.TurnaroundTime, symbolPeriod)

	result, err := e.tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{
		Kind:           phy.ContinuationWaitForResponse,
		TurnaroundTime: turnaround,
		Timeout:        totalWait,
	})
	if err != nil {
		req.Callback(mac.DataRequestResult{Status: sap.StatusPhyError})
		return
	}
	if result.ChannelAccessFailure {
		req.Callback(mac.DataRequestResult{Status: sap.StatusChannelAccessFailure})
		return
	}
	if result.Response == nil {
		req.Callback(mac.DataRequestResult{Status: sap.StatusNoData})
		return
	}

	resp, _, err := codec.Decode(result.Response.Data)
	if err != nil || resp.Content.Kind == wire.ContentAcknowledgement {
		req.Callback(mac.DataRequestResult{Status: sap.StatusNoData})
		return
	}
	req.Callback(mac.DataRequestResult{Status: sap.StatusSuccess, Response: resp})
}
