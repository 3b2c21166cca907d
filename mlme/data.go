package mlme

import (
	"context"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
)

// Poll implements MLME-POLL.request (5.1.6.1): sends a data-request
// command to req.CoordAddress and waits only for its link-layer ack here,
// the same split Associate uses and for the same reason - the coordinator
// may not have an answer ready the instant it acks. Once the ack arrives,
// the follow-up is handed to state.Scheduler as an independent data
// request; respond is called later, when that request resolves.
func Poll(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, req sap.PollRequest, respond func(sap.PollConfirm)) {
	macPib.Dsn++
	dsn := macPib.Dsn
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         dsn,
			HasSeq:      true,
			Flags:       wire.Flags{AckRequest: true},
			Destination: addrPtr(req.CoordAddress),
			Source:      addrPtr(ownAddress(macPib)),
		},
		Content: wire.Content{
			Kind:    wire.ContentCommand,
			Command: &wire.Command{Kind: wire.CmdDataRequest},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		respond(sap.PollConfirm{Status: sap.StatusInvalidParameter})
		return
	}

	symbolPeriod := tx.SymbolPeriod()
	ackWait := lrwpantime.Symbols(macPib.AckWaitDuration(tx.PhyPib()), symbolPeriod)
	turnaround := lrwpantime.Symbols(wire.TurnaroundTime, symbolPeriod)

	result, status := sendAckedCommand(ctx, tx, macPib, codec, buf[:n], dsn, turnaround, ackWait)
	if status != sap.StatusSuccess {
		respond(sap.PollConfirm{Status: status})
		return
	}

	state.Scheduler.ScheduleDataRequest(mac.ScheduledDataRequest{
		Mode:         mac.DataRequestIndependent,
		Purpose:      mac.DataRequestPurposePoll,
		Timestamp:    result.Response.Timestamp,
		SecurityInfo: req.SecurityInfo,
		Callback: func(result mac.DataRequestResult) {
			respond(sap.PollConfirm{Status: pollStatusFromDataRequest(result)})
		},
	})
}

// pollStatusFromDataRequest maps the outcome of the follow-up data request
// to MLME-POLL.confirm's status: the response frame itself (if any) is the
// engine's business to turn into an MCPS-DATA.indication, not this
// confirm's.
func pollStatusFromDataRequest(result mac.DataRequestResult) sap.Status {
	if result.Status != sap.StatusSuccess {
		return result.Status
	}
	if result.Response == nil {
		return sap.StatusNoData
	}
	return sap.StatusSuccess
}

func ownAddress(macPib *pib.MacPib) addr.Address {
	if macPib.ShortAddress != addr.BroadcastShortAddress && macPib.ShortAddress != addr.NoShortAddress {
		return addr.NewShort(macPib.PanId, macPib.ShortAddress)
	}
	return addr.NewExtended(macPib.PanId, macPib.ExtendedAddress)
}

// Data implements MCPS-DATA.request (7.1.1.1): a direct send transmits (and
// waits for its ack, if AckTx) right away; an indirect send instead queues
// the frame in state.Pending for the destination to poll for, and answers
// only once that transaction is sent or expires, which may take as long as
// macTransactionPersistenceTime (an overflowing table is answered at once).
func Data(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, req sap.DataRequest, respond func(sap.DataConfirm)) {
	if req.DstAddr == nil {
		respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusInvalidAddress})
		return
	}

	dst := *req.DstAddr
	dst.Pan = req.DstPanId

	macPib.Dsn++
	dsn := macPib.Dsn
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeData,
			Version:     wire.FrameVersion2003,
			Seq:         dsn,
			HasSeq:      true,
			Flags:       wire.Flags{AckRequest: req.AckTx},
			Destination: addrPtr(dst),
			Source:      addrPtr(ownAddress(macPib)),
		},
		Content: wire.Content{Kind: wire.ContentData},
		Payload: req.Msdu,
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusFrameTooLong})
		return
	}

	if req.IndirectTx {
		now, err := tx.Instant(ctx)
		if err != nil {
			respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusPhyError})
			return
		}
		persistence := lrwpantime.Symbols(uint32(macPib.TransactionPersistenceTime)*uint32(wire.BaseSuperframeDuration), tx.SymbolPeriod())
		payload := append([]byte(nil), buf[:n]...)
		ok := state.Pending.Add(dst, req.MsduHandle, payload, now.Add(persistence), func(sent bool) {
			status := sap.StatusTransactionExpired
			if sent {
				status = sap.StatusSuccess
			}
			respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: status})
		})
		if !ok {
			respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusTransactionOverflow})
		}
		return
	}

	symbolPeriod := tx.SymbolPeriod()
	turnaround := lrwpantime.Symbols(wire.TurnaroundTime, symbolPeriod)

	if !req.AckTx {
		result, err := tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle})
		if err != nil {
			respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusPhyError})
			return
		}
		if result.ChannelAccessFailure {
			respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusChannelAccessFailure})
			return
		}
		respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusSuccess, Timestamp: int64(result.SentAt)})
		return
	}

	ackWait := lrwpantime.Symbols(macPib.AckWaitDuration(tx.PhyPib()), symbolPeriod)
	result, status := sendAckedCommand(ctx, tx, macPib, codec, buf[:n], dsn, turnaround, ackWait)
	if status != sap.StatusSuccess {
		respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: status})
		return
	}
	respond(sap.DataConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusSuccess, Timestamp: int64(result.SentAt)})
}

// Purge implements MCPS-PURGE.request (7.1.3.1): drops a previously queued
// indirect transaction without ever invoking its original confirm callback,
// since MCPS-PURGE.confirm is itself the only answer the higher layer gets
// for that handle.
func Purge(state *mac.State, req sap.PurgeRequest) sap.PurgeConfirm {
	if state.Pending.Purge(req.MsduHandle) {
		return sap.PurgeConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusSuccess}
	}
	return sap.PurgeConfirm{MsduHandle: req.MsduHandle, Status: sap.StatusInvalidHandle}
}
