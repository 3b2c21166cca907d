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

// Associate implements the initiator side of MLME-ASSOCIATE.request
// (5.1.3.1): it sends the association-request command and waits only for
// its link-layer ack here. A device that isn't yet associated with anyone
// polls for the coordinator's actual decision separately, since the
// standard allows the coordinator up to macResponseWaitTime to decide and
// an engine that blocked the whole MAC for that long would stall every
// other PAN it's a party to. Once the ack arrives, the follow-up data
// request is handed to state.Scheduler and respond is called later, when
// that data request resolves (see associateConfirmFromDataRequest).
func Associate(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, req sap.AssociateRequest, respond func(sap.AssociateConfirm)) {
	if macPib.PanId != addr.BroadcastPanId {
		respond(sap.AssociateConfirm{
			AssocShortAddress: addr.BroadcastShortAddress,
			Status:            sap.StatusAlreadyAssociated,
		})
		return
	}

	if err := tx.UpdatePhyPib(ctx, func(p *pib.PhyPib) {
		p.CurrentChannel = req.ChannelNumber
		p.CurrentPage = req.ChannelPage
	}); err != nil {
		respond(sap.AssociateConfirm{AssocShortAddress: addr.BroadcastShortAddress, Status: sap.StatusPhyError})
		return
	}

	macPib.PanId = req.CoordAddress.Pan
	if req.CoordAddress.IsShort() {
		macPib.CoordShortAddress = req.CoordAddress.Short
	} else {
		macPib.CoordExtendedAddress = req.CoordAddress.Extended
	}

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
			Source:      addrPtr(addr.NewExtended(addr.BroadcastPanId, macPib.ExtendedAddress)),
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind:       wire.CmdAssociationRequest,
				Capability: req.CapabilityInformation,
			},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		respond(sap.AssociateConfirm{AssocShortAddress: addr.BroadcastShortAddress, Status: sap.StatusInvalidParameter})
		return
	}

	symbolPeriod := tx.SymbolPeriod()
	ackWait := lrwpantime.Symbols(macPib.AckWaitDuration(tx.PhyPib()), symbolPeriod)
	turnaround := lrwpantime.Symbols(wire.TurnaroundTime, symbolPeriod)

	result, status := sendAckedCommand(ctx, tx, macPib, codec, buf[:n], dsn, turnaround, ackWait)
	if status != sap.StatusSuccess {
		respond(sap.AssociateConfirm{AssocShortAddress: addr.BroadcastShortAddress, Status: status})
		return
	}

	ackTimestamp := result.Response.Timestamp

	followUp := lrwpantime.Symbols(uint32(wire.BaseSuperframeDuration)*uint32(macPib.ResponseWaitTime), symbolPeriod)
	timestamp := ackTimestamp.Add(followUp)

	state.Scheduler.ScheduleDataRequest(mac.ScheduledDataRequest{
		Mode:         mac.DataRequestIndependent,
		Purpose:      mac.DataRequestPurposeAssociation,
		Timestamp:    timestamp,
		SecurityInfo: req.SecurityInfo,
		Callback: func(result mac.DataRequestResult) {
			respond(associateConfirmFromDataRequest(result))
		},
	})
}

// sendAckedCommand transmits buf (already carrying sequence number dsn) and
// waits for its link-layer ack, retrying with a fresh CSMA negotiation per
// attempt up to macMaxFrameRetries times (7.5.6.4) before giving up. The
// SendResult returned is always the last attempt's, whether or not it
// finally carried an ack.
func sendAckedCommand(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, codec wire.Codec, buf []byte, dsn uint8, turnaround, ackWait lrwpantime.Duration) (phy.SendResult, sap.Status) {
	attempts := int(macPib.MaxFrameRetries) + 1
	var last phy.SendResult
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := tx.Send(ctx, buf, nil, false, true, phy.SendContinuation{
			Kind:           phy.ContinuationWaitForResponse,
			TurnaroundTime: turnaround,
			Timeout:        ackWait,
		})
		if err != nil {
			return result, sap.StatusPhyError
		}
		if result.ChannelAccessFailure {
			return result, sap.StatusChannelAccessFailure
		}
		last = result
		if _, gotAck := matchAck(codec, result.Response, dsn); gotAck {
			return result, sap.StatusSuccess
		}
	}
	return last, sap.StatusNoAck
}

func matchAck(codec wire.Codec, response *phy.ReceivedMessage, dsn uint8) (lrwpantime.Instant, bool) {
	if response == nil {
		return 0, false
	}
	frame, _, err := codec.Decode(response.Data)
	if err != nil {
		return 0, false
	}
	if frame.Header.FrameType != wire.FrameTypeAcknowledgement || frame.Header.Seq != dsn {
		return 0, false
	}
	return response.Timestamp, true
}

// associateConfirmFromDataRequest interprets the response to the
// association follow-up data request: no response means the coordinator
// never got around to (or refused) answering within
// macMaxFrameTotalWaitTime, and an AssociationResponse command carries the
// coordinator's actual decision.
func associateConfirmFromDataRequest(result mac.DataRequestResult) sap.AssociateConfirm {
	if result.Status != sap.StatusSuccess || result.Response == nil {
		status := result.Status
		if status == sap.StatusSuccess {
			status = sap.StatusNoData
		}
		return sap.AssociateConfirm{AssocShortAddress: addr.BroadcastShortAddress, Status: status}
	}

	cmd := result.Response.Content.Command
	if result.Response.Content.Kind != wire.ContentCommand || cmd == nil || cmd.Kind != wire.CmdAssociationResponse {
		return sap.AssociateConfirm{AssocShortAddress: addr.BroadcastShortAddress, Status: sap.StatusNoData}
	}

	return sap.AssociateConfirm{
		AssocShortAddress: cmd.AssocShortAddress,
		Status:            associationStatusToSap(cmd.AssocStatus),
	}
}

func associationStatusToSap(s wire.AssociationStatus) sap.Status {
	switch s {
	case wire.AssociationSuccessful:
		return sap.StatusSuccess
	case wire.AssociationPanAtCapacity:
		return sap.StatusNetworkAtCapacity
	case wire.AssociationAccessDenied:
		return sap.StatusAccessDenied
	default:
		return sap.StatusAccessDenied
	}
}

// IndicateAssociateRequest builds the MLME-ASSOCIATE.indication delivered
// to a coordinator when an association-request command arrives over the
// air; the engine dispatches it to the MAC user and, once answered,
// queues the AssociationResponse command as indirect (pending) data for
// the requesting device.
func IndicateAssociateRequest(device addr.ExtendedAddress, capability wire.CapabilityInformation) sap.AssociateIndication {
	return sap.AssociateIndication{
		DeviceAddress:         device,
		CapabilityInformation: capability,
	}
}

// BuildAssociateResponseFrame encodes the AssociationResponse command a
// coordinator sends (indirectly, via the pending-data table) once the MAC
// user has answered an AssociateIndication.
func BuildAssociateResponseFrame(macPib *pib.MacPib, device addr.ExtendedAddress, resp sap.AssociateResponse) ([]byte, error) {
	macPib.Dsn++
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2003,
			Seq:         macPib.Dsn,
			HasSeq:      true,
			Flags:       wire.Flags{AckRequest: true},
			Destination: addrPtr(addr.NewExtended(macPib.PanId, device)),
			Source:      addrPtr(addr.NewExtended(macPib.PanId, macPib.ExtendedAddress)),
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind:              wire.CmdAssociationResponse,
				AssocShortAddress: resp.AssocShortAddress,
				AssocStatus:       resp.Status,
			},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}
