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

// Start implements MLME-START.request (5.1.2.3): starts a PAN as
// coordinator, or begins running an own superframe offset from a tracked
// parent beacon. When coordRealignment is requested, the realignment
// command is sent immediately (CSMA-CA gated, outside the broadcast
// scheduler, since it must precede any PIB change regardless of beacon
// state) before the PIB is updated.
func Start(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, req sap.StartRequest) sap.StartConfirm {
	if req.SuperframeOrder != wire.SuperframeOrderInactive && uint8(req.SuperframeOrder) > uint8(req.BeaconOrder) {
		return sap.StartConfirm{Status: sap.StatusInvalidParameter}
	}

	req.StartTime = roundToBackoffPeriod(req.StartTime)

	if macPib.ShortAddress == addr.BroadcastShortAddress {
		return sap.StartConfirm{Status: sap.StatusNoShortAddress}
	}

	if req.CoordRealignment {
		if status := sendRealignment(ctx, tx, macPib, req); status != sap.StatusSuccess {
			return sap.StartConfirm{Status: status}
		}
	}

	return applyStartChanges(ctx, tx, macPib, state, req)
}

func roundToBackoffPeriod(t uint32) uint32 {
	const ubp = wire.UnitBackoffPeriod
	return (t + ubp/2) / ubp * ubp
}

func sendRealignment(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, req sap.StartRequest) sap.Status {
	macPib.Dsn++
	page := uint8(req.ChannelPage)
	frame := wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeCommand,
			Version:     wire.FrameVersion2006,
			Seq:         macPib.Dsn,
			HasSeq:      true,
			Destination: addrPtr(addr.NewShort(addr.BroadcastPanId, addr.BroadcastShortAddress)),
			Source:      addrPtr(addr.NewExtended(macPib.PanId, macPib.ExtendedAddress)),
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind: wire.CmdCoordinatorRealignment,
				Realignment: wire.CoordinatorRealignment{
					PanId:        req.PanId,
					Channel:      req.ChannelNumber,
					ShortAddress: macPib.ShortAddress,
					Page:         &page,
				},
			},
		},
	}

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &frame)
	if err != nil {
		return sap.StatusInvalidParameter
	}

	result, err := tx.Send(ctx, buf[:n], nil, false, true, phy.SendContinuation{Kind: phy.ContinuationIdle})
	if err != nil {
		return sap.StatusPhyError
	}
	if result.ChannelAccessFailure {
		return sap.StatusChannelAccessFailure
	}
	return sap.StatusSuccess
}

func addrPtr(a addr.Address) *addr.Address { return &a }

func applyStartChanges(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, state *mac.State, req sap.StartRequest) sap.StartConfirm {
	switch {
	case req.PanCoordinator || req.StartTime == 0 || req.BeaconOrder == wire.BeaconOrderOnDemand:
		if err := updateSuperframeConfig(ctx, tx, macPib, req); err != nil {
			return sap.StartConfirm{Status: sap.StatusPhyError}
		}

		state.IsPanCoordinator = req.PanCoordinator
		state.BeaconSecurityInfo = req.BeaconSecurity
		if req.BeaconOrder != wire.BeaconOrderOnDemand {
			state.BeaconMode = mac.BeaconModeOnAutonomous
		} else {
			state.BeaconMode = mac.BeaconModeOff
		}
		return sap.StartConfirm{Status: sap.StatusSuccess}

	case req.StartTime > 0 && state.CoordinatorBeaconTracked:
		superframeSymbols := uint32(wire.BaseSuperframeDuration) << uint32(req.SuperframeOrder)
		if req.StartTime < superframeSymbols {
			return sap.StartConfirm{Status: sap.StatusSuperframeOverlap}
		}

		if err := updateSuperframeConfig(ctx, tx, macPib, req); err != nil {
			return sap.StartConfirm{Status: sap.StatusPhyError}
		}

		state.IsPanCoordinator = req.PanCoordinator
		state.BeaconSecurityInfo = req.BeaconSecurity
		state.BeaconMode = mac.BeaconModeOnTracking
		state.TrackingStartTime = lrwpantime.Instant(req.StartTime)
		return sap.StartConfirm{Status: sap.StatusSuccess}

	default:
		return sap.StartConfirm{Status: sap.StatusTrackingOff}
	}
}

func updateSuperframeConfig(ctx context.Context, tx phy.Transceiver, macPib *pib.MacPib, req sap.StartRequest) error {
	macPib.BeaconOrder = req.BeaconOrder
	if req.BeaconOrder == wire.BeaconOrderOnDemand {
		macPib.SuperframeOrder = wire.SuperframeOrderInactive
	} else {
		macPib.SuperframeOrder = req.SuperframeOrder
	}
	macPib.PanId = req.PanId

	if req.BeaconOrder != wire.BeaconOrderOnDemand {
		macPib.BattLifeExt = req.BatteryLifeExtension
	}

	return tx.UpdatePhyPib(ctx, func(p *pib.PhyPib) {
		p.CurrentPage = req.ChannelPage
		p.CurrentChannel = req.ChannelNumber
	})
}
