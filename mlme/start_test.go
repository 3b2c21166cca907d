package mlme

import (
	"context"
	"testing"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAsPanCoordinatorGoesNonbeaconByDefault(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	confirm := Start(context.Background(), tx, &macPib, state, sap.StartRequest{
		PanId:          0x1234,
		ChannelNumber:  11,
		PanCoordinator: true,
		BeaconOrder:    wire.BeaconOrderOnDemand,
	})

	require.Equal(t, sap.StatusSuccess, confirm.Status)
	assert.True(t, state.IsPanCoordinator)
	assert.Equal(t, mac.BeaconModeOff, state.BeaconMode)
	assert.Equal(t, wire.SuperframeOrderInactive, macPib.SuperframeOrder)
	assert.Equal(t, uint8(11), tx.PhyPib().CurrentChannel)
}

func TestStartAsPanCoordinatorWithBeaconsGoesAutonomous(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	confirm := Start(context.Background(), tx, &macPib, state, sap.StartRequest{
		PanId:           0x1234,
		ChannelNumber:   11,
		PanCoordinator:  true,
		BeaconOrder:     8,
		SuperframeOrder: 8,
	})

	require.Equal(t, sap.StatusSuccess, confirm.Status)
	assert.Equal(t, mac.BeaconModeOnAutonomous, state.BeaconMode)
}

func TestStartRejectsSuperframeOrderAboveBeaconOrder(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	confirm := Start(context.Background(), tx, &macPib, state, sap.StartRequest{
		BeaconOrder:     4,
		SuperframeOrder: 6,
	})

	assert.Equal(t, sap.StatusInvalidParameter, confirm.Status)
}

func TestStartRejectsWithoutShortAddress(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = addr.BroadcastShortAddress
	state := mac.New()

	confirm := Start(context.Background(), tx, &macPib, state, sap.StartRequest{PanCoordinator: true})

	assert.Equal(t, sap.StatusNoShortAddress, confirm.Status)
}

func TestStartTrackingOffWithoutCoordinatorBeacon(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	confirm := Start(context.Background(), tx, &macPib, state, sap.StartRequest{
		StartTime:       1000,
		BeaconOrder:     8,
		SuperframeOrder: 8,
	})

	assert.Equal(t, sap.StatusTrackingOff, confirm.Status)
}

func TestStartWithCoordRealignmentSendsRealignmentFrameFirst(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	confirm := Start(context.Background(), tx, &macPib, state, sap.StartRequest{
		PanId:            0x5678,
		ChannelNumber:    15,
		PanCoordinator:   true,
		BeaconOrder:      wire.BeaconOrderOnDemand,
		CoordRealignment: true,
	})

	require.Equal(t, sap.StatusSuccess, confirm.Status)
	require.Len(t, tx.sendCalls, 1)

	codec := wire.NewCodec(wire.FooterNone)
	frame, _, err := codec.Decode(tx.sendCalls[0])
	require.NoError(t, err)
	require.NotNil(t, frame.Content.Command)
	assert.Equal(t, wire.CmdCoordinatorRealignment, frame.Content.Command.Kind)
}
