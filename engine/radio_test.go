package engine

import (
	"testing"
	"time"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeFrame(t *testing.T, frame *wire.Frame) []byte {
	t.Helper()
	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, frame)
	require.NoError(t, err)
	return append([]byte(nil), buf[:n]...)
}

func TestEngineAssociationRequestIndicatesAndAcceptsResponse(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	_, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestSet, Set: sap.SetRequest{PibAttribute: "macPANId", Value: addr.PanId(0x1234)}})
	require.NoError(t, err)

	src := addr.NewExtended(0xFFFF, 0x1122334455667788)
	data := encodeFrame(t, &wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeCommand,
			Version:   wire.FrameVersion2003,
			Seq:       1,
			HasSeq:    true,
			Source:    &src,
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind:       wire.CmdAssociationRequest,
				Capability: wire.CapabilityInformation{},
			},
		},
	})
	tx.deliver(&phy.ReceivedMessage{Data: data})

	id, ind, err := cmd.WaitForIndication(ctx)
	require.NoError(t, err)
	require.Equal(t, sap.IndicationAssociate, ind.Kind)
	assert.Equal(t, addr.ExtendedAddress(0x1122334455667788), ind.Associate.DeviceAddress)

	cmd.RespondToIndication(id, sap.Response{
		Kind: sap.ResponseAssociate,
		Associate: sap.AssociateResponse{
			DeviceAddress:     ind.Associate.DeviceAddress,
			AssocShortAddress: 0x0002,
			Status:            wire.AssociationSuccessful,
		},
	})

	require.Eventually(t, func() bool {
		c, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestGet, Get: sap.GetRequest{PibAttribute: "macPANId"}})
		return err == nil && c.Get.Status == sap.StatusSuccess
	}, time.Second, 5*time.Millisecond)
}

func TestEngineCoordinatorRealignmentUpdatesPanAndChannel(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	confirm, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestGet, Get: sap.GetRequest{PibAttribute: "macCoordShortAddress"}})
	require.NoError(t, err)
	require.Equal(t, sap.StatusSuccess, confirm.Get.Status)
	coordShort := confirm.Get.Value.(addr.ShortAddress)

	src := addr.NewShort(addr.BroadcastPanId, coordShort)
	data := encodeFrame(t, &wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeCommand,
			Version:   wire.FrameVersion2003,
			Seq:       1,
			HasSeq:    true,
			Source:    &src,
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind: wire.CmdCoordinatorRealignment,
				Realignment: wire.CoordinatorRealignment{
					PanId:        0x5678,
					Channel:      15,
					ShortAddress: 0x0099,
				},
			},
		},
	})
	tx.deliver(&phy.ReceivedMessage{Data: data})

	require.Eventually(t, func() bool {
		c, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestGet, Get: sap.GetRequest{PibAttribute: "macPANId"}})
		return err == nil && c.Get.Value == addr.PanId(0x5678)
	}, time.Second, 5*time.Millisecond)
}

func TestEngineDisassociationNotificationClearsStateWhenFromCoordinator(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	confirm, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestGet, Get: sap.GetRequest{PibAttribute: "macCoordShortAddress"}})
	require.NoError(t, err)
	coordShort := confirm.Get.Value.(addr.ShortAddress)

	src := addr.NewShort(addr.BroadcastPanId, coordShort)
	data := encodeFrame(t, &wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeCommand,
			Version:   wire.FrameVersion2003,
			Seq:       1,
			HasSeq:    true,
			Source:    &src,
		},
		Content: wire.Content{
			Kind: wire.ContentCommand,
			Command: &wire.Command{
				Kind:                 wire.CmdDisassociationNotification,
				DisassociationReason: wire.DisassociationCoordinatorWishes,
			},
		},
	})
	tx.deliver(&phy.ReceivedMessage{Data: data})

	id, ind, err := cmd.WaitForIndication(ctx)
	require.NoError(t, err)
	require.Equal(t, sap.IndicationDisassociate, ind.Kind)
	assert.Equal(t, wire.DisassociationCoordinatorWishes, ind.Disassociate.DisassociateReason)
	cmd.RespondToIndication(id, sap.Response{Kind: sap.ResponseNone})

	require.Eventually(t, func() bool {
		c, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestGet, Get: sap.GetRequest{PibAttribute: "macPANId"}})
		return err == nil && c.Get.Value == addr.BroadcastPanId
	}, time.Second, 5*time.Millisecond)
}
