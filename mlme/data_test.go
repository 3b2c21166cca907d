package mlme

import (
	"context"
	"testing"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/mac"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollSchedulesFollowUpAfterAck(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	macPib.PanId = 0x1234
	state := mac.New()

	coord := addr.NewShort(0x1234, 2)
	tx.sendFunc = func(data []byte) (phy.SendResult, error) {
		codec := wire.NewCodec(wire.FooterNone)
		frame, _, err := codec.Decode(data)
		require.NoError(t, err)
		buf := make([]byte, wire.MaxPHYPacketSize)
		n, err := codec.Encode(buf, &wire.Frame{
			Header:  wire.Header{FrameType: wire.FrameTypeAcknowledgement, Seq: frame.Header.Seq, HasSeq: true},
			Content: wire.Content{Kind: wire.ContentData},
		})
		require.NoError(t, err)
		return phy.SendResult{SentAt: tx.instant, Response: &phy.ReceivedMessage{Data: buf[:n], Timestamp: tx.instant}}, nil
	}

	var confirmed bool
	var got sap.PollConfirm
	Poll(context.Background(), tx, &macPib, state, sap.PollRequest{CoordAddress: coord}, func(c sap.PollConfirm) {
		confirmed = true
		got = c
	})
	assert.False(t, confirmed)

	req, ok := state.Scheduler.TakeIndependentDataRequest()
	require.True(t, ok)
	assert.Equal(t, mac.DataRequestPurposePoll, req.Purpose)

	req.Callback(mac.DataRequestResult{Status: sap.StatusSuccess, Response: nil})
	assert.True(t, confirmed)
	assert.Equal(t, sap.StatusNoData, got.Status)
}

func TestPollReportsNoAck(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	var got sap.PollConfirm
	Poll(context.Background(), tx, &macPib, state, sap.PollRequest{CoordAddress: addr.NewShort(0x1234, 2)}, func(c sap.PollConfirm) { got = c })

	assert.Equal(t, sap.StatusNoAck, got.Status)
	_, ok := state.Scheduler.TakeIndependentDataRequest()
	assert.False(t, ok)
	assert.Len(t, tx.sendCalls, int(macPib.MaxFrameRetries)+1)
}

func TestDataDirectSendWaitsForAck(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	dst := addr.NewShort(0x1234, 9)
	tx.sendFunc = func(data []byte) (phy.SendResult, error) {
		codec := wire.NewCodec(wire.FooterNone)
		frame, _, err := codec.Decode(data)
		require.NoError(t, err)
		ack := encodeAck(frame.Header.Seq)
		return phy.SendResult{SentAt: tx.instant, Response: &phy.ReceivedMessage{Data: ack, Timestamp: tx.instant}}, nil
	}

	var got sap.DataConfirm
	Data(context.Background(), tx, &macPib, state, sap.DataRequest{
		DstPanId:   0x1234,
		DstAddr:    &dst,
		Msdu:       []byte{1, 2, 3},
		MsduHandle: 7,
		AckTx:      true,
	}, func(c sap.DataConfirm) { got = c })

	assert.Equal(t, sap.StatusSuccess, got.Status)
	assert.Equal(t, uint8(7), got.MsduHandle)
}

func TestDataWithoutAckConfirmsImmediately(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	dst := addr.NewShort(0x1234, 9)
	var got sap.DataConfirm
	Data(context.Background(), tx, &macPib, state, sap.DataRequest{
		DstPanId:   0x1234,
		DstAddr:    &dst,
		Msdu:       []byte{1},
		MsduHandle: 3,
	}, func(c sap.DataConfirm) { got = c })

	assert.Equal(t, sap.StatusSuccess, got.Status)
	require.Len(t, tx.sendCalls, 1)
}

func TestDataDirectSendRetriesUpToMaxFrameRetries(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	macPib.MaxFrameRetries = 2
	state := mac.New()

	tx.sendFunc = func(data []byte) (phy.SendResult, error) {
		return phy.SendResult{SentAt: tx.instant}, nil
	}

	dst := addr.NewShort(0x1234, 9)
	var got sap.DataConfirm
	Data(context.Background(), tx, &macPib, state, sap.DataRequest{
		DstPanId:   0x1234,
		DstAddr:    &dst,
		Msdu:       []byte{1, 2, 3},
		MsduHandle: 7,
		AckTx:      true,
	}, func(c sap.DataConfirm) { got = c })

	assert.Equal(t, sap.StatusNoAck, got.Status)
	require.Len(t, tx.sendCalls, 3)
}

func TestDataDirectSendSucceedsOnRetryAfterMissedAck(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	macPib.MaxFrameRetries = 2
	state := mac.New()

	dst := addr.NewShort(0x1234, 9)
	attempt := 0
	tx.sendFunc = func(data []byte) (phy.SendResult, error) {
		attempt++
		if attempt < 2 {
			return phy.SendResult{SentAt: tx.instant}, nil
		}
		codec := wire.NewCodec(wire.FooterNone)
		frame, _, err := codec.Decode(data)
		require.NoError(t, err)
		ack := encodeAck(frame.Header.Seq)
		return phy.SendResult{SentAt: tx.instant, Response: &phy.ReceivedMessage{Data: ack, Timestamp: tx.instant}}, nil
	}

	var got sap.DataConfirm
	Data(context.Background(), tx, &macPib, state, sap.DataRequest{
		DstPanId:   0x1234,
		DstAddr:    &dst,
		Msdu:       []byte{1, 2, 3},
		MsduHandle: 7,
		AckTx:      true,
	}, func(c sap.DataConfirm) { got = c })

	assert.Equal(t, sap.StatusSuccess, got.Status)
	assert.Equal(t, 2, attempt)
}

func TestDataIndirectQueuesIntoPendingTable(t *testing.T) {
	tx := newFakeTransceiver()
	macPib := pib.DefaultMacPib()
	macPib.ShortAddress = 1
	state := mac.New()

	dst := addr.NewShort(0x1234, 9)
	var got sap.DataConfirm
	Data(context.Background(), tx, &macPib, state, sap.DataRequest{
		DstPanId:   0x1234,
		DstAddr:    &dst,
		Msdu:       []byte{1, 2},
		MsduHandle: 4,
		IndirectTx: true,
	}, func(c sap.DataConfirm) { got = c })

	assert.Equal(t, sap.DataConfirm{}, got)
	assert.True(t, state.Pending.Has(dst))

	data, confirm, ok := state.Pending.Take(dst)
	require.True(t, ok)
	require.NotEmpty(t, data)
	confirm(true)
	assert.Equal(t, sap.StatusSuccess, got.Status)
	assert.Equal(t, uint8(4), got.MsduHandle)
}

func TestPurgeRemovesQueuedIndirectTransactionWithoutConfirming(t *testing.T) {
	state := mac.New()
	dst := addr.NewShort(0x1234, 9)

	var confirmed bool
	state.Pending.Add(dst, 5, []byte{1}, 1000, func(sent bool) { confirmed = true })

	confirm := Purge(state, sap.PurgeRequest{MsduHandle: 5})
	assert.Equal(t, sap.StatusSuccess, confirm.Status)
	assert.False(t, confirmed)
	assert.False(t, state.Pending.Has(dst))
}

func TestPurgeUnknownHandleReportsInvalidHandle(t *testing.T) {
	state := mac.New()
	confirm := Purge(state, sap.PurgeRequest{MsduHandle: 99})
	assert.Equal(t, sap.StatusInvalidHandle, confirm.Status)
}
