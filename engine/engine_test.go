package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransceiver is a minimal in-memory phy.Transceiver for driving the
// engine's event loop in tests, without a real or simulated radio.
type fakeTransceiver struct {
	mu        sync.Mutex
	p         *pib.PhyPib
	instant   lrwpantime.Instant
	symbol    lrwpantime.Duration
	sendFunc  func(data []byte) (phy.SendResult, error)
	sendCalls  [][]byte
	incoming   chan *phy.ReceivedMessage
	energyFunc func() (uint8, error)
}

func newFakeTransceiver() *fakeTransceiver {
	p := pib.DefaultPhyPib()
	return &fakeTransceiver{p: &p, symbol: lrwpantime.Micros(1), incoming: make(chan *phy.ReceivedMessage, 4)}
}

func (f *fakeTransceiver) Reset(ctx context.Context) error { return nil }

func (f *fakeTransceiver) Instant(ctx context.Context) (lrwpantime.Instant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.instant, nil
}

func (f *fakeTransceiver) SymbolPeriod() lrwpantime.Duration { return f.symbol }

func (f *fakeTransceiver) Send(ctx context.Context, data []byte, sendAt *lrwpantime.Instant, ranging, useCsma bool, continuation phy.SendContinuation) (phy.SendResult, error) {
	f.mu.Lock()
	f.sendCalls = append(f.sendCalls, append([]byte(nil), data...))
	fn := f.sendFunc
	now := f.instant
	f.mu.Unlock()
	if fn == nil {
		return phy.SendResult{SentAt: now}, nil
	}
	return fn(data)
}

func (f *fakeTransceiver) EnergyDetect(ctx context.Context) (uint8, error) {
	f.mu.Lock()
	fn := f.energyFunc
	f.mu.Unlock()
	if fn == nil {
		return 0, nil
	}
	return fn()
}

func (f *fakeTransceiver) StartReceive(ctx context.Context) error { return nil }
func (f *fakeTransceiver) StopReceive(ctx context.Context) error  { return nil }

func (f *fakeTransceiver) Wait(ctx context.Context) (phy.ProcessingContext, error) {
	select {
	case msg := <-f.incoming:
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransceiver) Process(ctx context.Context, pctx phy.ProcessingContext) (*phy.ReceivedMessage, error) {
	msg, _ := pctx.(*phy.ReceivedMessage)
	return msg, nil
}

func (f *fakeTransceiver) UpdatePhyPib(ctx context.Context, fn func(*pib.PhyPib)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.p)
	return nil
}

func (f *fakeTransceiver) PhyPib() *pib.PhyPib {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.p
}

func (f *fakeTransceiver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendCalls)
}

func (f *fakeTransceiver) lastSend() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sendCalls) == 0 {
		return nil
	}
	return f.sendCalls[len(f.sendCalls)-1]
}

func (f *fakeTransceiver) deliver(msg *phy.ReceivedMessage) {
	f.incoming <- msg
}

var _ phy.Transceiver = (*fakeTransceiver)(nil)

func startEngine(t *testing.T, tx *fakeTransceiver) (*Commander, context.Context) {
	t.Helper()
	eng, cmd, err := New(tx, Config{ExtendedAddress: 0xAAAAAAAAAAAAAAAA})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go eng.Run(ctx)
	return cmd, ctx
}

func TestConfigValidRejectsNegativeCapacity(t *testing.T) {
	cfg := Config{RequestQueueCapacity: -1}
	assert.Error(t, cfg.Valid())
}

func TestEngineSetGetRoundTrip(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	confirm, err := cmd.Request(ctx, sap.Request{
		Kind: sap.RequestSet,
		Set:  sap.SetRequest{PibAttribute: "macShortAddress", Value: addr.ShortAddress(0x1234)},
	})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusSuccess, confirm.Set.Status)

	confirm, err = cmd.Request(ctx, sap.Request{
		Kind: sap.RequestGet,
		Get:  sap.GetRequest{PibAttribute: "macShortAddress"},
	})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusSuccess, confirm.Get.Status)
	assert.Equal(t, addr.ShortAddress(0x1234), confirm.Get.Value)
}

func TestEngineGtsRequestIsDenied(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	confirm, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestGts, Gts: sap.GtsRequest{}})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusDenied, confirm.Gts.Status)
}

func TestEngineDpsSoundingCalibrateAreUnsupported(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	confirm, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestDps})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusDpsNotSupported, confirm.Dps.Status)

	confirm, err = cmd.Request(ctx, sap.Request{Kind: sap.RequestSounding})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusSoundingNotSupported, confirm.Sounding.Status)

	confirm, err = cmd.Request(ctx, sap.Request{Kind: sap.RequestCalibrate})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusRangingNotSupported, confirm.Calibrate.Status)
}

func TestEngineDisassociateSendsNotificationAndClearsAssociation(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	_, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestSet, Set: sap.SetRequest{PibAttribute: "macShortAddress", Value: addr.ShortAddress(0x1)}})
	require.NoError(t, err)

	confirm, err := cmd.Request(ctx, sap.Request{
		Kind: sap.RequestDisassociate,
		Disassociate: sap.DisassociateRequest{
			DeviceAddress:      addr.NewShort(0x1234, 0x5678),
			DisassociateReason: wire.DisassociationDeviceWishes,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, sap.StatusSuccess, confirm.Disassociate.Status)

	require.Equal(t, 1, tx.callCount())
	frame, _, err := wire.NewCodec(wire.FooterNone).Decode(tx.lastSend())
	require.NoError(t, err)
	require.Equal(t, wire.ContentCommand, frame.Content.Kind)
	assert.Equal(t, wire.CmdDisassociationNotification, frame.Content.Command.Kind)

	confirm, err = cmd.Request(ctx, sap.Request{Kind: sap.RequestGet, Get: sap.GetRequest{PibAttribute: "macPANId"}})
	require.NoError(t, err)
	assert.Equal(t, addr.BroadcastPanId, confirm.Get.Value)
}

func TestEngineStartAsPanCoordinatorSendsBeacon(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	_, err := cmd.Request(ctx, sap.Request{Kind: sap.RequestSet, Set: sap.SetRequest{PibAttribute: "macShortAddress", Value: addr.ShortAddress(0x1)}})
	require.NoError(t, err)

	confirm, err := cmd.Request(ctx, sap.Request{
		Kind: sap.RequestStart,
		Start: sap.StartRequest{
			PanId:          0x1234,
			PanCoordinator: true,
			BeaconOrder:    0,
		},
	})
	require.NoError(t, err)
	require.Equal(t, sap.StatusSuccess, confirm.Start.Status)

	require.Eventually(t, func() bool { return tx.callCount() >= 1 }, time.Second, 5*time.Millisecond)
	frame, _, err := wire.NewCodec(wire.FooterNone).Decode(tx.lastSend())
	require.NoError(t, err)
	assert.Equal(t, wire.FrameTypeBeacon, frame.Header.FrameType)
}

func TestEngineDataIndicationDeliversInboundFrame(t *testing.T) {
	tx := newFakeTransceiver()
	cmd, ctx := startEngine(t, tx)

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	src := addr.NewShort(0x1234, 0x5678)
	dst := addr.NewShort(0x1234, 0x0001)
	n, err := codec.Encode(buf, &wire.Frame{
		Header: wire.Header{
			FrameType:   wire.FrameTypeData,
			Version:     wire.FrameVersion2003,
			Seq:         7,
			HasSeq:      true,
			Source:      &src,
			Destination: &dst,
		},
		Content: wire.Content{Kind: wire.ContentData},
		Payload: []byte("hello"),
	})
	require.NoError(t, err)

	tx.deliver(&phy.ReceivedMessage{Data: append([]byte(nil), buf[:n]...), Lqi: 200})

	id, ind, err := cmd.indications.WaitForRequest(ctx)
	require.NoError(t, err)
	require.Equal(t, sap.IndicationData, ind.Kind)
	assert.Equal(t, []byte("hello"), ind.Data.Msdu)
	assert.Equal(t, uint8(200), ind.Data.Lqi)
	cmd.RespondToIndication(id, sap.Response{Kind: sap.ResponseNone})
}

func TestEngineAckRequestTriggersImmediateAck(t *testing.T) {
	tx := newFakeTransceiver()
	_, ctx := startEngine(t, tx)
	_ = ctx

	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	src := addr.NewShort(0x1234, 0x5678)
	n, err := codec.Encode(buf, &wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeCommand,
			Version:   wire.FrameVersion2003,
			Seq:       9,
			HasSeq:    true,
			Flags:     wire.Flags{AckRequest: true},
			Source:    &src,
		},
		Content: wire.Content{Kind: wire.ContentCommand, Command: &wire.Command{Kind: wire.CmdBeaconRequest}},
	})
	require.NoError(t, err)

	tx.deliver(&phy.ReceivedMessage{Data: append([]byte(nil), buf[:n]...)})

	require.Eventually(t, func() bool { return tx.callCount() >= 1 }, time.Second, 5*time.Millisecond)
	frame, _, err := codec.Decode(tx.lastSend())
	require.NoError(t, err)
	assert.Equal(t, wire.FrameTypeAcknowledgement, frame.Header.FrameType)
	assert.Equal(t, uint8(9), frame.Header.Seq)
}

func TestNextDeadlinePicksSoonestEvent(t *testing.T) {
	tx := newFakeTransceiver()
	eng, _, err := New(tx, Config{ExtendedAddress: 1})
	require.NoError(t, err)

	eng.state.Pending.Add(addr.NewShort(1, 2), 0, []byte{1}, lrwpantime.Instant(100), func(bool) {})
	_, kind := eng.nextDeadline(lrwpantime.Instant(0))
	assert.Equal(t, deadlinePendingExpiry, kind)
}
