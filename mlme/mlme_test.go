package mlme

import (
	"context"

	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/wire"
)

// fakeTransceiver is a minimal in-memory phy.Transceiver for exercising
// mlme procedures without a real or simulated radio underneath.
type fakeTransceiver struct {
	p *pib.PhyPib

	resetErr error
	instant  lrwpantime.Instant
	symbol   lrwpantime.Duration
	sendFunc func(data []byte) (phy.SendResult, error)

	sendCalls [][]byte

	energyFunc func() (uint8, error)
}

func newFakeTransceiver() *fakeTransceiver {
	p := pib.DefaultPhyPib()
	return &fakeTransceiver{p: &p, symbol: lrwpantime.Micros(1)}
}

func (f *fakeTransceiver) Reset(ctx context.Context) error { return f.resetErr }

func (f *fakeTransceiver) Instant(ctx context.Context) (lrwpantime.Instant, error) {
	return f.instant, nil
}

func (f *fakeTransceiver) SymbolPeriod() lrwpantime.Duration { return f.symbol }

func (f *fakeTransceiver) Send(ctx context.Context, data []byte, sendAt *lrwpantime.Instant, ranging, useCsma bool, continuation phy.SendContinuation) (phy.SendResult, error) {
	f.sendCalls = append(f.sendCalls, append([]byte(nil), data...))
	if f.sendFunc == nil {
		return phy.SendResult{SentAt: f.instant}, nil
	}
	return f.sendFunc(data)
}

func (f *fakeTransceiver) EnergyDetect(ctx context.Context) (uint8, error) {
	if f.energyFunc == nil {
		return 0, nil
	}
	return f.energyFunc()
}

func (f *fakeTransceiver) StartReceive(ctx context.Context) error { return nil }
func (f *fakeTransceiver) StopReceive(ctx context.Context) error  { return nil }

func (f *fakeTransceiver) Wait(ctx context.Context) (phy.ProcessingContext, error) { return nil, nil }

func (f *fakeTransceiver) Process(ctx context.Context, pctx phy.ProcessingContext) (*phy.ReceivedMessage, error) {
	return nil, nil
}

func (f *fakeTransceiver) UpdatePhyPib(ctx context.Context, fn func(*pib.PhyPib)) error {
	fn(f.p)
	return nil
}

func (f *fakeTransceiver) PhyPib() *pib.PhyPib { return f.p }

var _ phy.Transceiver = (*fakeTransceiver)(nil)

func encodeAck(seq uint8) []byte {
	codec := wire.NewCodec(wire.FooterNone)
	buf := make([]byte, wire.MaxPHYPacketSize)
	n, err := codec.Encode(buf, &wire.Frame{
		Header: wire.Header{
			FrameType: wire.FrameTypeAcknowledgement,
			Version:   wire.FrameVersion2003,
			Seq:       seq,
			HasSeq:    true,
		},
	})
	if err != nil {
		panic(err)
	}
	return buf[:n]
}
