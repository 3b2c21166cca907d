package aether

import (
	"context"
	"time"

	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/phy"
	"github.com/aethermac/lrwpan/pib"
)

// symbolPeriod is the O-QPSK 2.4GHz PHY's symbol duration (4 bits/symbol at
// 250kbit/s), used as every Radio's fixed SymbolPeriod.
var symbolPeriod = lrwpantime.Micros(16)

// Radio is a single node's view into an Aether: the phy.Transceiver the MAC
// engine drives.
type Radio struct {
	aether *Aether
	id     nodeID
}

var _ phy.Transceiver = (*Radio)(nil)

// MoveTo repositions this radio in the aether's simulated space, changing
// the propagation delay to and from every other attached radio.
func (r *Radio) MoveTo(pos Coordinate) {
	r.aether.moveTo(r.id, pos)
}

func (r *Radio) Reset(ctx context.Context) error {
	r.aether.setReceiving(r.id, false)
	r.aether.updatePib(r.id, pib.DefaultPhyPib())
	return nil
}

func (r *Radio) Instant(ctx context.Context) (lrwpantime.Instant, error) {
	return r.aether.clock.Now(), nil
}

func (r *Radio) SymbolPeriod() lrwpantime.Duration { return symbolPeriod }

func (r *Radio) Send(ctx context.Context, data []byte, sendAt *lrwpantime.Instant, ranging, useCsma bool, continuation phy.SendContinuation) (phy.SendResult, error) {
	if sendAt != nil {
		r.aether.clock.SleepUntil(*sendAt)
	}

	buf := append([]byte(nil), data...)
	channel := r.aether.currentPib(r.id).CurrentChannel
	sentAt := r.aether.send(r.id, buf, channel)

	switch continuation.Kind {
	case phy.ContinuationIdle:
		return phy.SendResult{SentAt: sentAt}, nil

	case phy.ContinuationReceiveContinuous:
		if err := r.StartReceive(ctx); err != nil {
			return phy.SendResult{}, err
		}
		return phy.SendResult{SentAt: sentAt}, nil

	case phy.ContinuationWaitForResponse:
		r.aether.clock.SleepUntil(sentAt.Add(continuation.TurnaroundTime))
		if err := r.StartReceive(ctx); err != nil {
			return phy.SendResult{}, err
		}
		defer r.StopReceive(ctx)

		deadline := time.Now().Add(time.Duration(continuation.Timeout.Seconds() * float64(time.Second)))
		for {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return phy.SendResult{SentAt: sentAt}, nil
			}

			waitCtx, cancel := context.WithTimeout(ctx, remaining)
			pctx, err := r.Wait(waitCtx)
			cancel()
			if err != nil {
				if ctx.Err() != nil {
					return phy.SendResult{}, ctx.Err()
				}
				return phy.SendResult{SentAt: sentAt}, nil
			}

			msg, err := r.Process(ctx, pctx)
			if err != nil {
				return phy.SendResult{}, err
			}
			if msg != nil {
				return phy.SendResult{SentAt: sentAt, Response: msg}, nil
			}
		}

	default:
		return phy.SendResult{SentAt: sentAt}, nil
	}
}

// EnergyDetect samples the current channel for one scan period. In this
// simulated fabric there is no real RSSI; sampleEnergy reports recent
// transmit activity on the channel as a saturated reading instead.
func (r *Radio) EnergyDetect(ctx context.Context) (uint8, error) {
	channel := r.aether.currentPib(r.id).CurrentChannel
	return r.aether.sampleEnergy(channel), nil
}

func (r *Radio) StartReceive(ctx context.Context) error {
	r.aether.setReceiving(r.id, true)
	return nil
}

func (r *Radio) StopReceive(ctx context.Context) error {
	r.aether.setReceiving(r.id, false)
	return nil
}

// Wait blocks until a frame meant for this radio's current channel arrives.
// Frames on other channels are silently skipped, same as a real radio that
// never demodulates them.
func (r *Radio) Wait(ctx context.Context) (phy.ProcessingContext, error) {
	for {
		pkt, err := r.aether.antennaOf(ctx, r.id)
		if err != nil {
			return nil, err
		}
		if pkt.channel != r.aether.currentPib(r.id).CurrentChannel {
			continue
		}
		return pkt, nil
	}
}

func (r *Radio) Process(ctx context.Context, pctx phy.ProcessingContext) (*phy.ReceivedMessage, error) {
	pkt, ok := pctx.(airPacket)
	if !ok {
		return nil, nil
	}
	p := r.aether.currentPib(r.id)
	return &phy.ReceivedMessage{
		Timestamp: pkt.arrives,
		Data:      pkt.data,
		Lqi:       255,
		Channel:   pkt.channel,
		Page:      p.CurrentPage,
	}, nil
}

func (r *Radio) UpdatePhyPib(ctx context.Context, f func(*pib.PhyPib)) error {
	p := r.aether.currentPib(r.id)
	f(&p)
	r.aether.updatePib(r.id, p)
	return nil
}

func (r *Radio) PhyPib() *pib.PhyPib {
	p := r.aether.currentPib(r.id)
	return &p
}
