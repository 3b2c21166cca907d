// Package phy defines the PHY-layer contract the MAC engine drives: a
// Transceiver interface implemented either by a real radio driver or by
// aether's simulated fabric, plus the message/result types that cross it.
package phy

import (
	"context"

	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/pib"
	"github.com/aethermac/lrwpan/wire"
)

// Modulation names the PHY's modulation scheme, which fixes the default
// macTxControlActiveDuration/macTxControlPauseDuration pair (7.4.1 of the
// spec expansion).
type Modulation uint8

const (
	ModulationBPSK Modulation = iota
	ModulationGFSK
)

// TxControlActiveDuration is the default active duration for m.
func (m Modulation) TxControlActiveDuration() uint32 {
	switch m {
	case ModulationGFSK:
		return 10000
	default:
		return 2000
	}
}

// TxControlPauseDuration is the default pause duration for m.
func (m Modulation) TxControlPauseDuration() uint32 {
	switch m {
	case ModulationGFSK:
		return 10000
	default:
		return 2000
	}
}

// SendContinuation tells the transceiver what to do immediately after a
// transmission completes.
type SendContinuation struct {
	// Kind selects one of Idle / WaitForResponse / ReceiveContinuous.
	Kind SendContinuationKind

	// TurnaroundTime and Timeout apply only to WaitForResponse.
	TurnaroundTime lrwpantime.Duration
	Timeout        lrwpantime.Duration
}

type SendContinuationKind uint8

const (
	ContinuationIdle SendContinuationKind = iota
	ContinuationWaitForResponse
	ContinuationReceiveContinuous
)

// SendResult is the outcome of Transceiver.Send.
type SendResult struct {
	// ChannelAccessFailure is true if CSMA-CA found the channel busy on
	// every attempt; in that case SentAt/Response are zero.
	ChannelAccessFailure bool

	SentAt   lrwpantime.Instant
	Response *ReceivedMessage
}

// ReceivedMessage is one inbound over-the-air frame as delivered by
// Transceiver.Process.
type ReceivedMessage struct {
	Timestamp lrwpantime.Instant
	Data      []byte
	Lqi       uint8
	Channel   uint8
	Page      wire.ChannelPage
}

// Transceiver is the PHY contract the MAC engine drives. Implementations
// must reflect PIB updates (channel, power, CCA mode) into subsequent
// Send/StartReceive calls immediately, even if that means interrupting an
// in-progress receive.
type Transceiver interface {
	// Reset returns the PHY and its PIB to power-on defaults.
	Reset(ctx context.Context) error

	// Instant reads the radio's current time. Not precise; used for
	// logging and as a scan/timer reference, not for ranging.
	Instant(ctx context.Context) (lrwpantime.Instant, error)

	// SymbolPeriod is the duration of one PHY symbol at the current
	// channel/page/data rate.
	SymbolPeriod() lrwpantime.Duration

	// Send transmits data, a fully encoded MAC frame. If sendAt is
	// non-nil the frame must go out at exactly that instant; otherwise
	// as soon as possible. If useCsma is true, CCA/CSMA-CA gates the
	// send and ChannelAccessFailure may result.
	Send(ctx context.Context, data []byte, sendAt *lrwpantime.Instant, ranging, useCsma bool, continuation SendContinuation) (SendResult, error)

	// EnergyDetect samples the current channel's RSSI for one scan period
	// and returns it normalized to an 8-bit energy level (5.1.2.1).
	EnergyDetect(ctx context.Context) (uint8, error)

	// StartReceive turns the receiver on; a no-op if already receiving.
	StartReceive(ctx context.Context) error

	// StopReceive turns the receiver off.
	StopReceive(ctx context.Context) error

	// Wait blocks until the PHY has something to report (a received
	// frame, a send completing, a timer elapsing) and returns an opaque
	// token to pass to Process. Cancel-safe.
	Wait(ctx context.Context) (ProcessingContext, error)

	// Process performs the bookkeeping for what Wait woke up for and
	// returns the received frame, if any. Not cancel-safe.
	Process(ctx context.Context, pctx ProcessingContext) (*ReceivedMessage, error)

	// UpdatePhyPib mutates the writable PHY PIB by calling f under the
	// transceiver's own synchronization, and reports whether the update
	// could be applied.
	UpdatePhyPib(ctx context.Context, f func(*pib.PhyPib)) error

	// PhyPib returns the current PHY PIB for reading.
	PhyPib() *pib.PhyPib
}

// ProcessingContext is an opaque token returned by Wait and consumed by
// Process; its structure is owned by the Transceiver implementation.
type ProcessingContext interface{}
