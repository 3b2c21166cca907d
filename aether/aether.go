// Package aether implements an in-process simulated radio fabric: a medium
// that every attached Radio sends into and receives from, with propagation
// delay derived from node position and an optional pcap-ng trace of every
// transmission. It exists to drive the MAC engine in tests without a real
// or emulated PHY.
package aether

import (
	"context"
	"io"
	"sync"

	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/pib"
)

type nodeID uint64

// airPacket is one transmission in flight: the bytes a Send call handed
// in, stamped with the instant it should arrive at the receiving node
// (which differs per node once propagation delay is added).
type airPacket struct {
	data    []byte
	arrives lrwpantime.Instant
	channel uint8
}

type node struct {
	position Coordinate
	antenna  chan airPacket
	rxEnable bool
	pib      pib.PhyPib
}

// Aether is a medium connecting any number of Radios. It routes every
// transmission to every other receiving node, offsetting each copy's
// timestamp by the sender-receiver propagation delay.
type Aether struct {
	clock *SimulationClock

	mu       sync.Mutex
	nodes    map[nodeID]*node
	nextID   nodeID
	trace    *tracer
	activity map[uint8]lrwpantime.Instant
}

// New creates an empty Aether with its own SimulationClock.
func New() *Aether {
	return &Aether{
		clock:    NewSimulationClock(),
		nodes:    make(map[nodeID]*node),
		activity: make(map[uint8]lrwpantime.Instant),
	}
}

// energyWindow is how long a channel is reported as busy after its last
// observed transmission, used as this fabric's stand-in for RSSI.
const energyWindow = lrwpantime.Duration(lrwpantime.TicksPerSecond / 1000)

// Radio attaches a new radio to the aether, at the origin, not yet
// receiving.
func (a *Aether) Radio() *Radio {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	n := &node{antenna: make(chan airPacket, 16), pib: pib.DefaultPhyPib()}
	a.nodes[id] = n
	a.mu.Unlock()

	return &Radio{aether: a, id: id}
}

// MoveTo repositions the radio identified by id. Radio.MoveTo is the public
// entry point; this does the locked lookup.
func (a *Aether) moveTo(id nodeID, pos Coordinate) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n, ok := a.nodes[id]; ok {
		n.position = pos
	}
}

// StartTrace begins writing every transmission on this aether to w as a
// pcap-ng capture. Only one trace may be active at a time.
func (a *Aether) StartTrace(w io.Writer) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	t, err := newTracer(w)
	if err != nil {
		return err
	}
	a.trace = t
	return nil
}

// StopTrace flushes and detaches the active trace.
func (a *Aether) StopTrace() error {
	a.mu.Lock()
	t := a.trace
	a.trace = nil
	a.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.flush()
}

func (a *Aether) send(from nodeID, data []byte, channel uint8) lrwpantime.Instant {
	now := a.clock.Now()

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.trace != nil {
		_ = a.trace.record(from, data, now)
	}

	a.activity[channel] = now

	fromNode, ok := a.nodes[from]
	if !ok {
		return now
	}

	for to, n := range a.nodes {
		if to == from || !n.rxEnable {
			continue
		}
		delay := fromNode.position.Distance(n.position).PropagationDelay()
		pkt := airPacket{data: data, arrives: now.Add(delay), channel: channel}
		select {
		case n.antenna <- pkt:
		default:
			// Receiver's antenna buffer is full; the packet is lost, same
			// as a real radio that missed a frame during processing.
		}
	}

	return now
}

func (a *Aether) setReceiving(id nodeID, on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n, ok := a.nodes[id]; ok {
		n.rxEnable = on
	}
}

func (a *Aether) currentPib(id nodeID) pib.PhyPib {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n, ok := a.nodes[id]; ok {
		return n.pib
	}
	return pib.DefaultPhyPib()
}

func (a *Aether) updatePib(id nodeID, p pib.PhyPib) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n, ok := a.nodes[id]; ok {
		n.pib = p
	}
}

// sampleEnergy reports channel's energy as an 8-bit level: saturated if a
// transmission landed on it within energyWindow, zero otherwise. Real RF
// energy has no analogue in this fabric, so recent transmit activity is
// the proxy.
func (a *Aether) sampleEnergy(channel uint8) uint8 {
	a.mu.Lock()
	last, ok := a.activity[channel]
	a.mu.Unlock()
	if !ok {
		return 0
	}
	if a.clock.Now().Sub(last) > energyWindow {
		return 0
	}
	return 255
}

func (a *Aether) antennaOf(ctx context.Context, id nodeID) (airPacket, error) {
	a.mu.Lock()
	n, ok := a.nodes[id]
	a.mu.Unlock()
	if !ok {
		<-ctx.Done()
		return airPacket{}, ctx.Err()
	}

	for {
		select {
		case pkt := <-n.antenna:
			a.clock.SleepUntil(pkt.arrives)
			return pkt, nil
		case <-ctx.Done():
			return airPacket{}, ctx.Err()
		}
	}
}
