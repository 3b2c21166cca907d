package aether

import (
	"io"
	"time"

	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// snapLength bounds every capture block the same way the codec bounds an
// encoded frame: 802.15.4 never exceeds aMaxPHYPacketSize octets on air.
const snapLength = 127

// tracer writes every transmission on an Aether to a pcap-ng capture, one
// interface per node, so a failing test's traffic can be opened in
// Wireshark. Interface names are stable per node (a random uuid minted the
// first time that node transmits) rather than reused node ids, so two runs
// of the same scenario never collide if their captures are merged.
type tracer struct {
	writer  *pcapgo.NgWriter
	started time.Time
	byNode  map[nodeID]int
}

func newInterface(name string) pcapgo.NgInterface {
	return pcapgo.NgInterface{
		Name:       name,
		LinkType:   layers.LinkTypeIEEE802_15_4_NoFCS,
		SnapLength: snapLength,
	}
}

func newTracer(w io.Writer) (*tracer, error) {
	writer, err := pcapgo.NewNgWriterInterface(w, newInterface("aether-"+uuid.NewString()), pcapgo.NgWriterOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "aether: opening pcap-ng writer")
	}

	return &tracer{writer: writer, started: time.Now(), byNode: make(map[nodeID]int)}, nil
}

func (t *tracer) interfaceFor(id nodeID) (int, error) {
	if ifaceID, ok := t.byNode[id]; ok {
		return ifaceID, nil
	}

	ifaceID, err := t.writer.AddInterface(newInterface("node-" + uuid.NewString()))
	if err != nil {
		return 0, errors.Wrap(err, "aether: registering trace interface")
	}
	t.byNode[id] = ifaceID
	return ifaceID, nil
}

func (t *tracer) record(id nodeID, data []byte, at lrwpantime.Instant) error {
	ifaceID, err := t.interfaceFor(id)
	if err != nil {
		return err
	}

	ts := t.started.Add(time.Duration(at.Sub(lrwpantime.Zero).Seconds() * float64(time.Second)))
	ci := gopacket.CaptureInfo{
		Timestamp:     ts,
		CaptureLength: len(data),
		Length:        len(data),
	}
	if err := t.writer.WritePacketWithInterface(ci, data, ifaceID); err != nil {
		return errors.Wrap(err, "aether: writing trace packet")
	}
	return nil
}

func (t *tracer) flush() error {
	return t.writer.Flush()
}
