package mac

import (
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
	"github.com/gammazero/deque"
)

// BroadcastQueueCapacity bounds the number of broadcast frames a PAN
// coordinator can have scheduled (after its own beacon) at once.
const BroadcastQueueCapacity = 4

// DataRequestMode selects when a scheduled data request is sent.
type DataRequestMode uint8

const (
	// DataRequestInSuperframe sends in the CAP of the outgoing superframe.
	DataRequestInSuperframe DataRequestMode = iota
	// DataRequestIndependent sends without regard for beacons, at Timestamp
	// (zero value Instant means "as soon as its turn comes").
	DataRequestIndependent
)

// IsIndependent reports whether the request ignores superframe timing.
func (m DataRequestMode) IsIndependent() bool { return m == DataRequestIndependent }

// ScheduledMessage is a fully-encoded frame waiting to go out, plus the
// callback the sender is blocked on.
type ScheduledMessage struct {
	Data     []byte
	Callback func(sent bool)
}

// DataRequestPurpose distinguishes why a data request was scheduled, since
// the frame it ultimately solicits is interpreted differently depending on
// who asked for it.
type DataRequestPurpose uint8

const (
	// DataRequestPurposePoll is a plain MLME-POLL/indirect-data fetch: the
	// response, if any, is handed back to the MAC user as-is.
	DataRequestPurposePoll DataRequestPurpose = iota
	// DataRequestPurposeAssociation follows up an association request
	// whose ack carried the frame-pending bit: the engine waits for an
	// association-response command and builds the deferred
	// MLME-ASSOCIATE.confirm from it.
	DataRequestPurposeAssociation
)

// DataRequestResult is what a scheduled data request resolved to: either a
// response frame was received within macMaxFrameTotalWaitTime, or it wasn't
// and Status explains why (NoData, NoAck, ChannelAccessFailure, ...).
type DataRequestResult struct {
	Status   sap.Status
	Response *wire.Frame
}

// ScheduledDataRequest is a queued MCPS data-request awaiting transmission.
type ScheduledDataRequest struct {
	Mode         DataRequestMode
	Purpose      DataRequestPurpose
	Timestamp    lrwpantime.Instant
	SecurityInfo sap.SecurityInfo

	// Callback is invoked exactly once, by the engine, once the request
	// has been sent and its response (or lack of one) is known.
	Callback func(DataRequestResult)
}

// Scheduler is the MessageScheduler: the broadcast queue and the queue of
// scheduled data requests. The table of indirect ("pending") addresses
// advertised in this coordinator's beacons is State.Pending, not part of
// the Scheduler.
type Scheduler struct {
	broadcasts   deque.Deque[ScheduledMessage]
	dataRequests deque.Deque[ScheduledDataRequest]
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() Scheduler {
	return Scheduler{}
}

// ScheduleBroadcastPriority pushes msg to the front of the broadcast queue
// (used for coordinator-realignment, which must preempt ordinary traffic).
// Panics if the queue is already at BroadcastQueueCapacity: the caller is
// expected to size its own traffic to the bound, not recover from this.
func (s *Scheduler) ScheduleBroadcastPriority(msg ScheduledMessage) {
	if s.broadcasts.Len() >= BroadcastQueueCapacity {
		panic("mac: scheduled broadcasts reached capacity")
	}
	s.broadcasts.PushFront(msg)
}

// ScheduleBroadcast appends msg to the back of the broadcast queue.
func (s *Scheduler) ScheduleBroadcast(msg ScheduledMessage) {
	if s.broadcasts.Len() >= BroadcastQueueCapacity {
		panic("mac: scheduled broadcasts reached capacity")
	}
	s.broadcasts.PushBack(msg)
}

// HasBroadcastScheduled reports whether a broadcast is waiting to go out.
func (s *Scheduler) HasBroadcastScheduled() bool { return s.broadcasts.Len() > 0 }

// TakeScheduledBroadcast pops and returns the next broadcast, if any.
func (s *Scheduler) TakeScheduledBroadcast() (ScheduledMessage, bool) {
	if s.broadcasts.Len() == 0 {
		return ScheduledMessage{}, false
	}
	return s.broadcasts.PopFront(), true
}

// GetPendingAddresses builds the beacon's pending-address field from the
// caller-supplied pending table.
func (t *PendingTable) GetPendingAddresses() wire.PendingAddress {
	t.mu.Lock()
	defer t.mu.Unlock()

	var pa wire.PendingAddress
	for dev := range t.entries {
		if dev.IsShort() {
			pa.Short = append(pa.Short, dev.Short)
		} else {
			pa.Extended = append(pa.Extended, dev.Extended)
		}
		if len(pa.Short) >= wire.MaxPendingShort && len(pa.Extended) >= wire.MaxPendingExtended {
			break
		}
	}
	return pa
}

// ScheduleDataRequest queues a data request. Any number may be queued;
// source-initiated independent requests and in-superframe requests share
// one queue and are told apart by Mode when taken.
func (s *Scheduler) ScheduleDataRequest(req ScheduledDataRequest) {
	s.dataRequests.PushBack(req)
}

// TakeSuperframeDataRequest removes and returns the first in-superframe
// request, if any.
func (s *Scheduler) TakeSuperframeDataRequest() (ScheduledDataRequest, bool) {
	return s.takeDataRequest(func(m DataRequestMode) bool { return !m.IsIndependent() })
}

// TakeIndependentDataRequest removes and returns the first independent
// request, if any.
func (s *Scheduler) TakeIndependentDataRequest() (ScheduledDataRequest, bool) {
	return s.takeDataRequest(DataRequestMode.IsIndependent)
}

func (s *Scheduler) takeDataRequest(match func(DataRequestMode) bool) (ScheduledDataRequest, bool) {
	for i := 0; i < s.dataRequests.Len(); i++ {
		req := s.dataRequests.At(i)
		if match(req.Mode) {
			s.dataRequests.Remove(i)
			return req, true
		}
	}
	return ScheduledDataRequest{}, false
}
