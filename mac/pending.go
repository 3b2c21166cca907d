package mac

import (
	"sync"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
)

// pendingTableCapacity bounds the number of devices a coordinator can hold
// indirect data for at once; it mirrors the beacon pending-address lists'
// 7-short/7-extended limit since every held transaction must fit in a
// beacon's pending-address field to be announced.
const pendingTableCapacity = 14

// pendingEntry is one held (indirect) data frame plus its expiry.
type pendingEntry struct {
	handle  uint8
	data    []byte
	expires lrwpantime.Instant
	confirm func(sent bool)
}

// PendingTable holds MCPS-DATA frames queued for devices that poll for
// them (MLME-POLL / a data-request command), as required of a coordinator
// for indirect transmission. Entries expire after macTransactionPersistenceTime
// (in units of aBaseSuperframeDuration symbols) if never polled for.
type PendingTable struct {
	mu      sync.Mutex
	entries map[addr.Address]pendingEntry
	cap     int
}

// NewPendingTable returns an empty table bounded to cap entries.
func NewPendingTable(cap int) *PendingTable {
	return &PendingTable{entries: make(map[addr.Address]pendingEntry), cap: cap}
}

// Add queues data for dev under msduHandle, to expire at expires. Reports
// false (and queues nothing) if the table is full and dev has no existing
// entry.
func (t *PendingTable) Add(dev addr.Address, handle uint8, data []byte, expires lrwpantime.Instant, confirm func(sent bool)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.entries[dev]; !exists && len(t.entries) >= t.cap {
		return false
	}
	t.entries[dev] = pendingEntry{handle: handle, data: data, expires: expires, confirm: confirm}
	return true
}

// Take removes and returns the frame held for dev, if any.
func (t *PendingTable) Take(dev addr.Address) ([]byte, func(bool), bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[dev]
	if !ok {
		return nil, nil, false
	}
	delete(t.entries, dev)
	return e.data, e.confirm, true
}

// Has reports whether dev currently has data held for it, without
// consuming the entry. Used to set the frame-pending bit of an outgoing
// acknowledgement.
func (t *PendingTable) Has(dev addr.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[dev]
	return ok
}

// ExpireBefore drops every entry whose expiry is at or before now, calling
// each one's confirm callback with sent=false. Returns the expired devices.
func (t *PendingTable) ExpireBefore(now lrwpantime.Instant) []addr.Address {
	t.mu.Lock()
	var expired []addr.Address
	var callbacks []func(bool)
	for dev, e := range t.entries {
		if !e.expires.After(now) {
			expired = append(expired, dev)
			callbacks = append(callbacks, e.confirm)
			delete(t.entries, dev)
		}
	}
	t.mu.Unlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(false)
		}
	}
	return expired
}

// Purge removes whichever entry was queued under msduHandle, without
// invoking its callback, as used by MCPS-PURGE.request. Reports whether an
// entry was actually removed.
func (t *PendingTable) Purge(handle uint8) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for dev, e := range t.entries {
		if e.handle == handle {
			delete(t.entries, dev)
			return true
		}
	}
	return false
}

// Len reports the number of devices currently holding pending data.
func (t *PendingTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}
