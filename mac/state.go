// Package mac holds the MAC sublayer's mutable runtime state: beacon mode,
// the broadcast/data-request scheduler, pending indirect transactions, and
// the in-flight scan process. Everything here is owned by the engine task
// and mutated only from its event loop goroutine.
package mac

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/sap"
	"github.com/aethermac/lrwpan/wire"
)

// BeaconMode selects whether and how this device emits beacons: off, on as
// an autonomous (non-tracking) beacon source, or on while tracking a parent
// coordinator's beacon.
type BeaconMode uint8

const (
	BeaconModeOff BeaconMode = iota
	BeaconModeOnAutonomous
	BeaconModeOnTracking
)

// State is the MAC sublayer's session state: everything that survives
// across individual SAP requests but resets on MLME-RESET.
type State struct {
	Scheduler Scheduler

	BeaconSecurityInfo       sap.SecurityInfo
	CoordinatorBeaconTracked bool
	BeaconMode               BeaconMode
	TrackingStartTime        lrwpantime.Instant

	IsPanCoordinator    bool
	CurrentGts          wire.GtsInfo
	OwnSuperframeActive bool

	CurrentScan *ScanProcess

	// Indirect transactions: data frames held for a device that polls with
	// MLME-POLL / a data-request command, keyed by the device's address.
	Pending *PendingTable
}

// New returns a fresh State, as after MLME-RESET.
func New() *State {
	return &State{
		Scheduler: NewScheduler(),
		Pending:   NewPendingTable(pendingTableCapacity),
	}
}

// Reset restores beacon/scan/scheduler state to their post-MLME-RESET
// defaults. PIB values are reset separately by the caller (mlme.Reset),
// since MacPib/PhyPib are owned outside this package.
func (s *State) Reset() {
	*s = *New()
}

// Device is a pending-data lookup key: either a short or extended address.
type Device = addr.Address
