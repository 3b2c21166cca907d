// Package engine runs the MAC sublayer's event loop: the single goroutine
// that owns the PIBs and session state, dispatches SAP requests to the
// mlme package, and drives beacon emission, scan progression, indirect
// data delivery, and follow-up data requests off the PHY's clock.
package engine

import (
	"github.com/pkg/errors"

	"github.com/aethermac/lrwpan/addr"
)

// beaconPlanningHeadroomMicros and dataRequestPlanningHeadroomMicros are a
// 20 ms planning margin for scheduled beacons and follow-up data requests.
// The event loop does not reference them: a beacon or data request is
// acted on when its own deadline is reached, with no lead time.
const (
	beaconPlanningHeadroomMicros      = 20_000
	dataRequestPlanningHeadroomMicros = 20_000
)

// Config configures a Engine. The zero value is valid: Valid fills in the
// standard's defaults for anything left unset.
type Config struct {
	// ExtendedAddress is this device's EUI-64, burned in at manufacture.
	ExtendedAddress addr.ExtendedAddress

	// RequestQueueCapacity bounds the number of outstanding SAP requests
	// the commander will hold before Request blocks. 0 means the default
	// of 4.
	RequestQueueCapacity int

	// IndicationQueueCapacity bounds the same for indications delivered
	// upward. 0 means the default of 4.
	IndicationQueueCapacity int
}

// Valid fills unset fields with their defaults, returning an error only
// when a value is both set and out of range.
func (c *Config) Valid() error {
	if c == nil {
		return errors.New("engine: nil config")
	}

	if c.RequestQueueCapacity == 0 {
		c.RequestQueueCapacity = 4
	} else if c.RequestQueueCapacity < 0 {
		return errors.New("engine: RequestQueueCapacity must be positive")
	}

	if c.IndicationQueueCapacity == 0 {
		c.IndicationQueueCapacity = 4
	} else if c.IndicationQueueCapacity < 0 {
		return errors.New("engine: IndicationQueueCapacity must be positive")
	}

	return nil
}
