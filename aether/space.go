package aether

import (
	"math"

	"github.com/aethermac/lrwpan/lrwpantime"
)

// SpeedOfLight is the propagation speed used to turn distance into delay.
const SpeedOfLight = 299_792_458.0

// Meters is a distance in meters.
type Meters float64

// PropagationDelay is the time a radio wave takes to cross d, as a tick
// Duration.
func (d Meters) PropagationDelay() lrwpantime.Duration {
	return lrwpantime.Seconds(float64(d) / SpeedOfLight)
}

// Coordinate is a node's position in the simulated space.
type Coordinate struct {
	X, Y Meters
}

// Distance returns the straight-line distance between c and other.
func (c Coordinate) Distance(other Coordinate) Meters {
	dx := c.X - other.X
	dy := c.Y - other.Y
	return Meters(math.Sqrt(float64(dx*dx + dy*dy)))
}
