package pib

import (
	"math"
	"testing"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhyGetSetRoundTrip(t *testing.T) {
	phy := DefaultPhyPib()

	status := phy.Set("phyCurrentChannel", uint8(11))
	require.Equal(t, StatusSuccess, status)
	v, status := phy.Get("phyCurrentChannel")
	require.Equal(t, StatusSuccess, status)
	assert.Equal(t, uint8(11), v)
}

func TestPhySetReadOnlyRejected(t *testing.T) {
	phy := DefaultPhyPib()
	status := phy.Set("phyMaxFrameDuration", uint32(1))
	assert.Equal(t, StatusReadOnly, status)
}

func TestPhySetWrongTypeRejected(t *testing.T) {
	phy := DefaultPhyPib()
	status := phy.Set("phyCurrentChannel", "not a channel")
	assert.Equal(t, StatusInvalidParameter, status)
}

func TestPhyGetUnknownAttribute(t *testing.T) {
	phy := DefaultPhyPib()
	_, status := phy.Get("phyBogus")
	assert.Equal(t, StatusUnsupportedAttribute, status)
}

func TestMacMaxBeRange(t *testing.T) {
	mac := DefaultMacPib()
	assert.Equal(t, StatusInvalidParameter, mac.Set("macMaxBE", uint8(2)))
	assert.Equal(t, StatusInvalidParameter, mac.Set("macMaxBE", uint8(9)))
	assert.Equal(t, StatusSuccess, mac.Set("macMaxBE", uint8(5)))
	assert.Equal(t, uint8(5), mac.MaxBe)
}

func TestMacMinBeBoundedByMaxBe(t *testing.T) {
	mac := DefaultMacPib()
	require.Equal(t, StatusSuccess, mac.Set("macMaxBE", uint8(5)))
	assert.Equal(t, StatusInvalidParameter, mac.Set("macMinBE", uint8(6)))
	assert.Equal(t, StatusSuccess, mac.Set("macMinBE", uint8(3)))
}

func TestMacResponseWaitTimeRange(t *testing.T) {
	mac := DefaultMacPib()
	assert.Equal(t, StatusInvalidParameter, mac.Set("macResponseWaitTime", uint8(1)))
	assert.Equal(t, StatusInvalidParameter, mac.Set("macResponseWaitTime", uint8(65)))
	assert.Equal(t, StatusSuccess, mac.Set("macResponseWaitTime", uint8(32)))
}

func TestMacTxControlPauseDurationDiscreteValues(t *testing.T) {
	mac := DefaultMacPib()
	assert.Equal(t, StatusInvalidParameter, mac.Set("macTxControlPauseDuration", uint32(5000)))
	assert.Equal(t, StatusSuccess, mac.Set("macTxControlPauseDuration", uint32(2000)))
	assert.Equal(t, StatusSuccess, mac.Set("macTxControlPauseDuration", uint32(10000)))
}

func TestMacReadOnlyAttributesRejectSet(t *testing.T) {
	mac := DefaultMacPib()
	for _, name := range []string{
		"macExtendedAddress", "macAckWaitDuration", "macBeaconTxTime",
		"macLIFSPeriod", "macSIFSPeriod", "macRangingSupported",
		"macSuperframeOrder", "macSyncSymbolOffset", "macTimestampSupported",
		"macMaxFrameTotalWaitTime",
	} {
		assert.Equal(t, StatusReadOnly, mac.Set(name, uint8(1)), name)
	}
}

func TestMacPanIdSetAndGet(t *testing.T) {
	mac := DefaultMacPib()
	require.Equal(t, StatusSuccess, mac.Set("macPANId", addr.PanId(0x1234)))
	phy := DefaultPhyPib()
	v, status := mac.Get("macPANId", &phy)
	require.Equal(t, StatusSuccess, status)
	assert.Equal(t, addr.PanId(0x1234), v)
}

func TestAckWaitDurationMatchesFormula(t *testing.T) {
	mac := DefaultMacPib()
	phy := DefaultPhyPib()
	got := mac.AckWaitDuration(&phy)
	want := uint32(wire.UnitBackoffPeriod) + uint32(wire.TurnaroundTime) + phy.ShrDuration +
		uint32(math.Ceil(6.0*phy.SymbolsPerOctet))
	assert.Equal(t, want, got)
}

func TestSuperframeDurationInactiveIsZero(t *testing.T) {
	mac := DefaultMacPib()
	assert.Equal(t, uint32(0), mac.SuperframeDuration())
}

func TestSuperframeDurationActive(t *testing.T) {
	mac := DefaultMacPib()
	mac.SuperframeOrder = 3
	assert.Equal(t, uint32(wire.BaseSuperframeDuration<<3), mac.SuperframeDuration())
}

func TestBeaconIntervalOnDemandIsZero(t *testing.T) {
	mac := DefaultMacPib()
	assert.Equal(t, uint32(0), mac.BeaconInterval())
}
