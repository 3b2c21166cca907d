package mac

import (
	"testing"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/lrwpantime"
	"github.com/aethermac/lrwpan/sap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanProcessWalksChannelsThenFinishes(t *testing.T) {
	req := sap.ScanRequest{
		ScanType:     sap.ScanTypePassive,
		ScanChannels: []uint8{11, 12, 13},
		ScanDuration: 2,
	}
	proc := NewScanProcess(req, lrwpantime.Duration(16), lrwpantime.Zero, 0x1234, func(sap.ScanConfirm) {})

	action := proc.NextAction()
	require.False(t, action.Finish)
	assert.Equal(t, uint8(11), action.Channel)
	proc.RegisterActionExecuted(action)

	action = proc.NextAction()
	require.False(t, action.Finish)
	assert.Equal(t, uint8(12), action.Channel)
	proc.RegisterActionExecuted(action)

	action = proc.NextAction()
	require.False(t, action.Finish)
	assert.Equal(t, uint8(13), action.Channel)
	proc.RegisterActionExecuted(action)

	action = proc.NextAction()
	assert.True(t, action.Finish)
}

func TestScanProcessFailedActionSkipsChannel(t *testing.T) {
	req := sap.ScanRequest{ScanChannels: []uint8{11, 12}, ScanDuration: 1}
	proc := NewScanProcess(req, lrwpantime.Duration(16), lrwpantime.Zero, 0, func(sap.ScanConfirm) {})

	proc.RegisterActionFailed(lrwpantime.Instant(500))
	action := proc.NextAction()
	// The first channel was skipped on failure, not removed, so it is
	// still present in the list but no longer the next action index.
	assert.Equal(t, uint8(12), action.Channel)
}

func TestScanProcessFinishRestoresPanIdAndNoBeaconStatus(t *testing.T) {
	req := sap.ScanRequest{ScanChannels: []uint8{11}, ScanDuration: 1}
	var confirm sap.ScanConfirm
	proc := NewScanProcess(req, lrwpantime.Duration(16), lrwpantime.Zero, 0x9999, func(c sap.ScanConfirm) {
		confirm = c
	})

	action := proc.NextAction()
	proc.RegisterActionExecuted(action)

	var restored addr.PanId
	proc.Finish(func(p addr.PanId) { restored = p }, sap.StatusSuccess)

	assert.Equal(t, addr.PanId(0x9999), restored)
	assert.Equal(t, sap.StatusNoBeacon, confirm.Status)
}

func TestScanProcessRegisterEnergyReadingAccumulatesPerChannel(t *testing.T) {
	req := sap.ScanRequest{ScanType: sap.ScanTypeEnergyDetect, ScanChannels: []uint8{11, 12}, ScanDuration: 1}
	proc := NewScanProcess(req, lrwpantime.Duration(16), lrwpantime.Zero, 0, func(sap.ScanConfirm) {})

	proc.RegisterEnergyReading(10)
	proc.RegisterEnergyReading(200)

	assert.Equal(t, []uint8{10, 200}, proc.results.EnergyDetectList)
}

func TestScanProcessRegisterReceivedBeaconDedupes(t *testing.T) {
	req := sap.ScanRequest{ScanChannels: []uint8{11}, ScanDuration: 1}
	proc := NewScanProcess(req, lrwpantime.Duration(16), lrwpantime.Zero, 0, func(sap.ScanConfirm) {})

	descr := sap.PanDescriptor{CoordAddress: addr.NewShort(1, 5), ChannelNumber: 11}
	full := proc.RegisterReceivedBeacon(descr, true)
	assert.False(t, full)
	assert.Len(t, proc.results.PanDescriptorList, 1)

	// Duplicate (same coordinator, same channel) is ignored.
	full = proc.RegisterReceivedBeacon(descr, true)
	assert.False(t, full)
	assert.Len(t, proc.results.PanDescriptorList, 1)
}
