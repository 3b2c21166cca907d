package wire

import "github.com/aethermac/lrwpan/lrwpantime"

// Standard-defined MAC constants (802.15.4, table in spec.md §6).
const (
	BaseSlotDuration        = 60
	NumSuperframeSlots      = 16
	BaseSuperframeDuration  = BaseSlotDuration * NumSuperframeSlots // 960
	GtsDescPersistenceTime  = 4
	MaxBeaconOverhead       = 75
	MaxBeaconPayloadLength  = 52
	MaxLostBeacons          = 4
	MaxMacSafePayloadSize   = 102
	MaxMacPayloadSize       = 118
	MaxMPDUUnsecuredOverhead = 25
	MaxSifsFrameSize        = 18
	MinCapLength            = 440
	MinMPDUOverhead         = 9
	UnitBackoffPeriod       = 20
	TurnaroundTime          = 12
	MaxPHYPacketSize        = 127
	FooterLength            = 2

	// MaxMACPayloadSize is the largest payload an aMaxPHYPacketSize frame can
	// carry once the minimum header overhead is subtracted.
	MaxMACPayloadSize = MaxPHYPacketSize - MinMPDUOverhead - FooterLength
)

// ChannelPage enumerates the 802.15.4 channel pages (§6).
type ChannelPage uint8

const (
	PageMhz868_915_2450 ChannelPage = iota // 0
	PageMhz868_915_1                       // 1
	PageMhz868_915_2                       // 2
	PageCss                                // 3
	PageUwb                                // 4
	PageMhz780                             // 5
	PageMhz950                             // 6
)

func (p ChannelPage) String() string {
	switch p {
	case PageMhz868_915_2450:
		return "Mhz868_915_2450"
	case PageMhz868_915_1:
		return "Mhz868_915_1"
	case PageMhz868_915_2:
		return "Mhz868_915_2"
	case PageCss:
		return "Css"
	case PageUwb:
		return "Uwb"
	case PageMhz780:
		return "Mhz780"
	case PageMhz950:
		return "Mhz950"
	default:
		return "PageUnknown"
	}
}

// CW0 returns the minimum CSMA contention window for the channel page, per
// 5.1.1.4. spec.md's DESIGN NOTES resolve the source's page-6/page-5
// discrepancy in favor of: 2 for pages 0-4 and 6, 1 for page 5.
func (p ChannelPage) CW0() int {
	if p == PageMhz780 {
		return 1
	}
	return 2
}

// UnitBackoffDuration is aUnitBackoffPeriod expressed in symbol periods.
func UnitBackoffDuration(symbolPeriod lrwpantime.Duration) lrwpantime.Duration {
	return lrwpantime.Symbols(UnitBackoffPeriod, symbolPeriod)
}
