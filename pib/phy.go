package pib

import "github.com/aethermac/lrwpan/wire"

// PhyPib is the PHY half of the PAN Information Base. The driver owns this
// half; the MAC engine only reads it (plus writing through MLME-SET).
type PhyPib struct {
	// Writable.
	CurrentChannel              uint8
	TxPowerTolerance            uint8
	TxPower                     int8
	CcaMode                     uint8
	CurrentPage                 wire.ChannelPage
	UwbCurrentPulseShape        uint8
	UwbCouPulse                 uint8
	UwbCsPulse                  uint8
	UwbLcpWeight1               int8
	UwbLcpWeight2               int8
	UwbLcpWeight3               int8
	UwbLcpWeight4               int8
	UwbLcpDelay2                uint8
	UwbLcpDelay3                uint8
	UwbLcpDelay4                uint8
	CurrentCode                 uint8
	NativePrf                   uint8
	UwbScanBinsPerChannel       uint8
	UwbInsertedPreambleInterval uint8
	TxRmarkerOffset             int32
	RxRmarkerOffset             int32
	RframeProcessingTime        uint32
	CcaDuration                 uint32

	// Read-only.
	ChannelsSupported       []uint8
	MaxFrameDuration        uint32
	ShrDuration             uint32
	SymbolsPerOctet         float64
	PreambleSymbolLength    uint32
	UwbDataRatesSupported   []uint8
	CssLowDataRateSupported bool
	UwbCoUSupported         bool
	UwbCsSupported          bool
	UwbLcpSupported         bool
	Ranging                 bool
	RangingCrystalOffset    bool
	RangingDps              bool
}

// DefaultPhyPib returns a PhyPib populated with the UWB-PHY defaults used by
// the Aether simulator when no radio-specific profile is configured.
func DefaultPhyPib() PhyPib {
	const (
		numPreambleSymbols = 31
		numSfdSymbols       = 8
		symbolsPerOctet     = 9.17648
	)
	shrDuration := uint32(numPreambleSymbols + numSfdSymbols)
	maxFrameDuration := shrDuration + uint32(symbolsPerOctet*float64(wire.MaxPHYPacketSize+1)+0.999999)

	return PhyPib{
		CurrentChannel:       5,
		TxPowerTolerance:     6,
		CurrentPage:          wire.PageUwb,
		ChannelsSupported:    []uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		MaxFrameDuration:     maxFrameDuration,
		ShrDuration:          shrDuration,
		SymbolsPerOctet:      symbolsPerOctet,
		PreambleSymbolLength: numPreambleSymbols,
		Ranging:              true,
		CcaDuration:          8,
	}
}

const (
	attrPhyChannelsSupported          = "phyChannelsSupported"
	attrPhyMaxFrameDuration           = "phyMaxFrameDuration"
	attrPhyShrDuration                = "phySHRDuration"
	attrPhySymbolsPerOctet            = "phySymbolsPerOctet"
	attrPhyPreambleSymbolLength       = "phyPreambleSymbolLength"
	attrPhyUwbDataRatesSupported      = "phyUWBDataRatesSupported"
	attrPhyCssLowDataRateSupported    = "phyCSSLowDataRateSupported"
	attrPhyUwbCoUSupported            = "phyUWBCoUSupported"
	attrPhyUwbCsSupported             = "phyUWBCSSupported"
	attrPhyUwbLcpSupported            = "phyUWBLCPSupported"
	attrPhyRanging                    = "phyRanging"
	attrPhyRangingCrystalOffset       = "phyRangingCrystalOffset"
	attrPhyRangingDps                 = "phyRangingDPS"
	attrPhyCurrentChannel             = "phyCurrentChannel"
	attrPhyTxPowerTolerance           = "phyTXPowerTolerance"
	attrPhyTxPower                    = "phyTXPower"
	attrPhyCcaMode                    = "phyCCAMode"
	attrPhyCurrentPage                = "phyCurrentPage"
	attrPhyUwbCurrentPulseShape       = "phyUWBCurrentPulseShape"
	attrPhyUwbCouPulse                = "phyUWBCoUPulse"
	attrPhyUwbCsPulse                 = "phyUWBCSPulse"
	attrPhyUwbLcpWeight1              = "phyUWBLCPWeight1"
	attrPhyUwbLcpWeight2              = "phyUWBLCPWeight2"
	attrPhyUwbLcpWeight3              = "phyUWBLCPWeight3"
	attrPhyUwbLcpWeight4              = "phyUWBLCPWeight4"
	attrPhyUwbLcpDelay2               = "phyUWBLCPDelay2"
	attrPhyUwbLcpDelay3               = "phyUWBLCPDelay3"
	attrPhyUwbLcpDelay4               = "phyUWBLCPDelay4"
	attrPhyCurrentCode                = "phyCurrentCode"
	attrPhyNativePrf                  = "phyNativePRF"
	attrPhyUwbScanBinsPerChannel      = "phyUWBScanBinsPerChannel"
	attrPhyUwbInsertedPreambleInterval = "phyUWBInsertedPreambleInterval"
	attrPhyTxRmarkerOffset            = "phyTXRMARKEROffset"
	attrPhyRxRmarkerOffset            = "phyRXRMARKEROffset"
	attrPhyRframeProcessingTime       = "phyRFRAMEProcessingTime"
	attrPhyCcaDuration                = "phyCCADuration"
)

// Get reads a phy* attribute, returning its value and status.
func (p *PhyPib) Get(name string) (interface{}, Status) {
	switch name {
	case attrPhyChannelsSupported:
		return p.ChannelsSupported, StatusSuccess
	case attrPhyMaxFrameDuration:
		return p.MaxFrameDuration, StatusSuccess
	case attrPhyShrDuration:
		return p.ShrDuration, StatusSuccess
	case attrPhySymbolsPerOctet:
		return p.SymbolsPerOctet, StatusSuccess
	case attrPhyPreambleSymbolLength:
		return p.PreambleSymbolLength, StatusSuccess
	case attrPhyUwbDataRatesSupported:
		return p.UwbDataRatesSupported, StatusSuccess
	case attrPhyCssLowDataRateSupported:
		return p.CssLowDataRateSupported, StatusSuccess
	case attrPhyUwbCoUSupported:
		return p.UwbCoUSupported, StatusSuccess
	case attrPhyUwbCsSupported:
		return p.UwbCsSupported, StatusSuccess
	case attrPhyUwbLcpSupported:
		return p.UwbLcpSupported, StatusSuccess
	case attrPhyRanging:
		return p.Ranging, StatusSuccess
	case attrPhyRangingCrystalOffset:
		return p.RangingCrystalOffset, StatusSuccess
	case attrPhyRangingDps:
		return p.RangingDps, StatusSuccess
	case attrPhyCurrentChannel:
		return p.CurrentChannel, StatusSuccess
	case attrPhyTxPowerTolerance:
		return p.TxPowerTolerance, StatusSuccess
	case attrPhyTxPower:
		return p.TxPower, StatusSuccess
	case attrPhyCcaMode:
		return p.CcaMode, StatusSuccess
	case attrPhyCurrentPage:
		return p.CurrentPage, StatusSuccess
	case attrPhyUwbCurrentPulseShape:
		return p.UwbCurrentPulseShape, StatusSuccess
	case attrPhyUwbCouPulse:
		return p.UwbCouPulse, StatusSuccess
	case attrPhyUwbCsPulse:
		return p.UwbCsPulse, StatusSuccess
	case attrPhyUwbLcpWeight1:
		return p.UwbLcpWeight1, StatusSuccess
	case attrPhyUwbLcpWeight2:
		return p.UwbLcpWeight2, StatusSuccess
	case attrPhyUwbLcpWeight3:
		return p.UwbLcpWeight3, StatusSuccess
	case attrPhyUwbLcpWeight4:
		return p.UwbLcpWeight4, StatusSuccess
	case attrPhyUwbLcpDelay2:
		return p.UwbLcpDelay2, StatusSuccess
	case attrPhyUwbLcpDelay3:
		return p.UwbLcpDelay3, StatusSuccess
	case attrPhyUwbLcpDelay4:
		return p.UwbLcpDelay4, StatusSuccess
	case attrPhyCurrentCode:
		return p.CurrentCode, StatusSuccess
	case attrPhyNativePrf:
		return p.NativePrf, StatusSuccess
	case attrPhyUwbScanBinsPerChannel:
		return p.UwbScanBinsPerChannel, StatusSuccess
	case attrPhyUwbInsertedPreambleInterval:
		return p.UwbInsertedPreambleInterval, StatusSuccess
	case attrPhyTxRmarkerOffset:
		return p.TxRmarkerOffset, StatusSuccess
	case attrPhyRxRmarkerOffset:
		return p.RxRmarkerOffset, StatusSuccess
	case attrPhyRframeProcessingTime:
		return p.RframeProcessingTime, StatusSuccess
	case attrPhyCcaDuration:
		return p.CcaDuration, StatusSuccess
	default:
		return nil, StatusUnsupportedAttribute
	}
}

var phyReadOnly = map[string]bool{
	attrPhyChannelsSupported:       true,
	attrPhyMaxFrameDuration:        true,
	attrPhyShrDuration:             true,
	attrPhySymbolsPerOctet:         true,
	attrPhyPreambleSymbolLength:    true,
	attrPhyUwbDataRatesSupported:   true,
	attrPhyCssLowDataRateSupported: true,
	attrPhyUwbCoUSupported:         true,
	attrPhyUwbCsSupported:          true,
	attrPhyUwbLcpSupported:         true,
	attrPhyRanging:                 true,
	attrPhyRangingCrystalOffset:    true,
	attrPhyRangingDps:              true,
}

// Set writes a phy* attribute. Unknown names fail with
// StatusUnsupportedAttribute; read-only attributes fail with
// StatusReadOnly; type mismatches fail with StatusInvalidParameter.
func (p *PhyPib) Set(name string, value interface{}) Status {
	if phyReadOnly[name] {
		return StatusReadOnly
	}
	switch name {
	case attrPhyCurrentChannel:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.CurrentChannel = v
	case attrPhyTxPowerTolerance:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.TxPowerTolerance = v
	case attrPhyTxPower:
		v, ok := value.(int8)
		if !ok {
			return StatusInvalidParameter
		}
		p.TxPower = v
	case attrPhyCcaMode:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.CcaMode = v
	case attrPhyCurrentPage:
		v, ok := value.(wire.ChannelPage)
		if !ok {
			return StatusInvalidParameter
		}
		p.CurrentPage = v
	case attrPhyUwbCurrentPulseShape:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbCurrentPulseShape = v
	case attrPhyUwbCouPulse:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbCouPulse = v
	case attrPhyUwbCsPulse:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbCsPulse = v
	case attrPhyUwbLcpWeight1:
		v, ok := value.(int8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpWeight1 = v
	case attrPhyUwbLcpWeight2:
		v, ok := value.(int8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpWeight2 = v
	case attrPhyUwbLcpWeight3:
		v, ok := value.(int8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpWeight3 = v
	case attrPhyUwbLcpWeight4:
		v, ok := value.(int8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpWeight4 = v
	case attrPhyUwbLcpDelay2:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpDelay2 = v
	case attrPhyUwbLcpDelay3:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpDelay3 = v
	case attrPhyUwbLcpDelay4:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbLcpDelay4 = v
	case attrPhyCurrentCode:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.CurrentCode = v
	case attrPhyNativePrf:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.NativePrf = v
	case attrPhyUwbScanBinsPerChannel:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbScanBinsPerChannel = v
	case attrPhyUwbInsertedPreambleInterval:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		p.UwbInsertedPreambleInterval = v
	case attrPhyTxRmarkerOffset:
		v, ok := value.(int32)
		if !ok {
			return StatusInvalidParameter
		}
		p.TxRmarkerOffset = v
	case attrPhyRxRmarkerOffset:
		v, ok := value.(int32)
		if !ok {
			return StatusInvalidParameter
		}
		p.RxRmarkerOffset = v
	case attrPhyRframeProcessingTime:
		v, ok := value.(uint32)
		if !ok {
			return StatusInvalidParameter
		}
		p.RframeProcessingTime = v
	case attrPhyCcaDuration:
		v, ok := value.(uint32)
		if !ok {
			return StatusInvalidParameter
		}
		p.CcaDuration = v
	default:
		return StatusUnsupportedAttribute
	}
	return StatusSuccess
}
