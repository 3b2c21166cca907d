package pib

import (
	"math"

	"github.com/aethermac/lrwpan/addr"
	"github.com/aethermac/lrwpan/wire"
)

// MacPib is the MAC half of the PAN Information Base.
type MacPib struct {
	// Writable.
	AssociatedPanCoord         bool
	AssociationPermit          bool
	AutoRequest                bool
	BattLifeExt                bool
	BeaconPayload              []byte
	BeaconOrder                wire.BeaconOrder
	Bsn                        uint8
	CoordExtendedAddress       addr.ExtendedAddress
	CoordShortAddress          addr.ShortAddress
	Dsn                        uint8
	GtsPermit                  bool
	MaxBe                      uint8
	MaxCsmaBackoffs            uint8
	MaxFrameRetries            uint8
	MinBe                      uint8
	PanId                      addr.PanId
	PromiscuousMode            bool
	ResponseWaitTime           uint8
	RxOnWhenIdle               bool
	SecurityEnabled            bool
	ShortAddress               addr.ShortAddress
	TransactionPersistenceTime uint16
	TxControlActiveDuration    uint32
	TxControlPauseDuration     uint32
	TxTotalDuration            uint32

	// Read-only.
	ExtendedAddress   addr.ExtendedAddress
	BeaconTxTime       int64
	LifsPeriod         uint8
	SifsPeriod         uint8
	RangingSupported   bool
	SuperframeOrder    wire.SuperframeOrder
	SyncSymbolOffset   uint16
	TimestampSupported bool
}

// DefaultMacPib returns a MacPib with the standard's power-on/MLME-RESET
// defaults: not on a PAN (broadcast addresses), CSMA-CA parameters at their
// 802.15.4 defaults, auto-request and GTS permit enabled. bsn/dsn should be
// randomized by the caller (mlme.Reset draws them from its own rng) rather
// than fixed here.
func DefaultMacPib() MacPib {
	return MacPib{
		AutoRequest:                true,
		BeaconOrder:                wire.BeaconOrderOnDemand,
		CoordExtendedAddress:       addr.ExtendedAddress(0xFFFFFFFFFFFFFFFF),
		CoordShortAddress:          addr.BroadcastShortAddress,
		GtsPermit:                  true,
		MaxBe:                      5,
		MaxCsmaBackoffs:            4,
		MaxFrameRetries:            3,
		MinBe:                      3,
		PanId:                      addr.BroadcastPanId,
		ResponseWaitTime:           32,
		ShortAddress:               addr.BroadcastShortAddress,
		TransactionPersistenceTime: 0x01F4,

		ExtendedAddress:    addr.ExtendedAddress(0xFFFFFFFFFFFFFFFF),
		LifsPeriod:         40,
		SifsPeriod:         12,
		RangingSupported:   true,
		SuperframeOrder:    wire.SuperframeOrderInactive,
		TimestampSupported: true,
	}
}

// AckWaitDuration is macAckWaitDuration, §7.4.1 of the spec expansion.
func (m *MacPib) AckWaitDuration(phy *PhyPib) uint32 {
	return wire.UnitBackoffPeriod + wire.TurnaroundTime + phy.ShrDuration +
		uint32(math.Ceil(6.0*phy.SymbolsPerOctet))
}

// MaxFrameTotalWaitTime is macMaxFrameTotalWaitTime.
func (m *MacPib) MaxFrameTotalWaitTime(phy *PhyPib) uint32 {
	mm := m.MaxBe - m.MinBe
	if m.MaxCsmaBackoffs < mm {
		mm = m.MaxCsmaBackoffs
	}

	total := uint32(m.MaxCsmaBackoffs-mm) * ((1 << uint32(m.MaxBe)) - 1)
	for k := uint8(0); k < mm; k++ {
		total += 1 << uint32(m.MinBe+k)
	}
	total *= wire.UnitBackoffPeriod
	total += phy.MaxFrameDuration
	return total
}

// BattLifeExtPeriods is macBattLifeExtPeriods.
func (m *MacPib) BattLifeExtPeriods(phy *PhyPib) uint8 {
	return uint8(3 + uint32(phy.CurrentPage.CW0()) +
		(phy.ShrDuration+wire.UnitBackoffPeriod/2)/wire.UnitBackoffPeriod)
}

// SuperframeDuration is aBaseSuperframeDuration << SO, or zero if the
// superframe is inactive.
func (m *MacPib) SuperframeDuration() uint32 {
	if m.SuperframeOrder == wire.SuperframeOrderInactive {
		return 0
	}
	return wire.BaseSuperframeDuration << uint32(m.SuperframeOrder)
}

// BeaconInterval is aBaseSuperframeDuration << BO, or zero if beacons are
// on-demand (nonbeacon-enabled PAN).
func (m *MacPib) BeaconInterval() uint32 {
	if m.BeaconOrder == wire.BeaconOrderOnDemand {
		return 0
	}
	return wire.BaseSuperframeDuration << uint32(m.BeaconOrder)
}

const (
	attrMacExtendedAddress             = "macExtendedAddress"
	attrMacAckWaitDuration             = "macAckWaitDuration"
	attrMacAssociatedPanCoord          = "macAssociatedPANCoord"
	attrMacAssociationPermit           = "macAssociationPermit"
	attrMacAutoRequest                 = "macAutoRequest"
	attrMacBattLifeExt                 = "macBattLifeExt"
	attrMacBattLifeExtPeriods          = "macBattLifeExtPeriods"
	attrMacBeaconPayload               = "macBeaconPayload"
	attrMacBeaconPayloadLength         = "macBeaconPayloadLength"
	attrMacBeaconOrder                 = "macBeaconOrder"
	attrMacBeaconTxTime                = "macBeaconTxTime"
	attrMacBsn                         = "macBSN"
	attrMacCoordExtendedAddress        = "macCoordExtendedAddress"
	attrMacCoordShortAddress           = "macCoordShortAddress"
	attrMacDsn                         = "macDSN"
	attrMacGtsPermit                   = "macGTSPermit"
	attrMacLifsPeriod                  = "macLIFSPeriod"
	attrMacMaxBe                       = "macMaxBE"
	attrMacMaxCsmaBackoffs             = "macMaxCSMABackoffs"
	attrMacMaxFrameTotalWaitTime       = "macMaxFrameTotalWaitTime"
	attrMacMaxFrameRetries             = "macMaxFrameRetries"
	attrMacMinBe                       = "macMinBE"
	attrMacPanId                       = "macPANId"
	attrMacPromiscuousMode             = "macPromiscuousMode"
	attrMacRangingSupported            = "macRangingSupported"
	attrMacResponseWaitTime            = "macResponseWaitTime"
	attrMacRxOnWhenIdle                = "macRxOnWhenIdle"
	attrMacSecurityEnabled             = "macSecurityEnabled"
	attrMacShortAddress                = "macShortAddress"
	attrMacSifsPeriod                  = "macSIFSPeriod"
	attrMacSuperframeOrder             = "macSuperframeOrder"
	attrMacSyncSymbolOffset            = "macSyncSymbolOffset"
	attrMacTimestampSupported          = "macTimestampSupported"
	attrMacTransactionPersistenceTime  = "macTransactionPersistenceTime"
	attrMacTxControlActiveDuration     = "macTxControlActiveDuration"
	attrMacTxControlPauseDuration      = "macTxControlPauseDuration"
	attrMacTxTotalDuration             = "macTxTotalDuration"
)

var macReadOnly = map[string]bool{
	attrMacExtendedAddress:       true,
	attrMacAckWaitDuration:       true,
	attrMacBeaconTxTime:          true,
	attrMacLifsPeriod:            true,
	attrMacSifsPeriod:            true,
	attrMacRangingSupported:      true,
	attrMacSuperframeOrder:       true,
	attrMacSyncSymbolOffset:      true,
	attrMacTimestampSupported:    true,
	attrMacMaxFrameTotalWaitTime: true,
}

// Get reads a mac* attribute. phy supplies the PHY state the derived
// attributes (macAckWaitDuration, macMaxFrameTotalWaitTime,
// macBattLifeExtPeriods) are computed from.
func (m *MacPib) Get(name string, phy *PhyPib) (interface{}, Status) {
	switch name {
	case attrMacExtendedAddress:
		return m.ExtendedAddress, StatusSuccess
	case attrMacAckWaitDuration:
		return m.AckWaitDuration(phy), StatusSuccess
	case attrMacAssociatedPanCoord:
		return m.AssociatedPanCoord, StatusSuccess
	case attrMacAssociationPermit:
		return m.AssociationPermit, StatusSuccess
	case attrMacAutoRequest:
		return m.AutoRequest, StatusSuccess
	case attrMacBattLifeExt:
		return m.BattLifeExt, StatusSuccess
	case attrMacBattLifeExtPeriods:
		return m.BattLifeExtPeriods(phy), StatusSuccess
	case attrMacBeaconPayload:
		return m.BeaconPayload, StatusSuccess
	case attrMacBeaconPayloadLength:
		return len(m.BeaconPayload), StatusSuccess
	case attrMacBeaconOrder:
		return m.BeaconOrder, StatusSuccess
	case attrMacBeaconTxTime:
		return m.BeaconTxTime, StatusSuccess
	case attrMacBsn:
		return m.Bsn, StatusSuccess
	case attrMacCoordExtendedAddress:
		return m.CoordExtendedAddress, StatusSuccess
	case attrMacCoordShortAddress:
		return m.CoordShortAddress, StatusSuccess
	case attrMacDsn:
		return m.Dsn, StatusSuccess
	case attrMacGtsPermit:
		return m.GtsPermit, StatusSuccess
	case attrMacLifsPeriod:
		return m.LifsPeriod, StatusSuccess
	case attrMacMaxBe:
		return m.MaxBe, StatusSuccess
	case attrMacMaxCsmaBackoffs:
		return m.MaxCsmaBackoffs, StatusSuccess
	case attrMacMaxFrameTotalWaitTime:
		return m.MaxFrameTotalWaitTime(phy), StatusSuccess
	case attrMacMaxFrameRetries:
		return m.MaxFrameRetries, StatusSuccess
	case attrMacMinBe:
		return m.MinBe, StatusSuccess
	case attrMacPanId:
		return m.PanId, StatusSuccess
	case attrMacPromiscuousMode:
		return m.PromiscuousMode, StatusSuccess
	case attrMacRangingSupported:
		return m.RangingSupported, StatusSuccess
	case attrMacResponseWaitTime:
		return m.ResponseWaitTime, StatusSuccess
	case attrMacRxOnWhenIdle:
		return m.RxOnWhenIdle, StatusSuccess
	case attrMacSecurityEnabled:
		return m.SecurityEnabled, StatusSuccess
	case attrMacShortAddress:
		return m.ShortAddress, StatusSuccess
	case attrMacSifsPeriod:
		return m.SifsPeriod, StatusSuccess
	case attrMacSuperframeOrder:
		return m.SuperframeOrder, StatusSuccess
	case attrMacSyncSymbolOffset:
		return m.SyncSymbolOffset, StatusSuccess
	case attrMacTimestampSupported:
		return m.TimestampSupported, StatusSuccess
	case attrMacTransactionPersistenceTime:
		return m.TransactionPersistenceTime, StatusSuccess
	case attrMacTxControlActiveDuration:
		return m.TxControlActiveDuration, StatusSuccess
	case attrMacTxControlPauseDuration:
		return m.TxControlPauseDuration, StatusSuccess
	case attrMacTxTotalDuration:
		return m.TxTotalDuration, StatusSuccess
	default:
		return nil, StatusUnsupportedAttribute
	}
}

// Set writes a mac* attribute, applying the standard's per-attribute range
// checks. macBattLifeExtPeriods is writable in name only: the value is range
// checked but never stored, since it is derived on every read.
// macMaxFrameTotalWaitTime, also derived, is read-only.
func (m *MacPib) Set(name string, value interface{}) Status {
	if macReadOnly[name] {
		return StatusReadOnly
	}
	switch name {
	case attrMacAssociatedPanCoord:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.AssociatedPanCoord = v
	case attrMacAssociationPermit:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.AssociationPermit = v
	case attrMacAutoRequest:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.AutoRequest = v
	case attrMacBattLifeExt:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.BattLifeExt = v
	case attrMacBattLifeExtPeriods:
		v, ok := value.(uint8)
		if !ok || v < 6 || v > 41 {
			return StatusInvalidParameter
		}
	case attrMacBeaconPayload:
		v, ok := value.([]byte)
		if !ok || len(v) > wire.MaxBeaconPayloadLength {
			return StatusInvalidParameter
		}
		m.BeaconPayload = v
	case attrMacBeaconPayloadLength:
		v, ok := value.(int)
		if !ok || v < 0 || v > wire.MaxBeaconPayloadLength {
			return StatusInvalidParameter
		}
		if v <= len(m.BeaconPayload) {
			m.BeaconPayload = m.BeaconPayload[:v]
		} else {
			m.BeaconPayload = append(m.BeaconPayload, make([]byte, v-len(m.BeaconPayload))...)
		}
	case attrMacBeaconOrder:
		v, ok := value.(wire.BeaconOrder)
		if !ok {
			return StatusInvalidParameter
		}
		m.BeaconOrder = v
	case attrMacBsn:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		m.Bsn = v
	case attrMacCoordExtendedAddress:
		v, ok := value.(addr.ExtendedAddress)
		if !ok {
			return StatusInvalidParameter
		}
		m.CoordExtendedAddress = v
	case attrMacCoordShortAddress:
		v, ok := value.(addr.ShortAddress)
		if !ok {
			return StatusInvalidParameter
		}
		m.CoordShortAddress = v
	case attrMacDsn:
		v, ok := value.(uint8)
		if !ok {
			return StatusInvalidParameter
		}
		m.Dsn = v
	case attrMacGtsPermit:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.GtsPermit = v
	case attrMacMaxBe:
		v, ok := value.(uint8)
		if !ok || v < 3 || v > 8 {
			return StatusInvalidParameter
		}
		m.MaxBe = v
	case attrMacMaxCsmaBackoffs:
		v, ok := value.(uint8)
		if !ok || v > 5 {
			return StatusInvalidParameter
		}
		m.MaxCsmaBackoffs = v
	case attrMacMaxFrameRetries:
		v, ok := value.(uint8)
		if !ok || v > 7 {
			return StatusInvalidParameter
		}
		m.MaxFrameRetries = v
	case attrMacMinBe:
		v, ok := value.(uint8)
		if !ok || v > m.MaxBe {
			return StatusInvalidParameter
		}
		m.MinBe = v
	case attrMacPanId:
		v, ok := value.(addr.PanId)
		if !ok {
			return StatusInvalidParameter
		}
		m.PanId = v
	case attrMacPromiscuousMode:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.PromiscuousMode = v
	case attrMacResponseWaitTime:
		v, ok := value.(uint8)
		if !ok || v < 2 || v > 64 {
			return StatusInvalidParameter
		}
		m.ResponseWaitTime = v
	case attrMacRxOnWhenIdle:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.RxOnWhenIdle = v
	case attrMacSecurityEnabled:
		v, ok := value.(bool)
		if !ok {
			return StatusInvalidParameter
		}
		m.SecurityEnabled = v
	case attrMacShortAddress:
		v, ok := value.(addr.ShortAddress)
		if !ok {
			return StatusInvalidParameter
		}
		m.ShortAddress = v
	case attrMacTransactionPersistenceTime:
		v, ok := value.(uint16)
		if !ok {
			return StatusInvalidParameter
		}
		m.TransactionPersistenceTime = v
	case attrMacTxControlActiveDuration:
		v, ok := value.(uint32)
		if !ok || v > 100000 {
			return StatusInvalidParameter
		}
		m.TxControlActiveDuration = v
	case attrMacTxControlPauseDuration:
		v, ok := value.(uint32)
		if !ok || (v != 2000 && v != 10000) {
			return StatusInvalidParameter
		}
		m.TxControlPauseDuration = v
	case attrMacTxTotalDuration:
		v, ok := value.(uint32)
		if !ok {
			return StatusInvalidParameter
		}
		m.TxTotalDuration = v
	default:
		return StatusUnsupportedAttribute
	}
	return StatusSuccess
}
