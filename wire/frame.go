package wire

import (
	"github.com/aethermac/lrwpan/addr"
)

// FrameType is the 3-bit frame type field of the frame control bytes.
type FrameType uint8

const (
	FrameTypeBeacon FrameType = iota
	FrameTypeData
	FrameTypeAcknowledgement
	FrameTypeCommand
)

func (t FrameType) String() string {
	switch t {
	case FrameTypeBeacon:
		return "Beacon"
	case FrameTypeData:
		return "Data"
	case FrameTypeAcknowledgement:
		return "Acknowledgement"
	case FrameTypeCommand:
		return "Command"
	default:
		return "FrameTypeReserved"
	}
}

// FrameVersion is the 2-bit frame version subfield.
type FrameVersion uint8

const (
	FrameVersion2003 FrameVersion = 0
	FrameVersion2006 FrameVersion = 1
	FrameVersion2015 FrameVersion = 2
)

// Flags packs the single-bit frame-control flags.
type Flags struct {
	FramePending   bool
	AckRequest     bool
	PanIdCompress  bool
	SeqNoSuppress  bool
	IePresent      bool
}

// AuxSecurityHeader is parsed and preserved verbatim; ciphers are stubbed
// per spec.md §1 (security/crypto reserved for future work).
type AuxSecurityHeader struct {
	Present bool
	Raw     []byte
}

// Header carries everything that precedes the frame content.
type Header struct {
	FrameType     FrameType
	Flags         Flags
	Version       FrameVersion
	Seq           uint8
	HasSeq        bool
	Destination   *addr.Address
	Source        *addr.Address
	Security      AuxSecurityHeader
}

// Command is the tagged union of MAC command frames (§3).
type Command struct {
	Kind CommandKind

	// AssociationRequest
	Capability CapabilityInformation
	// AssociationResponse
	AssocShortAddress addr.ShortAddress
	AssocStatus       AssociationStatus
	// CoordinatorRealignment
	Realignment CoordinatorRealignment
	// DisassociationNotification
	DisassociationReason DisassociationReason
	// OrphanNotification
	OrphanAddress addr.ExtendedAddress
}

type CommandKind uint8

const (
	CmdAssociationRequest CommandKind = iota + 1
	CmdAssociationResponse
	CmdDisassociationNotification
	CmdDataRequest
	CmdOrphanNotification
	CmdBeaconRequest
	CmdCoordinatorRealignment
)

func (k CommandKind) String() string {
	switch k {
	case CmdAssociationRequest:
		return "AssociationRequest"
	case CmdAssociationResponse:
		return "AssociationResponse"
	case CmdDisassociationNotification:
		return "DisassociationNotification"
	case CmdDataRequest:
		return "DataRequest"
	case CmdOrphanNotification:
		return "OrphanNotification"
	case CmdBeaconRequest:
		return "BeaconRequest"
	case CmdCoordinatorRealignment:
		return "CoordinatorRealignment"
	default:
		return "CommandReserved"
	}
}

// CapabilityInformation is the association-request capability byte.
type CapabilityInformation struct {
	AlternatePanCoordinator bool
	DeviceType              bool // FFD if true
	PowerSource             bool // mains-powered if true
	ReceiverOnWhenIdle      bool
	SecurityCapable         bool
	AllocateAddress         bool
}

func (c CapabilityInformation) Value() byte {
	var b byte
	if c.AlternatePanCoordinator {
		b |= 1 << 0
	}
	if c.DeviceType {
		b |= 1 << 1
	}
	if c.PowerSource {
		b |= 1 << 2
	}
	if c.ReceiverOnWhenIdle {
		b |= 1 << 3
	}
	if c.SecurityCapable {
		b |= 1 << 6
	}
	if c.AllocateAddress {
		b |= 1 << 7
	}
	return b
}

func ParseCapabilityInformation(b byte) CapabilityInformation {
	return CapabilityInformation{
		AlternatePanCoordinator: b&(1<<0) != 0,
		DeviceType:              b&(1<<1) != 0,
		PowerSource:             b&(1<<2) != 0,
		ReceiverOnWhenIdle:      b&(1<<3) != 0,
		SecurityCapable:         b&(1<<6) != 0,
		AllocateAddress:         b&(1<<7) != 0,
	}
}

// AssociationStatus is the status octet of an AssociationResponse command.
type AssociationStatus uint8

const (
	AssociationSuccessful        AssociationStatus = 0x00
	AssociationPanAtCapacity     AssociationStatus = 0x01
	AssociationAccessDenied      AssociationStatus = 0x02
)

// DisassociationReason is the reason octet of a DisassociationNotification.
type DisassociationReason uint8

const (
	DisassociationCoordinatorWishes DisassociationReason = 0x01
	DisassociationDeviceWishes      DisassociationReason = 0x02
)

// CoordinatorRealignment is the command body for MLME-START's
// coord_realignment option.
type CoordinatorRealignment struct {
	PanId          addr.PanId
	Channel        uint8
	ShortAddress   addr.ShortAddress
	Page           *uint8 // optional channel page octet
}

// ContentKind distinguishes a frame's content variant.
type ContentKind uint8

const (
	ContentBeacon ContentKind = iota
	ContentData
	ContentAcknowledgement
	ContentCommand
)

// Content is the tagged union of frame bodies (§3).
type Content struct {
	Kind    ContentKind
	Beacon  *Beacon
	Command *Command
	// Data frames carry their payload directly on Frame.Payload.
}

// Frame is a full 802.15.4 MAC frame: header, typed content, raw payload
// (used for Data content only; a beacon's payload is Beacon.Payload), and a 2-byte footer
// slot (present only when FooterMode is AppendCrc).
type Frame struct {
	Header  Header
	Content Content
	Payload []byte // raw data payload, meaningful when Content.Kind == ContentData
	Footer  [2]byte
}
