package sap

// SecurityLevel mirrors the wire security control field's level subfield.
// Security processing itself is out of scope (wire/ treats the auxiliary
// header as opaque); SAP callers still carry the negotiated level so a
// future cipher implementation has somewhere to live.
type SecurityLevel uint8

const (
	SecurityLevelNone SecurityLevel = iota
	SecurityLevelMic32
	SecurityLevelMic64
	SecurityLevelMic128
	SecurityLevelEnc
	SecurityLevelEncMic32
	SecurityLevelEncMic64
	SecurityLevelEncMic128
)

// KeyIdMode mirrors the wire security control field's key identifier mode.
type KeyIdMode uint8

const (
	KeyIdModeImplicit KeyIdMode = iota
	KeyIdModeIndex
	KeyIdModeShortIndex
	KeyIdModeLongIndex
)

// SecurityInfo is the security parameter block shared by every primitive
// that could apply MAC-layer security.
type SecurityInfo struct {
	SecurityLevel SecurityLevel
	KeyIdMode     KeyIdMode
	KeyIndex      uint8
}

// HasSecurity reports whether any security processing was requested.
func (s SecurityInfo) HasSecurity() bool { return s.SecurityLevel != SecurityLevelNone }
