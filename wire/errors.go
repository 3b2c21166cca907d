package wire

import "github.com/pkg/errors"

// ErrTooShort is returned by encode operations when the destination buffer
// (or the aMaxPHYPacketSize budget) cannot hold the serialized frame, and by
// decode operations when the input ends before a field it must contain.
var ErrTooShort = errors.New("wire: buffer too short")

// ErrMalformed is returned by decode operations when the input bytes do not
// form a well-formed frame. Callers should log and discard the frame per
// spec.md §7 (protocol errors never leak to unrelated clients).
var ErrMalformed = errors.New("wire: malformed frame")

// ErrUnsupported marks a frame feature this codec does not (yet) parse.
var ErrUnsupported = errors.New("wire: unsupported frame feature")
