package wire

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/pkg/errors"
)

func encodeBeacon(buf []byte, b *Beacon) []byte {
	sf := b.Superframe.Encode()
	buf = append(buf, sf[0], sf[1])

	gtsHeader := byte(len(b.Gts.Descriptors) & 0x07)
	if b.Gts.Permit {
		gtsHeader |= 1 << 7
	}
	buf = append(buf, gtsHeader)
	if len(b.Gts.Descriptors) > 0 {
		var dirMask byte
		for i, d := range b.Gts.Descriptors {
			if d.Direction == GtsDirectionReceive {
				dirMask |= 1 << uint(i)
			}
		}
		buf = append(buf, dirMask)
		for _, d := range b.Gts.Descriptors {
			buf = appendU16(buf, uint16(d.ShortAddress))
			buf = append(buf, (d.StartingSlot&0x0f)|((d.Length&0x0f)<<4))
		}
	}

	paHeader := byte(len(b.Pending.Short)&0x07) | byte(len(b.Pending.Extended)&0x07)<<4
	buf = append(buf, paHeader)
	for _, s := range b.Pending.Short {
		buf = appendU16(buf, uint16(s))
	}
	for _, e := range b.Pending.Extended {
		buf = appendU64(buf, uint64(e))
	}

	buf = append(buf, b.Payload...)
	return buf
}

func decodeBeacon(cursor []byte) (*Beacon, error) {
	if len(cursor) < 3 {
		return nil, ErrTooShort
	}
	b := &Beacon{}
	b.Superframe = ParseSuperframeSpecification([2]byte{cursor[0], cursor[1]})
	gtsHeader := cursor[2]
	cursor = cursor[3:]

	count := int(gtsHeader & 0x07)
	b.Gts.Permit = gtsHeader&(1<<7) != 0
	if count > MaxGtsDescriptors {
		return nil, errors.Wrap(ErrMalformed, "gts descriptor count exceeds maximum")
	}
	if count > 0 {
		if len(cursor) < 1 {
			return nil, ErrTooShort
		}
		dirMask := cursor[0]
		cursor = cursor[1:]
		for i := 0; i < count; i++ {
			if len(cursor) < 3 {
				return nil, ErrTooShort
			}
			shortAddr, rest, err := takeU16(cursor)
			if err != nil {
				return nil, err
			}
			slotLen := rest[0]
			cursor = rest[1:]
			dir := GtsDirectionTransmit
			if dirMask&(1<<uint(i)) != 0 {
				dir = GtsDirectionReceive
			}
			b.Gts.Descriptors = append(b.Gts.Descriptors, GtsDescriptor{
				ShortAddress: addr.ShortAddress(shortAddr),
				StartingSlot: slotLen & 0x0f,
				Length:       (slotLen >> 4) & 0x0f,
				Direction:    dir,
			})
		}
	}

	if len(cursor) < 1 {
		return nil, ErrTooShort
	}
	paHeader := cursor[0]
	cursor = cursor[1:]
	shortCount := int(paHeader & 0x07)
	extCount := int((paHeader >> 4) & 0x07)
	if shortCount > MaxPendingShort || extCount > MaxPendingExtended {
		return nil, errors.Wrap(ErrMalformed, "pending address count exceeds maximum")
	}
	for i := 0; i < shortCount; i++ {
		v, rest, err := takeU16(cursor)
		if err != nil {
			return nil, err
		}
		cursor = rest
		b.Pending.Short = append(b.Pending.Short, addr.ShortAddress(v))
	}
	for i := 0; i < extCount; i++ {
		v, rest, err := takeU64(cursor)
		if err != nil {
			return nil, err
		}
		cursor = rest
		b.Pending.Extended = append(b.Pending.Extended, addr.ExtendedAddress(v))
	}

	b.Payload = append([]byte(nil), cursor...)
	return b, nil
}
