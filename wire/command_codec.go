package wire

import (
	"github.com/aethermac/lrwpan/addr"
	"github.com/pkg/errors"
)

var commandIDs = map[CommandKind]byte{
	CmdAssociationRequest:         0x01,
	CmdAssociationResponse:        0x02,
	CmdDisassociationNotification: 0x03,
	CmdDataRequest:                0x04,
	CmdOrphanNotification:         0x06,
	CmdBeaconRequest:              0x07,
	CmdCoordinatorRealignment:     0x08,
}

var commandKinds = func() map[byte]CommandKind {
	m := make(map[byte]CommandKind, len(commandIDs))
	for k, v := range commandIDs {
		m[v] = k
	}
	return m
}()

func encodeCommand(buf []byte, cmd *Command) ([]byte, error) {
	id, ok := commandIDs[cmd.Kind]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "command kind %d", cmd.Kind)
	}
	buf = append(buf, id)

	switch cmd.Kind {
	case CmdAssociationRequest:
		buf = append(buf, cmd.Capability.Value())
	case CmdAssociationResponse:
		buf = appendU16(buf, uint16(cmd.AssocShortAddress))
		buf = append(buf, byte(cmd.AssocStatus))
	case CmdDisassociationNotification:
		buf = append(buf, byte(cmd.DisassociationReason))
	case CmdDataRequest, CmdBeaconRequest:
		// no body
	case CmdOrphanNotification:
		buf = appendU64(buf, uint64(cmd.OrphanAddress))
	case CmdCoordinatorRealignment:
		buf = appendU16(buf, uint16(cmd.Realignment.PanId))
		buf = append(buf, cmd.Realignment.Channel)
		buf = appendU16(buf, uint16(cmd.Realignment.ShortAddress))
		if cmd.Realignment.Page != nil {
			buf = append(buf, *cmd.Realignment.Page)
		}
	default:
		return nil, errors.Wrapf(ErrUnsupported, "command kind %d", cmd.Kind)
	}
	return buf, nil
}

func decodeCommand(cursor []byte) (*Command, error) {
	if len(cursor) < 1 {
		return nil, ErrTooShort
	}
	id := cursor[0]
	cursor = cursor[1:]
	kind, ok := commandKinds[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupported, "command id 0x%02x", id)
	}
	cmd := &Command{Kind: kind}

	switch kind {
	case CmdAssociationRequest:
		if len(cursor) < 1 {
			return nil, ErrTooShort
		}
		cmd.Capability = ParseCapabilityInformation(cursor[0])
	case CmdAssociationResponse:
		v, rest, err := takeU16(cursor)
		if err != nil {
			return nil, err
		}
		if len(rest) < 1 {
			return nil, ErrTooShort
		}
		cmd.AssocShortAddress = addr.ShortAddress(v)
		cmd.AssocStatus = AssociationStatus(rest[0])
	case CmdDisassociationNotification:
		if len(cursor) < 1 {
			return nil, ErrTooShort
		}
		cmd.DisassociationReason = DisassociationReason(cursor[0])
	case CmdDataRequest, CmdBeaconRequest:
		// no body
	case CmdOrphanNotification:
		v, _, err := takeU64(cursor)
		if err != nil {
			return nil, err
		}
		cmd.OrphanAddress = addr.ExtendedAddress(v)
	case CmdCoordinatorRealignment:
		pan, rest, err := takeU16(cursor)
		if err != nil {
			return nil, err
		}
		if len(rest) < 3 {
			return nil, ErrTooShort
		}
		channel := rest[0]
		short, rest2, err := takeU16(rest[1:])
		if err != nil {
			return nil, err
		}
		cmd.Realignment = CoordinatorRealignment{
			PanId:        addr.PanId(pan),
			Channel:      channel,
			ShortAddress: addr.ShortAddress(short),
		}
		if len(rest2) >= 1 {
			page := rest2[0]
			cmd.Realignment.Page = &page
		}
	default:
		return nil, errors.Wrapf(ErrUnsupported, "command kind %d", kind)
	}
	return cmd, nil
}
