// SPDX-License-Identifier: EPL-2.0

package routing

// MusicID is the owner id reserved for the main music track.
const MusicID = "music"

// OwnerKind tells the music track apart from soundboard slots.
type OwnerKind uint8

const (
	OwnerNone OwnerKind = iota
	OwnerMusic
	OwnerSlot
)

// Owner identifies who holds Playback. The zero value means nobody.
type Owner struct {
	Kind OwnerKind
	ID   string
}

func Music() Owner { return Owner{Kind: OwnerMusic, ID: MusicID} }

func Slot(id string) Owner { return Owner{Kind: OwnerSlot, ID: id} }

// ParseOwner maps a configured owner id to an Owner. MusicID selects the
// music track, "" the zero Owner, anything else a slot.
func ParseOwner(id string) Owner {
	switch id {
	case "":
		return Owner{}
	case MusicID:
		return Music()
	default:
		return Slot(id)
	}
}

func (o Owner) IsZero() bool { return o.Kind == OwnerNone }

func (o Owner) String() string {
	switch o.Kind {
	case OwnerMusic:
		return "music"
	case OwnerSlot:
		return "slot:" + o.ID
	default:
		return "none"
	}
}
