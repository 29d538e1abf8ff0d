package sim

import (
	"math"
	"math/rand"

	"github.com/hanyangzhao/rfidsim/internal/channel"
	"github.com/hanyangzhao/rfidsim/internal/epcstd"
)

// TagState is a tag's position in the Class-1 Gen-2 inventory FSM
// (spec.md §4.E).
type TagState int

const (
	TagOff TagState = iota
	TagReady
	TagArbitrate
	TagReply
	TagAcknowledged
	TagSecured
)

func (s TagState) String() string {
	switch s {
	case TagReady:
		return "READY"
	case TagArbitrate:
		return "ARBITRATE"
	case TagReply:
		return "REPLY"
	case TagAcknowledged:
		return "ACKNOWLEDGED"
	case TagSecured:
		return "SECURED"
	default:
		return "OFF"
	}
}

// Tag is one passive tag traversing the reader's field.
type Tag struct {
	ID  int
	EPC string // hex digit string
	TID string // hex digit string

	Pos           channel.Vec3
	Velocity      float64
	Direction     channel.Vec3
	LastPosUpdate float64

	Antenna      channel.Antenna
	Sensitivity  float64
	ModLossDB    float64

	State         TagState
	SlotCounter   int
	RN            uint16
	Sessions      [4]epcstd.InventoryFlag
	SL            bool
	ActiveSession epcstd.Session

	CachedEncoding epcstd.TagEncoding
	CachedTRext    bool
	CachedBLF      float64

	PoweredOnAt   float64
	PoweredOffAt  float64
	everPoweredOn bool

	NumRoundsAttained int
	InventoryHistory  []InventoryEvent
	ReadTIDEver       bool
}

// NewTag constructs a tag at rest with every session flag at A and no
// power, ready to be powered on by the scheduler's first position/power
// update.
func NewTag(id int, epc, tid string, pos channel.Vec3, velocity float64, direction channel.Vec3, antenna channel.Antenna, sensitivity, modLossDB float64) *Tag {
	return &Tag{
		ID:          id,
		EPC:         epc,
		TID:         tid,
		Pos:         pos,
		Velocity:    velocity,
		Direction:   direction,
		Antenna:     antenna,
		Sensitivity: sensitivity,
		ModLossDB:   modLossDB,
		State:       TagOff,
	}
}

// SetPower applies a power-level observation at time now. powerDBm is
// nil when the reader is off. Crossing below sensitivity (or losing
// power entirely) drives the tag to OFF; crossing above it wakes
// the tag to READY and refreshes session flags per their persistence
// (spec.md §4.E). The comparison against sensitivity is strict: power
// exactly at sensitivity counts as OFF.
func (t *Tag) SetPower(now float64, powerDBm *float64, persistence [4]float64) {
	hasPower := powerDBm != nil && *powerDBm > t.Sensitivity
	if !hasPower {
		if t.State != TagOff {
			t.PoweredOffAt = now
		}
		t.State = TagOff
		t.ActiveSession = epcstd.S0
		t.CachedEncoding = 0
		t.CachedTRext = false
		return
	}
	if t.State == TagOff {
		offInterval := math.Inf(1)
		if t.everPoweredOn {
			offInterval = now - t.PoweredOffAt
		}
		for i := 0; i < 4; i++ {
			sess := epcstd.Session(i)
			t.Sessions[i] = sess.PowerOnValue(offInterval, persistence[i], t.Sessions[i])
		}
		t.PoweredOnAt = now
		t.everPoweredOn = true
		t.State = TagReady
	}
}

// HandleQuery applies a Query command, returning the reply frame to
// emit (nil for none).
func (t *Tag) HandleQuery(cmd epcstd.Query, blf float64, rng *rand.Rand) epcstd.Reply {
	if t.State == TagOff {
		return nil
	}
	if t.State != TagReady && t.State != TagArbitrate && t.State != TagReply {
		idx := t.ActiveSession.Index()
		t.Sessions[idx] = t.Sessions[idx].Invert()
	}
	if t.Sessions[cmd.Session.Index()] != cmd.Target || !cmd.Sel.Match(t.SL) {
		t.State = TagReady
		return nil
	}
	t.ActiveSession = cmd.Session
	t.CachedEncoding = cmd.M
	t.CachedTRext = cmd.TRext
	t.CachedBLF = blf

	numSlots := 1 << uint(cmd.Q)
	t.SlotCounter = rng.Intn(numSlots)
	if t.SlotCounter == 0 {
		t.RN = uint16(rng.Intn(1 << 16))
		t.State = TagReply
		return epcstd.QueryReply{RN: t.RN}
	}
	t.State = TagArbitrate
	return nil
}

// HandleQueryRep applies a QueryRep command.
func (t *Tag) HandleQueryRep(cmd epcstd.QueryRep, rng *rand.Rand) epcstd.Reply {
	if cmd.Session != t.ActiveSession {
		return nil
	}
	wasDone := t.State == TagAcknowledged || t.State == TagSecured
	t.SlotCounter--
	if t.SlotCounter == 0 && t.State == TagArbitrate {
		t.RN = uint16(rng.Intn(1 << 16))
		t.State = TagReply
		return epcstd.QueryReply{RN: t.RN}
	}
	if wasDone {
		idx := t.ActiveSession.Index()
		t.Sessions[idx] = t.Sessions[idx].Invert()
		t.State = TagReady
	}
	return nil
}

// HandleAck applies an Ack command.
func (t *Tag) HandleAck(cmd epcstd.Ack) epcstd.Reply {
	if t.State != TagReply {
		return nil
	}
	if cmd.RN != t.RN {
		t.State = TagArbitrate
		return nil
	}
	t.State = TagAcknowledged
	return epcstd.AckReply{PC: uint16(len(t.EPC) * 4), EPC: t.EPC}
}

// HandleReqRN applies a ReqRN command.
func (t *Tag) HandleReqRN(cmd epcstd.ReqRN, rng *rand.Rand) epcstd.Reply {
	if t.State != TagAcknowledged && t.State != TagSecured {
		return nil
	}
	if cmd.RN != t.RN {
		return nil
	}
	t.RN = uint16(rng.Intn(1 << 16))
	t.State = TagSecured
	return epcstd.ReqRnReply{RN: t.RN}
}

// HandleRead applies a Read command.
func (t *Tag) HandleRead(cmd epcstd.Read) epcstd.Reply {
	if t.State != TagSecured {
		return nil
	}
	if cmd.RN != t.RN {
		return nil
	}
	words := epcstd.ReadWordsFromHex(t.TID, cmd.WordPtr, cmd.WordCount)
	return epcstd.ReadReply{Words: words, RN: t.RN}
}
