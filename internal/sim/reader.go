package sim

import (
	"fmt"

	"github.com/hanyangzhao/rfidsim/internal/channel"
	"github.com/hanyangzhao/rfidsim/internal/epcstd"
)

// ReaderState is the reader's position in the inventory round/slot cycle
// (spec.md §4.F).
type ReaderState int

const (
	ReaderOff ReaderState = iota
	ReaderQuery
	ReaderQRep
	ReaderAck
	ReaderReqRN
	ReaderRead
)

func (s ReaderState) String() string {
	switch s {
	case ReaderQuery:
		return "QUERY"
	case ReaderQRep:
		return "QREP"
	case ReaderAck:
		return "ACK"
	case ReaderReqRN:
		return "REQRN"
	case ReaderRead:
		return "READ"
	default:
		return "OFF"
	}
}

// Reader drives one EPC Gen2 inventory round/slot cycle against the tag
// population (spec.md §4.F). It never holds a back-pointer to the
// kernel or scheduler (spec.md §9) — the scheduler passes whatever
// timing context a method needs as an argument.
type Reader struct {
	Antenna    channel.Antenna
	TxPowerDBm *float64
	TxOnAt     float64

	DR        epcstd.DivideRatio
	M         epcstd.TagEncoding
	TRext     bool
	Sel       epcstd.SelFlag
	Session   epcstd.Session
	Q         int
	TempRange epcstd.TempRange

	Target              epcstd.InventoryFlag
	TargetStrategy      TargetStrategy
	RoundsPerTarget     int
	roundsBeforeSwitch  int

	ReadTID      bool
	TIDWordCount uint8

	State      ReaderState
	LastRN     uint16
	RoundIndex int
	SlotIndex  int
}

// NewReader builds a reader from a scenario's link parameters, powered
// off and parked at round 0.
func NewReader(s Scenario, antenna channel.Antenna) *Reader {
	return &Reader{
		Antenna:            antenna,
		DR:                 s.DR,
		M:                  s.TagEncoding,
		TRext:              s.TRext,
		Sel:                s.Sel,
		Session:             s.Session,
		Q:                  s.Q,
		TempRange:          s.TempRange,
		Target:             s.Target,
		TargetStrategy:     s.TargetStrategy,
		RoundsPerTarget:    s.RoundsPerTarget,
		roundsBeforeSwitch: s.RoundsPerTarget,
		ReadTID:            s.ReadTID,
		TIDWordCount:       s.TIDWordCount,
		State:              ReaderOff,
	}
}

func (r *Reader) numSlots() int { return 1 << uint(r.Q) }

// Enter transitions the reader into state and returns the frame it
// emits there (nil for OFF).
func (r *Reader) Enter(state ReaderState) epcstd.Command {
	r.State = state
	switch state {
	case ReaderQuery:
		if r.TargetStrategy == TargetSwitch {
			if r.roundsBeforeSwitch <= 0 {
				r.Target = r.Target.Invert()
				r.roundsBeforeSwitch = r.RoundsPerTarget
			}
			r.roundsBeforeSwitch--
		}
		r.SlotIndex = 0
		return epcstd.Query{
			DR:      r.DR,
			M:       r.M,
			TRext:   r.TRext,
			Sel:     r.Sel,
			Session: r.Session,
			Target:  r.Target,
			Q:       r.Q,
		}
	case ReaderQRep:
		return epcstd.QueryRep{Session: r.Session}
	case ReaderAck:
		return epcstd.Ack{RN: r.LastRN}
	case ReaderReqRN:
		return epcstd.ReqRN{RN: r.LastRN}
	case ReaderRead:
		return epcstd.Read{
			Bank:      epcstd.BankTID,
			WordPtr:   0,
			WordCount: r.TIDWordCount,
			RN:        r.LastRN,
		}
	default:
		return nil
	}
}

// HandleReply advances the FSM on a decoded reply. Any reply type that
// doesn't belong in the current state is a programmer error and panics
// (spec.md §7): the model, not the channel, is broken.
func (r *Reader) HandleReply(reply epcstd.Reply) ReaderState {
	switch rep := reply.(type) {
	case epcstd.QueryReply:
		if r.State != ReaderQuery && r.State != ReaderQRep {
			panic(fmt.Sprintf("QueryReply received in state %s", r.State))
		}
		r.LastRN = rep.RN
		return ReaderAck
	case epcstd.AckReply:
		if r.State != ReaderAck {
			panic(fmt.Sprintf("AckReply received in state %s", r.State))
		}
		if r.ReadTID {
			return ReaderReqRN
		}
		return r.advance()
	case epcstd.ReqRnReply:
		if r.State != ReaderReqRN {
			panic(fmt.Sprintf("ReqRnReply received in state %s", r.State))
		}
		r.LastRN = rep.RN
		return ReaderRead
	case epcstd.ReadReply:
		if r.State != ReaderRead {
			panic(fmt.Sprintf("ReadReply received in state %s", r.State))
		}
		return r.advance()
	default:
		panic(fmt.Sprintf("unrecognized reply type %T", reply))
	}
}

// HandleTimeout advances the FSM when no reply decoded in time.
func (r *Reader) HandleTimeout() ReaderState {
	return r.advance()
}

// advance moves to the next slot, beginning a new round when the
// current one is exhausted (spec.md §3: 2^Q slots per round, slot 0 is
// Query, the rest QueryRep).
func (r *Reader) advance() ReaderState {
	r.SlotIndex++
	if r.SlotIndex >= r.numSlots() {
		r.RoundIndex++
		return ReaderQuery
	}
	return ReaderQRep
}
