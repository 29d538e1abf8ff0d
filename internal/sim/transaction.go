package sim

import "github.com/hanyangzhao/rfidsim/internal/epcstd"

// TagReply pairs a tag with the reply frame its FSM produced in
// response to the transaction's command.
type TagReply struct {
	Tag   *Tag
	Reply epcstd.Reply
}

// Transaction pairs one reader command with every tag reply it
// provoked (spec.md §3, §4.G). Exactly one reply is decodable; two or
// more is a collision treated as no-reply.
type Transaction struct {
	Command epcstd.Command

	TStart      float64
	TCommandEnd float64

	Replies      []TagReply
	TReplyStart  float64
	TReplyEnd    float64

	Duration float64
	TFinish  float64

	RxPowerPerTag map[int]float64
}

// Collides reports whether two or more tags replied, which the model
// treats as an unrecoverable collision (spec.md §4.G).
func (tr *Transaction) Collides() bool { return len(tr.Replies) > 1 }

// SoleReply returns the transaction's single reply, or nil if there
// were zero or more than one.
func (tr *Transaction) SoleReply() *TagReply {
	if len(tr.Replies) != 1 {
		return nil
	}
	return &tr.Replies[0]
}

// duration computes a transaction's total length: when at least one
// tag replies, it must cover the command, the reply window, and the
// guard intervals on both sides; with no replies it's just the
// reader's state timeout (spec.md §3).
func duration(cmdDuration float64, hasReplies bool, t1Max, maxReplyDuration, t2Max, t4, stateTimeout float64) float64 {
	if !hasReplies {
		return stateTimeout
	}
	a := cmdDuration + t4
	b := cmdDuration + t1Max + maxReplyDuration + t2Max
	if a > b {
		return a
	}
	return b
}
