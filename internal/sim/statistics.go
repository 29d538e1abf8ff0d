package sim

import "github.com/hanyangzhao/rfidsim/internal/channel"

// InventoryEvent records one round in which a tag was inventoried:
// the round index, the channel conditions that let it decode, and
// whether that round also read its TID bank (spec.md §4.I).
type InventoryEvent struct {
	RoundIndex int
	BER        float64
	SNR        float64
	TagPos     channel.Vec3
	AntennaPos channel.Vec3
	ReadTID    bool
}

// TagRecord accumulates one tag's lifetime of participation before its
// statistics are closed on removal.
type TagRecord struct {
	NumRoundsAttained int
	InventoryHistory  []InventoryEvent
	closed            bool
}

// HasInventory reports whether the tag was ever successfully
// inventoried (at least one AckReply decoded).
func (r *TagRecord) HasInventory() bool { return len(r.InventoryHistory) > 0 }

// HasReadTID reports whether the tag's TID bank was read at least once.
func (r *TagRecord) HasReadTID() bool {
	for _, e := range r.InventoryHistory {
		if e.ReadTID {
			return true
		}
	}
	return false
}

// Statistics accumulates per-tag records over a run and reduces them
// to a RunResult on close (spec.md §4.I).
type Statistics struct {
	open   map[int]*TagRecord
	closed []*TagRecord
}

// NewStatistics returns an empty accumulator.
func NewStatistics() *Statistics {
	return &Statistics{open: make(map[int]*TagRecord)}
}

// Open begins a tag's statistics record.
func (s *Statistics) Open(tagID int) {
	s.open[tagID] = &TagRecord{}
}

// RecordRound increments the round counter for a tag currently
// arbitrating or replying (spec.md §4.I: a Query transition counts
// every tag in ARBITRATE or REPLY).
func (s *Statistics) RecordRound(tagID int) {
	if rec, ok := s.open[tagID]; ok {
		rec.NumRoundsAttained++
	}
}

// RecordInventory appends a successful-inventory event for a tag.
func (s *Statistics) RecordInventory(tagID int, ev InventoryEvent) {
	if rec, ok := s.open[tagID]; ok {
		rec.InventoryHistory = append(rec.InventoryHistory, ev)
	}
}

// MarkReadTID flags the most recent inventory event for a tag as
// having read its TID bank. The reader only reaches READ within the
// same round as the ACK that started the event, so there is always a
// most-recent event to mark.
func (s *Statistics) MarkReadTID(tagID int) {
	rec, ok := s.open[tagID]
	if !ok || len(rec.InventoryHistory) == 0 {
		return
	}
	rec.InventoryHistory[len(rec.InventoryHistory)-1].ReadTID = true
}

// Close finalizes a tag's record and moves it into the closed set; the
// scheduler calls this when a tag is removed.
func (s *Statistics) Close(tagID int) {
	rec, ok := s.open[tagID]
	if !ok {
		return
	}
	rec.closed = true
	s.closed = append(s.closed, rec)
	delete(s.open, tagID)
}

// NumClosed reports how many tag records have been closed so far.
func (s *Statistics) NumClosed() int { return len(s.closed) }

// Result reduces every closed record into the run's aggregate metrics.
func (s *Statistics) Result() RunResult {
	if len(s.closed) == 0 {
		return RunResult{}
	}
	var totalRounds float64
	var numInventoried, numReadTID int
	for _, rec := range s.closed {
		totalRounds += float64(rec.NumRoundsAttained)
		if rec.HasInventory() {
			numInventoried++
		}
		if rec.HasReadTID() {
			numReadTID++
		}
	}
	n := float64(len(s.closed))
	return RunResult{
		AvgRoundsPerTag:      totalRounds / n,
		InventoryProbability: float64(numInventoried) / n,
		ReadTIDProbability:   float64(numReadTID) / n,
	}
}
