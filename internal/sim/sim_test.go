package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanyangzhao/rfidsim/internal/channel"
	"github.com/hanyangzhao/rfidsim/internal/epcstd"
)

func newTestTag() *Tag {
	antenna := channel.NewAntenna(channel.Vec3{}, channel.Vec3{Z: 1}, 3.0, 0)
	return NewTag(1, "0123456789ABCDEF01234567", "0011223344556677", channel.Vec3{},
		0, channel.Vec3{Y: 1}, antenna, -18.0, 12.0)
}

func TestTagPowerOnResetsS0AndPersistsSessions(t *testing.T) {
	tag := newTestTag()
	p := 0.0
	persistence := [4]float64{0, 2.0, 2.0, 2.0}

	tag.SetPower(0, &p, persistence)
	require.Equal(t, TagReady, tag.State)
	tag.Sessions[1] = epcstd.FlagB

	tag.SetPower(1, nil, persistence) // power off at t=1
	assert.Equal(t, TagOff, tag.State)

	tag.SetPower(2, &p, persistence) // back on after 1s, within 2s persistence
	assert.Equal(t, epcstd.FlagB, tag.Sessions[1])

	tag.SetPower(3, nil, persistence)
	tag.SetPower(6, &p, persistence) // off for 3s, exceeds 2s persistence
	assert.Equal(t, epcstd.FlagA, tag.Sessions[1])
}

func TestTagPowerAtSensitivityIsOff(t *testing.T) {
	tag := newTestTag()
	p := -18.0 // exactly at sensitivity: strict > required
	tag.SetPower(0, &p, [4]float64{})
	assert.Equal(t, TagOff, tag.State)
}

func TestTagQuerySlotZeroRepliesImmediately(t *testing.T) {
	tag := newTestTag()
	p := 0.0
	tag.SetPower(0, &p, [4]float64{})

	rng := rand.New(rand.NewSource(42))
	cmd := epcstd.Query{DR: epcstd.DR8, M: epcstd.M4, Sel: epcstd.SelAll, Session: epcstd.S0, Target: epcstd.FlagA, Q: 0}
	reply := tag.HandleQuery(cmd, 1e6, rng)
	require.NotNil(t, reply)
	assert.Equal(t, TagReply, tag.State)
	_, ok := reply.(epcstd.QueryReply)
	assert.True(t, ok)
}

func TestTagQueryMismatchedTargetStaysReady(t *testing.T) {
	tag := newTestTag()
	p := 0.0
	tag.SetPower(0, &p, [4]float64{})

	rng := rand.New(rand.NewSource(1))
	cmd := epcstd.Query{DR: epcstd.DR8, M: epcstd.M4, Sel: epcstd.SelAll, Session: epcstd.S0, Target: epcstd.FlagB, Q: 0}
	reply := tag.HandleQuery(cmd, 1e6, rng)
	assert.Nil(t, reply)
	assert.Equal(t, TagReady, tag.State)
}

func TestTagFullInventorySequence(t *testing.T) {
	tag := newTestTag()
	p := 0.0
	tag.SetPower(0, &p, [4]float64{})

	rng := rand.New(rand.NewSource(7))
	query := epcstd.Query{DR: epcstd.DR8, M: epcstd.M4, Sel: epcstd.SelAll, Session: epcstd.S0, Target: epcstd.FlagA, Q: 0}
	qr := tag.HandleQuery(query, 1e6, rng).(epcstd.QueryReply)

	ack := tag.HandleAck(epcstd.Ack{RN: qr.RN})
	require.NotNil(t, ack)
	assert.Equal(t, TagAcknowledged, tag.State)
	ackReply, ok := ack.(epcstd.AckReply)
	require.True(t, ok)
	assert.Equal(t, tag.EPC, ackReply.EPC)

	reqrn := tag.HandleReqRN(epcstd.ReqRN{RN: tag.RN}, rng)
	require.NotNil(t, reqrn)
	assert.Equal(t, TagSecured, tag.State)
	reqrnReply := reqrn.(epcstd.ReqRnReply)

	read := tag.HandleRead(epcstd.Read{Bank: epcstd.BankTID, WordPtr: 0, WordCount: 4, RN: reqrnReply.RN})
	require.NotNil(t, read)
	readReply, ok := read.(epcstd.ReadReply)
	require.True(t, ok)
	assert.Len(t, readReply.Words, 4)
}

func TestReaderAdvanceWrapsRoundAtQZero(t *testing.T) {
	r := &Reader{Q: 0}
	r.Enter(ReaderQuery)
	next := r.HandleTimeout()
	assert.Equal(t, ReaderQuery, next)
	assert.Equal(t, 1, r.RoundIndex)
}

func TestReaderAdvanceIteratesSlotsWithinRound(t *testing.T) {
	r := &Reader{Q: 2}
	r.Enter(ReaderQuery)
	assert.Equal(t, ReaderQRep, r.HandleTimeout())
	assert.Equal(t, ReaderQRep, r.HandleTimeout())
	assert.Equal(t, ReaderQRep, r.HandleTimeout())
	assert.Equal(t, ReaderQuery, r.HandleTimeout())
	assert.Equal(t, 1, r.RoundIndex)
}

func TestReaderTargetSwitchesPerRound(t *testing.T) {
	r := &Reader{Q: 0, TargetStrategy: TargetSwitch, RoundsPerTarget: 1, roundsBeforeSwitch: 1, Target: epcstd.FlagA}
	r.Enter(ReaderQuery)
	assert.Equal(t, epcstd.FlagA, r.Target)
	r.Enter(ReaderQuery)
	assert.Equal(t, epcstd.FlagB, r.Target)
}

func TestReaderPanicsOnUnexpectedReply(t *testing.T) {
	r := &Reader{Q: 0}
	r.Enter(ReaderQuery)
	assert.Panics(t, func() {
		r.HandleReply(epcstd.ReadReply{})
	})
}

func TestStatisticsResultAggregates(t *testing.T) {
	s := NewStatistics()
	s.Open(1)
	s.RecordRound(1)
	s.RecordRound(1)
	s.RecordInventory(1, InventoryEvent{RoundIndex: 1})
	s.Close(1)

	s.Open(2)
	s.RecordRound(2)
	s.Close(2)

	result := s.Result()
	assert.InDelta(t, 1.5, result.AvgRoundsPerTag, 1e-9)
	assert.InDelta(t, 0.5, result.InventoryProbability, 1e-9)
	assert.Equal(t, 0.0, result.ReadTIDProbability)
}

func TestStatisticsMarkReadTIDFlagsLatestEvent(t *testing.T) {
	s := NewStatistics()
	s.Open(1)
	s.RecordInventory(1, InventoryEvent{RoundIndex: 0})
	s.MarkReadTID(1)
	s.Close(1)
	assert.True(t, s.closed[0].HasReadTID())
}

func TestSimulateAllTagsOffWhenReaderTooWeak(t *testing.T) {
	s := StandardScenario()
	s.ReaderTxPowerDBm = -200
	s.NumTags = 3
	s.SessionPersistence = [4]float64{0, 0, 0, 0}
	result := Simulate(s)
	assert.Equal(t, 0.0, result.InventoryProbability)
	assert.Equal(t, 0.0, result.AvgRoundsPerTag)
}

func TestSimulateDeterministicWithoutDoppler(t *testing.T) {
	s := StandardScenario()
	s.UseDoppler = false
	s.NumTags = 3
	s.Seed = 99

	r1 := Simulate(s)
	r2 := Simulate(s)
	assert.Equal(t, r1, r2)
}
