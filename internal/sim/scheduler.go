package sim

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/hanyangzhao/rfidsim/internal/channel"
	"github.com/hanyangzhao/rfidsim/internal/epcstd"
	"github.com/hanyangzhao/rfidsim/internal/kernel"
)

// World holds everything a running simulation mutates: the reader, the
// live tag population, the in-flight transaction, and accumulated
// statistics. It is owned by Simulate and threaded through every
// handler closure rather than stored on the Kernel (spec.md §5, §9).
type World struct {
	Scenario Scenario
	RNG      *rand.Rand

	Reader *Reader
	Tags   map[int]*Tag
	nextID int

	Stats *Statistics

	Txn           *Transaction
	txnFinishID   kernel.EventID
	readerOffID   kernel.EventID
	readerOnID    kernel.EventID

	numGenerated int
	numRemoved   int
}

// Simulate runs one end-to-end inventory simulation and returns its
// aggregate result (spec.md §4.H).
func Simulate(scenario Scenario) RunResult {
	k := kernel.New()
	k.MaxSimulationTime = scenario.SimTimeLimit
	k.MaxRealTime = scenario.RealTimeLimit

	readerAntenna := channel.NewAntenna(scenario.ReaderAntennaPos, scenario.ReaderAntennaDir,
		scenario.ReaderAntennaGainDB, scenario.ReaderCableLossDB)

	w := &World{
		Scenario: scenario,
		RNG:      rand.New(rand.NewSource(scenario.Seed)),
		Reader:   NewReader(scenario, readerAntenna),
		Tags:     make(map[int]*Tag),
		Stats:    NewStatistics(),
	}

	k.Log.WithField("num_tags", scenario.NumTags).Debug("sim: starting run")
	k.Run(func(k *kernel.Kernel) { w.startSimulation(k) })

	result := w.Stats.Result()
	k.Log.WithFields(logrus.Fields{
		"inventory_prob": result.InventoryProbability,
		"rounds_per_tag": result.AvgRoundsPerTag,
	}).Debug("sim: run complete")
	return result
}

func (w *World) startSimulation(k *kernel.Kernel) {
	k.Push(0, func(k *kernel.Kernel) { w.generateTag(k) })
	k.Push(w.Scenario.UpdateInterval, func(k *kernel.Kernel) { w.updatePositions(k) })
	k.Push(0, func(k *kernel.Kernel) { w.turnReaderOn(k) })
}

// orderedTagIDs returns the live tag IDs in ascending order. Iterating
// a Go map directly would consume RNG draws in a randomized order
// across otherwise-identical runs, silently breaking the determinism
// a fixed seed is supposed to guarantee.
func (w *World) orderedTagIDs() []int {
	ids := make([]int, 0, len(w.Tags))
	for id := range w.Tags {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (w *World) generateTag(k *kernel.Kernel) {
	id := w.nextID
	w.nextID++
	w.numGenerated++

	epc := fmt.Sprintf("%024X", id)[:w.Scenario.EPCBitlen/4]
	tid := fmt.Sprintf("%0*X", int(w.Scenario.TIDWordCount)*4, id)

	tagAntenna := channel.NewAntenna(w.Scenario.TagStartPos, w.Scenario.TagAntennaDir,
		w.Scenario.TagAntennaGainDB, 0)

	tag := NewTag(id, epc, tid, w.Scenario.TagStartPos, w.Scenario.TagVelocity,
		w.Scenario.TagDirection, tagAntenna, w.Scenario.TagSensitivityDBm, w.Scenario.TagModulationLossDB)
	tag.LastPosUpdate = k.Time()
	w.Tags[id] = tag
	w.Stats.Open(id)
	k.Log.WithField("tag_id", id).Trace("sim: tag generated")

	lifetime := w.Scenario.TravelDistance / w.Scenario.TagVelocity
	k.Push(lifetime, func(k *kernel.Kernel) { w.removeTag(k, id) })

	if w.numGenerated < w.Scenario.NumTags {
		delay := w.Scenario.GenerationInterval(w.RNG)
		k.Push(delay, func(k *kernel.Kernel) { w.generateTag(k) })
	}
}

func (w *World) removeTag(k *kernel.Kernel, id int) {
	delete(w.Tags, id)
	w.Stats.Close(id)
	w.numRemoved++
	k.Log.WithField("tag_id", id).Trace("sim: tag left the read zone")
	if w.numRemoved >= w.Scenario.NumTags {
		k.Log.Debug("sim: all tags accounted for, stopping")
		k.Stop()
	}
}

// currentReaderPowerDBm returns the reader's Tx power, or nil if off.
func (w *World) currentReaderPowerDBm() *float64 {
	return w.Reader.TxPowerDBm
}

// computeTagPower returns the power level at tag's antenna, reused for
// two purposes: deciding whether the tag has enough power to be ON,
// and (by reciprocity of the two-ray path) standing in for the power
// the reader recovers from the tag's backscattered reply, with the
// tag's modulation loss folded in once for the round trip.
func (w *World) computeTagPower(now float64, tag *Tag) *float64 {
	txPower := w.currentReaderPowerDBm()
	if txPower == nil {
		return nil
	}
	t := 0.0
	if w.Scenario.UseDoppler {
		t = now - w.Reader.TxOnAt
	}
	pl := channel.TwoRayPathloss(channel.TwoRayParams{
		Time:         t,
		Wavelen:      299792458.0 / w.Scenario.FrequencyHz,
		TxPos:        w.Reader.Antenna.Pos,
		TxDirTheta:   w.Reader.Antenna.DirectionTheta,
		TxVelocity:   channel.Vec3{},
		TxPattern:    w.Reader.Antenna.Pattern,
		RxPos:        tag.Pos,
		RxDirTheta:   tag.Antenna.DirectionTheta,
		RxVelocity:   tag.Direction.Scale(tag.Velocity),
		RxPattern:    tag.Antenna.Pattern,
		Reflection:   w.reflectionFunc(),
		Polarization: w.Scenario.Polarization,
		Permittivity: w.Scenario.Permittivity,
		Conductivity: w.Scenario.Conductivity,
	})
	rx := channel.ReceivedPowerDBm(*txPower, pl, w.Reader.Antenna, tag.Antenna, w.Scenario.PolarizationLossDB) - tag.ModLossDB
	return &rx
}

func (w *World) reflectionFunc() channel.ReflectionCoefficient {
	if w.Scenario.ReflectionModel == ReflectionConst {
		return channel.ConstantReflection
	}
	return channel.FresnelReflection
}

func (w *World) updatePositions(k *kernel.Kernel) {
	now := k.Time()
	for _, id := range w.orderedTagIDs() {
		tag := w.Tags[id]
		dt := now - tag.LastPosUpdate
		tag.Pos = tag.Pos.Add(tag.Direction.Scale(tag.Velocity * dt))
		tag.LastPosUpdate = now

		power := w.computeTagPower(now, tag)
		tag.SetPower(now, power, w.Scenario.SessionPersistence)

		if w.Txn != nil {
			for i := range w.Txn.Replies {
				if w.Txn.Replies[i].Tag.ID == id {
					w.Txn.RxPowerPerTag[id] = safeDeref(power)
				}
			}
		}
	}
	k.Push(w.Scenario.UpdateInterval, func(k *kernel.Kernel) { w.updatePositions(k) })
}

func safeDeref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func (w *World) turnReaderOn(k *kernel.Kernel) {
	now := k.Time()
	w.Reader.TxPowerDBm = &w.Scenario.ReaderTxPowerDBm
	w.Reader.TxOnAt = now
	k.Log.WithField("time", now).Trace("sim: reader powered on")

	w.emitNextCommand(k, ReaderQuery)

	if w.Scenario.PowerMode == Periodic {
		w.readerOffID = k.Push(w.Scenario.PowerOnDuration, func(k *kernel.Kernel) { w.turnReaderOff(k) })
	}
}

func (w *World) turnReaderOff(k *kernel.Kernel) {
	w.Reader.TxPowerDBm = nil
	k.Log.WithField("time", k.Time()).Trace("sim: reader powered off")
	k.Cancel(w.txnFinishID)
	w.Txn = nil

	for _, id := range w.orderedTagIDs() {
		w.Tags[id].SetPower(k.Time(), nil, w.Scenario.SessionPersistence)
	}

	w.readerOnID = k.Push(w.Scenario.PowerOffDuration, func(k *kernel.Kernel) { w.turnReaderOn(k) })
}

// emitNextCommand drives the reader into state, builds the resulting
// transaction, and schedules its completion.
func (w *World) emitNextCommand(k *kernel.Kernel, state ReaderState) {
	cmd := w.Reader.Enter(state)
	if state == ReaderQuery {
		for _, id := range w.orderedTagIDs() {
			tag := w.Tags[id]
			if tag.State == TagArbitrate || tag.State == TagReply {
				w.Stats.RecordRound(id)
			}
		}
	}
	txn := w.buildTransaction(k, cmd)
	w.Txn = txn
	w.txnFinishID = k.Push(txn.Duration, func(k *kernel.Kernel) { w.finishTransaction(k) })
}

// buildTransaction feeds cmd to every live tag, collects replies,
// computes the transaction's duration per spec.md §3, and captures the
// reader's current received power from each replying tag.
func (w *World) buildTransaction(k *kernel.Kernel, cmd epcstd.Command) *Transaction {
	now := k.Time()
	rtcal := w.Scenario.RTcal()
	trcal := w.Scenario.TRcal()
	blf := epcstd.GetBLF(w.Scenario.DR, trcal)

	cmdDuration := epcstd.ReaderFrameDuration(cmd, w.Scenario.Tari, rtcal, trcal)

	txn := &Transaction{
		Command:       cmd,
		TStart:        now,
		TCommandEnd:   now + cmdDuration,
		RxPowerPerTag: make(map[int]float64),
	}

	maxReplyDuration := 0.0
	for _, id := range w.orderedTagIDs() {
		tag := w.Tags[id]
		reply := w.deliverCommand(tag, cmd, blf)
		if reply == nil {
			continue
		}
		txn.Replies = append(txn.Replies, TagReply{Tag: tag, Reply: reply})
		d := epcstd.TagFrameDuration(reply, tag.CachedBLF, tag.CachedEncoding, tag.CachedTRext)
		if d > maxReplyDuration {
			maxReplyDuration = d
		}
		power := w.computeTagPower(now, tag)
		txn.RxPowerPerTag[id] = safeDeref(power)
	}

	t1max := epcstd.T1Max(rtcal, trcal, w.Scenario.DR, w.Scenario.TempRange)
	t2max := epcstd.T2Max(trcal, w.Scenario.DR)
	t4 := epcstd.T4(rtcal)
	stateTimeout := cmdDuration + t1max
	txn.Duration = duration(cmdDuration, len(txn.Replies) > 0, t1max, maxReplyDuration, t2max, t4, stateTimeout)
	txn.TFinish = now + txn.Duration
	return txn
}

// deliverCommand type-switches cmd to the matching tag-FSM handler.
func (w *World) deliverCommand(tag *Tag, cmd epcstd.Command, blf float64) epcstd.Reply {
	switch c := cmd.(type) {
	case epcstd.Query:
		return tag.HandleQuery(c, blf, w.RNG)
	case epcstd.QueryRep:
		return tag.HandleQueryRep(c, w.RNG)
	case epcstd.Ack:
		return tag.HandleAck(c)
	case epcstd.ReqRN:
		return tag.HandleReqRN(c, w.RNG)
	case epcstd.Read:
		return tag.HandleRead(c)
	default:
		panic(fmt.Sprintf("unrecognized command type %T", cmd))
	}
}

// finishTransaction resolves the in-flight transaction's outcome
// (collision, clean decode, or silence), advances the Reader FSM, and
// schedules the next command (spec.md §4.H).
func (w *World) finishTransaction(k *kernel.Kernel) {
	txn := w.Txn
	w.Txn = nil
	if txn == nil {
		return
	}

	var decoded *TagReply
	var snr, ber float64
	if !txn.Collides() {
		if sole := txn.SoleReply(); sole != nil {
			rxPower := txn.RxPowerPerTag[sole.Tag.ID]
			snr = channel.RawSNR(rxPower, w.Scenario.ReaderNoiseDBm)
			ber = w.berFor(rxPower, sole.Tag, sole.Reply)
			p := channel.DecodeSuccessProbability(ber, sole.Reply.BitLen())
			if w.RNG.Float64() < p {
				decoded = sole
			}
		}
	}

	var nextState ReaderState
	if decoded != nil {
		switch decoded.Reply.(type) {
		case epcstd.AckReply:
			// EPC decoded: the tag is inventoried for this round. If the
			// reader isn't going on to read TID, this is the round's final
			// event; if it is, the ReadReply below completes the same event.
			w.Stats.RecordInventory(decoded.Tag.ID, InventoryEvent{
				RoundIndex: w.Reader.RoundIndex,
				BER:        ber,
				SNR:        snr,
				TagPos:     decoded.Tag.Pos,
				AntennaPos: w.Reader.Antenna.Pos,
			})
		case epcstd.ReadReply:
			decoded.Tag.ReadTIDEver = true
			w.Stats.MarkReadTID(decoded.Tag.ID)
		}
		nextState = w.Reader.HandleReply(decoded.Reply)
	} else {
		nextState = w.Reader.HandleTimeout()
	}

	if w.Reader.TxPowerDBm == nil {
		return
	}
	w.emitNextCommand(k, nextState)
}

func (w *World) berFor(rxPowerDBm float64, tag *Tag, reply epcstd.Reply) float64 {
	snrRaw := channel.RawSNR(rxPowerDBm, w.Scenario.ReaderNoiseDBm)
	rtcal := w.Scenario.RTcal()
	trcal := w.Scenario.TRcal()
	blf := epcstd.GetBLF(w.Scenario.DR, trcal)
	symbolDuration := float64(tag.CachedEncoding.SymbolsPerBit()) / blf
	preamble := epcstd.NewTagPreamble(tag.CachedEncoding, tag.CachedTRext)
	preambleDuration := preamble.Duration(blf)
	snrEff := channel.EffectiveSNR(snrRaw, tag.CachedEncoding.SymbolsPerBit(), symbolDuration, preambleDuration, w.Scenario.ReaderBandwidthHz)
	if w.Scenario.BERModel == BERAWGN {
		return channel.BERAWGN(snrEff)
	}
	return channel.BERRayleigh(snrEff)
}
