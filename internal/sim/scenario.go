// Package sim wires the protocol codec, propagation model, and
// geometry together into the finite-state machines, transaction model,
// and scheduler that run one end-to-end inventory simulation
// (spec.md §4.E-§4.I).
package sim

import (
	"math/rand"

	"github.com/hanyangzhao/rfidsim/internal/channel"
	"github.com/hanyangzhao/rfidsim/internal/epcstd"
)

// TargetStrategy selects how the reader's Query.Target flag evolves
// round over round.
type TargetStrategy int

const (
	TargetConst TargetStrategy = iota
	TargetSwitch
)

// PowerMode selects whether the reader ever turns its transmitter off.
type PowerMode int

const (
	AlwaysOn PowerMode = iota
	Periodic
)

// ReflectionModel selects how the two-ray model's ground/wall
// reflection coefficient is computed.
type ReflectionModel int

const (
	ReflectionFresnel ReflectionModel = iota
	ReflectionConst
)

// BERModel selects the bit-error-rate distribution (spec.md §4.C).
type BERModel int

const (
	BERRayleigh BERModel = iota
	BERAWGN
)

// GenerationInterval produces the delay, in seconds, before the next
// tag is generated. Scenarios supply this as a closure over a seeded
// rand.Rand so the whole run stays deterministic (spec.md §9).
type GenerationInterval func(rng *rand.Rand) float64

// ConstantInterval is the simplest GenerationInterval: a fixed delay.
func ConstantInterval(seconds float64) GenerationInterval {
	return func(rng *rand.Rand) float64 { return seconds }
}

// ExponentialInterval draws delays from an exponential distribution
// with the given mean, matching the reference model's default
// generator.
func ExponentialInterval(mean float64) GenerationInterval {
	return func(rng *rand.Rand) float64 { return rng.ExpFloat64() * mean }
}

// Scenario is the complete read-only input to one simulation run
// (spec.md §3).
type Scenario struct {
	// Geometry
	ReaderAntennaPos      channel.Vec3
	ReaderAntennaDir      channel.Vec3
	TagStartPos           channel.Vec3
	TagDirection          channel.Vec3
	TagAntennaDir         channel.Vec3
	TagVelocity           float64 // m/s
	TravelDistance        float64

	// Link / PIE parameters
	Tari          float64
	RTcalTariMul  float64
	TRcalRTcalMul float64
	DR            epcstd.DivideRatio
	TagEncoding   epcstd.TagEncoding
	TRext         bool
	Session       epcstd.Session
	Target        epcstd.InventoryFlag
	Q             int
	Sel           epcstd.SelFlag
	TempRange     epcstd.TempRange

	// Power budget
	ReaderTxPowerDBm    float64
	ReaderAntennaGainDB float64
	ReaderCableLossDB   float64
	TagAntennaGainDB    float64
	TagModulationLossDB float64
	TagSensitivityDBm   float64
	ReaderNoiseDBm      float64
	ReaderBandwidthHz   float64

	// Radio / propagation
	FrequencyHz        float64
	Permittivity       float64
	Conductivity       float64
	PolarizationLossDB float64
	Polarization       float64
	ReflectionModel    ReflectionModel
	UseDoppler         bool
	BERModel           BERModel

	// Reader power cycling
	PowerMode        PowerMode
	PowerOnDuration  float64
	PowerOffDuration float64

	// Target strategy
	TargetStrategy   TargetStrategy
	RoundsPerTarget  int

	// Tag memory & reads
	ReadTID       bool
	TIDWordCount  uint8
	EPCBitlen     int

	// Session persistence in seconds, indexed by epcstd.Session; index 0
	// (S0) is unused since S0 always resets on power-on.
	SessionPersistence [4]float64

	// Run control
	NumTags           int
	SimTimeLimit      float64
	RealTimeLimit     float64
	UpdateInterval    float64
	GenerationInterval GenerationInterval

	Seed int64
}

// RTcal derives the reader calibration symbol from Tari.
func (s Scenario) RTcal() float64 { return s.Tari * s.RTcalTariMul }

// TRcal derives the tag calibration symbol from RTcal.
func (s Scenario) TRcal() float64 { return s.RTcal() * s.TRcalRTcalMul }

// StandardScenario returns the reference model's default parameters
// (pysim/models.py's Settings dataclass), the baseline CLI flags
// override.
func StandardScenario() Scenario {
	return Scenario{
		ReaderAntennaPos: channel.Vec3{X: 5, Y: 0, Z: 5},
		ReaderAntennaDir: channel.Vec3{X: 0, Y: 0, Z: -1},
		TagStartPos:      channel.Vec3{X: 5, Y: -10, Z: 0},
		TagDirection:     channel.Vec3{X: 0, Y: 1, Z: 0},
		TagAntennaDir:    channel.Vec3{X: 0, Y: 0, Z: 1},
		TagVelocity:      10.0 / 3.6,
		TravelDistance:   20.0,

		Tari:          6.25e-6,
		RTcalTariMul:  3.0,
		TRcalRTcalMul: 2.5,
		DR:            epcstd.DR8,
		TagEncoding:   epcstd.M4,
		TRext:         true,
		Session:       epcstd.S0,
		Target:        epcstd.FlagA,
		Q:             2,
		Sel:           epcstd.SelAll,
		TempRange:     epcstd.TempNominal,

		ReaderTxPowerDBm:    31.5,
		ReaderAntennaGainDB: 6.0,
		ReaderCableLossDB:   2.0,
		TagAntennaGainDB:    3.0,
		TagModulationLossDB: 12.0,
		TagSensitivityDBm:   -18.0,
		ReaderNoiseDBm:      -80.0,
		ReaderBandwidthHz:   1.2e6,

		FrequencyHz:        860e6,
		Permittivity:       15.0,
		Conductivity:       0.03,
		PolarizationLossDB: 3.0,
		Polarization:       0.5,
		ReflectionModel:    ReflectionFresnel,
		UseDoppler:         true,
		BERModel:           BERRayleigh,

		PowerMode:        Periodic,
		PowerOnDuration:  2.0,
		PowerOffDuration: 0.1,

		TargetStrategy:  TargetSwitch,
		RoundsPerTarget: 1,

		ReadTID:      true,
		TIDWordCount: 8,
		EPCBitlen:    96,

		SessionPersistence: [4]float64{0, 2.0, 2.0, 2.0},

		NumTags:            10,
		SimTimeLimit:        0,
		RealTimeLimit:       0,
		UpdateInterval:      0.01,
		GenerationInterval:  ConstantInterval(1.0),

		Seed: 1,
	}
}

// RunResult is the core's return value (spec.md §6).
type RunResult struct {
	AvgRoundsPerTag      float64
	InventoryProbability float64
	ReadTIDProbability   float64
}
