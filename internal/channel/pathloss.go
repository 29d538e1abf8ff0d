package channel

import "math"
import "math/cmplx"

// TwoRayParams bundles the geometry, kinematics, and material
// parameters the two-ray model needs to evaluate one reader-tag link
// at a single instant (spec.md §4.C).
type TwoRayParams struct {
	// Time is the elapsed time since the reader last powered on, used
	// to project the Doppler phase shift. Callers that disable Doppler
	// pass 0.
	Time float64

	Wavelen float64

	TxPos, TxDirTheta, TxVelocity Vec3
	TxPattern                    RadiationPattern

	RxPos, RxDirTheta, RxVelocity Vec3
	RxPattern                     RadiationPattern

	Reflection   ReflectionCoefficient
	Polarization float64
	Permittivity float64
	Conductivity float64
}

// TwoRayPathloss computes the free-space-plus-ground-reflection path
// loss in dB between a transmitter and a receiver, including a Doppler
// phase correction on both the line-of-sight and reflected rays. The
// reflected ray mirrors the receiver across the wall plane x=0.
func TwoRayPathloss(p TwoRayParams) float64 {
	groundNormal := Vec3{X: 1, Y: 0, Z: 0}
	rxRefl := p.RxPos.MirrorX()

	d0Vec := p.RxPos.Sub(p.TxPos)
	d1Vec := rxRefl.Sub(p.TxPos)
	d0 := d0Vec.Norm()
	d1 := d1Vec.Norm()

	d0TxN := d0Vec.Scale(1 / d0)
	d0RxN := d0TxN.Scale(-1)
	d1TxN := d1Vec.Scale(1 / d1)
	d1RxN := Vec3{X: -d1TxN.X, Y: -d1TxN.Y, Z: d1TxN.Z}

	txAz0 := d0TxN.Dot(p.TxDirTheta)
	rxAz0 := d0RxN.Dot(p.RxDirTheta)
	txAz1 := d1TxN.Dot(p.TxDirTheta)
	rxAz1 := -1 * d1RxN.Dot(p.RxDirTheta)

	grazing := -1 * d1RxN.Dot(groundNormal)

	relVelocity := p.RxVelocity.Sub(p.TxVelocity)
	v0 := d0TxN.Dot(relVelocity)
	v1 := d1TxN.Dot(relVelocity)

	g0 := p.TxPattern.Gain(txAz0, p.Wavelen) * p.RxPattern.Gain(rxAz0, p.Wavelen)
	g1 := p.TxPattern.Gain(txAz1, p.Wavelen) * p.RxPattern.Gain(rxAz1, p.Wavelen)

	r1 := p.Reflection(grazing, p.Polarization, p.Permittivity, p.Conductivity, p.Wavelen)

	k := 2 * math.Pi / p.Wavelen

	phase0 := -k * (d0 - p.Time*v0)
	phase1 := -k * (d1 - p.Time*v1)

	term0 := complex(g0/d0, 0) * cmplx.Exp(complex(0, phase0))
	term1 := r1 * complex(g1/d1, 0) * cmplx.Exp(complex(0, phase1))
	field := complex(0.5/k, 0) * (term0 + term1)

	mag := cmplx.Abs(field)
	return toPowerDB(mag*mag, 1e-15)
}

// ReceivedPowerDBm applies the link budget to a transmit power and a
// path loss: tx power plus path loss plus antenna gains, minus cable
// losses and any additional polarization mismatch loss.
func ReceivedPowerDBm(txPowerDBm, pathlossDB float64, tx, rx Antenna, polarizationLossDB float64) float64 {
	return txPowerDBm + pathlossDB +
		tx.GainDB - tx.CableLossDB +
		rx.GainDB - rx.CableLossDB -
		polarizationLossDB
}
