package channel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsotropicGainIsConstant(t *testing.T) {
	iso := Isotropic{}
	assert.Equal(t, 1.0, iso.Gain(0.5, 0.33))
	assert.Equal(t, 1.0, iso.Gain(-0.3, 0.33))
}

func TestDipoleGainZeroBelowTolerance(t *testing.T) {
	d := Dipole{}
	assert.Equal(t, 0.0, d.Gain(0, 0.33))
}

func TestDipoleGainBroadside(t *testing.T) {
	d := Dipole{}
	g := d.Gain(1.0, 0.33) // azimuth cosine 1 => boresight
	assert.InDelta(t, 1.0, g, 1e-9)
}

func TestConstantReflectionIsMinusOne(t *testing.T) {
	r := ConstantReflection(0.5, 0.5, 15, 0.03, 0.33)
	assert.Equal(t, complex(-1, 0), r)
}

func TestFresnelReflectionPureParallel(t *testing.T) {
	r := FresnelReflection(0.3, 1.0, 15.0, 0.03, 0.33)
	assert.False(t, math.IsNaN(real(r)))
	assert.False(t, math.IsNaN(imag(r)))
}

func TestTwoRayPathlossMatchesFreeSpaceOnAxis(t *testing.T) {
	p := TwoRayParams{
		Time:         0,
		Wavelen:      0.33,
		TxPos:        Vec3{X: 5, Y: 0, Z: 0},
		TxDirTheta:   Vec3{X: -1, Y: 0, Z: 0},
		RxPos:        Vec3{X: 0, Y: 0, Z: 0},
		RxDirTheta:   Vec3{X: 1, Y: 0, Z: 0},
		TxPattern:    Isotropic{},
		RxPattern:    Isotropic{},
		Reflection:   ConstantReflection,
		Polarization: 0.5,
		Permittivity: 15,
		Conductivity: 0.03,
	}
	pl := TwoRayPathloss(p)
	assert.False(t, math.IsNaN(pl))
	assert.False(t, math.IsInf(pl, 0))
}

func TestEffectiveSNRClampsBelowTolerance(t *testing.T) {
	assert.Equal(t, 0.5, EffectiveSNR(1e-10, 1, 1e-6, 1e-6, 1e6))
}

func TestBERRayleighMonotonicWithSNR(t *testing.T) {
	low := BERRayleigh(1.0)
	high := BERRayleigh(100.0)
	assert.Greater(t, low, high)
}

func TestBERAWGNMonotonicWithSNR(t *testing.T) {
	low := BERAWGN(1.0)
	high := BERAWGN(100.0)
	assert.Greater(t, low, high)
}

func TestDecodeSuccessProbability(t *testing.T) {
	assert.Equal(t, 1.0, DecodeSuccessProbability(0, 16))
	assert.InDelta(t, 0.0, DecodeSuccessProbability(1, 16), 1e-9)
}

func TestVec3MirrorX(t *testing.T) {
	v := Vec3{X: 3, Y: 2, Z: 1}
	assert.Equal(t, Vec3{X: -3, Y: 2, Z: 1}, v.MirrorX())
}
