package channel

import "math"

// RadiationPattern computes an antenna's directional gain for a ray
// leaving (or arriving) at azimuth cosine azCos, at the given
// wavelength.
type RadiationPattern interface {
	Gain(azCos, wavelen float64) float64
}

// Isotropic radiates uniformly in all directions.
type Isotropic struct{}

func (Isotropic) Gain(azCos, wavelen float64) float64 { return 1.0 }

// Dipole is the default radiation pattern: a half-wave dipole gain
// profile in azimuth.
type Dipole struct {
	Tol float64 // defaults to 1e-9 when zero
}

func (d Dipole) Gain(azCos, wavelen float64) float64 {
	tol := d.Tol
	if tol == 0 {
		tol = 1e-9
	}
	if azCos <= tol {
		return 0
	}
	aSin := toSin(azCos)
	return math.Abs(math.Cos(math.Pi/2*aSin) / azCos)
}

// Patch models a rectangular microstrip patch antenna. The reference
// implementation's active path only threads a single azimuth angle
// through the pattern call, so the tilt cosine is fixed at broadside
// (1.0) rather than computed from a second direction vector.
type Patch struct {
	Width, Length float64
}

func (p Patch) Gain(azCos, wavelen float64) float64 {
	const tCos = 1.0
	factor := patchFactor(azCos, tCos, wavelen, p.Width, p.Length)
	return math.Abs(factor) * math.Sqrt(tCos*tCos+azCos*azCos*toSin(tCos)*toSin(tCos))
}

func patchFactor(aCos, tCos, wavelen, width, length float64) float64 {
	const tol = 1e-9
	if aCos < tol {
		return 0
	}
	aSin := toSin(aCos)
	tSin := toSin(tCos)
	kw := math.Pi / wavelen * width
	kl := math.Pi / wavelen * length
	switch {
	case math.Abs(aSin) < tol:
		return 1.0
	case math.Abs(tSin) < tol:
		return math.Cos(kl * aSin)
	default:
		return math.Sin(kw*aSin*tSin) / (kw * aSin * tSin) * math.Cos(kl*aSin*tCos)
	}
}
