package channel

import "math/cmplx"

// ReflectionCoefficient returns the complex reflection coefficient of a
// ray striking a surface at the given grazing-angle cosine.
type ReflectionCoefficient func(cosine, polarization, permittivity, conductivity, wavelen float64) complex128

// ConstantReflection is used when the scenario's reflection mode is
// "const": a fixed, lossless reflection regardless of geometry or
// material.
func ConstantReflection(cosine, polarization, permittivity, conductivity, wavelen float64) complex128 {
	return complex(-1, 0)
}

// FresnelReflection computes the Fresnel reflection coefficient, mixing
// the parallel- and perpendicular-polarization components linearly by
// polarization (0 = perpendicular, 1 = parallel, values in between mix
// the two as an ellipse).
func FresnelReflection(cosine, polarization, permittivity, conductivity, wavelen float64) complex128 {
	sine := complex(toSin(cosine), 0)
	eta := complex(permittivity, -60*wavelen*conductivity)
	cos2 := complex(cosine*cosine, 0)

	var rParallel, rPerpendicular complex128
	if polarization != 0 {
		cParallel := cmplx.Sqrt(eta - cos2)
		rParallel = (sine - cParallel) / (sine + cParallel)
	}
	if polarization != 1 {
		cPerpendicular := cmplx.Sqrt(eta-cos2) / eta
		rPerpendicular = (sine - cPerpendicular) / (sine + cPerpendicular)
	}
	return complex(polarization, 0)*rParallel + complex(1-polarization, 0)*rPerpendicular
}
