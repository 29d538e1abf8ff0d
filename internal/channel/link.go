package channel

import "math"

const defaultSNRTol = 1e-8

// RawSNR converts a received-power/noise-floor pair (both dBm) into a
// linear signal-to-noise ratio.
func RawSNR(rxPowerDBm, noiseFloorDBm float64) float64 {
	return fromLogLinear(rxPowerDBm - noiseFloorDBm)
}

// EffectiveSNR applies the preamble-based synchronization correction
// spec.md §4.C describes: a raw SNR below tol is treated as unusable
// (clamped to 0.5, i.e. a coin flip); otherwise the sync angle derived
// from the preamble duration and receiver bandwidth attenuates the
// raw SNR by cos².
func EffectiveSNR(raw float64, m int, symbolDuration, preambleDuration, bandwidth float64) float64 {
	if raw < defaultSNRTol {
		return 0.5
	}
	syncAngle := math.Pow(raw*preambleDuration*bandwidth, -0.5)
	return float64(m) * raw * symbolDuration * bandwidth * math.Pow(math.Cos(syncAngle), 2)
}

// QFunc is the Gaussian tail probability, used by the AWGN BER variant.
func QFunc(x float64) float64 {
	return 0.5 - 0.5*math.Erf(x/math.Sqrt2)
}

// BERRayleigh is the bit-error rate under Rayleigh fading.
func BERRayleigh(snr float64) float64 {
	if snr < defaultSNRTol {
		return 0.5
	}
	t := math.Sqrt(1 + 2/snr)
	return 0.5 - 1/t + (2/math.Pi)*math.Atan(t)/t
}

// BERAWGN is the bit-error rate under an additive white Gaussian noise
// channel (no fading).
func BERAWGN(snr float64) float64 {
	if snr < defaultSNRTol {
		return 0.5
	}
	t := QFunc(math.Sqrt(snr))
	return 2 * t * (1 - t)
}

// DecodeSuccessProbability is the probability that every bit of a
// bitlen-bit reply decodes correctly, assuming independent per-bit
// errors at the given rate.
func DecodeSuccessProbability(ber float64, bitlen int) float64 {
	return math.Pow(1-ber, float64(bitlen))
}
