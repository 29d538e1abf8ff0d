package epcstd

import "math"

type frtBreakpoint struct {
	trcalUs float64
	frt     float64
}

var frtDR643Nominal = []frtBreakpoint{
	{33.633, 0.15}, {66.033, 0.22}, {67.367, 0.10}, {82.467, 0.12},
	{131.967, 0.10}, {198.00, 0.07}, {227.25, 0.05},
}

var frtDR643Extended = []frtBreakpoint{
	{33.633, 0.15}, {66.033, 0.22}, {82.467, 0.15}, {84.133, 0.10},
	{131.967, 0.12}, {198.00, 0.07}, {227.25, 0.05},
}

var frtDR8Nominal = []frtBreakpoint{
	{24.75, 0.19}, {25.25, 0.10}, {30.9375, 0.12},
	{49.50, 0.10}, {75.00, 0.07}, {202.000, 0.04},
}

var frtDR8Extended = []frtBreakpoint{
	{24.7500, 0.19}, {30.9375, 0.15}, {49.50, 0.10},
	{75.0000, 0.07}, {202.0, 0.04},
}

// FRT looks up the frequency-tolerance fraction bounding T1 (Table A in
// spec.md §4.B). Breakpoints are the last TRcal value (in µs) each
// tolerance applies up to; above the final breakpoint, the final
// tolerance holds.
func FRT(trcal float64, dr DivideRatio, temp TempRange) float64 {
	var table []frtBreakpoint
	switch {
	case dr == DR643 && temp == TempExtended:
		table = frtDR643Extended
	case dr == DR643:
		table = frtDR643Nominal
	case temp == TempExtended:
		table = frtDR8Extended
	default:
		table = frtDR8Nominal
	}
	for _, bp := range table {
		if trcal <= bp.trcalUs*1e-6 {
			return bp.frt
		}
	}
	return table[len(table)-1].frt
}

// PRI is the tag's pulse repetition interval, TRcal/DR.
func PRI(trcal float64, dr DivideRatio) float64 {
	return trcal / dr.Eval()
}

// LinkTimerParam identifies which of the Gen2 link timers (T1..T7) to
// evaluate.
type LinkTimerParam int

const (
	T1 LinkTimerParam = iota + 1
	T2
	T3
	T4
	T5
	T6
	T7
)

// LinkTMin returns the lower bound of link timer n, per spec.md §4.B.
func LinkTMin(n LinkTimerParam, rtcal, trcal float64, dr DivideRatio, temp TempRange) float64 {
	switch n {
	case T1, T5, T6:
		pri := PRI(trcal, dr)
		frt := FRT(trcal, dr, temp)
		return math.Max(rtcal, pri*10.0)*(1.0-frt) - 2e-6
	case T2:
		return 3.0 * PRI(trcal, dr)
	case T3:
		return 0.0
	case T4:
		return 2.0 * rtcal
	case T7:
		return math.Max(LinkTMax(T2, rtcal, trcal, dr, temp), 250e-6)
	default:
		panic("epcstd: link timer index must be 1..7")
	}
}

// LinkTMax returns the upper bound of link timer n, per spec.md §4.B.
func LinkTMax(n LinkTimerParam, rtcal, trcal float64, dr DivideRatio, temp TempRange) float64 {
	switch n {
	case T1:
		pri := PRI(trcal, dr)
		frt := FRT(trcal, dr, temp)
		return math.Max(rtcal, pri*10.0)*(1.0+frt) + 2e-6
	case T2:
		return 20.0 * PRI(trcal, dr)
	case T5, T6, T7:
		return 20e-3
	case T3, T4:
		return math.Inf(1)
	default:
		panic("epcstd: link timer index must be 1..7")
	}
}

func T1Min(rtcal, trcal float64, dr DivideRatio, temp TempRange) float64 {
	return LinkTMin(T1, rtcal, trcal, dr, temp)
}

func T1Max(rtcal, trcal float64, dr DivideRatio, temp TempRange) float64 {
	return LinkTMax(T1, rtcal, trcal, dr, temp)
}

func T2Min(trcal float64, dr DivideRatio) float64 {
	return LinkTMin(T2, 0, trcal, dr, TempNominal)
}

func T2Max(trcal float64, dr DivideRatio) float64 {
	return LinkTMax(T2, 0, trcal, dr, TempNominal)
}

func T4(rtcal float64) float64 {
	return 2.0 * rtcal
}

func T7Min(rtcal, trcal float64, dr DivideRatio) float64 {
	return LinkTMin(T7, rtcal, trcal, dr, TempNominal)
}
