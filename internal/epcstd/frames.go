package epcstd

import "fmt"

// ReaderDelim is the fixed delimiter duration preceding every reader
// transmission.
const ReaderDelim = 12.5e-6

// ReaderSync is the delim+Tari+RTcal preamble used by every reader
// command except Query.
type ReaderSync struct {
	Tari  float64
	RTcal float64
	Delim float64
}

func NewReaderSync(tari, rtcal float64) ReaderSync {
	return ReaderSync{Tari: tari, RTcal: rtcal, Delim: ReaderDelim}
}

// Data0 and Data1 are the durations of a 0-bit and a 1-bit under PIE.
func (s ReaderSync) Data0() float64 { return s.Tari }
func (s ReaderSync) Data1() float64 { return s.RTcal - s.Tari }

func (s ReaderSync) Duration() float64 { return s.Delim + s.Tari + s.RTcal }

func (s ReaderSync) String() string {
	return fmt.Sprintf("{Delim(%gus),Tari(%gus),RTcal(%gus)}", s.Delim*1e6, s.Tari*1e6, s.RTcal*1e6)
}

// ReaderPreamble extends ReaderSync with TRcal; it precedes a Query,
// the only command that establishes link timing for the round.
type ReaderPreamble struct {
	ReaderSync
	TRcal float64
}

func NewReaderPreamble(tari, rtcal, trcal float64) ReaderPreamble {
	return ReaderPreamble{ReaderSync: NewReaderSync(tari, rtcal), TRcal: trcal}
}

func (p ReaderPreamble) Duration() float64 { return p.ReaderSync.Duration() + p.TRcal }

func (p ReaderPreamble) String() string {
	return fmt.Sprintf("{Delim(%gus),Tari(%gus),RTcal(%gus),TRcal(%gus)}",
		p.Delim*1e6, p.Tari*1e6, p.RTcal*1e6, p.TRcal*1e6)
}

// readerPreambleLike is satisfied by both ReaderSync and ReaderPreamble.
type readerPreambleLike interface {
	Duration() float64
	Data0() float64
	Data1() float64
}

// ReaderFrameDuration computes the transmission time of command, given
// the preamble it rides on. Query commands carry the full
// ReaderPreamble (delim+Tari+RTcal+TRcal); every other command carries
// a bare ReaderSync (delim+Tari+RTcal).
func ReaderFrameDuration(cmd Command, tari, rtcal, trcal float64) float64 {
	var preamble readerPreambleLike
	if cmd.Code() == CmdQuery {
		preamble = NewReaderPreamble(tari, rtcal, trcal)
	} else {
		preamble = NewReaderSync(tari, rtcal)
	}
	return preamble.Duration() + bodyDuration(cmd.Encode(), preamble.Data0(), preamble.Data1())
}

func bodyDuration(bits string, d0, d1 float64) float64 {
	var zeros, ones int
	for _, b := range bits {
		if b == '0' {
			zeros++
		} else {
			ones++
		}
	}
	return float64(zeros)*d0 + float64(ones)*d1
}

// TagPreamble is the fixed bit pattern a tag transmits before a reply.
type TagPreamble struct {
	Encoding  TagEncoding
	Extended  bool
}

// NewFM0Preamble returns the FM0 preamble (6 bits, or 18 with TRext).
func NewFM0Preamble(extended bool) TagPreamble {
	return TagPreamble{Encoding: FM0, Extended: extended}
}

// NewMillerPreamble returns the Miller preamble (10 bits, or 22 with
// TRext) for the given Miller subcarrier encoding (M2, M4, or M8).
func NewMillerPreamble(m TagEncoding, extended bool) (TagPreamble, error) {
	if m != M2 && m != M4 && m != M8 {
		return TagPreamble{}, fmt.Errorf("epcstd: Miller preamble requires M2, M4 or M8, got %s", m)
	}
	return TagPreamble{Encoding: m, Extended: extended}, nil
}

// NewTagPreamble picks FM0 or Miller framing based on encoding.
func NewTagPreamble(encoding TagEncoding, extended bool) TagPreamble {
	if encoding == FM0 {
		return NewFM0Preamble(extended)
	}
	p, err := NewMillerPreamble(encoding, extended)
	if err != nil {
		panic(err)
	}
	return p
}

// BitLen is the preamble's own bit length, per spec.md §4.B / §8: FM0
// is 6 bits normal / 18 extended; Miller is 10 / 22.
func (p TagPreamble) BitLen() int {
	if p.Encoding == FM0 {
		if p.Extended {
			return 18
		}
		return 6
	}
	if p.Extended {
		return 22
	}
	return 10
}

// Duration returns the preamble's transmission time at the given BLF.
func (p TagPreamble) Duration(blf float64) float64 {
	return float64(p.BitLen()*p.Encoding.SymbolsPerBit()) / blf
}

// TagFrameDuration computes a tag reply's total transmission time:
// preamble + body + one trailing dummy symbol.
func TagFrameDuration(reply Reply, blf float64, encoding TagEncoding, trext bool) float64 {
	preamble := NewTagPreamble(encoding, trext)
	m := encoding.SymbolsPerBit()
	tPreamble := preamble.Duration(blf)
	tBody := float64(reply.BitLen()*m) / blf
	tSuffix := float64(m) / blf
	return tPreamble + tBody + tSuffix
}

// GetBLF returns the backscatter link frequency for the given divide
// ratio and TRcal.
func GetBLF(dr DivideRatio, trcal float64) float64 {
	return dr.Eval() / trcal
}

// TagBitrate is the tag's effective bitrate at the given link settings.
func TagBitrate(dr DivideRatio, trcal float64, encoding TagEncoding) float64 {
	return GetBLF(dr, trcal) / float64(encoding.SymbolsPerBit())
}
