package epcstd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeEBVVectors(t *testing.T) {
	assert.Equal(t, "00000000", EncodeEBV(0))
	assert.Equal(t, "1000000100000000", EncodeEBV(128))
	assert.Equal(t, "100000011000000000000000", EncodeEBV(16384))
}

func TestCommandBitLens(t *testing.T) {
	d := StandardParams()
	q := NewQuery(d)
	assert.Equal(t, 22, q.BitLen())
	assert.Equal(t, len(q.Encode()), q.BitLen())

	qr := QueryRep{Session: S0}
	assert.Equal(t, 4, qr.BitLen())
	assert.Equal(t, len(qr.Encode()), qr.BitLen())

	ack := Ack{RN: 0x1234}
	assert.Equal(t, 18, ack.BitLen())
	assert.Equal(t, len(ack.Encode()), ack.BitLen())

	rr := ReqRN{RN: 0x1234, CRC16: 0xabcd}
	assert.Equal(t, 40, rr.BitLen())
	assert.Equal(t, len(rr.Encode()), rr.BitLen())

	rd := Read{Bank: BankTID, WordPtr: 0, WordCount: 4, RN: 0x1234, CRC16: 0xabcd}
	assert.GreaterOrEqual(t, rd.BitLen(), 58)
	assert.Equal(t, len(rd.Encode()), rd.BitLen())

	rdBig := Read{Bank: BankTID, WordPtr: 16384, WordCount: 4, RN: 0x1234, CRC16: 0xabcd}
	assert.Greater(t, rdBig.BitLen(), rd.BitLen())
	assert.Equal(t, len(rdBig.Encode()), rdBig.BitLen())
}

func TestReplyBitLens(t *testing.T) {
	assert.Equal(t, 16, QueryReply{RN: 1}.BitLen())
	assert.Equal(t, 32+8*12, AckReply{PC: 0, EPC: "0123456789ab0123456789ab", CRC16: 0}.BitLen())
	assert.Equal(t, 32, ReqRnReply{RN: 1, CRC16: 2}.BitLen())
	assert.Equal(t, 33+16*4, ReadReply{Words: []uint16{1, 2, 3, 4}}.BitLen())
}

func TestQueryFrameDuration(t *testing.T) {
	d := StandardParams()
	q := NewQuery(d)
	q.Q = 15      // "1111"
	q.CRC5 = 0x1F // "11111": the encoding now has 10 ones and 12 zeros
	dur := ReaderFrameDuration(q, 6.25e-6, 18.75e-6, 56.25e-6)
	assert.InDelta(t, 293.75e-6, dur, 1e-9)

	preamble := NewReaderPreamble(6.25e-6, 18.75e-6, 56.25e-6)
	body := dur - preamble.Duration()
	assert.InDelta(t, 200e-6, body, 1e-9)
}

func TestQueryRepFrameDuration(t *testing.T) {
	qr := QueryRep{Session: S3}
	d1 := ReaderFrameDuration(qr, 12.5e-6, 31.25e-6, 0)
	assert.InDelta(t, 118.75e-6, d1, 1e-9)

	d2 := ReaderFrameDuration(qr, 25e-6, 62.5e-6, 0)
	assert.InDelta(t, 225e-6, d2, 1e-9)
}

func TestTagPreambleBitLen(t *testing.T) {
	assert.Equal(t, 6, NewFM0Preamble(false).BitLen())
	assert.Equal(t, 18, NewFM0Preamble(true).BitLen())

	mp, err := NewMillerPreamble(M2, false)
	assert.NoError(t, err)
	assert.Equal(t, 10, mp.BitLen())

	mpExt, err := NewMillerPreamble(M2, true)
	assert.NoError(t, err)
	assert.Equal(t, 22, mpExt.BitLen())

	_, err = NewMillerPreamble(FM0, false)
	assert.Error(t, err)
}

func TestLinkTimersAtGivenParams(t *testing.T) {
	rtcal := 75e-6
	trcal := 225e-6
	dr := DR8

	assert.InDelta(t, 150e-6, T4(rtcal), 1e-12)

	t2min := T2Min(trcal, dr)
	t2max := T2Max(trcal, dr)
	assert.InDelta(t, 84.375e-6, t2min, 1e-9)
	assert.InDelta(t, 562.5e-6, t2max, 1e-9)

	assert.InDelta(t, 20e-3, LinkTMax(T5, rtcal, trcal, dr, TempNominal), 1e-12)
	assert.InDelta(t, 20e-3, LinkTMax(T6, rtcal, trcal, dr, TempNominal), 1e-12)
	assert.InDelta(t, 20e-3, LinkTMax(T7, rtcal, trcal, dr, TempNominal), 1e-12)

	assert.InDelta(t, 562.5e-6, T7Min(rtcal, trcal, dr), 1e-9)
}

func TestFRTBreakpoints(t *testing.T) {
	assert.Equal(t, 0.19, FRT(24.0e-6, DR8, TempNominal))
	assert.Equal(t, 0.10, FRT(25.0e-6, DR8, TempNominal))
	assert.Equal(t, 0.04, FRT(300e-6, DR8, TempNominal)) // above last breakpoint

	assert.Equal(t, 0.15, FRT(30e-6, DR643, TempNominal))
	assert.Equal(t, 0.05, FRT(300e-6, DR643, TempNominal))
}

func TestQueryDefaultsMatchExplicitOverride(t *testing.T) {
	d := StandardParams()
	fromDefaults := NewQuery(d)

	explicit := Query{
		DR:      DR8,
		M:       FM0,
		TRext:   false,
		Sel:     SelAll,
		Session: S0,
		Target:  FlagA,
		Q:       4,
		CRC5:    0,
	}

	assert.Equal(t, explicit.Encode(), fromDefaults.Encode())
}

func TestReadWordsFromHexTruncatesShortMemory(t *testing.T) {
	words := ReadWordsFromHex("abcd1234", 0, 4)
	assert.Equal(t, []uint16{0xabcd, 0x1234}, words)
}

func TestSessionPowerOnValue(t *testing.T) {
	assert.Equal(t, FlagA, S0.PowerOnValue(1000, 1, FlagB))
	assert.Equal(t, FlagB, S1.PowerOnValue(0.5, 1.0, FlagB))
	assert.Equal(t, FlagA, S1.PowerOnValue(2.0, 1.0, FlagB))
}
