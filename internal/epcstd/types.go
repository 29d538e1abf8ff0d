// Package epcstd implements the EPC Class-1 Generation-2 UHF RFID
// air-interface protocol codec: command/reply encoding, frame and link
// timing (spec.md §4.B). Enumerated protocol fields are plain Go types
// with methods, not polymorphic objects that forward attribute access —
// see spec.md §9's note on replacing runtime attribute delegation.
package epcstd

import "fmt"

// DivideRatio is the Gen2 DR field: the ratio between the backscatter
// link frequency and TRcal.
type DivideRatio int

const (
	DR8 DivideRatio = iota
	DR643
)

func (d DivideRatio) Code() string {
	if d == DR643 {
		return "1"
	}
	return "0"
}

// Eval returns the numeric divide ratio: 8 or 64/3.
func (d DivideRatio) Eval() float64 {
	if d == DR643 {
		return 64.0 / 3.0
	}
	return 8.0
}

func (d DivideRatio) String() string {
	if d == DR643 {
		return "64/3"
	}
	return "8"
}

// InventoryFlag is a tag's per-session inventoried flag, A or B.
type InventoryFlag int

const (
	FlagA InventoryFlag = iota
	FlagB
)

func (f InventoryFlag) Code() string {
	if f == FlagB {
		return "1"
	}
	return "0"
}

// Invert returns the opposite flag value.
func (f InventoryFlag) Invert() InventoryFlag {
	if f == FlagA {
		return FlagB
	}
	return FlagA
}

func (f InventoryFlag) String() string {
	if f == FlagB {
		return "B"
	}
	return "A"
}

// Session identifies which of the four session-flag sets (S0..S3) a
// Query addresses. Session persistence across power gaps differs per
// session: S0 always resets to A on power-on, S1..S3 preserve their
// value across gaps shorter than the session's configured persistence.
type Session int

const (
	S0 Session = iota
	S1
	S2
	S3
)

func (s Session) Code() string {
	switch s {
	case S1:
		return "01"
	case S2:
		return "10"
	case S3:
		return "11"
	default:
		return "00"
	}
}

func (s Session) Index() int { return int(s) }

func (s Session) String() string {
	return fmt.Sprintf("S%d", int(s))
}

// PowerOnValue computes the session flag a tag should adopt when it
// powers on after being off for the given interval, given the session's
// configured persistence and the value the flag held before power-off.
// S0 always resets to A regardless of interval or persistence.
func (s Session) PowerOnValue(offInterval, persistence float64, stored InventoryFlag) InventoryFlag {
	if s == S0 {
		return FlagA
	}
	if offInterval > persistence {
		return FlagA
	}
	return stored
}

// TagEncoding is the Gen2 M field: symbols-per-bit factor used to encode
// tag replies (FM0, M2, M4, M8).
type TagEncoding int

const (
	FM0 TagEncoding = iota
	M2
	M4
	M8
)

func (e TagEncoding) Code() string {
	switch e {
	case M2:
		return "01"
	case M4:
		return "10"
	case M8:
		return "11"
	default:
		return "00"
	}
}

func (e TagEncoding) SymbolsPerBit() int {
	switch e {
	case M2:
		return 2
	case M4:
		return 4
	case M8:
		return 8
	default:
		return 1
	}
}

func (e TagEncoding) String() string {
	switch e {
	case M2:
		return "M2"
	case M4:
		return "M4"
	case M8:
		return "M8"
	default:
		return "FM0"
	}
}

// TagEncodingFromM maps a raw m value (1, 2, 4, or 8) to a TagEncoding.
func TagEncodingFromM(m int) (TagEncoding, error) {
	switch m {
	case 1:
		return FM0, nil
	case 2:
		return M2, nil
	case 4:
		return M4, nil
	case 8:
		return M8, nil
	default:
		return 0, fmt.Errorf("epcstd: m must be 1, 2, 4 or 8, got %d", m)
	}
}

// SelFlag is the Gen2 Sel field, selecting which tags (by their SL flag)
// a Query addresses.
type SelFlag int

const (
	SelAll SelFlag = iota
	SelNotSL
	SelSL
)

func (s SelFlag) Code() string {
	switch s {
	case SelNotSL:
		return "10"
	case SelSL:
		return "11"
	default:
		return "00"
	}
}

func (s SelFlag) String() string {
	switch s {
	case SelNotSL:
		return "~SL"
	case SelSL:
		return "SL"
	default:
		return "ALL"
	}
}

// Match reports whether a tag's SL flag matches this selector.
func (s SelFlag) Match(sl bool) bool {
	switch s {
	case SelNotSL:
		return !sl
	case SelSL:
		return sl
	default:
		return true
	}
}

// MemoryBank identifies one of the tag's four logical memory banks.
type MemoryBank int

const (
	BankReserved MemoryBank = iota
	BankEPC
	BankTID
	BankUser
)

func (b MemoryBank) Code() string {
	switch b {
	case BankEPC:
		return "01"
	case BankTID:
		return "10"
	case BankUser:
		return "11"
	default:
		return "00"
	}
}

func (b MemoryBank) String() string {
	switch b {
	case BankEPC:
		return "EPC"
	case BankTID:
		return "TID"
	case BankUser:
		return "User"
	default:
		return "Reserved"
	}
}

// TempRange selects the nominal or extended temperature range used to
// look up the FRT table (Table A in spec.md §4.B).
type TempRange int

const (
	TempNominal TempRange = iota
	TempExtended
)

func (t TempRange) Extended() bool { return t == TempExtended }

func (t TempRange) String() string {
	if t == TempExtended {
		return "extended"
	}
	return "nominal"
}

// CommandCode identifies a reader command's fixed opcode prefix.
type CommandCode int

const (
	CmdQuery CommandCode = iota
	CmdQueryRep
	CmdAck
	CmdReqRN
	CmdRead
)

func (c CommandCode) Code() string {
	switch c {
	case CmdQueryRep:
		return "00"
	case CmdAck:
		return "01"
	case CmdReqRN:
		return "11000001"
	case CmdRead:
		return "11000010"
	default:
		return "1000"
	}
}

func (c CommandCode) String() string {
	switch c {
	case CmdQueryRep:
		return "QueryRep"
	case CmdAck:
		return "ACK"
	case CmdReqRN:
		return "Req_RN"
	case CmdRead:
		return "Read"
	default:
		return "Query"
	}
}
