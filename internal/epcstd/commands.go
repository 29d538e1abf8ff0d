package epcstd

import "fmt"

// Command is anything a reader can transmit to the tag population.
type Command interface {
	Code() CommandCode
	Encode() string
	BitLen() int
	String() string
}

// Query begins an inventory round. It carries every parameter a tag
// needs to decide whether it is addressed and, if so, how to reply.
type Query struct {
	DR      DivideRatio
	M       TagEncoding
	TRext   bool
	Sel     SelFlag
	Session Session
	Target  InventoryFlag
	Q       int
	CRC5    uint8
}

// NewQuery builds a Query from a DefaultParams baseline. Overriding a
// field afterwards (q := NewQuery(d); q.Q = 3) is the idiomatic
// replacement for constructing with partial keyword overrides: Encode
// is a pure function of the struct's fields, so the two styles always
// agree.
func NewQuery(d DefaultParams) Query {
	return Query{
		DR:      d.DR,
		M:       d.TagEncoding,
		TRext:   d.TRext,
		Sel:     d.Sel,
		Session: d.Session,
		Target:  d.Target,
		Q:       d.Q,
		CRC5:    d.CRC5,
	}
}

func (q Query) Code() CommandCode { return CmdQuery }

func (q Query) Encode() string {
	s := CmdQuery.Code()
	s += q.DR.Code()
	s += q.M.Code()
	s += EncodeBool(q.TRext)
	s += q.Sel.Code()
	s += q.Session.Code()
	s += q.Target.Code()
	s += EncodeInt(uint64(q.Q), 4)
	s += EncodeInt(uint64(q.CRC5), 5)
	return s
}

func (q Query) BitLen() int { return 22 }

func (q Query) String() string {
	return fmt.Sprintf("Query(dr=%s, m=%s, trext=%v, sel=%s, session=%s, target=%s, q=%d)",
		q.DR, q.M, q.TRext, q.Sel, q.Session, q.Target, q.Q)
}

// QueryRep moves the reader to the next slot within a round, addressing
// a single session's flag without re-specifying any other parameter.
type QueryRep struct {
	Session Session
}

func (q QueryRep) Code() CommandCode { return CmdQueryRep }

func (q QueryRep) Encode() string {
	return CmdQueryRep.Code() + q.Session.Code()
}

func (q QueryRep) BitLen() int { return 4 }

func (q QueryRep) String() string {
	return fmt.Sprintf("QueryRep(session=%s)", q.Session)
}

// Ack confirms a tag's RN16, requesting its EPC.
type Ack struct {
	RN uint16
}

func (a Ack) Code() CommandCode { return CmdAck }

func (a Ack) Encode() string {
	return CmdAck.Code() + EncodeWord(a.RN)
}

func (a Ack) BitLen() int { return 18 }

func (a Ack) String() string {
	return fmt.Sprintf("ACK(rn=%#04x)", a.RN)
}

// ReqRN requests a new handle from an acknowledged or secured tag.
type ReqRN struct {
	RN   uint16
	CRC16 uint16
}

func (r ReqRN) Code() CommandCode { return CmdReqRN }

func (r ReqRN) Encode() string {
	return CmdReqRN.Code() + EncodeWord(r.RN) + EncodeWord(r.CRC16)
}

func (r ReqRN) BitLen() int { return 40 }

func (r ReqRN) String() string {
	return fmt.Sprintf("Req_RN(rn=%#04x)", r.RN)
}

// Read requests word_count 16-bit words from bank starting at word_ptr
// (an EBV-encoded offset), authenticated by the tag's current handle.
type Read struct {
	Bank      MemoryBank
	WordPtr   uint32
	WordCount uint8
	RN        uint16
	CRC16     uint16
}

func (r Read) Code() CommandCode { return CmdRead }

func (r Read) Encode() string {
	s := CmdRead.Code()
	s += r.Bank.Code()
	s += EncodeEBV(r.WordPtr)
	s += EncodeByte(r.WordCount)
	s += EncodeWord(r.RN)
	s += EncodeWord(r.CRC16)
	return s
}

// BitLen depends on the length of the EBV-encoded word pointer: 8 (opcode)
// + 2 (bank) + len(ebv(word_ptr)) + 8 (word_count) + 16 (rn) + 16 (crc16).
func (r Read) BitLen() int {
	return 8 + 2 + len(EncodeEBV(r.WordPtr)) + 8 + 16 + 16
}

func (r Read) String() string {
	return fmt.Sprintf("Read(bank=%s, word_ptr=%d, word_count=%d, rn=%#04x)",
		r.Bank, r.WordPtr, r.WordCount, r.RN)
}

// DefaultParams is the shared baseline for building commands and
// replies; it plays the role the original implementation gives a
// mutable global defaults object, but as an explicit value every
// scenario constructs for itself rather than process-wide state that
// parallel scenario runs would otherwise have to serialize around.
type DefaultParams struct {
	DR            DivideRatio
	TagEncoding   TagEncoding
	Sel           SelFlag
	Session       Session
	Target        InventoryFlag
	Q             int
	TRext         bool
	ReadBank      MemoryBank
	ReadWordPtr   uint32
	ReadWordCount uint8
	TempRange     TempRange
	CRC5          uint8
	CRC16         uint16
}

// StandardParams returns the Gen2 baseline defaults used when a
// scenario does not override a field explicitly.
func StandardParams() DefaultParams {
	return DefaultParams{
		DR:            DR8,
		TagEncoding:   FM0,
		Sel:           SelAll,
		Session:       S0,
		Target:        FlagA,
		Q:             4,
		TRext:         false,
		ReadBank:      BankTID,
		ReadWordPtr:   0,
		ReadWordCount: 4,
		TempRange:     TempNominal,
		CRC5:          0,
		CRC16:         0,
	}
}
