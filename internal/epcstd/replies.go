package epcstd

import "fmt"

// Reply is anything a tag can transmit back to the reader.
type Reply interface {
	Encode() string
	BitLen() int
	String() string
}

// QueryReply carries the RN16 a tag drew for its current slot.
type QueryReply struct {
	RN uint16
}

func (r QueryReply) Encode() string { return EncodeWord(r.RN) }
func (r QueryReply) BitLen() int    { return 16 }
func (r QueryReply) String() string { return fmt.Sprintf("QueryReply(rn=%#04x)", r.RN) }

// AckReply carries a tag's Protocol-Control word and EPC in response to
// an Ack.
type AckReply struct {
	PC    uint16
	EPC   string // hex digit string
	CRC16 uint16
}

func (r AckReply) Encode() string {
	epcBits, err := EncodeHexString(r.EPC)
	if err != nil {
		panic(fmt.Sprintf("epcstd: invalid EPC %q: %v", r.EPC, err))
	}
	return EncodeWord(r.PC) + epcBits + EncodeWord(r.CRC16)
}

func (r AckReply) BitLen() int {
	return 32 + 4*len(r.EPC)
}

func (r AckReply) String() string {
	return fmt.Sprintf("AckReply(epc=%s)", r.EPC)
}

// ReqRnReply carries a tag's newly-issued handle in response to ReqRN.
type ReqRnReply struct {
	RN    uint16
	CRC16 uint16
}

func (r ReqRnReply) Encode() string { return EncodeWord(r.RN) + EncodeWord(r.CRC16) }
func (r ReqRnReply) BitLen() int    { return 32 }
func (r ReqRnReply) String() string { return fmt.Sprintf("Req_RN Reply(rn=%#04x)", r.RN) }

// ReadReply carries the requested memory words in response to Read. The
// leading header bit signals whether the read succeeded (1) per Gen2;
// this simulator only ever constructs successful replies, so it is
// always 1.
type ReadReply struct {
	Words []uint16
	RN    uint16
	CRC16 uint16
}

func (r ReadReply) Encode() string {
	s := "1"
	for _, w := range r.Words {
		s += EncodeWord(w)
	}
	s += EncodeWord(r.RN) + EncodeWord(r.CRC16)
	return s
}

func (r ReadReply) BitLen() int {
	return 33 + 16*len(r.Words)
}

func (r ReadReply) String() string {
	return fmt.Sprintf("ReadReply(words=%d)", len(r.Words))
}

// ReadWordsFromHex extracts count 16-bit big-endian words starting at
// wordPtr (word index, not bit index) from a hex-digit memory image,
// truncating if the image is shorter than requested (spec.md §4.E).
func ReadWordsFromHex(memHex string, wordPtr uint32, count uint8) []uint16 {
	words := make([]uint16, 0, count)
	startNibble := int(wordPtr) * 4
	for i := 0; i < int(count); i++ {
		lo := startNibble + i*4
		hi := lo + 4
		if lo >= len(memHex) {
			break
		}
		if hi > len(memHex) {
			hi = len(memHex)
		}
		chunk := memHex[lo:hi]
		for len(chunk) < 4 {
			chunk += "0"
		}
		var v uint16
		for _, c := range chunk {
			v <<= 4
			switch {
			case c >= '0' && c <= '9':
				v |= uint16(c - '0')
			case c >= 'a' && c <= 'f':
				v |= uint16(c-'a') + 10
			case c >= 'A' && c <= 'F':
				v |= uint16(c-'A') + 10
			}
		}
		words = append(words, v)
	}
	return words
}
