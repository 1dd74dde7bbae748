package midi

import "strconv"

// Histogram buckets observations are recorded into.
const (
	BucketTextRawBytes   = "text raw bytes"
	BucketTextCodepoints = "text codepoints"
	BucketTextUTF8Bytes  = "text UTF-8 bytes"
	BucketNonTextMeta    = "non-text meta"
	BucketSysEx          = "sysex"
)

// Buckets lists every bucket name in a stable order.
var Buckets = []string{
	BucketTextRawBytes,
	BucketTextCodepoints,
	BucketTextUTF8Bytes,
	BucketNonTextMeta,
	BucketSysEx,
}

const ColumnUniversalSysExRealtime = "Universal SysEx (realtime)"

const (
	metaStatus        = 0xFF
	sysExStatus       = 0xF0
	sysExEscape       = 0xF7
	tuneRequest       = 0xF6
	universalRealTime = 0x7F
)

var metaNames = map[byte]string{
	0x00: "Sequence Number",
	0x01: "Text Event",
	0x02: "Copyright Notice",
	0x03: "Sequence/Track Name",
	0x04: "Instrument Name",
	0x05: "Lyric",
	0x06: "Marker",
	0x07: "Cue Point",
	0x08: "Program Name",
	0x09: "Device Name",
	0x20: "MIDI Channel Prefix",
	0x21: "MIDI Port",
	0x2F: "End of Track",
	0x51: "Set Tempo",
	0x54: "SMPTE Offset",
	0x58: "Time Signature",
	0x59: "Key Signature",
	0x7F: "Sequencer Specific",
}

// MetaName returns the column name for a meta event opcode. Unknown opcodes
// are named by their decimal value.
func MetaName(opcode byte) string {
	if name, ok := metaNames[opcode]; ok {
		return name
	}
	return strconv.Itoa(int(opcode))
}

func isTextMeta(opcode byte) bool {
	return opcode > 0x00 && opcode < 0x20
}

// dataLen is the number of data bytes following a channel voice or system
// common status byte.
func dataLen(status byte) int {
	switch status & 0xF0 {
	case 0x80, 0x90, 0xA0, 0xB0, 0xE0:
		return 2
	case 0xC0, 0xD0:
		return 1
	case 0xF0:
		switch status {
		case 0xF1, 0xF3:
			return 1
		case 0xF2:
			return 2
		}
	}
	return 0
}

type Observation struct {
	Bucket string
	Column string
	Length uint64
}

// Sink receives observations as they are decoded.
type Sink interface {
	Record(bucket, column string, length uint64)
}

// Observations is a Sink that keeps observations in decode order.
type Observations []Observation

func (o *Observations) Record(bucket, column string, length uint64) {
	*o = append(*o, Observation{Bucket: bucket, Column: column, Length: length})
}
