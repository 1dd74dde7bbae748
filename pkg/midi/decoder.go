package midi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

var (
	headerChunkID = [4]byte{0x4D, 0x54, 0x68, 0x64}
	trackChunkID  = [4]byte{0x4D, 0x54, 0x72, 0x6B}

	// ErrTruncated reports a read past the end of the stream or of a chunk.
	ErrTruncated = errors.New("truncated data")
	// ErrBadFormat reports that an expected MThd or MTrk chunk was not found.
	ErrBadFormat = errors.New("format not supported")
	// ErrMalformedStream reports invalid running status or a reserved status byte.
	ErrMalformedStream = errors.New("malformed stream")
)

const headerSize = 6

type Header struct {
	Format    uint16
	NumTracks uint16
	Division  uint16
}

type Option func(*Decoder)

// WithLogger sets the logger for diagnostics and encoding anomalies.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		d.log = l
	}
}

// WithTextLog sets a logger that receives the contents of every text meta event.
func WithTextLog(l *zap.Logger) Option {
	return func(d *Decoder) {
		d.textLog = l
	}
}

// Decoder decodes a single Standard MIDI File into observations.
type Decoder struct {
	r       io.Reader
	log     *zap.Logger
	textLog *zap.Logger
	offset  int64

	track         int
	runningStatus byte
	encoding      TextEncoding

	Header Header
}

func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{r: r, log: zap.NewNop(), textLog: zap.NewNop()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BytesRead returns the number of bytes consumed from the underlying reader.
func (d *Decoder) BytesRead() int64 {
	return d.offset
}

// Encoding returns the text encoding in effect after the last decoded event.
func (d *Decoder) Encoding() TextEncoding {
	return d.encoding
}

// Decode reads the header chunk and every declared track, sending observations
// to sink. Observations recorded before an error are not withdrawn.
func (d *Decoder) Decode(sink Sink) error {
	d.encoding = ANSI
	d.track = 0

	size, err := d.chunk(headerChunkID, "header")
	if err != nil {
		return err
	}

	if size < headerSize {
		return fmt.Errorf("%w - expected header size to be %d, was %d", ErrBadFormat, headerSize, size)
	}

	body, err := d.body(size)
	if err != nil {
		return err
	}

	d.Header = Header{
		Format:    binary.BigEndian.Uint16(body[0:2]),
		NumTracks: binary.BigEndian.Uint16(body[2:4]),
		Division:  binary.BigEndian.Uint16(body[4:6]),
	}

	d.log.Debug("header",
		zap.Uint16("format", d.Header.Format),
		zap.Uint16("tracks", d.Header.NumTracks),
		zap.Uint16("division", d.Header.Division))

	for i := 0; i < int(d.Header.NumTracks); i++ {
		d.track = i + 1
		if err := d.parseTrack(sink); err != nil {
			return err
		}
	}

	return nil
}

func (d *Decoder) parseTrack(sink Sink) error {
	size, err := d.chunk(trackChunkID, fmt.Sprintf("track #%d", d.track))
	if err != nil {
		return err
	}

	d.log.Debug("track", zap.Int("track", d.track), zap.Uint32("length", size))

	// a short body is still decoded up to the end of the stream
	body, bodyErr := d.body(size)
	if bodyErr != nil && !errors.Is(bodyErr, ErrTruncated) {
		return bodyErr
	}

	d.runningStatus = 0
	c := newCursor(body)

	for !c.done() {
		err := d.parseEvent(c, sink)
		if errors.Is(err, ErrTruncated) {
			d.log.Debug("event cut at end of track", zap.Int("track", d.track), zap.Error(err))
			break
		}
		if err != nil {
			return err
		}
	}

	return bodyErr
}

func (d *Decoder) parseEvent(c *cursor, sink Sink) error {
	// delta time only keeps the cursor aligned
	if _, err := c.varLen(); err != nil {
		return err
	}

	status, err := c.peek()
	if err != nil {
		return err
	}

	if status&0x80 != 0 {
		c.pos++
		if status != metaStatus {
			d.runningStatus = status
		}
	} else {
		switch d.runningStatus {
		case tuneRequest, metaStatus, sysExStatus:
			return fmt.Errorf("%w - running status %#02x in track #%d", ErrMalformedStream, d.runningStatus, d.track)
		}
		status = d.runningStatus
	}

	switch status {
	case metaStatus:
		return d.parseMeta(c, sink)

	case sysExStatus, sysExEscape:
		return d.parseSysEx(c, sink)

	case 0xF4, 0xF5:
		return fmt.Errorf("%w - status byte %#02x in track #%d", ErrMalformedStream, status, d.track)

	default:
		return c.skip(dataLen(status))
	}
}

func (d *Decoder) parseMeta(c *cursor, sink Sink) error {
	opcode, err := c.readByte()
	if err != nil {
		return err
	}

	payload, err := d.payload(c)
	if err != nil {
		return err
	}

	name := MetaName(opcode)
	length := uint64(len(payload))

	if !isTextMeta(opcode) {
		sink.Record(BucketNonTextMeta, name, length)
		return nil
	}

	if enc, tagged, ok := encodingTag(payload); tagged {
		if ok {
			d.encoding = enc
		} else {
			d.log.Warn("unknown text encoding",
				zap.Int("track", d.track),
				zap.ByteString("text", payload),
				zap.Stringer("encoding", d.encoding))
		}
	}

	if ce := d.textLog.Check(zap.InfoLevel, name); ce != nil {
		ce.Write(
			zap.Int("track", d.track),
			zap.Stringer("encoding", d.encoding),
			zap.String("text", DisplayText(payload, d.encoding)))
	}

	codepoints, utf8Bytes := ClassifyText(payload, d.encoding)

	sink.Record(BucketTextRawBytes, name, length)
	sink.Record(BucketTextCodepoints, name, uint64(codepoints))
	sink.Record(BucketTextUTF8Bytes, name, uint64(utf8Bytes))

	return nil
}

func (d *Decoder) parseSysEx(c *cursor, sink Sink) error {
	payload, err := d.payload(c)
	if err != nil {
		return err
	}

	// TODO: non-realtime (0x7E) and manufacturer SysEx are not counted yet,
	// they need their own columns in the sysex table.
	if len(payload) > 0 && payload[0] == universalRealTime {
		sink.Record(BucketSysEx, ColumnUniversalSysExRealtime, uint64(len(payload)))
	}

	return nil
}

// payload reads a variable length size followed by that many bytes.
func (d *Decoder) payload(c *cursor) ([]byte, error) {
	n, err := c.varLen()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(c.remaining()) {
		return nil, fmt.Errorf("%w - event of %d bytes in track #%d, %d left", ErrTruncated, n, d.track, c.remaining())
	}
	return c.next(int(n))
}

// chunk reads a chunk ID, requires it to be want and returns the declared size.
func (d *Decoder) chunk(want [4]byte, what string) (size uint32, err error) {
	var id [4]byte
	if err = binary.Read(d.r, binary.BigEndian, &id); err != nil {
		return 0, truncated(err)
	}
	d.offset += 4 // [4]byte ID

	if id != want {
		return 0, fmt.Errorf("%w - expected chunk ID %q, got %q in %s", ErrBadFormat, want[:], id[:], what)
	}

	if err = binary.Read(d.r, binary.BigEndian, &size); err != nil {
		return 0, truncated(err)
	}
	d.offset += 4 // uint32 size

	return size, nil
}

// body reads size bytes of chunk data. When the stream ends early the bytes
// that were available are returned with an ErrTruncated error.
func (d *Decoder) body(size uint32) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(d.r, int64(size)))
	d.offset += int64(len(buf))
	if err != nil {
		return buf, err
	}

	if int64(len(buf)) < int64(size) {
		return buf, fmt.Errorf("%w - chunk of %d bytes, got %d", ErrTruncated, size, len(buf))
	}

	return buf, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w - %v", ErrTruncated, err)
	}
	return err
}
