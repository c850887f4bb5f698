// Package protocol implements the binary framing spoken between modelpipe
// and its controlling parent.
//
// Every integer is big-endian and fixed width. A request frame is
//
//	[ref:u32][cmd:u16][argc:u32] then argc times [len:u64][bytes]
//
// and a response frame has the same shape with the command replaced by a
// status code:
//
//	[ref:u32][status:u16][partc:u32] then partc times [len:u64][bytes]
//
// There is no checksum, compression or version negotiation; the format is
// fixed by contract with a single trusted peer.
package protocol

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// headerLength is ref(4) + cmd/status(2) + count(4).
const headerLength = 10

// lengthPrefix is the size of the per-argument length field.
const lengthPrefix = 8

// DefaultMaxArgBytes bounds a single declared argument length. Anything
// larger is treated as a corrupted stream rather than allocated.
const DefaultMaxArgBytes = 1 << 30

// Request is one decoded inbound frame.
type Request struct {
	Ref  uint32
	Cmd  Command
	Args [][]byte
}

// Response is one outbound frame. Ref must equal the originating request's.
type Response struct {
	Ref    uint32
	Status Status
	Parts  [][]byte
}

// OK builds a success response for ref.
func OK(ref uint32, parts ...[]byte) Response {
	return Response{Ref: ref, Status: StatusOK, Parts: parts}
}

// Error builds a single-part error response carrying msg.
func Error(ref uint32, msg string) Response {
	return Response{Ref: ref, Status: StatusError, Parts: [][]byte{[]byte(msg)}}
}

// MalformedFrameError reports a frame that could not be read completely or
// declared an impossible length. No response can be correlated with it.
type MalformedFrameError struct {
	What string
	Err  error
}

func (e *MalformedFrameError) Error() string {
	if e.Err == nil {
		return "malformed frame: " + e.What
	}
	return "malformed frame: " + e.What + ": " + e.Err.Error()
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }

// IsMalformedFrame reports whether err is a MalformedFrameError.
func IsMalformedFrame(err error) bool {
	var mf *MalformedFrameError
	return errors.As(err, &mf)
}

// Reader decodes frames from a byte stream.
type Reader struct {
	r           *bufio.Reader
	maxArgBytes uint64
}

// NewReader wraps r. maxArgBytes <= 0 selects DefaultMaxArgBytes.
func NewReader(r io.Reader, maxArgBytes int64) *Reader {
	if maxArgBytes <= 0 {
		maxArgBytes = DefaultMaxArgBytes
	}
	return &Reader{r: bufio.NewReader(r), maxArgBytes: uint64(maxArgBytes)}
}

// ReadRequest decodes the next request. It returns io.EOF, unwrapped, when
// the stream ends exactly on a frame boundary; any other short read is a
// *MalformedFrameError.
func (fr *Reader) ReadRequest() (Request, error) {
	ref, code, args, err := fr.readFrame()
	if err != nil {
		return Request{}, err
	}
	return Request{Ref: ref, Cmd: Command(code), Args: args}, nil
}

// ReadResponse decodes the next response. Used by clients of the service.
func (fr *Reader) ReadResponse() (Response, error) {
	ref, code, parts, err := fr.readFrame()
	if err != nil {
		return Response{}, err
	}
	return Response{Ref: ref, Status: Status(code), Parts: parts}, nil
}

func (fr *Reader) readFrame() (uint32, uint16, [][]byte, error) {
	var header [headerLength]byte
	n, err := io.ReadFull(fr.r, header[:])
	if err != nil {
		if n == 0 && errors.Is(err, io.EOF) {
			return 0, 0, nil, io.EOF
		}
		return 0, 0, nil, &MalformedFrameError{What: fmt.Sprintf("short header (%d of %d bytes)", n, headerLength), Err: err}
	}
	ref := binary.BigEndian.Uint32(header[0:4])
	code := binary.BigEndian.Uint16(header[4:6])
	count := binary.BigEndian.Uint32(header[6:10])

	// Do not trust count for preallocation; each item costs at least 8 bytes
	// of stream so a lying peer runs out of input first.
	capHint := count
	if capHint > 64 {
		capHint = 64
	}
	items := make([][]byte, 0, capHint)
	for i := uint32(0); i < count; i++ {
		var lenBuf [lengthPrefix]byte
		if _, err := io.ReadFull(fr.r, lenBuf[:]); err != nil {
			return 0, 0, nil, &MalformedFrameError{What: fmt.Sprintf("item %d length", i), Err: unexpected(err)}
		}
		size := binary.BigEndian.Uint64(lenBuf[:])
		if size > fr.maxArgBytes {
			return 0, 0, nil, &MalformedFrameError{What: fmt.Sprintf("item %d declares %d bytes, limit %d", i, size, fr.maxArgBytes)}
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return 0, 0, nil, &MalformedFrameError{What: fmt.Sprintf("item %d body", i), Err: unexpected(err)}
		}
		items = append(items, buf)
	}
	return ref, code, items, nil
}

// unexpected maps a clean EOF inside a frame to io.ErrUnexpectedEOF.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Writer encodes frames onto a byte stream. Every Write* call flushes
// before returning so the peer observes each frame immediately.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteResponse encodes and flushes resp.
func (fw *Writer) WriteResponse(resp Response) error {
	return fw.writeFrame(resp.Ref, uint16(resp.Status), resp.Parts)
}

// WriteRequest encodes and flushes req. Used by clients of the service.
func (fw *Writer) WriteRequest(req Request) error {
	return fw.writeFrame(req.Ref, uint16(req.Cmd), req.Args)
}

func (fw *Writer) writeFrame(ref uint32, code uint16, items [][]byte) error {
	var header [headerLength]byte
	binary.BigEndian.PutUint32(header[0:4], ref)
	binary.BigEndian.PutUint16(header[4:6], code)
	binary.BigEndian.PutUint32(header[6:10], uint32(len(items)))
	if _, err := fw.w.Write(header[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	var lenBuf [lengthPrefix]byte
	for i, item := range items {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(item)))
		if _, err := fw.w.Write(lenBuf[:]); err != nil {
			return fmt.Errorf("write item %d length: %w", i, err)
		}
		if _, err := fw.w.Write(item); err != nil {
			return fmt.Errorf("write item %d body: %w", i, err)
		}
	}
	if err := fw.w.Flush(); err != nil {
		return fmt.Errorf("flush frame: %w", err)
	}
	return nil
}
