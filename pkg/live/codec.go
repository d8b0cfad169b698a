package live

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/recera/dragplot/pkg/scene"
)

// Encoder handles encoding of live protocol frames
type Encoder struct {
	w io.Writer
}

// NewEncoder creates a new encoder
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// WriteByte writes a single byte
func (e *Encoder) WriteByte(b byte) error {
	_, err := e.w.Write([]byte{b})
	return err
}

// WriteUvarint writes an unsigned varint
func (e *Encoder) WriteUvarint(v uint64) error {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, v)
	_, err := e.w.Write(buf[:n])
	return err
}

// WriteString writes a length-prefixed string
func (e *Encoder) WriteString(s string) error {
	if err := e.WriteUvarint(uint64(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(e.w, s)
	return err
}

// WriteFloat64 writes a little-endian float64
func (e *Encoder) WriteFloat64(v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := e.w.Write(buf[:])
	return err
}

// Decoder handles decoding of live protocol frames
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a new decoder
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// ReadByte implements io.ByteReader
func (d *Decoder) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(d.r, b[:])
	return b[0], err
}

// ReadUvarint reads an unsigned varint
func (d *Decoder) ReadUvarint() (uint64, error) {
	return binary.ReadUvarint(d)
}

// ReadString reads a length-prefixed string
func (d *Decoder) ReadString() (string, error) {
	length, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if length > 1<<20 {
		return "", errors.New("live: string too long")
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// ReadFloat64 reads a little-endian float64
func (d *Decoder) ReadFloat64() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

// EncodeEvent encodes a pointer event frame.
func EncodeEvent(evt Event) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	e.WriteByte(byte(FrameEvent))
	e.WriteString(evt.Name)
	e.WriteUvarint(uint64(evt.NodeID))
	e.WriteFloat64(evt.X)
	e.WriteFloat64(evt.Y)
	e.WriteByte(evt.Button)
	e.WriteUvarint(uint64(len(evt.Touches)))
	for _, t := range evt.Touches {
		e.WriteFloat64(t.X)
		e.WriteFloat64(t.Y)
	}
	return buf.Bytes(), nil
}

// DecodeEvent decodes a pointer event frame.
func DecodeEvent(data []byte) (*Event, error) {
	if len(data) == 0 || data[0] != byte(FrameEvent) {
		return nil, errors.New("live: not an event frame")
	}
	d := NewDecoder(bytes.NewReader(data[1:]))

	evt := &Event{}
	var err error
	if evt.Name, err = d.ReadString(); err != nil {
		return nil, fmt.Errorf("live: decode event name: %w", err)
	}
	nodeID, err := d.ReadUvarint()
	if err != nil {
		return nil, fmt.Errorf("live: decode node id: %w", err)
	}
	evt.NodeID = uint32(nodeID)
	if evt.X, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if evt.Y, err = d.ReadFloat64(); err != nil {
		return nil, err
	}
	if evt.Button, err = d.ReadByte(); err != nil {
		return nil, err
	}
	count, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if count > 32 {
		return nil, errors.New("live: too many touches")
	}
	for i := uint64(0); i < count; i++ {
		var t Touch
		if t.X, err = d.ReadFloat64(); err != nil {
			return nil, err
		}
		if t.Y, err = d.ReadFloat64(); err != nil {
			return nil, err
		}
		evt.Touches = append(evt.Touches, t)
	}
	return evt, nil
}

// EncodePatches encodes a patch batch frame.
func EncodePatches(patches []scene.Patch) ([]byte, error) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	e.WriteByte(byte(FramePatches))
	e.WriteUvarint(uint64(len(patches)))

	for _, p := range patches {
		e.WriteByte(byte(p.Op))
		switch p.Op {
		case scene.OpReplaceText:
			e.WriteUvarint(uint64(p.NodeID))
			e.WriteUvarint(uint64(p.ParentID))
			e.WriteString(p.Value)

		case scene.OpSetAttr:
			e.WriteUvarint(uint64(p.NodeID))
			e.WriteString(p.Key)
			e.WriteString(p.Value)

		case scene.OpRemoveAttr:
			e.WriteUvarint(uint64(p.NodeID))
			e.WriteString(p.Key)

		case scene.OpRemoveNode:
			e.WriteUvarint(uint64(p.NodeID))

		case scene.OpSetTransform:
			e.WriteUvarint(uint64(p.NodeID))
			e.WriteFloat64(p.DX)
			e.WriteFloat64(p.DY)

		case scene.OpInsertNode:
			e.WriteUvarint(uint64(p.NodeID))
			e.WriteUvarint(uint64(p.ParentID))
			e.WriteUvarint(uint64(p.BeforeID))
			if err := encodeNode(e, p.Node); err != nil {
				return nil, err
			}

		case scene.OpMoveNode:
			e.WriteUvarint(uint64(p.NodeID))
			e.WriteUvarint(uint64(p.ParentID))
			e.WriteUvarint(uint64(p.BeforeID))

		default:
			return nil, fmt.Errorf("live: unknown patch op %d", p.Op)
		}
	}
	return buf.Bytes(), nil
}

// encodeNode serializes a subtree for an insert patch.
func encodeNode(e *Encoder, n *scene.Node) error {
	if n == nil {
		return errors.New("live: insert patch without node")
	}
	e.WriteByte(byte(n.Kind))
	e.WriteUvarint(uint64(n.ID()))
	if n.Kind == scene.KindText {
		return e.WriteString(n.Text)
	}
	e.WriteString(n.Tag)

	e.WriteUvarint(uint64(len(n.Attrs)))
	for k, v := range n.Attrs {
		e.WriteString(k)
		e.WriteString(v)
	}
	e.WriteString(n.ClassAttr())

	dx, dy, ok := n.Transform()
	if ok {
		e.WriteByte(1)
		e.WriteFloat64(dx)
		e.WriteFloat64(dy)
	} else {
		e.WriteByte(0)
	}

	e.WriteUvarint(uint64(len(n.Kids)))
	for _, kid := range n.Kids {
		if err := encodeNode(e, kid); err != nil {
			return err
		}
	}
	return nil
}

// EncodeControl encodes a control frame ("HELLO", "PING", "PONG").
func EncodeControl(msg string) []byte {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	e.WriteByte(byte(FrameControl))
	e.WriteString(msg)
	return buf.Bytes()
}

// DecodeControl decodes a control frame's message.
func DecodeControl(data []byte) (string, error) {
	if len(data) == 0 || data[0] != byte(FrameControl) {
		return "", errors.New("live: not a control frame")
	}
	return NewDecoder(bytes.NewReader(data[1:])).ReadString()
}
