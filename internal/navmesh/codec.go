package navmesh

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/crypto/blake2b"
)

// ErrCorrupt is returned when encoded navmesh data cannot be decoded.
var ErrCorrupt = errors.New("corrupt navmesh data")

const (
	codecMagic   = "NAVM"
	codecVersion = 1
)

// MarshalBinary encodes the mesh in a little-endian binary layout.
func (n *NavMesh) MarshalBinary() ([]byte, error) {
	size := len(codecMagic) + 2 + 8 + 4 + len(n.Vertices)*24 + 4 + len(n.Polygons)*24
	buf := make([]byte, 0, size)

	buf = append(buf, codecMagic...)
	buf = binary.LittleEndian.AppendUint16(buf, codecVersion)
	buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(n.Delta))

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(n.Vertices)))
	for _, v := range n.Vertices {
		for _, c := range v {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(c))
		}
	}

	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(n.Polygons)))
	for _, p := range n.Polygons {
		for _, v := range p.Vertices {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(v))
		}
		for _, nb := range p.Neighbors {
			buf = binary.LittleEndian.AppendUint32(buf, uint32(nb))
		}
	}
	return buf, nil
}

// UnmarshalBinary decodes data produced by MarshalBinary.
func (n *NavMesh) UnmarshalBinary(data []byte) error {
	r := reader{data: data}

	if string(r.next(len(codecMagic))) != codecMagic {
		return fmt.Errorf("%w: bad magic", ErrCorrupt)
	}
	if v := r.uint16(); v != codecVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	delta := math.Float64frombits(r.uint64())

	nv := int(r.uint32())
	if r.err != nil || nv*24 > len(r.data) {
		return fmt.Errorf("%w: vertex count %d", ErrCorrupt, nv)
	}
	verts := make([]mgl64.Vec3, nv)
	for i := range verts {
		for c := range 3 {
			verts[i][c] = math.Float64frombits(r.uint64())
		}
	}

	np := int(r.uint32())
	if r.err != nil || np*24 > len(r.data) {
		return fmt.Errorf("%w: polygon count %d", ErrCorrupt, np)
	}
	polys := make([]Polygon, np)
	for i := range polys {
		for c := range 3 {
			polys[i].Vertices[c] = int32(r.uint32())
		}
		for c := range 3 {
			polys[i].Neighbors[c] = int32(r.uint32())
		}
	}
	if r.err != nil {
		return fmt.Errorf("%w: %w", ErrCorrupt, r.err)
	}
	if len(r.data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(r.data))
	}

	for _, p := range polys {
		for c := range 3 {
			if p.Vertices[c] < 0 || int(p.Vertices[c]) >= nv {
				return fmt.Errorf("%w: vertex index %d out of range", ErrCorrupt, p.Vertices[c])
			}
			if p.Neighbors[c] < NoNeighbor || int(p.Neighbors[c]) >= np {
				return fmt.Errorf("%w: neighbor index %d out of range", ErrCorrupt, p.Neighbors[c])
			}
		}
	}

	n.Delta = delta
	n.Vertices = verts
	n.Polygons = polys
	return nil
}

// Fingerprint is the BLAKE2b-256 digest of the binary encoding. Baking the same
// geometry with the same delta always yields the same fingerprint.
func (n *NavMesh) Fingerprint() [32]byte {
	data, _ := n.MarshalBinary()
	return blake2b.Sum256(data)
}

var errShort = errors.New("unexpected end of data")

type reader struct {
	data []byte
	err  error
}

func (r *reader) next(size int) []byte {
	if r.err != nil {
		return nil
	}
	if len(r.data) < size {
		r.err = errShort
		r.data = nil
		return nil
	}
	b := r.data[:size]
	r.data = r.data[size:]
	return b
}

func (r *reader) uint16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) uint32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) uint64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}
