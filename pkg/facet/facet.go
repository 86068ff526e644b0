// Package facet implements the facet stream interpreter (C6): a compact
// opcode stream that reconstructs triangle indices against a sliding
// edge queue and a running vertex offset counter.
package facet

import (
	"fmt"

	"dcmesh/pkg/types"
)

// edge is a directed pair of vertex indices.
type edge struct {
	u, v int32
}

// edgeQueue is the FIFO-with-both-ends access the interpreter threads
// through every opcode; backed by a slice rather than container/list
// since the interpreter only ever needs front/back access, never
// mid-queue traversal.
type edgeQueue struct {
	items []edge
}

func (q *edgeQueue) len() int        { return len(q.items) }
func (q *edgeQueue) clear()          { q.items = q.items[:0] }
func (q *edgeQueue) pushBack(e edge) { q.items = append(q.items, e) }
func (q *edgeQueue) front() edge     { return q.items[0] }
func (q *edgeQueue) back() edge      { return q.items[len(q.items)-1] }

func (q *edgeQueue) popFront() edge {
	e := q.items[0]
	q.items = q.items[1:]
	return e
}

func (q *edgeQueue) popBack() edge {
	e := q.items[len(q.items)-1]
	q.items = q.items[:len(q.items)-1]
	return e
}

// interpreter holds the running state of one facet stream decode.
type interpreter struct {
	buf  []byte
	pos  int
	q    edgeQueue
	vOff int32
	opts types.Options

	vertexCount uint32
	triangles   []types.Triangle
	diagnostics []types.Diagnostic
	stopped     bool
}

// Interpret decodes buf into an ordered list of triangles, per the
// opcode table in spec §4.6.1. vertexCount bounds emitted indices for
// the IndexOutOfRange diagnostic; pass 0 to skip that check.
// Interpretation never panics: malformed streams produce a partial
// result plus diagnostics rather than aborting.
func Interpret(buf []byte, vertexCount uint32, opts types.Options) ([]types.Triangle, []types.Diagnostic) {
	it := &interpreter{buf: buf, opts: opts, vertexCount: vertexCount}

	for it.pos < len(it.buf) && !it.stopped {
		cmd := it.buf[it.pos]
		it.pos++
		it.step(cmd & 0x0F)
	}

	return it.triangles, it.diagnostics
}

// step executes one opcode, given its low nibble.
func (it *interpreter) step(op byte) {
	switch op {
	case 0: // ADV_NEW
		if it.q.len() < 1 {
			it.underflow("ADV_NEW")
			return
		}
		ab := it.q.popFront()
		it.emit(ab.u, it.vOff, ab.v)
		it.q.pushBack(edge{ab.u, it.vOff})
		it.q.pushBack(edge{it.vOff, ab.v})
		it.vOff++

	case 1: // WRAP_BACK
		if it.q.len() < 2 {
			it.underflow("WRAP_BACK")
			return
		}
		ab := it.q.popFront()
		pq := it.q.popBack()
		it.emit(ab.u, pq.u, ab.v)
		it.q.pushBack(edge{pq.u, ab.v})

	case 2: // WRAP_NEXT
		if it.q.len() < 2 {
			it.underflow("WRAP_NEXT")
			return
		}
		ab := it.q.popFront()
		cd := it.q.popFront()
		it.emit(ab.u, cd.v, ab.v)
		it.q.pushBack(edge{ab.u, cd.v})

	case 3: // ROTATE
		if it.q.len() < 1 {
			return
		}
		it.q.pushBack(it.q.popFront())

	case 4: // RESTART_IMPLICIT
		v0, v1, v2 := it.vOff, it.vOff+1, it.vOff+2
		it.restart(v0, v1, v2)
		it.vOff += 3

	case 5: // RESTART_16
		v0, ok := it.readOperand16()
		if !ok {
			return
		}
		v1, ok := it.readOperand16()
		if !ok {
			return
		}
		v2, ok := it.readOperand16()
		if !ok {
			return
		}
		it.restart(v0, v1, v2)

	case 6: // RESTART_32
		v0, ok := it.readOperand32()
		if !ok {
			return
		}
		v1, ok := it.readOperand32()
		if !ok {
			return
		}
		v2, ok := it.readOperand32()
		if !ok {
			return
		}
		it.restart(v0, v1, v2)

	case 7: // ABS_16
		i, ok := it.readOperand16()
		if !ok {
			return
		}
		it.abs(i)

	case 8: // ABS_32
		i, ok := it.readOperand32()
		if !ok {
			return
		}
		it.abs(i)

	case 9: // STITCH
		if it.q.len() < 1 {
			it.underflow("STITCH")
			return
		}
		ab := it.q.popFront()
		if it.q.len() > 1 {
			back := it.q.back()
			front := it.q.front()
			switch {
			case back.u == front.u:
				it.q.popBack()
			case back.u == ab.v && back.v == ab.u:
				it.q.popBack()
			default:
				it.q.items[len(it.q.items)-1].v = front.v
			}
		}

	case 10: // SKIP_VERTEX
		it.vOff++

	default: // 11-15 reserved
		it.diagnostics = append(it.diagnostics, types.Diagnostic{
			Code:    types.InvalidOpcode,
			Message: fmt.Sprintf("facet: reserved opcode %d at byte %d, skipped", op, it.pos-1),
		})
	}
}

// restart implements the shared RESTART_IMPLICIT/16/32 body: clear the
// queue, emit the closing triangle, and enqueue its three edges. The
// third edge is (v2,v0) unless Options.LegacyOp4Edge requests the
// historical (v2,v1) form.
func (it *interpreter) restart(v0, v1, v2 int32) {
	it.q.clear()
	it.emit(v0, v1, v2)
	it.q.pushBack(edge{v0, v1})
	it.q.pushBack(edge{v1, v2})
	if it.opts.LegacyOp4Edge {
		it.q.pushBack(edge{v2, v1})
	} else {
		it.q.pushBack(edge{v2, v0})
	}
}

// abs implements the shared ABS_16/ABS_32 body.
func (it *interpreter) abs(i int32) {
	if it.q.len() < 1 {
		it.underflow("ABS")
		return
	}
	ab := it.q.popFront()
	it.emit(ab.u, i, ab.v)
	it.q.pushBack(edge{ab.u, i})
	it.q.pushBack(edge{i, ab.v})
}

// readOperand16 reads a little-endian signed 16-bit operand occupying
// four bytes on the wire (2 value + 2 padding) and resolves a negative
// value relative to the current vOff.
func (it *interpreter) readOperand16() (int32, bool) {
	if it.pos+4 > len(it.buf) {
		it.truncated("16-bit operand")
		return 0, false
	}
	raw := int16(uint16(it.buf[it.pos]) | uint16(it.buf[it.pos+1])<<8)
	it.pos += 4
	return it.resolve(int32(raw))
}

// readOperand32 reads a little-endian signed 32-bit operand (four
// bytes) and resolves a negative value relative to the current vOff.
func (it *interpreter) readOperand32() (int32, bool) {
	if it.pos+4 > len(it.buf) {
		it.truncated("32-bit operand")
		return 0, false
	}
	raw := int32(uint32(it.buf[it.pos]) | uint32(it.buf[it.pos+1])<<8 |
		uint32(it.buf[it.pos+2])<<16 | uint32(it.buf[it.pos+3])<<24)
	it.pos += 4
	return it.resolve(raw)
}

// resolve turns a raw operand into an absolute vertex index: negative
// values are relative to vOff, nonnegative values are absolute already.
// A resolved index that is still negative is a stream error.
func (it *interpreter) resolve(n int32) (int32, bool) {
	if n >= 0 {
		return n, true
	}
	idx := it.vOff + n
	if idx < 0 {
		it.diagnostics = append(it.diagnostics, types.Diagnostic{
			Code:    types.IndexOutOfRange,
			Message: fmt.Sprintf("facet: relative operand %d resolves to negative index %d", n, idx),
		})
		it.stopped = true
		return 0, false
	}
	return idx, true
}

// emit appends a triangle in (a,b,c) order, flagging any index at or
// beyond vertexCount without discarding the triangle.
func (it *interpreter) emit(a, b, c int32) {
	if it.vertexCount > 0 {
		if uint32(a) >= it.vertexCount || uint32(b) >= it.vertexCount || uint32(c) >= it.vertexCount {
			it.diagnostics = append(it.diagnostics, types.Diagnostic{
				Code:    types.IndexOutOfRange,
				Message: fmt.Sprintf("facet: triangle (%d,%d,%d) has an index >= vertex count %d", a, b, c, it.vertexCount),
			})
		}
	}
	it.triangles = append(it.triangles, types.Triangle{A: uint32(a), B: uint32(b), C: uint32(c)})
}

func (it *interpreter) underflow(opName string) {
	it.diagnostics = append(it.diagnostics, types.Diagnostic{
		Code:    types.QueueUnderflow,
		Message: fmt.Sprintf("facet: %s popped an empty edge queue at byte %d", opName, it.pos-1),
	})
	it.stopped = true
}

func (it *interpreter) truncated(what string) {
	it.diagnostics = append(it.diagnostics, types.Diagnostic{
		Code:    types.FacetStreamTruncated,
		Message: fmt.Sprintf("facet: stream ended while reading %s at byte %d", what, it.pos),
	})
	it.stopped = true
}
