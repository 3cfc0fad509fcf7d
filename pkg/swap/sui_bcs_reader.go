package swap

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// maxTypeTagDepth bounds vector/struct nesting while skipping type tags
const maxTypeTagDepth = 64

var errBCSTruncated = errors.New("unexpected end of BCS data")

// bcsReader walks BCS data. The first failure sticks in err and every later
// read returns zero values.
type bcsReader struct {
	buf []byte
	off int
	err error
}

func (r *bcsReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf(format, args...)
	}
}

func (r *bcsReader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.err = errBCSTruncated
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *bcsReader) u8() byte {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *bcsReader) uleb128() uint64 {
	var v uint64
	for shift := uint(0); shift < 64; shift += 7 {
		b := r.next(1)
		if b == nil {
			return 0
		}
		v |= uint64(b[0]&0x7f) << shift
		if b[0]&0x80 == 0 {
			return v
		}
	}
	r.fail("uleb128 overflows u64")
	return 0
}

func (r *bcsReader) u16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *bcsReader) u64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// length reads a sequence length. Every element takes at least one byte, so
// a length beyond the remaining data is rejected up front.
func (r *bcsReader) length() int {
	n := r.uleb128()
	if r.err != nil {
		return 0
	}
	if n > uint64(len(r.buf)-r.off) {
		r.err = errBCSTruncated
		return 0
	}
	return int(n)
}

func (r *bcsReader) skipBytesVec() {
	r.next(r.length())
}

func (r *bcsReader) address() [suiAddressLength]byte {
	var out [suiAddressLength]byte
	copy(out[:], r.next(suiAddressLength))
	return out
}

func (r *bcsReader) objectRef() suiObjectRef {
	ref := suiObjectRef{id: r.address(), version: r.u64()}
	ref.digest = append([]byte(nil), r.next(r.length())...)
	return ref
}

// transactionKind skips a ProgrammableTransaction, recording the ids of
// owned and receiving object inputs
func (r *bcsReader) transactionKind(inputs map[[suiAddressLength]byte]struct{}) {
	if tag := r.uleb128(); r.err == nil && tag != 0 {
		r.fail("unsupported transaction kind %d", tag)
		return
	}

	n := r.length()
	for i := 0; i < n && r.err == nil; i++ {
		r.callArg(inputs)
	}
	n = r.length()
	for i := 0; i < n && r.err == nil; i++ {
		r.command()
	}
}

func (r *bcsReader) callArg(inputs map[[suiAddressLength]byte]struct{}) {
	switch tag := r.uleb128(); tag {
	case 0: // Pure
		r.skipBytesVec()
	case 1: // Object
		switch obj := r.uleb128(); obj {
		case 0, 2: // ImmOrOwnedObject, Receiving
			ref := r.objectRef()
			if r.err == nil {
				inputs[ref.id] = struct{}{}
			}
		case 1: // SharedObject
			r.next(suiAddressLength)
			r.u64()
			r.u8()
		default:
			r.fail("unsupported object argument %d", obj)
		}
	default:
		if r.err == nil {
			r.fail("unsupported call argument %d", tag)
		}
	}
}

func (r *bcsReader) command() {
	switch tag := r.uleb128(); tag {
	case 0: // MoveCall
		r.next(suiAddressLength)
		r.skipBytesVec() // module
		r.skipBytesVec() // function
		n := r.length()
		for i := 0; i < n && r.err == nil; i++ {
			r.typeTag(0)
		}
		r.arguments()
	case 1: // TransferObjects
		r.arguments()
		r.argument()
	case 2, 3: // SplitCoins, MergeCoins
		r.argument()
		r.arguments()
	case 4: // Publish
		r.modules()
		r.objectIDs()
	case 5: // MakeMoveVec
		switch opt := r.u8(); opt {
		case 0:
		case 1:
			r.typeTag(0)
		default:
			r.fail("invalid option tag %d", opt)
		}
		r.arguments()
	case 6: // Upgrade
		r.modules()
		r.objectIDs()
		r.next(suiAddressLength)
		r.argument()
	default:
		if r.err == nil {
			r.fail("unsupported command %d", tag)
		}
	}
}

func (r *bcsReader) modules() {
	n := r.length()
	for i := 0; i < n && r.err == nil; i++ {
		r.skipBytesVec()
	}
}

func (r *bcsReader) objectIDs() {
	n := r.length()
	r.next(n * suiAddressLength)
}

func (r *bcsReader) arguments() {
	n := r.length()
	for i := 0; i < n && r.err == nil; i++ {
		r.argument()
	}
}

func (r *bcsReader) argument() {
	switch tag := r.uleb128(); tag {
	case 0: // GasCoin
	case 1, 2: // Input, Result
		r.u16()
	case 3: // NestedResult
		r.u16()
		r.u16()
	default:
		if r.err == nil {
			r.fail("unsupported argument %d", tag)
		}
	}
}

func (r *bcsReader) typeTag(depth int) {
	if depth > maxTypeTagDepth {
		r.fail("type tag nested deeper than %d", maxTypeTagDepth)
		return
	}
	switch tag := r.uleb128(); tag {
	case 0, 1, 2, 3, 4, 5, 8, 9, 10:
	case 6: // vector
		r.typeTag(depth + 1)
	case 7: // struct
		r.next(suiAddressLength)
		r.skipBytesVec() // module
		r.skipBytesVec() // name
		n := r.length()
		for i := 0; i < n && r.err == nil; i++ {
			r.typeTag(depth + 1)
		}
	default:
		if r.err == nil {
			r.fail("unsupported type tag %d", tag)
		}
	}
}
