package skyb

import "fmt"

// BlockType identifies the payload carried by a block.
//
// The set of types is open: files may contain tags this package does not
// know about, and iteration surfaces them untouched.
type BlockType uint8

// Known block types.
const (
	BlockTypeTrajectory   BlockType = 1
	BlockTypeLightProgram BlockType = 2
	BlockTypeComment      BlockType = 3
	BlockTypeRTHPlan      BlockType = 4
	BlockTypeYawControl   BlockType = 5
	BlockTypeEventList    BlockType = 6
)

// String returns the symbolic name of the block type.
func (t BlockType) String() string {
	switch t {
	case BlockTypeTrajectory:
		return "trajectory"
	case BlockTypeLightProgram:
		return "light program"
	case BlockTypeComment:
		return "comment"
	case BlockTypeRTHPlan:
		return "RTH plan"
	case BlockTypeYawControl:
		return "yaw control"
	case BlockTypeEventList:
		return "event list"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Block is a single typed, length-prefixed unit of payload in a show
// file.
//
// A Block produced by [File.Blocks] over a seekable stream defers the
// body read until [Block.Read] is called. The deferred read is bound to
// the file's stream, so it is only valid while the owning File is alive
// and its cursor has not been repositioned by an unrelated operation.
type Block struct {
	typ    BlockType
	length int
	body   []byte
	loader func() ([]byte, error)
}

// newBlock creates a block with an eagerly available body.
func newBlock(typ BlockType, body []byte) *Block {
	return &Block{typ: typ, length: len(body), body: body}
}

// newDeferredBlock creates a block whose body is materialized by loader
// on the first call to Read.
func newDeferredBlock(typ BlockType, length int, loader func() ([]byte, error)) *Block {
	return &Block{typ: typ, length: length, loader: loader}
}

// Type returns the block type tag.
func (b *Block) Type() BlockType {
	return b.typ
}

// Len returns the length of the block body in bytes, known from the
// block header even before the body is materialized.
func (b *Block) Len() int {
	return b.length
}

// Consumed reports whether the body has already been materialized.
// Blocks constructed with an eager body are consumed from the start.
func (b *Block) Consumed() bool {
	return b.loader == nil
}

// Read returns the body of the block, materializing it on the first
// call. Later calls return the cached bytes without touching the
// stream. The returned slice is an independent copy of the stream
// contents; callers must not modify it if they read the block again.
func (b *Block) Read() ([]byte, error) {
	if b.loader != nil {
		body, err := b.loader()
		if err != nil {
			return nil, err
		}
		b.body = body
		b.loader = nil
	}
	return b.body, nil
}
