// Package chunk parses the body of each named BEAM section into its typed
// table, mirroring wasm/decode.go's one-parser-per-section structure.
package chunk

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/beamdis/beamdis/internal/xerrors"
)

// reader wraps a chunk body with position tracking and the fixed-width,
// big-endian reads every chunk format uses, the same shape as
// wasm/internal/binary.Reader but big-endian instead of LEB128.
type reader struct {
	r   *bytes.Reader
	pos int
}

func newReader(body []byte) *reader {
	return &reader{r: bytes.NewReader(body)}
}

func (r *reader) readByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, r.truncated(err)
	}
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		return nil, r.truncated(err)
	}
	r.pos += n
	return buf, nil
}

func (r *reader) readU8() (int, error) {
	b, err := r.readByte()
	return int(b), err
}

func (r *reader) readU16() (int, error) {
	b, err := r.readBytes(2)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint16(b)), nil
}

func (r *reader) readU32() (int, error) {
	b, err := r.readBytes(4)
	if err != nil {
		return 0, err
	}
	return int(binary.BigEndian.Uint32(b)), nil
}

func (r *reader) readI32() (int32, error) {
	v, err := r.readU32()
	return int32(v), err
}

func (r *reader) remaining() []byte {
	buf := make([]byte, r.r.Len())
	_, _ = io.ReadFull(r.r, buf)
	r.pos += len(buf)
	return buf
}

func (r *reader) truncated(cause error) error {
	return xerrors.Wrap(xerrors.PhaseChunk, xerrors.KindTruncated, cause, "").AtOffset(r.pos)
}
