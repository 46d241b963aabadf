package chunk

import (
	"compress/zlib"
	"io"

	"github.com/beamdis/beamdis/internal/extterm"
	"github.com/beamdis/beamdis/internal/xerrors"
)

// MaxLiteralSize caps the declared uncompressed size of a LitT chunk's
// zlib payload. A corrupt or hostile size field must not cause an
// unbounded allocation; the spec suggests 64 MiB as a reasonable default.
const MaxLiteralSize = 64 * 1024 * 1024

// ParseLiterals decodes a LitT chunk body: a u32 declared uncompressed size
// followed by a zlib-compressed payload. The decompressed body is itself
// a u32 entry count, then for each entry an opaque u32 size field (ignored
// here, per the source's own treatment of it) followed by one external term.
func ParseLiterals(body []byte) (LiteralTable, error) {
	r := newReader(body)
	declared, err := r.readU32()
	if err != nil {
		return nil, err
	}
	if declared > MaxLiteralSize {
		return nil, xerrors.SizeLimit("literal chunk uncompressed size", declared, MaxLiteralSize)
	}

	compressed := r.remaining()
	fr, err := zlib.NewReader(newByteSliceReader(compressed))
	if err != nil {
		return nil, xerrors.Wrap(xerrors.PhaseChunk, xerrors.KindTruncated, err, "literal chunk zlib header")
	}
	defer fr.Close()

	limited := io.LimitReader(fr, int64(declared)+1)
	raw, err := io.ReadAll(limited)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.PhaseChunk, xerrors.KindTruncated, err, "literal chunk inflate")
	}
	if len(raw) > declared {
		return nil, xerrors.SizeLimit("literal chunk inflated size", len(raw), declared)
	}

	lr := newReader(raw)
	count, err := lr.readU32()
	if err != nil {
		return nil, err
	}

	table := make(LiteralTable, 0, count)
	for i := 0; i < count; i++ {
		if _, err := lr.readU32(); err != nil { // opaque per-entry size, see §9
			return nil, err
		}
		term, err := extterm.Read(lr.r)
		if err != nil {
			return nil, err
		}
		table = append(table, term)
	}
	return table, nil
}

// byteSliceReader adapts a byte slice to io.Reader for zlib.NewReader,
// which wants an io.Reader rather than our positional reader.
type byteSliceReader struct {
	data []byte
	pos  int
}

func newByteSliceReader(data []byte) *byteSliceReader {
	return &byteSliceReader{data: data}
}

func (b *byteSliceReader) Read(p []byte) (int, error) {
	if b.pos >= len(b.data) {
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += n
	return n, nil
}
