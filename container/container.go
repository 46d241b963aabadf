// Package container parses the top-level FOR1/BEAM chunk framing and
// dispatches each chunk body to its package chunk parser, mirroring
// wasm/decode.go's ParseModule magic-check-then-dispatch-loop structure.
package container

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/beamdis/beamdis/chunk"
	"github.com/beamdis/beamdis/internal/xerrors"
)

const (
	magicFOR1 = 0x464F5231
	magicBEAM = 0x4245414D
)

// Module is the fully parsed, immutable table set for one BEAM file. Tables
// absent from the input keep their zero value (Atoms: a table holding only
// the reserved, empty index 0); accessors in package
// analysis treat an empty table as "nothing declared" rather than an error.
type Module struct {
	Atoms     chunk.AtomTable
	Imports   chunk.ImportTable
	Exports   chunk.ExportTable
	Functions chunk.FunctionTable
	Literals  chunk.LiteralTable
	Lines     chunk.LineTable
	Code      chunk.CodeSection
}

// Name returns the module's own name, conventionally atom table index 1
// (index 0 is reserved).
func (m *Module) Name() string {
	name, ok := m.Atoms.Name(1)
	if !ok {
		return "<unknown>"
	}
	return name
}

// Parse reads a full BEAM container from r: the 12-byte FOR1/.../BEAM
// header, then a sequence of 4-byte-tag, u32-length, body, pad-to-4 chunks.
// Unrecognized chunk tags are skipped — they are length-prefixed and safe
// to ignore. A chunk body that fails to parse is surfaced wrapped in
// KindUnsupportedFormat so a driver can retry the read as a different
// transport (e.g. gzip) per the propagation policy.
func Parse(r io.Reader) (*Module, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, xerrors.InvalidHeader("container too short for header")
	}
	magic1 := binary.BigEndian.Uint32(header[0:4])
	totalLength := binary.BigEndian.Uint32(header[4:8])
	magic2 := binary.BigEndian.Uint32(header[8:12])
	if magic1 != magicFOR1 {
		return nil, xerrors.InvalidHeader("missing FOR1 magic")
	}
	if magic2 != magicBEAM {
		return nil, xerrors.InvalidHeader("missing BEAM format tag")
	}

	// totalLength counts everything after its own 4 bytes, i.e. the BEAM
	// magic plus every chunk; we've already consumed the magic.
	remaining := int64(totalLength) - 4
	body := io.LimitReader(r, remaining)

	m := &Module{Atoms: chunk.AtomTable{""}}

	for {
		var chunkHeader [8]byte
		n, err := io.ReadFull(body, chunkHeader[:])
		if err == io.EOF || (err == io.ErrUnexpectedEOF && n == 0) {
			break
		}
		if err != nil {
			return nil, xerrors.Wrap(xerrors.PhaseContainer, xerrors.KindUnsupportedFormat, err, "chunk header")
		}

		tag := string(chunkHeader[0:4])
		length := binary.BigEndian.Uint32(chunkHeader[4:8])

		payload := make([]byte, length)
		if _, err := io.ReadFull(body, payload); err != nil {
			return nil, xerrors.Wrap(xerrors.PhaseContainer, xerrors.KindUnsupportedFormat, err, "chunk body for "+tag)
		}

		if err := dispatch(m, tag, payload); err != nil {
			return nil, xerrors.Wrap(xerrors.PhaseContainer, xerrors.KindUnsupportedFormat, err, "chunk "+tag)
		}

		pad := (4 - int(length)%4) % 4
		if pad > 0 {
			if _, err := io.CopyN(io.Discard, body, int64(pad)); err != nil {
				break // trailing padding on the final chunk may be short; tolerate it
			}
		}
	}

	return m, nil
}

func dispatch(m *Module, tag string, payload []byte) error {
	switch tag {
	case "Atom", "AtU8":
		atoms, err := chunk.ParseAtoms(payload)
		if err != nil {
			return err
		}
		m.Atoms = atoms
	case "ImpT":
		imports, err := chunk.ParseImports(payload)
		if err != nil {
			return err
		}
		m.Imports = imports
	case "ExpT":
		exports, err := chunk.ParseExports(payload)
		if err != nil {
			return err
		}
		m.Exports = exports
	case "FunT":
		functions, err := chunk.ParseFunctions(payload)
		if err != nil {
			return err
		}
		m.Functions = functions
	case "LitT":
		literals, err := chunk.ParseLiterals(payload)
		if err != nil {
			return err
		}
		m.Literals = literals
	case "Line":
		lines, err := chunk.ParseLines(payload)
		if err != nil {
			return err
		}
		m.Lines = lines
	case "Code":
		code, err := chunk.ParseCode(payload)
		if err != nil {
			return err
		}
		m.Code = code
	default:
		// Unknown tag: length-prefixed, safe to ignore.
	}
	return nil
}

// ParseBytes is a convenience wrapper over Parse for callers already holding
// the full container in memory.
func ParseBytes(data []byte) (*Module, error) {
	return Parse(bytes.NewReader(data))
}
