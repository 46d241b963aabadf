package chunk

import (
	"bytes"
	"errors"
	"io"

	"github.com/beamdis/beamdis/internal/compact"
	"github.com/beamdis/beamdis/opcode"
)

// ParseCode decodes a Code chunk body: a u32 code version, four u32 header
// words (instruction set, max opcode, label count, function count), then a
// stream of opcode-tagged instructions running to the end of the body.
func ParseCode(body []byte) (CodeSection, error) {
	r := newReader(body)
	version, err := r.readU32()
	if err != nil {
		return CodeSection{}, err
	}
	instrSet, err := r.readU32()
	if err != nil {
		return CodeSection{}, err
	}
	maxOpcode, err := r.readU32()
	if err != nil {
		return CodeSection{}, err
	}
	labelCount, err := r.readU32()
	if err != nil {
		return CodeSection{}, err
	}
	funcCount, err := r.readU32()
	if err != nil {
		return CodeSection{}, err
	}

	rest := r.remaining()
	cr := compact.NewReader(bytes.NewReader(rest))
	instructions, err := opcode.DecodeAll(cr, func(err error) bool {
		return errors.Is(err, io.EOF)
	})
	if err != nil {
		return CodeSection{}, err
	}

	return CodeSection{
		Version:        version,
		InstructionSet: instrSet,
		MaxOpcode:      maxOpcode,
		LabelCount:     labelCount,
		FunctionCount:  funcCount,
		Instructions:   instructions,
	}, nil
}
