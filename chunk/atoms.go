package chunk

import (
	"github.com/beamdis/beamdis/internal/compact"
)

// ParseAtoms decodes an Atom or AtU8 chunk body. The leading count is a
// signed 32-bit value: a negative count signals (OTP 28+) that each atom's
// length prefix is itself compact-term-encoded rather than a single byte —
// a forward-compatibility marker from newer runtimes, not a distinct chunk
// tag. Atom index 0 is reserved and left empty; real atoms start at 1.
func ParseAtoms(body []byte) (AtomTable, error) {
	r := newReader(body)
	raw, err := r.readI32()
	if err != nil {
		return nil, err
	}

	count := int(raw)
	compactLengths := false
	if count < 0 {
		count = -count
		compactLengths = true
	}

	table := make(AtomTable, count+1)

	if !compactLengths {
		for i := 1; i <= count; i++ {
			n, err := r.readU8()
			if err != nil {
				return nil, err
			}
			name, err := r.readBytes(n)
			if err != nil {
				return nil, err
			}
			table[i] = string(name)
		}
		return table, nil
	}

	cr := compact.NewReader(r.r)
	for i := 1; i <= count; i++ {
		v, err := cr.Read()
		if err != nil {
			return nil, err
		}
		name, err := r.readBytes(v.Index)
		if err != nil {
			return nil, err
		}
		table[i] = string(name)
	}
	return table, nil
}
