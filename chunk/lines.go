package chunk

import (
	"github.com/beamdis/beamdis/internal/compact"
	"github.com/beamdis/beamdis/internal/value"
)

// ParseLines decodes a Line chunk body: five u32 header words (version,
// flags, instruction count, line-ref count, filename count), a sentinel
// (0, 0) line ref, then line-ref-count compact terms — an Integer appends a
// line ref against the current filename, an Atom switches the current
// filename index — followed by filename-count u16-length-prefixed names.
func ParseLines(body []byte) (LineTable, error) {
	r := newReader(body)
	for i := 0; i < 3; i++ { // version, flags, instruction count
		if _, err := r.readU32(); err != nil {
			return LineTable{}, err
		}
	}
	lineRefCount, err := r.readU32()
	if err != nil {
		return LineTable{}, err
	}
	filenameCount, err := r.readU32()
	if err != nil {
		return LineTable{}, err
	}

	table := LineTable{Refs: []LineRef{{FilenameIndex: 0, Line: 0}}}

	cr := compact.NewReader(r.r)
	currentFile := 0
	for i := 0; i < lineRefCount; i++ {
		v, err := cr.Read()
		if err != nil {
			return LineTable{}, err
		}
		switch v.Kind {
		case value.KindInteger:
			line := 0
			if v.Big != nil {
				line = int(v.Big.Int64())
			}
			table.Refs = append(table.Refs, LineRef{FilenameIndex: currentFile, Line: line})
		case value.KindAtom:
			currentFile = v.Index
		}
	}

	table.Filenames = make([]string, 0, filenameCount)
	for i := 0; i < filenameCount; i++ {
		n, err := r.readU16()
		if err != nil {
			return LineTable{}, err
		}
		name, err := r.readBytes(n)
		if err != nil {
			return LineTable{}, err
		}
		table.Filenames = append(table.Filenames, string(name))
	}
	return table, nil
}
