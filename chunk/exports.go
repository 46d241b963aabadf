package chunk

// ParseExports decodes an ExpT chunk body: a u32 count followed by that
// many (name-atom, arity, entry-label) triples of u32.
func ParseExports(body []byte) (ExportTable, error) {
	r := newReader(body)
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	table := make(ExportTable, 0, count)
	for i := 0; i < count; i++ {
		name, err := r.readU32()
		if err != nil {
			return nil, err
		}
		arity, err := r.readU32()
		if err != nil {
			return nil, err
		}
		label, err := r.readU32()
		if err != nil {
			return nil, err
		}
		table = append(table, ExportEntry{Name: name, Arity: arity, Label: label})
	}
	return table, nil
}
