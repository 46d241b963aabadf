package chunk

// ParseImports decodes an ImpT chunk body: a u32 count followed by that
// many (module-atom, function-atom, arity) triples of u32.
func ParseImports(body []byte) (ImportTable, error) {
	r := newReader(body)
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	table := make(ImportTable, 0, count)
	for i := 0; i < count; i++ {
		mod, err := r.readU32()
		if err != nil {
			return nil, err
		}
		fn, err := r.readU32()
		if err != nil {
			return nil, err
		}
		arity, err := r.readU32()
		if err != nil {
			return nil, err
		}
		table = append(table, ImportEntry{Module: mod, Function: fn, Arity: arity})
	}
	return table, nil
}
