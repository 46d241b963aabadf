package chunk

// ParseFunctions decodes a FunT chunk body: a u32 count followed by that
// many (name-atom, arity, code-offset, index, free-var-count, old-unique)
// sextuples of u32.
func ParseFunctions(body []byte) (FunctionTable, error) {
	r := newReader(body)
	count, err := r.readU32()
	if err != nil {
		return nil, err
	}
	table := make(FunctionTable, 0, count)
	for i := 0; i < count; i++ {
		fields := [6]int{}
		for j := range fields {
			v, err := r.readU32()
			if err != nil {
				return nil, err
			}
			fields[j] = v
		}
		table = append(table, FunctionEntry{
			Name:      fields[0],
			Arity:     fields[1],
			Entry:     fields[2],
			Index:     fields[3],
			NumFree:   fields[4],
			OldUnique: fields[5],
		})
	}
	return table, nil
}
