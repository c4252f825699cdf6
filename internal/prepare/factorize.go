package prepare

// Factorize maps each label to a dense integer id. Ids are assigned in order
// of first occurrence, so names[ids[i]] == labels[i].
func Factorize(labels []string) (ids []int, names []string) {
	ids = make([]int, len(labels))
	index := make(map[string]int)

	for i, label := range labels {
		id, ok := index[label]
		if !ok {
			id = len(names)
			index[label] = id
			names = append(names, label)
		}
		ids[i] = id
	}

	return ids, names
}
