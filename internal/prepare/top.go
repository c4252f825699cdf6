package prepare

import "sort"

// Weighted is a labelled weight picked out of a matrix row
type Weighted struct {
	Index  int     `json:"index"`
	Label  string  `json:"label"`
	Weight float64 `json:"weight"`
}

// TopK returns up to k entries of row with the largest positive weights,
// largest first. Equal weights keep their row order. k <= 0 means no limit.
func TopK(row []float64, labels []string, k int) []Weighted {
	entries := make([]Weighted, 0, len(row))
	for i, w := range row {
		if w <= 0 {
			continue
		}
		label := ""
		if i < len(labels) {
			label = labels[i]
		}
		entries = append(entries, Weighted{Index: i, Label: label, Weight: w})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Weight > entries[j].Weight
	})

	if k > 0 && k < len(entries) {
		entries = entries[:k]
	}
	return entries
}
