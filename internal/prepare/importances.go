package prepare

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var ErrGroupLabels = errors.New("invalid group labels")

// GroupImportances sums document-topic and document-term rows per group.
// A group's overall importance is the total of its topic importances.
func GroupImportances(docTopic, docTerm *mat.Dense, ids []int, nGroups int) ([]float64, *mat.Dense, *mat.Dense, error) {
	nDocs, nTopics := docTopic.Dims()
	termRows, nTerms := docTerm.Dims()

	if termRows != nDocs || len(ids) != nDocs {
		return nil, nil, nil, fmt.Errorf("%w: %d topic rows, %d term rows, %d labels",
			ErrGroupLabels, nDocs, termRows, len(ids))
	}
	if nGroups <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: no groups", ErrGroupLabels)
	}

	groupTopic := mat.NewDense(nGroups, nTopics, nil)
	groupTerm := mat.NewDense(nGroups, nTerms, nil)

	for doc, g := range ids {
		if g < 0 || g >= nGroups {
			return nil, nil, nil, fmt.Errorf("%w: document %d has group id %d of %d", ErrGroupLabels, doc, g, nGroups)
		}
		floats.Add(groupTopic.RawRowView(g), docTopic.RawRowView(doc))
		floats.Add(groupTerm.RawRowView(g), docTerm.RawRowView(doc))
	}

	importances := make([]float64, nGroups)
	for g := 0; g < nGroups; g++ {
		importances[g] = floats.Sum(groupTopic.RawRowView(g))
	}

	return importances, groupTerm, groupTopic, nil
}

// DominantTopics returns the index of the most important topic of every
// group. Ties go to the lowest topic index.
func DominantTopics(groupTopic *mat.Dense) []int {
	rows, _ := groupTopic.Dims()
	dominant := make([]int, rows)
	for g := 0; g < rows; g++ {
		dominant[g] = floats.MaxIdx(groupTopic.RawRowView(g))
	}
	return dominant
}
