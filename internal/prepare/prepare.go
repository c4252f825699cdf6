package prepare

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/todmy/topic-groups/pkg/models"
)

// Groups holds everything the groups dashboard derives from a topic model.
// It is computed once and shared by all components.
type Groups struct {
	IDs             []int
	Names           []string
	Importances     []float64
	TermImportance  *mat.Dense // groups x terms
	TopicImportance *mat.Dense // groups x topics
	Positions       []Point
	DominantTopics  []int
	TopicColors     []string
	TopicNames      []string
	Vocab           []string
}

// NumGroups returns the number of distinct groups
func (g *Groups) NumGroups() int {
	return len(g.Names)
}

// Prepare validates the model and computes the group aggregates
func Prepare(m *models.TopicModel) (*Groups, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	ids, names := Factorize(m.GroupLabels)

	docTopic := denseFromRows(m.DocumentTopic)
	docTerm := denseFromRows(m.DocumentTerm)

	importances, groupTerm, groupTopic, err := GroupImportances(docTopic, docTerm, ids, len(names))
	if err != nil {
		return nil, fmt.Errorf("group importances: %w", err)
	}

	positions, err := GroupPositions(groupTerm)
	if err != nil {
		return nil, fmt.Errorf("group positions: %w", err)
	}

	topicNames := make([]string, m.NumTopics())
	for i := range topicNames {
		topicNames[i] = m.TopicName(i)
	}

	return &Groups{
		IDs:             ids,
		Names:           names,
		Importances:     importances,
		TermImportance:  groupTerm,
		TopicImportance: groupTopic,
		Positions:       positions,
		DominantTopics:  DominantTopics(groupTopic),
		TopicColors:     TopicColors(m.NumTopics()),
		TopicNames:      topicNames,
		Vocab:           m.Vocab,
	}, nil
}

func denseFromRows(rows [][]float64) *mat.Dense {
	n, d := len(rows), len(rows[0])
	data := make([]float64, 0, n*d)
	for _, row := range rows {
		data = append(data, row...)
	}
	return mat.NewDense(n, d, data)
}
