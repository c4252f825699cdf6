package models

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrEmptyModel    = errors.New("topic model is empty")
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrInvalidValue  = errors.New("invalid matrix value")
)

// TopicModel is the output of a topic-modeling pipeline together with the
// document metadata the groups dashboard needs.
type TopicModel struct {
	Name          string      `json:"name"`
	Vocab         []string    `json:"vocab"`
	DocumentTerm  [][]float64 `json:"document_term"`
	DocumentTopic [][]float64 `json:"document_topic"`
	TopicTerm     [][]float64 `json:"topic_term"`
	Corpus        []string    `json:"corpus,omitempty"`
	GroupLabels   []string    `json:"group_labels"`
	TopicNames    []string    `json:"topic_names,omitempty"`
}

// NumDocuments returns the number of documents
func (m *TopicModel) NumDocuments() int {
	return len(m.DocumentTopic)
}

// NumTopics returns the number of topics
func (m *TopicModel) NumTopics() int {
	return len(m.TopicTerm)
}

// NumTerms returns the vocabulary size
func (m *TopicModel) NumTerms() int {
	return len(m.Vocab)
}

// Validate checks that all matrices agree in shape and hold finite,
// non-negative values.
func (m *TopicModel) Validate() error {
	nDocs := len(m.DocumentTopic)
	nTopics := len(m.TopicTerm)
	nTerms := len(m.Vocab)

	if nDocs == 0 || nTopics == 0 || nTerms == 0 {
		return ErrEmptyModel
	}

	if len(m.DocumentTerm) != nDocs {
		return fmt.Errorf("%w: document-term matrix has %d rows, document-topic matrix has %d",
			ErrShapeMismatch, len(m.DocumentTerm), nDocs)
	}
	if len(m.GroupLabels) != nDocs {
		return fmt.Errorf("%w: %d group labels for %d documents", ErrShapeMismatch, len(m.GroupLabels), nDocs)
	}
	if len(m.Corpus) > 0 && len(m.Corpus) != nDocs {
		return fmt.Errorf("%w: corpus has %d texts for %d documents", ErrShapeMismatch, len(m.Corpus), nDocs)
	}
	if len(m.TopicNames) > 0 && len(m.TopicNames) != nTopics {
		return fmt.Errorf("%w: %d topic names for %d topics", ErrShapeMismatch, len(m.TopicNames), nTopics)
	}

	if err := checkMatrix("document-topic", m.DocumentTopic, nTopics); err != nil {
		return err
	}
	if err := checkMatrix("document-term", m.DocumentTerm, nTerms); err != nil {
		return err
	}
	if err := checkMatrix("topic-term", m.TopicTerm, nTerms); err != nil {
		return err
	}

	return nil
}

// TopicName returns the display name of topic i
func (m *TopicModel) TopicName(i int) string {
	if i < len(m.TopicNames) && m.TopicNames[i] != "" {
		return m.TopicNames[i]
	}
	return fmt.Sprintf("Topic %d", i)
}

func checkMatrix(name string, rows [][]float64, cols int) error {
	for i, row := range rows {
		if len(row) != cols {
			return fmt.Errorf("%w: %s row %d has %d columns, want %d", ErrShapeMismatch, name, i, len(row), cols)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: %s[%d][%d] = %v", ErrInvalidValue, name, i, j, v)
			}
		}
	}
	return nil
}

// ModelSummary describes a stored topic model
type ModelSummary struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Name         string `json:"name"`
	NumDocuments int    `json:"num_documents,omitempty"`
	NumTopics    int    `json:"num_topics"`
	NumTerms     int    `json:"num_terms"`
	NumGroups    int    `json:"num_groups"`
	// Groups is only filled when a single model is fetched
	Groups    []GroupSummary `json:"groups,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// GroupSummary names a group and its share of the corpus
type GroupSummary struct {
	GroupID    int     `json:"group_id"`
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// SimilarGroup is a group whose topic mix is close to another group's
type SimilarGroup struct {
	GroupID    int     `json:"group_id"`
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
	Similarity float64 `json:"similarity"`
}
