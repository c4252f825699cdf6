package models

import (
	"errors"
	"math"
	"testing"
)

func validModel() *TopicModel {
	return &TopicModel{
		Vocab: []string{"tax", "vote", "goal"},
		DocumentTerm: [][]float64{
			{2, 1, 0},
			{0, 0, 3},
		},
		DocumentTopic: [][]float64{
			{0.9, 0.1},
			{0.2, 0.8},
		},
		TopicTerm: [][]float64{
			{0.5, 0.5, 0},
			{0, 0.1, 0.9},
		},
		Corpus:      []string{"tax vote tax", "goal goal goal"},
		GroupLabels: []string{"politics", "sports"},
	}
}

func TestTopicModel_Validate(t *testing.T) {
	if err := validModel().Validate(); err != nil {
		t.Fatalf("expected valid model, got %v", err)
	}
}

func TestTopicModel_ValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *TopicModel)
		want   error
	}{
		{"no documents", func(m *TopicModel) { m.DocumentTopic = nil }, ErrEmptyModel},
		{"no vocab", func(m *TopicModel) { m.Vocab = nil }, ErrEmptyModel},
		{"document-term rows", func(m *TopicModel) { m.DocumentTerm = m.DocumentTerm[:1] }, ErrShapeMismatch},
		{"label count", func(m *TopicModel) { m.GroupLabels = append(m.GroupLabels, "extra") }, ErrShapeMismatch},
		{"corpus count", func(m *TopicModel) { m.Corpus = m.Corpus[:1] }, ErrShapeMismatch},
		{"topic count", func(m *TopicModel) { m.DocumentTopic[1] = []float64{1, 0, 0} }, ErrShapeMismatch},
		{"term count", func(m *TopicModel) { m.TopicTerm[0] = []float64{1} }, ErrShapeMismatch},
		{"topic names", func(m *TopicModel) { m.TopicNames = []string{"only one"} }, ErrShapeMismatch},
		{"negative weight", func(m *TopicModel) { m.DocumentTerm[0][0] = -1 }, ErrInvalidValue},
		{"nan weight", func(m *TopicModel) { m.TopicTerm[1][2] = math.NaN() }, ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModel()
			tt.mutate(m)
			err := m.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestTopicModel_CorpusOptional(t *testing.T) {
	m := validModel()
	m.Corpus = nil
	if err := m.Validate(); err != nil {
		t.Errorf("expected corpus to be optional, got %v", err)
	}
}

func TestTopicModel_TopicName(t *testing.T) {
	m := validModel()
	if got := m.TopicName(1); got != "Topic 1" {
		t.Errorf("expected default name, got %q", got)
	}

	m.TopicNames = []string{"economy", ""}
	if got := m.TopicName(0); got != "economy" {
		t.Errorf("expected economy, got %q", got)
	}
	if got := m.TopicName(1); got != "Topic 1" {
		t.Errorf("expected fallback for blank name, got %q", got)
	}
}
