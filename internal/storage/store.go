package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/todmy/topic-groups/pkg/models"
)

// Store bundles the repositories that together hold a topic model
type Store struct {
	Models    ModelRepository
	Documents DocumentRepository
	Groups    GroupRepository
}

// NewStore creates a Store backed by PostgreSQL
func NewStore(db *sql.DB) *Store {
	return &Store{
		Models:    NewPostgresModelRepository(db),
		Documents: NewPostgresDocumentRepository(db),
		Groups:    NewPostgresGroupRepository(db),
	}
}

// SaveTopicModel stores a validated topic model with its group profiles
func (s *Store) SaveTopicModel(ctx context.Context, userID uuid.UUID, tm *models.TopicModel, profiles []*GroupProfile) (*Model, error) {
	topicNames := make([]string, tm.NumTopics())
	for i := range topicNames {
		topicNames[i] = tm.TopicName(i)
	}

	model := &Model{
		UserID:     userID,
		Name:       tm.Name,
		Vocab:      tm.Vocab,
		TopicNames: topicNames,
		TopicTerm:  tm.TopicTerm,
		NumGroups:  len(profiles),
	}
	if err := s.Models.Create(ctx, model); err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	docs := make([]*Document, tm.NumDocuments())
	for i := range docs {
		text := ""
		if i < len(tm.Corpus) {
			text = tm.Corpus[i]
		}
		docs[i] = &Document{
			ModelID:      model.ID,
			Position:     i,
			Text:         text,
			GroupLabel:   tm.GroupLabels[i],
			TopicWeights: tm.DocumentTopic[i],
			TermWeights:  tm.DocumentTerm[i],
		}
	}
	if err := s.Documents.CreateBatch(ctx, docs); err != nil {
		return nil, s.discard(ctx, model.ID, fmt.Errorf("create documents: %w", err))
	}

	if err := s.Groups.ReplaceForModel(ctx, model.ID, profiles); err != nil {
		return nil, s.discard(ctx, model.ID, fmt.Errorf("store group profiles: %w", err))
	}

	return model, nil
}

// LoadTopicModel reassembles a stored topic model
func (s *Store) LoadTopicModel(ctx context.Context, id uuid.UUID) (*models.TopicModel, *Model, error) {
	model, err := s.Models.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	docs, err := s.Documents.GetByModelID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("load documents: %w", err)
	}

	tm := &models.TopicModel{
		Name:          model.Name,
		Vocab:         model.Vocab,
		TopicTerm:     model.TopicTerm,
		TopicNames:    model.TopicNames,
		DocumentTerm:  make([][]float64, len(docs)),
		DocumentTopic: make([][]float64, len(docs)),
		Corpus:        make([]string, len(docs)),
		GroupLabels:   make([]string, len(docs)),
	}
	for i, d := range docs {
		tm.DocumentTerm[i] = d.TermWeights
		tm.DocumentTopic[i] = d.TopicWeights
		tm.Corpus[i] = d.Text
		tm.GroupLabels[i] = d.GroupLabel
	}

	return tm, model, nil
}

// discard removes a partially saved model so it never shows up half-built.
// Cleanup runs even when ctx is already canceled.
func (s *Store) discard(ctx context.Context, id uuid.UUID, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.Documents.DeleteByModelID(ctx, id); err != nil {
		cause = errors.Join(cause, fmt.Errorf("discard documents: %w", err))
	}
	if err := s.Models.Delete(ctx, id); err != nil {
		cause = errors.Join(cause, fmt.Errorf("discard model: %w", err))
	}
	return cause
}
