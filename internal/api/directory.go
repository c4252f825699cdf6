package api

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/todmy/topic-groups/internal/auth"
	"github.com/todmy/topic-groups/internal/storage"
)

// modelDirectory answers auth's ownership questions from the model store
type modelDirectory struct {
	models storage.ModelRepository
}

func (d modelDirectory) OwnerOf(ctx context.Context, modelID uuid.UUID) (uuid.UUID, error) {
	m, err := d.models.GetByID(ctx, modelID)
	if errors.Is(err, storage.ErrNotFound) {
		return uuid.Nil, auth.ErrModelNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return m.UserID, nil
}

func (d modelDirectory) ModelsOf(ctx context.Context, userID uuid.UUID) ([]auth.OwnedModel, error) {
	list, err := d.models.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	owned := make([]auth.OwnedModel, 0, len(list))
	for _, m := range list {
		owned = append(owned, auth.OwnedModel{ID: m.ID, Name: m.Name, NumGroups: m.NumGroups})
	}
	return owned, nil
}
