package storage

import (
	"context"
	"database/sql"
	"math"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/todmy/topic-groups/pkg/models"
)

// GroupProfile is a group's aggregate topic importance, stored so groups
// can be compared across requests
type GroupProfile struct {
	ModelID      uuid.UUID
	GroupID      int
	Name         string
	Importance   float64
	TopicWeights pgvector.Vector
}

// GroupRepository defines the interface for group profile storage operations
type GroupRepository interface {
	ReplaceForModel(ctx context.Context, modelID uuid.UUID, profiles []*GroupProfile) error
	GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*GroupProfile, error)
	FindSimilar(ctx context.Context, modelID uuid.UUID, groupID, limit int) ([]models.SimilarGroup, error)
}

// PostgresGroupRepository implements GroupRepository using PostgreSQL with pgvector
type PostgresGroupRepository struct {
	db *sql.DB
}

// NewPostgresGroupRepository creates a new PostgresGroupRepository
func NewPostgresGroupRepository(db *sql.DB) *PostgresGroupRepository {
	return &PostgresGroupRepository{db: db}
}

// ReplaceForModel swaps the stored profiles of a model in one transaction
func (r *PostgresGroupRepository) ReplaceForModel(ctx context.Context, modelID uuid.UUID, profiles []*GroupProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM group_profiles WHERE model_id = $1`, modelID); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO group_profiles (model_id, group_id, name, importance, topic_weights)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range profiles {
		p.ModelID = modelID
		if _, err := stmt.ExecContext(ctx, p.ModelID, p.GroupID, p.Name, p.Importance, p.TopicWeights); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByModelID retrieves the group profiles of a model ordered by group id
func (r *PostgresGroupRepository) GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*GroupProfile, error) {
	query := `
		SELECT model_id, group_id, name, importance, topic_weights
		FROM group_profiles
		WHERE model_id = $1
		ORDER BY group_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*GroupProfile
	for rows.Next() {
		p := &GroupProfile{}
		if err := rows.Scan(&p.ModelID, &p.GroupID, &p.Name, &p.Importance, &p.TopicWeights); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}

// FindSimilar finds the groups of a model whose topic mix is closest to the
// given group using pgvector cosine distance
func (r *PostgresGroupRepository) FindSimilar(ctx context.Context, modelID uuid.UUID, groupID, limit int) ([]models.SimilarGroup, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT g.group_id, g.name, g.importance,
			   1 - (g.topic_weights <=> s.topic_weights) AS similarity
		FROM group_profiles g
		JOIN group_profiles s ON s.model_id = g.model_id AND s.group_id = $2
		WHERE g.model_id = $1 AND g.group_id <> $2
		ORDER BY g.topic_weights <=> s.topic_weights
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, modelID, groupID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []models.SimilarGroup{}
	for rows.Next() {
		var sg models.SimilarGroup
		if err := rows.Scan(&sg.GroupID, &sg.Name, &sg.Importance, &sg.Similarity); err != nil {
			return nil, err
		}
		// cosine distance to an all-zero profile is NaN
		if math.IsNaN(sg.Similarity) {
			sg.Similarity = 0
		}
		results = append(results, sg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
