package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Model is a stored topic model: its vocabulary, topics and topic-term
// weights. Documents and group profiles live in their own tables.
type Model struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Name       string
	Vocab      []string
	TopicNames []string
	TopicTerm  [][]float64
	NumGroups  int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ModelRepository defines the interface for topic model storage operations
type ModelRepository interface {
	Create(ctx context.Context, model *Model) error
	GetByID(ctx context.Context, id uuid.UUID) (*Model, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Model, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresModelRepository implements ModelRepository using PostgreSQL
type PostgresModelRepository struct {
	db *sql.DB
}

// NewPostgresModelRepository creates a new PostgresModelRepository
func NewPostgresModelRepository(db *sql.DB) *PostgresModelRepository {
	return &PostgresModelRepository{db: db}
}

// Create inserts a model and its topic-term rows in one transaction
func (r *PostgresModelRepository) Create(ctx context.Context, model *Model) error {
	if model.ID == uuid.Nil {
		model.ID = uuid.New()
	}

	now := time.Now()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	if model.UpdatedAt.IsZero() {
		model.UpdatedAt = now
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO topic_models (id, user_id, name, vocab, topic_names, num_groups, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		model.ID,
		model.UserID,
		model.Name,
		pq.Array(model.Vocab),
		pq.Array(model.TopicNames),
		model.NumGroups,
		model.CreatedAt,
		model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert topic model: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO model_topics (model_id, topic, term_weights)
		VALUES ($1, $2, $3)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for topic, row := range model.TopicTerm {
		if _, err := stmt.ExecContext(ctx, model.ID, topic, pq.Array(row)); err != nil {
			return fmt.Errorf("insert topic %d: %w", topic, err)
		}
	}

	return tx.Commit()
}

// GetByID retrieves a model with its topic-term rows
func (r *PostgresModelRepository) GetByID(ctx context.Context, id uuid.UUID) (*Model, error) {
	query := `
		SELECT id, user_id, name, vocab, topic_names, num_groups, created_at, updated_at
		FROM topic_models
		WHERE id = $1
	`

	model := &Model{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&model.ID,
		&model.UserID,
		&model.Name,
		pq.Array(&model.Vocab),
		pq.Array(&model.TopicNames),
		&model.NumGroups,
		&model.CreatedAt,
		&model.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT term_weights
		FROM model_topics
		WHERE model_id = $1
		ORDER BY topic ASC
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var weights []float64
		if err := rows.Scan(pq.Array(&weights)); err != nil {
			return nil, err
		}
		model.TopicTerm = append(model.TopicTerm, weights)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return model, nil
}

// GetByUserID lists the models of a user, newest first. Topic-term rows are
// not loaded.
func (r *PostgresModelRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Model, error) {
	query := `
		SELECT id, user_id, name, vocab, topic_names, num_groups, created_at, updated_at
		FROM topic_models
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []*Model
	for rows.Next() {
		model := &Model{}
		err := rows.Scan(
			&model.ID,
			&model.UserID,
			&model.Name,
			pq.Array(&model.Vocab),
			pq.Array(&model.TopicNames),
			&model.NumGroups,
			&model.CreatedAt,
			&model.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return models, nil
}

// Delete removes a model; documents, topics and groups cascade
func (r *PostgresModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM topic_models WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
