package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Document is one row of a topic model: its text, group label and its rows
// of the document-topic and document-term matrices. Rows are stored as
// double precision arrays since vocabularies exceed pgvector's dimension limit.
type Document struct {
	ID           uuid.UUID
	ModelID      uuid.UUID
	Position     int
	Text         string
	GroupLabel   string
	TopicWeights []float64
	TermWeights  []float64
	CreatedAt    time.Time
}

// DocumentRepository defines the interface for document storage operations
type DocumentRepository interface {
	CreateBatch(ctx context.Context, documents []*Document) error
	GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*Document, error)
	DeleteByModelID(ctx context.Context, modelID uuid.UUID) error
}

// PostgresDocumentRepository implements DocumentRepository using PostgreSQL
type PostgresDocumentRepository struct {
	db *sql.DB
}

// NewPostgresDocumentRepository creates a new PostgresDocumentRepository
func NewPostgresDocumentRepository(db *sql.DB) *PostgresDocumentRepository {
	return &PostgresDocumentRepository{db: db}
}

// CreateBatch inserts multiple documents in a single transaction
func (r *PostgresDocumentRepository) CreateBatch(ctx context.Context, documents []*Document) error {
	if len(documents) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO model_documents (id, model_id, position, text, group_label, topic_weights, term_weights, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, d := range documents {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = now
		}

		_, err := stmt.ExecContext(ctx,
			d.ID,
			d.ModelID,
			d.Position,
			d.Text,
			d.GroupLabel,
			pq.Array(d.TopicWeights),
			pq.Array(d.TermWeights),
			d.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByModelID retrieves all documents of a model in their original order
func (r *PostgresDocumentRepository) GetByModelID(ctx context.Context, modelID uuid.UUID) ([]*Document, error) {
	query := `
		SELECT id, model_id, position, text, group_label, topic_weights, term_weights, created_at
		FROM model_documents
		WHERE model_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, modelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var documents []*Document
	for rows.Next() {
		d := &Document{}
		err := rows.Scan(
			&d.ID,
			&d.ModelID,
			&d.Position,
			&d.Text,
			&d.GroupLabel,
			pq.Array(&d.TopicWeights),
			pq.Array(&d.TermWeights),
			&d.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		documents = append(documents, d)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}

// DeleteByModelID removes all documents of a model
func (r *PostgresDocumentRepository) DeleteByModelID(ctx context.Context, modelID uuid.UUID) error {
	query := `DELETE FROM model_documents WHERE model_id = $1`
	_, err := r.db.ExecContext(ctx, query, modelID)
	return err
}
