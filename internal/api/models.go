package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gonum.org/v1/gonum/mat"

	"github.com/todmy/topic-groups/internal/auth"
	"github.com/todmy/topic-groups/internal/prepare"
	"github.com/todmy/topic-groups/internal/storage"
	"github.com/todmy/topic-groups/pkg/models"
)

const maxModelBytes = 64 << 20

// handleCreateModel ingests a topic model for the authenticated user
func (s *Server) handleCreateModel(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var tm models.TopicModel
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxModelBytes)).Decode(&tm); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if tm.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	g, err := prepare.Prepare(&tm)
	if err != nil {
		if isValidationError(err) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("prepare model %q: %v", tm.Name, err)
		respondError(w, http.StatusInternalServerError, "failed to prepare model")
		return
	}

	model, err := s.store.SaveTopicModel(r.Context(), userID, &tm, groupProfiles(g))
	if err != nil {
		log.Printf("save model %q: %v", tm.Name, err)
		respondError(w, http.StatusInternalServerError, "failed to save model")
		return
	}

	summary := modelSummary(model)
	summary.NumDocuments = tm.NumDocuments()
	respondJSON(w, http.StatusCreated, summary)
}

// handleListModels returns all models of the authenticated user
func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	list, err := s.store.Models.GetByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("list models of %s: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch models")
		return
	}

	response := make([]models.ModelSummary, 0, len(list))
	for _, m := range list {
		response = append(response, modelSummary(m))
	}

	respondJSON(w, http.StatusOK, response)
}

// handleGetModel returns a single model summary with its group names
func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	id, err := modelIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	model, err := s.store.Models.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "model not found")
			return
		}
		log.Printf("get model %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch model")
		return
	}

	profiles, err := s.store.Groups.GetByModelID(r.Context(), id)
	if err != nil {
		log.Printf("groups of model %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to fetch groups")
		return
	}

	summary := modelSummary(model)
	summary.Groups = make([]models.GroupSummary, 0, len(profiles))
	for _, p := range profiles {
		summary.Groups = append(summary.Groups, models.GroupSummary{GroupID: p.GroupID, Name: p.Name, Importance: p.Importance})
	}
	respondJSON(w, http.StatusOK, summary)
}

// handleDeleteModel removes a model; ownership is checked by auth.RequireModelOwner
func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	id, err := modelIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	if err := s.store.Models.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "model not found")
			return
		}
		log.Printf("delete model %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to delete model")
		return
	}
	s.dashboards.evict(id)

	w.WriteHeader(http.StatusNoContent)
}

func modelIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "modelID"))
}

func modelSummary(m *storage.Model) models.ModelSummary {
	return models.ModelSummary{
		ID:        m.ID.String(),
		UserID:    m.UserID.String(),
		Name:      m.Name,
		NumTopics: len(m.TopicNames),
		NumTerms:  len(m.Vocab),
		NumGroups: m.NumGroups,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// groupProfiles turns each group's topic importance row into a storable vector
func groupProfiles(g *prepare.Groups) []*storage.GroupProfile {
	profiles := make([]*storage.GroupProfile, g.NumGroups())
	for i, name := range g.Names {
		row := mat.Row(nil, i, g.TopicImportance)
		weights := make([]float32, len(row))
		for j, v := range row {
			weights[j] = float32(v)
		}
		profiles[i] = &storage.GroupProfile{
			GroupID:      i,
			Name:         name,
			Importance:   g.Importances[i],
			TopicWeights: pgvector.NewVector(weights),
		}
	}
	return profiles
}

func isValidationError(err error) bool {
	return errors.Is(err, models.ErrEmptyModel) ||
		errors.Is(err, models.ErrShapeMismatch) ||
		errors.Is(err, models.ErrInvalidValue) ||
		errors.Is(err, prepare.ErrGroupLabels)
}
