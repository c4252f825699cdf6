package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/todmy/topic-groups/internal/groups"
	"github.com/todmy/topic-groups/internal/storage"
)

const (
	defaultSimilarLimit = 5
	maxSimilarLimit     = 50
)

// dashboardCache keeps one groups blueprint per stored model so the
// aggregates are prepared once and the selection is shared between requests.
type dashboardCache struct {
	mu         sync.RWMutex
	blueprints map[uuid.UUID]*groups.Blueprint
}

func newDashboardCache() *dashboardCache {
	return &dashboardCache{blueprints: make(map[uuid.UUID]*groups.Blueprint)}
}

func (c *dashboardCache) get(id uuid.UUID) (*groups.Blueprint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bp, ok := c.blueprints[id]
	return bp, ok
}

// put stores bp unless another request already built one, and returns the
// blueprint that is kept
func (c *dashboardCache) put(id uuid.UUID, bp *groups.Blueprint) *groups.Blueprint {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.blueprints[id]; ok {
		return existing
	}
	c.blueprints[id] = bp
	return bp
}

func (c *dashboardCache) evict(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.blueprints, id)
}

// dashboard returns the cached blueprint of a model, building it on first use
func (s *Server) dashboard(ctx context.Context, id uuid.UUID) (*groups.Blueprint, error) {
	if bp, ok := s.dashboards.get(id); ok {
		return bp, nil
	}

	tm, _, err := s.store.LoadTopicModel(ctx, id)
	if err != nil {
		return nil, err
	}

	opts := s.dashOpts
	opts.BasePath = fmt.Sprintf("%s/models/%s/groups", apiPrefix, id)

	bp, err := groups.CreateBlueprint(tm, opts)
	if err != nil {
		return nil, fmt.Errorf("create blueprint: %w", err)
	}

	return s.dashboards.put(id, bp), nil
}

// handleGroups serves the groups page and its callbacks for a model
func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	id, err := modelIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	bp, err := s.dashboard(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "model not found")
			return
		}
		log.Printf("groups dashboard %s: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to build groups dashboard")
		return
	}

	bp.ServeHTTP(w, r)
}

// handleSimilarGroups lists the groups whose topic mix is closest to ?group=N
func (s *Server) handleSimilarGroups(w http.ResponseWriter, r *http.Request) {
	id, err := modelIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	group, err := strconv.Atoi(r.URL.Query().Get("group"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "group must be an integer")
		return
	}

	limit := defaultSimilarLimit
	if q := r.URL.Query().Get("limit"); q != "" {
		limit, err = strconv.Atoi(q)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if limit > maxSimilarLimit {
			limit = maxSimilarLimit
		}
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

	if group < 0 || group >= model.NumGroups {
		respondError(w, http.StatusBadRequest, groups.ErrGroupOutOfRange.Error())
		return
	}

	similar, err := s.store.Groups.FindSimilar(r.Context(), id, group, limit)
	if err != nil {
		log.Printf("similar groups %s/%d: %v", id, group, err)
		respondError(w, http.StatusInternalServerError, "failed to find similar groups")
		return
	}

	respondJSON(w, http.StatusOK, similar)
}
