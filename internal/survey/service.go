package survey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nashtech/odmat/internal/store"
)

// Survey is the API view of a stored survey.
type Survey struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Schema      *Schema   `json:"schemaJson"`
	CreatedBy   int64     `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Request carries the fields of a create or update. On update nil fields
// keep their stored value.
type Request struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Schema      json.RawMessage `json:"schemaJson"`
	Status      *string         `json:"status"`
}

// Service manages surveys on behalf of their owners.
type Service struct {
	repo store.SurveyRepo
	log  *zap.Logger
}

// NewService returns a survey service. A nil logger disables logging.
func NewService(repo store.SurveyRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Create stores a new survey owned by owner. The status defaults to DRAFT.
func (s *Service) Create(ctx context.Context, owner int64, req Request) (*Survey, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, ErrTitleRequired
	}
	rec := &store.SurveyRecord{
		Title:     *req.Title,
		Status:    string(StatusDraft),
		CreatedBy: owner,
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if req.Status != nil {
		rec.Status = string(resolveStatus(*req.Status, StatusDraft))
	}
	if hasSchema(req.Schema) {
		if _, err := ParseSchema(req.Schema); err != nil {
			return nil, err
		}
		rec.SchemaJSON = req.Schema
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	s.log.Info("survey created", zap.Int64("id", rec.ID), zap.Int64("owner", owner))
	return fromRecord(rec)
}

// List returns the owner's surveys, most recently updated first.
func (s *Service) List(ctx context.Context, owner int64) ([]Survey, error) {
	recs, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]Survey, 0, len(recs))
	for i := range recs {
		sv, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *sv)
	}
	return out, nil
}

// Get returns survey id if owner created it.
func (s *Service) Get(ctx context.Context, owner, id int64) (*Survey, error) {
	rec, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Update applies the non-nil fields of req. An invalid status is ignored.
func (s *Service) Update(ctx context.Context, owner, id int64, req Request) (*Survey, error) {
	rec, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrTitleRequired
		}
		rec.Title = *req.Title
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if hasSchema(req.Schema) {
		if _, err := ParseSchema(req.Schema); err != nil {
			return nil, err
		}
		rec.SchemaJSON = req.Schema
	}
	if req.Status != nil {
		rec.Status = string(resolveStatus(*req.Status, Status(rec.Status)))
	}

	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Edit loads the survey layout into a Builder, runs fn and stores the
// resulting schema. Nothing is stored when fn fails.
func (s *Service) Edit(ctx context.Context, owner, id int64, fn func(*Builder) error) (*Survey, error) {
	rec, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	b := NewBuilder()
	if hasSchema(rec.SchemaJSON) {
		schema, err := ParseSchema(rec.SchemaJSON)
		if err != nil {
			return nil, err
		}
		b = FromSchema(schema)
	}
	if err := fn(b); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(b.Schema())
	if err != nil {
		return nil, fmt.Errorf("marshal survey schema: %w", err)
	}
	rec.SchemaJSON = raw
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return fromRecord(rec)
}

// Delete removes survey id if owner created it.
func (s *Service) Delete(ctx context.Context, owner, id int64) error {
	if _, err := s.owned(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("survey deleted", zap.Int64("id", id), zap.Int64("owner", owner))
	return nil
}

func (s *Service) owned(ctx context.Context, owner, id int64) (*store.SurveyRecord, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.CreatedBy != owner {
		return nil, ErrForbidden
	}
	return rec, nil
}

func hasSchema(raw []byte) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed != "" && trimmed != "null"
}

func fromRecord(rec *store.SurveyRecord) (*Survey, error) {
	sv := &Survey{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Status:      resolveStatus(rec.Status, StatusDraft),
		CreatedBy:   rec.CreatedBy,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if hasSchema(rec.SchemaJSON) {
		var schema Schema
		if err := json.Unmarshal(rec.SchemaJSON, &schema); err != nil {
			return nil, fmt.Errorf("decode survey %d schema: %w", rec.ID, err)
		}
		sv.Schema = &schema
	}
	return sv, nil
}
