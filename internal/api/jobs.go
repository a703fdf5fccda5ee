package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/store"
)

// CreateJobRequest is the body of POST /v1/jobs.
type CreateJobRequest struct {
	EntryPath       string     `json:"entry_path"                 validate:"required,oneof=investor business"`
	UserID          *uuid.UUID `json:"user_id,omitempty"`
	Topic           string     `json:"topic,omitempty"            validate:"max=500"`
	Prompt          string     `json:"prompt,omitempty"           validate:"max=2000"`
	Categories      []string   `json:"categories,omitempty"       validate:"max=20,dive,max=100"`
	TLDs            []string   `json:"tlds"                       validate:"required,min=1,max=20,dive,required,max=24"`
	Count           int        `json:"count"                      validate:"min=1,max=200"`
	GenerationModel string     `json:"generation_model,omitempty" validate:"max=200"`
	ScoringModel    string     `json:"scoring_model,omitempty"    validate:"max=200"`
}

func (req CreateJobRequest) inputs(jobID uuid.UUID) domain.GenerationInputs {
	return domain.GenerationInputs{
		JobID:           jobID,
		UserID:          req.UserID,
		EntryPath:       domain.EntryPath(req.EntryPath),
		Topic:           req.Topic,
		Prompt:          req.Prompt,
		Categories:      req.Categories,
		TLDs:            req.TLDs,
		Count:           req.Count,
		GenerationModel: req.GenerationModel,
		ScoringModel:    req.ScoringModel,
	}
}

func (req CreateJobRequest) params() map[string]any {
	p := map[string]any{
		"tlds":  req.TLDs,
		"count": req.Count,
	}
	if req.Topic != "" {
		p["topic"] = req.Topic
	}
	if req.Prompt != "" {
		p["prompt"] = req.Prompt
	}
	if len(req.Categories) > 0 {
		p["categories"] = req.Categories
	}
	return p
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req CreateJobRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := domain.Validator().Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "validation error: "+err.Error())
		return
	}

	job := &store.Job{
		ID:        uuid.New(),
		Type:      domain.JobTypeGenerate,
		EntryPath: domain.EntryPath(req.EntryPath),
		Status:    domain.JobStatusQueued,
		CreatedBy: req.UserID,
		Params:    req.params(),
	}
	inputs := req.inputs(job.ID)
	if err := inputs.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.CreateJob(r.Context(), job); err != nil {
		s.respondStoreError(w, r, err)
		return
	}

	if _, err := s.runner.Submit(r.Context(), inputs); err != nil {
		s.logger.Error("job submission failed", "job_id", job.ID, "error", err)
		msg := err.Error()
		now := s.now().UTC()
		if _, uerr := s.store.UpdateJobStatus(r.Context(), job.ID, store.JobUpdate{
			Status:     domain.JobStatusFailed,
			Error:      &msg,
			FinishedAt: &now,
		}); uerr != nil {
			s.logger.Error("failed to record rejected job", "job_id", job.ID, "error", uerr)
		}
		respondError(w, http.StatusServiceUnavailable, "job runner unavailable")
		return
	}

	respondJSON(w, http.StatusAccepted, job)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	jobs, err := s.store.ListJobs(r.Context(), limit, offset)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []store.Job{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "jobID")
	if !ok {
		return
	}
	job, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) listJobDomains(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "jobID")
	if !ok {
		return
	}
	if _, err := s.store.GetJob(r.Context(), id); err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	domains, err := s.store.ListJobDomains(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"domains": domainViews(domains)})
}

func pathUUID(w http.ResponseWriter, r *http.Request, key string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, key))
	if err != nil {
		respondError(w, http.StatusBadRequest, key+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
