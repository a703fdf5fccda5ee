package store

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ahrav/namesmith/internal/domain"
)

// JobUpdate describes a status transition. Nil fields are left unchanged and
// Params is merged key by key into the stored params.
type JobUpdate struct {
	Status     domain.JobStatus
	Error      *string
	StartedAt  *time.Time
	FinishedAt *time.Time
	Params     map[string]any
}

// CreateJob inserts a new job. A zero ID or status is filled in.
func (s *Store) CreateJob(ctx context.Context, job *Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = domain.JobStatusQueued
	}
	if job.Type == "" {
		job.Type = domain.JobTypeGenerate
	}
	if err := s.conn(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetJob returns the job or an error wrapping domain.ErrJobNotFound.
func (s *Store) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	var job Job
	err := s.conn(ctx).First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &job, nil
}

// JobExists reports whether a job row exists.
func (s *Store) JobExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.conn(ctx).Model(&Job{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("job exists: %w", err)
	}
	return n > 0, nil
}

// UpdateJobStatus applies u to the job and returns the stored result.
func (s *Store) UpdateJobStatus(ctx context.Context, id uuid.UUID, u JobUpdate) (*Job, error) {
	var job Job
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&job, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
			}
			return err
		}
		if u.Status != "" {
			job.Status = u.Status
		}
		if u.Error != nil {
			job.Error = u.Error
		}
		if u.StartedAt != nil {
			job.StartedAt = u.StartedAt
		}
		if u.FinishedAt != nil {
			job.FinishedAt = u.FinishedAt
		}
		if len(u.Params) > 0 {
			if job.Params == nil {
				job.Params = make(map[string]any, len(u.Params))
			}
			maps.Copy(job.Params, u.Params)
		}
		return tx.Save(&job).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update job status: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs newest first.
func (s *Store) ListJobs(ctx context.Context, limit, offset int) ([]Job, error) {
	limit, offset = clampPage(limit, offset)
	var out []Job
	err := s.conn(ctx).Order("created_at DESC").Limit(limit).Offset(offset).Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

// RecordAgentRun appends an audit record.
func (s *Store) RecordAgentRun(ctx context.Context, run *AgentRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if err := s.conn(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record agent run: %w", err)
	}
	return nil
}

// AgentRuns returns the audit records of a job in start order.
func (s *Store) AgentRuns(ctx context.Context, jobID uuid.UUID) ([]AgentRun, error) {
	var out []AgentRun
	if err := s.conn(ctx).Where("job_id = ?", jobID).Order("started_at ASC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("agent runs: %w", err)
	}
	return out, nil
}
