package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/store"
)

// DefaultEvaluationDescription is used when a scored candidate has no rationale.
const DefaultEvaluationDescription = "Generated via heuristic scoring."

// PipelineAgentName identifies the audit record written per run.
const PipelineAgentName = "namesmith.pipeline"

// MethodCache is the history method of a result served from the registrar
// result cache rather than a fresh lookup.
const MethodCache = "cache"

// PersistInput is what the persist stage writes.
type PersistInput struct {
	// Inputs carries the resolved model names.
	Inputs       domain.GenerationInputs
	Scored       []domain.ScoredCandidate
	Availability []domain.AvailabilityResult
}

// PersistResult lists the stored domain ids in scored order.
type PersistResult struct {
	DomainIDs []uuid.UUID
}

// Persist upserts every scored candidate with its availability and evaluation
// in one transaction. Job links and the audit run are written only when the
// job record exists.
func (a *Activities) Persist(ctx context.Context, in PersistInput) (PersistResult, error) {
	start := a.now()
	if a.uow == nil {
		err := &Error{Type: ErrorConfiguration, Stage: StagePersist, Message: "no persistence sink configured"}
		a.observe(StagePersist, start, 0, err)
		return PersistResult{}, err
	}

	var res PersistResult
	err := a.uow.InTx(ctx, func(repo store.DomainRepository) error {
		ids, err := a.persistAll(ctx, repo, in)
		res.DomainIDs = ids
		return err
	})
	if err != nil {
		var se *Error
		if !errors.As(err, &se) {
			err = &Error{Type: ErrorPersistence, Stage: StagePersist, Message: "persisting results failed", Cause: err}
		}
		a.observe(StagePersist, start, 0, err)
		return PersistResult{}, err
	}
	a.observe(StagePersist, start, len(res.DomainIDs), nil)
	return res, nil
}

func (a *Activities) persistAll(ctx context.Context, repo store.DomainRepository, in PersistInput) ([]uuid.UUID, error) {
	startedAt := a.now().UTC()
	genModel := optional(in.Inputs.GenerationModel)
	scoreModel := optional(in.Inputs.ScoringModel)
	keywords := Tokenize(in.Inputs.Topic)

	byDomain := make(map[string]domain.AvailabilityResult, len(in.Availability))
	for _, r := range in.Availability {
		byDomain[r.FullDomain] = r
	}

	jobExists, err := repo.JobExists(ctx, in.Inputs.JobID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(in.Scored))
	for _, sc := range in.Scored {
		row, err := repo.UpsertDomain(ctx, store.DomainUpsert{
			Label:            sc.Label,
			TLD:              sc.TLD,
			DisplayName:      optional(sc.DisplayName),
			ProcessedByAgent: agent(StageGenerate),
			AgentModel:       genModel,
		})
		if err != nil {
			return nil, err
		}

		if res, ok := byDomain[sc.FullDomain()]; ok {
			if _, err := repo.UpsertAvailability(ctx, a.availabilityUpsert(row.ID, res, genModel)); err != nil {
				return nil, err
			}
		}

		description := sc.Rationale
		if description == "" {
			description = DefaultEvaluationDescription
		}
		_, err = repo.UpsertEvaluation(ctx, store.EvaluationUpsert{
			DomainID:         row.ID,
			Categories:       in.Inputs.Categories,
			Keywords:         keywords,
			Memorability:     roundScore(sc.Memorability),
			Pronounceability: roundScore(sc.Pronounceability),
			Brandability:     roundScore(sc.Brandability),
			Overall:          roundScore(sc.Overall),
			Description:      description,
			ProcessedByAgent: agent(StageScore),
			AgentModel:       scoreModel,
		})
		if err != nil {
			return nil, err
		}

		if jobExists {
			if err := repo.LinkDomainToJob(ctx, in.Inputs.JobID, row.ID); err != nil {
				return nil, err
			}
		}
		ids = append(ids, row.ID)
	}

	if jobExists {
		finished := a.now().UTC()
		run := &store.AgentRun{
			JobID:      in.Inputs.JobID,
			AgentName:  PipelineAgentName,
			Input:      snapshot(in.Inputs),
			Output:     map[string]any{"count": len(ids)},
			Status:     string(domain.JobStatusSucceeded),
			StartedAt:  &startedAt,
			FinishedAt: &finished,
		}
		if err := repo.RecordAgentRun(ctx, run); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

func (a *Activities) availabilityUpsert(domainID uuid.UUID, res domain.AvailabilityResult, model *string) store.AvailabilityUpsert {
	up := store.AvailabilityUpsert{
		DomainID:         domainID,
		Status:           res.Status,
		Registrar:        optional(res.Registrar),
		Method:           res.Registrar,
		Raw:              res.Raw,
		CheckedAt:        res.CheckedAt,
		ProcessedByAgent: agent(StageAvailability),
		AgentModel:       model,
	}
	switch {
	case res.Cached:
		up.Method = MethodCache
	case up.Method == "":
		up.Method = "registrar"
	}
	if a.ttl > 0 && res.Status.Definitive() {
		sec := int(a.ttl.Seconds())
		up.TTLSec = &sec
	}
	return up
}

func agent(stage string) *string {
	s := "namesmith." + stage
	return &s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func roundScore(v float64) int {
	return int(math.Round(domain.ClampScore(v)))
}

// snapshot renders v as a generic JSON object for audit storage.
func snapshot(v any) map[string]any {
	raw, err := json.Marshal(v)
	if err != nil {
		return map[string]any{"error": fmt.Sprintf("snapshot: %v", err)}
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]any{"error": fmt.Sprintf("snapshot: %v", err)}
	}
	return out
}
