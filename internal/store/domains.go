package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ahrav/namesmith/internal/domain"
)

// DomainUpsert carries the columns of an insert-or-coalesce on domain_names.
type DomainUpsert struct {
	Label            string
	TLD              string
	DisplayName      *string
	ProcessedByAgent *string
	AgentModel       *string
}

// AvailabilityUpsert replaces the current availability of a domain and
// appends one history row.
type AvailabilityUpsert struct {
	DomainID         uuid.UUID
	Status           domain.AvailabilityStatus
	Registrar        *string
	Method           string
	Raw              map[string]any
	TTLSec           *int
	CheckedAt        time.Time
	ProcessedByAgent *string
	AgentModel       *string
}

// EvaluationUpsert replaces the current evaluation of a domain.
type EvaluationUpsert struct {
	DomainID         uuid.UUID
	Categories       []string
	Keywords         []string
	Memorability     int
	Pronounceability int
	Brandability     int
	Overall          int
	Description      string
	ProcessedByAgent *string
	AgentModel       *string
}

// SeoUpsert replaces the current SEO analysis of a domain.
type SeoUpsert struct {
	DomainID                 uuid.UUID
	Keywords                 []string
	SeoKeywordRelevanceScore int
	IndustryRelevanceScore   int
	DomainAge                int
	PotentialResaleValue     int
	Language                 string
	TrademarkStatus          *string
	Description              string
	ScoredByAgent            *string
	AgentModel               *string
}

// UpsertDomain inserts the (label, tld) pair or coalesces into the existing
// row, then returns the stored row.
func (s *Store) UpsertDomain(ctx context.Context, in DomainUpsert) (*DomainName, error) {
	label := domain.NormalizeLabel(in.Label)
	tld := domain.NormalizeTLD(in.TLD)
	if label == "" || tld == "" {
		return nil, fmt.Errorf("%w: label and tld are required", domain.ErrInvalidInputs)
	}

	row := DomainName{
		ID:               uuid.New(),
		Label:            label,
		TLD:              tld,
		DisplayName:      nonEmpty(in.DisplayName),
		Length:           utf8.RuneCountInString(label),
		ProcessedByAgent: nonEmpty(in.ProcessedByAgent),
		AgentModel:       nonEmpty(in.AgentModel),
		CreatedAt:        time.Now().UTC(),
	}

	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "label"}, {Name: "tld"}},
		DoUpdates: coalesce("domain_names", "display_name", "processed_by_agent", "agent_model", "length"),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert domain %s: %w", domain.FullDomain(label, tld), err)
	}

	var out DomainName
	if err := s.conn(ctx).Where("label = ? AND tld = ?", label, tld).First(&out).Error; err != nil {
		return nil, fmt.Errorf("reload domain %s: %w", domain.FullDomain(label, tld), err)
	}
	return &out, nil
}

// UpsertAvailability overwrites the single current status row for the domain
// and appends an immutable AvailabilityCheck, atomically.
func (s *Store) UpsertAvailability(ctx context.Context, in AvailabilityUpsert) (*DomainAvailabilityStatus, error) {
	if in.DomainID == uuid.Nil {
		return nil, fmt.Errorf("%w: domain id is required", domain.ErrInvalidInputs)
	}
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown availability status %q", domain.ErrInvalidInputs, in.Status)
	}
	method := strings.TrimSpace(in.Method)
	if method == "" {
		method = "unknown"
	}
	now := time.Now().UTC()
	checkedAt := in.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = now
	}

	var out DomainAvailabilityStatus
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		current := DomainAvailabilityStatus{
			ID:               uuid.New(),
			DomainID:         in.DomainID,
			Status:           string(in.Status),
			ProcessedByAgent: nonEmpty(in.ProcessedByAgent),
			AgentModel:       nonEmpty(in.AgentModel),
			CreatedAt:        now,
		}
		set := append(
			clause.AssignmentColumns([]string{"status", "created_at"}),
			coalesce("dn_availability_status", "processed_by_agent", "agent_model")...,
		)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "domain_id"}},
			DoUpdates: set,
		}).Create(&current).Error; err != nil {
			return fmt.Errorf("upsert availability status: %w", err)
		}

		check := AvailabilityCheck{
			ID:        uuid.New(),
			DomainID:  in.DomainID,
			Method:    method,
			Registrar: nonEmpty(in.Registrar),
			Status:    string(in.Status),
			CheckedAt: checkedAt,
			Raw:       in.Raw,
			TTLSec:    in.TTLSec,
		}
		if err := tx.Create(&check).Error; err != nil {
			return fmt.Errorf("append availability check: %w", err)
		}

		return tx.Where("domain_id = ?", in.DomainID).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpsertEvaluation overwrites the scores, terms and description of the current
// evaluation; agent metadata is coalesced.
func (s *Store) UpsertEvaluation(ctx context.Context, in EvaluationUpsert) (*DomainEvaluation, error) {
	if in.DomainID == uuid.Nil {
		return nil, fmt.Errorf("%w: domain id is required", domain.ErrInvalidInputs)
	}

	row := DomainEvaluation{
		ID:                    uuid.New(),
		DomainID:              in.DomainID,
		PossibleCategories:    normalizeTerms(in.Categories),
		PossibleKeywords:      normalizeTerms(in.Keywords),
		MemorabilityScore:     in.Memorability,
		PronounceabilityScore: in.Pronounceability,
		BrandabilityScore:     in.Brandability,
		OverallScore:          in.Overall,
		Description:           in.Description,
		ProcessedByAgent:      nonEmpty(in.ProcessedByAgent),
		AgentModel:            nonEmpty(in.AgentModel),
		CreatedAt:             time.Now().UTC(),
	}
	set := append(
		clause.AssignmentColumns([]string{
			"possible_categories", "possible_keywords",
			"memorability_score", "pronounceability_score", "brandability_score", "overall_score",
			"description", "created_at",
		}),
		coalesce("dn_evaluations", "processed_by_agent", "agent_model")...,
	)
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain_id"}},
		DoUpdates: set,
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert evaluation: %w", err)
	}

	var out DomainEvaluation
	if err := s.conn(ctx).Where("domain_id = ?", in.DomainID).First(&out).Error; err != nil {
		return nil, fmt.Errorf("reload evaluation: %w", err)
	}
	return &out, nil
}

// UpsertSeoAnalysis keeps one current SEO analysis per domain.
func (s *Store) UpsertSeoAnalysis(ctx context.Context, in SeoUpsert) (*DomainSeoAnalysis, error) {
	if in.DomainID == uuid.Nil {
		return nil, fmt.Errorf("%w: domain id is required", domain.ErrInvalidInputs)
	}
	lang := strings.TrimSpace(in.Language)
	if lang == "" {
		lang = "en"
	}

	row := DomainSeoAnalysis{
		ID:                       uuid.New(),
		DomainID:                 in.DomainID,
		SeoKeywords:              normalizeTerms(in.Keywords),
		SeoKeywordRelevanceScore: in.SeoKeywordRelevanceScore,
		IndustryRelevanceScore:   in.IndustryRelevanceScore,
		DomainAge:                in.DomainAge,
		PotentialResaleValue:     in.PotentialResaleValue,
		Language:                 lang,
		TrademarkStatus:          nonEmpty(in.TrademarkStatus),
		ScoredByAgent:            nonEmpty(in.ScoredByAgent),
		AgentModel:               nonEmpty(in.AgentModel),
		Description:              in.Description,
		CreatedAt:                time.Now().UTC(),
	}
	set := append(
		clause.AssignmentColumns([]string{
			"seo_keywords", "seo_keyword_relevance_score", "industry_relevance_score",
			"domain_age", "potential_resale_value", "language", "description", "created_at",
		}),
		coalesce("dn_seo_analyses", "trademark_status", "scored_by_agent", "agent_model")...,
	)
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain_id"}},
		DoUpdates: set,
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("upsert seo analysis: %w", err)
	}

	var out DomainSeoAnalysis
	if err := s.conn(ctx).Where("domain_id = ?", in.DomainID).First(&out).Error; err != nil {
		return nil, fmt.Errorf("reload seo analysis: %w", err)
	}
	return &out, nil
}

// LinkDomainToJob records that the job produced the domain. Relinking is a no-op.
func (s *Store) LinkDomainToJob(ctx context.Context, jobID, domainID uuid.UUID) error {
	link := JobDomainLink{JobID: jobID, DomainID: domainID, CreatedAt: time.Now().UTC()}
	err := s.conn(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
	if err != nil {
		return fmt.Errorf("link domain to job: %w", err)
	}
	return nil
}

// GetDomain loads a domain with its current availability, evaluation, SEO
// analysis and availability history (newest first).
func (s *Store) GetDomain(ctx context.Context, id uuid.UUID) (*DomainName, error) {
	var out DomainName
	err := withRelations(s.conn(ctx)).
		Preload("AvailabilityChecks", func(db *gorm.DB) *gorm.DB {
			return db.Order("checked_at DESC")
		}).
		First(&out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDomainNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get domain: %w", err)
	}
	return &out, nil
}

// FindDomain looks a domain up by its natural key.
func (s *Store) FindDomain(ctx context.Context, label, tld string) (*DomainName, error) {
	var out DomainName
	err := withRelations(s.conn(ctx)).
		Where("label = ? AND tld = ?", domain.NormalizeLabel(label), domain.NormalizeTLD(tld)).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrDomainNotFound, domain.FullDomain(label, tld))
	}
	if err != nil {
		return nil, fmt.Errorf("find domain: %w", err)
	}
	return &out, nil
}

// AvailabilityHistory returns every recorded lookup for the domain, newest first.
func (s *Store) AvailabilityHistory(ctx context.Context, domainID uuid.UUID) ([]AvailabilityCheck, error) {
	var out []AvailabilityCheck
	err := s.conn(ctx).Where("domain_id = ?", domainID).Order("checked_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("availability history: %w", err)
	}
	return out, nil
}

// ListJobDomains returns the domains linked to a job, ordered by label.
func (s *Store) ListJobDomains(ctx context.Context, jobID uuid.UUID) ([]DomainName, error) {
	var out []DomainName
	err := withRelations(s.conn(ctx)).
		Joins("JOIN job_domain_links l ON l.domain_id = domain_names.id").
		Where("l.job_id = ?", jobID).
		Order("domain_names.label ASC").
		Order("domain_names.tld ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list job domains: %w", err)
	}
	return out, nil
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Availability").Preload("Evaluation").Preload("SeoAnalysis")
}

// coalesce builds "col = COALESCE(excluded.col, table.col)" assignments.
func coalesce(table string, cols ...string) clause.Set {
	set := make(clause.Set, 0, len(cols))
	for _, col := range cols {
		set = append(set, clause.Assignment{
			Column: clause.Column{Name: col},
			Value:  gorm.Expr(fmt.Sprintf("COALESCE(excluded.%s, %s.%s)", col, table, col)),
		})
	}
	return set
}

// normalizeTerms lowercases, dedupes and sorts; the result is never nil.
func normalizeTerms(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
