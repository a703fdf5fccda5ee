package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
)

// DomainName is a persisted domain, unique by (label, tld).
type DomainName struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"                                          json:"id"`
	Label            string    `gorm:"size:255;not null;uniqueIndex:ux_domain_names_label_tld,priority:1" json:"label"`
	TLD              string    `gorm:"column:tld;size:20;not null;uniqueIndex:ux_domain_names_label_tld,priority:2" json:"tld"`
	DisplayName      *string   `gorm:"size:255"                                                          json:"display_name,omitempty"`
	Length           int       `gorm:"not null"                                                          json:"length"`
	ProcessedByAgent *string   `gorm:"size:255"                                                          json:"processed_by_agent,omitempty"`
	AgentModel       *string   `gorm:"size:255"                                                          json:"agent_model,omitempty"`
	CreatedAt        time.Time `gorm:"index"                                                             json:"created_at"`

	Availability       *DomainAvailabilityStatus `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"availability,omitempty"`
	Evaluation         *DomainEvaluation         `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"evaluation,omitempty"`
	SeoAnalysis        *DomainSeoAnalysis        `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"seo_analysis,omitempty"`
	AvailabilityChecks []AvailabilityCheck       `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"availability_checks,omitempty"`
}

// FullDomain derives "label.tld"; it is never stored.
func (d DomainName) FullDomain() string { return domain.FullDomain(d.Label, d.TLD) }

// DomainAvailabilityStatus is the single current availability row of a domain.
type DomainAvailabilityStatus struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey"          json:"id"`
	DomainID         uuid.UUID `gorm:"type:char(36);not null;uniqueIndex" json:"domain_id"`
	Status           string    `gorm:"size:32;not null"                  json:"status"`
	ProcessedByAgent *string   `gorm:"size:255"                          json:"processed_by_agent,omitempty"`
	AgentModel       *string   `gorm:"size:255"                          json:"agent_model,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName implements the GORM tabler interface.
func (DomainAvailabilityStatus) TableName() string { return "dn_availability_status" }

// AvailabilityCheck is one append-only registrar lookup record.
type AvailabilityCheck struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey"    json:"id"`
	DomainID  uuid.UUID      `gorm:"type:char(36);not null;index" json:"domain_id"`
	Method    string         `gorm:"size:32;not null"            json:"method"`
	Registrar *string        `gorm:"size:64"                     json:"registrar,omitempty"`
	Status    string         `gorm:"size:32;not null"            json:"status"`
	CheckedAt time.Time      `gorm:"not null"                    json:"checked_at"`
	Raw       map[string]any `gorm:"serializer:json"             json:"raw,omitempty"`
	TTLSec    *int           `gorm:"column:ttl_sec"              json:"ttl_sec,omitempty"`
}

// DomainEvaluation is the single current rubric evaluation of a domain.
type DomainEvaluation struct {
	ID                    uuid.UUID `gorm:"type:char(36);primaryKey"          json:"id"`
	DomainID              uuid.UUID `gorm:"type:char(36);not null;uniqueIndex" json:"domain_id"`
	PossibleCategories    []string  `gorm:"serializer:json"                   json:"possible_categories"`
	PossibleKeywords      []string  `gorm:"serializer:json"                   json:"possible_keywords"`
	MemorabilityScore     int       `gorm:"not null"                          json:"memorability_score"`
	PronounceabilityScore int       `gorm:"not null"                          json:"pronounceability_score"`
	BrandabilityScore     int       `gorm:"not null"                          json:"brandability_score"`
	OverallScore          int       `gorm:"not null;index"                    json:"overall_score"`
	Description           string    `json:"description"`
	ProcessedByAgent      *string   `gorm:"size:255"                          json:"processed_by_agent,omitempty"`
	AgentModel            *string   `gorm:"size:255"                          json:"agent_model,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

// TableName implements the GORM tabler interface.
func (DomainEvaluation) TableName() string { return "dn_evaluations" }

// DomainSeoAnalysis is the single current SEO analysis of a domain.
type DomainSeoAnalysis struct {
	ID                       uuid.UUID `gorm:"type:char(36);primaryKey"          json:"id"`
	DomainID                 uuid.UUID `gorm:"type:char(36);not null;uniqueIndex" json:"domain_id"`
	SeoKeywords              []string  `gorm:"serializer:json"                   json:"seo_keywords"`
	SeoKeywordRelevanceScore int       `gorm:"not null"                          json:"seo_keyword_relevance_score"`
	IndustryRelevanceScore   int       `gorm:"not null"                          json:"industry_relevance_score"`
	DomainAge                int       `gorm:"not null"                          json:"domain_age"`
	PotentialResaleValue     int       `gorm:"not null"                          json:"potential_resale_value"`
	Language                 string    `gorm:"size:32;not null"                  json:"language"`
	TrademarkStatus          *string   `gorm:"size:120"                          json:"trademark_status,omitempty"`
	ScoredByAgent            *string   `gorm:"size:255"                          json:"scored_by_agent,omitempty"`
	AgentModel               *string   `gorm:"size:255"                          json:"agent_model,omitempty"`
	Description              string    `json:"description"`
	CreatedAt                time.Time `json:"created_at"`
}

// TableName implements the GORM tabler interface.
func (DomainSeoAnalysis) TableName() string { return "dn_seo_analyses" }

// Job is one unit of requested work and its lifecycle.
type Job struct {
	ID         uuid.UUID        `gorm:"type:char(36);primaryKey"      json:"id"`
	Type       domain.JobType   `gorm:"size:32;not null"              json:"type"`
	EntryPath  domain.EntryPath `gorm:"size:32;not null"              json:"entry_path"`
	Status     domain.JobStatus `gorm:"size:32;not null;index"        json:"status"`
	CreatedBy  *uuid.UUID       `gorm:"type:char(36)"                 json:"created_by,omitempty"`
	Params     map[string]any   `gorm:"serializer:json"               json:"params,omitempty"`
	StartedAt  *time.Time       `json:"started_at,omitempty"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
	Error      *string          `json:"error,omitempty"`
	CreatedAt  time.Time        `gorm:"index"                         json:"created_at"`
}

// JobDomainLink associates a job with a domain it produced.
type JobDomainLink struct {
	JobID     uuid.UUID `gorm:"type:char(36);primaryKey"`
	DomainID  uuid.UUID `gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time
}

// AgentRun is an append-only audit record of one pipeline execution.
type AgentRun struct {
	ID         uuid.UUID      `gorm:"type:char(36);primaryKey"    json:"id"`
	JobID      uuid.UUID      `gorm:"type:char(36);not null;index" json:"job_id"`
	AgentName  string         `gorm:"size:64;not null"            json:"agent_name"`
	Input      map[string]any `gorm:"serializer:json"             json:"input,omitempty"`
	Output     map[string]any `gorm:"serializer:json"             json:"output,omitempty"`
	Status     string         `gorm:"size:32;not null"            json:"status"`
	StartedAt  *time.Time     `json:"started_at,omitempty"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	TraceID    *string        `gorm:"size:255"                    json:"trace_id,omitempty"`
}

func allModels() []any {
	return []any{
		&DomainName{},
		&DomainAvailabilityStatus{},
		&AvailabilityCheck{},
		&DomainEvaluation{},
		&DomainSeoAnalysis{},
		&Job{},
		&JobDomainLink{},
		&AgentRun{},
	}
}
