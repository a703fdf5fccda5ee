package store

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/ahrav/namesmith/internal/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// DomainFilter narrows ListDomains. Zero values do not filter.
type DomainFilter struct {
	TLD        string
	Status     domain.AvailabilityStatus
	MinOverall *int
	Limit      int
	Offset     int
}

// ListDomains returns domains matching f, newest first, with their current
// availability and evaluation.
func (s *Store) ListDomains(ctx context.Context, f DomainFilter) ([]DomainName, error) {
	ids, err := s.matchingDomainIDs(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []DomainName{}, nil
	}

	var rows []DomainName
	if err := withRelations(s.conn(ctx)).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}

	byID := make(map[uuid.UUID]DomainName, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]DomainName, 0, len(rows))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) matchingDomainIDs(ctx context.Context, f DomainFilter) ([]uuid.UUID, error) {
	query, args, err := domainListQuery(f).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build domain query: %w", err)
	}

	var raw []string
	if err := s.conn(ctx).Raw(query, args...).Scan(&raw).Error; err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("list domains: bad id %q: %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func domainListQuery(f DomainFilter) sq.SelectBuilder {
	limit, offset := clampPage(f.Limit, f.Offset)

	q := sq.Select("d.id").
		From("domain_names d").
		LeftJoin("dn_availability_status a ON a.domain_id = d.id").
		LeftJoin("dn_evaluations e ON e.domain_id = d.id").
		OrderBy("d.created_at DESC", "d.label ASC", "d.tld ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	if tld := domain.NormalizeTLD(f.TLD); tld != "" {
		q = q.Where(sq.Eq{"d.tld": tld})
	}
	if f.Status != "" {
		q = q.Where(sq.Eq{"a.status": string(f.Status)})
	}
	if f.MinOverall != nil {
		q = q.Where(sq.GtOrEq{"e.overall_score": *f.MinOverall})
	}
	return q
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
