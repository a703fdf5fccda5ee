package api

import (
	"net/http"
	"strings"

	"github.com/ahrav/namesmith/internal/domain"
	"github.com/ahrav/namesmith/internal/store"
)

// DomainView is a persisted domain with its derived full name.
type DomainView struct {
	store.DomainName
	FullDomain string `json:"full_domain"`
}

func domainViews(in []store.DomainName) []DomainView {
	out := make([]DomainView, 0, len(in))
	for _, d := range in {
		out = append(out, DomainView{DomainName: d, FullDomain: d.FullDomain()})
	}
	return out
}

func (s *Server) listDomains(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	f := store.DomainFilter{
		TLD:    domain.NormalizeTLD(q.Get("tld")),
		Status: domain.AvailabilityStatus(strings.ToLower(strings.TrimSpace(q.Get("status")))),
		Limit:  limit,
		Offset: offset,
	}
	if f.Status != "" && !f.Status.Valid() {
		respondError(w, http.StatusBadRequest, "unknown availability status")
		return
	}
	minOverall, set, err := queryInt(r, "min_overall")
	if err != nil {
		respondError(w, http.StatusBadRequest, "min_overall must be an integer")
		return
	}
	if set {
		f.MinOverall = &minOverall
	}

	domains, err := s.store.ListDomains(r.Context(), f)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"domains": domainViews(domains)})
}

func (s *Server) getDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "domainID")
	if !ok {
		return
	}
	d, err := s.store.GetDomain(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, DomainView{DomainName: *d, FullDomain: d.FullDomain()})
}
