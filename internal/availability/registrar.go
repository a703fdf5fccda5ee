package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ahrav/namesmith/internal/domain"
)

// Registrar names recorded on results.
const (
	WhoAPIRegistrar    = "whoapi"
	WhoisJSONRegistrar = "whoisjsonapi"
)

// Default registrar endpoints.
const (
	DefaultWhoAPIBaseURL    = "https://api.whoapi.com/"
	DefaultWhoisJSONBaseURL = "https://whoisjsonapi.com/v1/"
)

const maxRegistrarBody = 1 << 20

// ErrRegistrarStatus is returned for non-2xx registrar responses.
var ErrRegistrarStatus = errors.New("registrar returned non-success status")

// Registrar performs one lookup against a vendor API.
// The payload is the decoded vendor response, returned even alongside an
// error when the body was readable.
type Registrar interface {
	Name() string
	Lookup(ctx context.Context, fullDomain string) (domain.AvailabilityStatus, map[string]any, error)
}

// WhoAPI queries the WhoAPI "taken" endpoint.
type WhoAPI struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewWhoAPI creates a WhoAPI registrar. An empty baseURL uses the public API.
func NewWhoAPI(client *http.Client, baseURL, apiKey string) *WhoAPI {
	if baseURL == "" {
		baseURL = DefaultWhoAPIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &WhoAPI{baseURL: strings.TrimRight(baseURL, "/") + "/", apiKey: apiKey, client: client}
}

// Name implements Registrar.
func (w *WhoAPI) Name() string { return WhoAPIRegistrar }

// Lookup implements Registrar.
func (w *WhoAPI) Lookup(ctx context.Context, fullDomain string) (domain.AvailabilityStatus, map[string]any, error) {
	q := url.Values{}
	q.Set("domain", fullDomain)
	q.Set("r", "taken")
	q.Set("apikey", w.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return domain.AvailabilityError, nil, fmt.Errorf("failed to create request: %w", err)
	}
	payload, err := doJSON(w.client, req)
	if err != nil {
		return domain.AvailabilityError, payload, err
	}

	if scalarString(payload["status"]) != "0" {
		return domain.AvailabilityError, payload, nil
	}
	switch strings.ToLower(scalarString(payload["taken"])) {
	case "1", "true", "yes", "taken":
		return domain.AvailabilityRegistered, payload, nil
	case "0", "false", "no", "available":
		return domain.AvailabilityAvailable, payload, nil
	default:
		return domain.AvailabilityUnknown, payload, nil
	}
}

// WhoisJSON queries the whoisjsonapi.com status endpoint.
type WhoisJSON struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewWhoisJSON creates a WhoisJSON registrar. An empty baseURL uses the public API.
func NewWhoisJSON(client *http.Client, baseURL, apiKey string) *WhoisJSON {
	if baseURL == "" {
		baseURL = DefaultWhoisJSONBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &WhoisJSON{baseURL: strings.TrimRight(baseURL, "/") + "/", apiKey: apiKey, client: client}
}

// Name implements Registrar.
func (w *WhoisJSON) Name() string { return WhoisJSONRegistrar }

// Lookup implements Registrar.
func (w *WhoisJSON) Lookup(ctx context.Context, fullDomain string) (domain.AvailabilityStatus, map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL+"status/"+url.PathEscape(fullDomain), nil)
	if err != nil {
		return domain.AvailabilityError, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+w.apiKey)

	payload, err := doJSON(w.client, req)
	if err != nil {
		return domain.AvailabilityError, payload, err
	}
	switch strings.ToLower(scalarString(payload["status"])) {
	case "inactive":
		return domain.AvailabilityAvailable, payload, nil
	case "active":
		return domain.AvailabilityRegistered, payload, nil
	default:
		return domain.AvailabilityUnknown, payload, nil
	}
}

func doJSON(client *http.Client, req *http.Request) (map[string]any, error) {
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registrar request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRegistrarBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read registrar response: %w", err)
	}

	var payload map[string]any
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return payload, fmt.Errorf("%w: %d", ErrRegistrarStatus, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode registrar response: %w", decodeErr)
	}
	return payload, nil
}

// scalarString renders a decoded JSON scalar for comparison. Numbers decode
// as float64, so 1.0 renders as "1".
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
