// Package apollo provides a client for the Apollo.io firmographic API.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadwerk/leadgen-cli/internal/apicache"
	"github.com/leadwerk/leadgen-cli/internal/ranges"
)

// Client defines the Apollo operations used by the external pass.
type Client interface {
	// Enrich looks up firmographic data by name and/or domain. Returns
	// nil without error when Apollo has no matching organization.
	Enrich(ctx context.Context, name, domain string) (*Organization, error)
	// FindDomainByName searches for an organization's primary domain,
	// guarding against Apollo's habit of returning unrelated matches.
	FindDomainByName(ctx context.Context, name string) (string, error)
}

// Organization is the parsed firmographic record.
type Organization struct {
	ID            string
	Name          string
	Domain        string
	EmployeeCount *int
	EmployeeRange *string
	Revenue       *float64
	RevenueRange  *string
	Industry      string
	Keywords      []string
	FoundedYear   *int
	LinkedInURL   string
	WebsiteURL    string
	City          string
	Country       string
	Raw           json.RawMessage
}

// Option configures the Apollo client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithCache enables response caching.
func WithCache(cache *apicache.Cache) Option {
	return func(c *httpClient) {
		c.cache = cache
	}
}

// WithRateLimit caps outbound request rate.
func WithRateLimit(perSec float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cache   *apicache.Cache
}

// NewClient creates a new Apollo client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.apollo.io/api/v1",
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// post performs an authenticated POST with retry on 5xx, connection
// errors, and timeouts. 4xx responses never retry.
func (c *httpClient) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "apollo: rate limit wait")
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "apollo: encode payload")
	}

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			fmt.Sprintf("%s/%s", c.baseURL, endpoint), bytes.NewReader(encoded))
		if err != nil {
			return nil, eris.Wrap(err, "apollo: create request")
		}
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, eris.Wrap(readErr, "apollo: read response body")
			}

			if resp.StatusCode < 500 {
				if resp.StatusCode != http.StatusOK {
					return nil, eris.Errorf("apollo: status %d: %s", resp.StatusCode, string(body))
				}
				return body, nil
			}
			lastErr = eris.Errorf("apollo: status %d: %s", resp.StatusCode, string(body))
		}

		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

func (c *httpClient) postCached(ctx context.Context, cacheKey, endpoint string, payload any) ([]byte, error) {
	if c.cache != nil {
		body, err := c.cache.Get(ctx, "apollo", cacheKey)
		if err != nil {
			zap.L().Warn("apollo cache read failed", zap.Error(err))
		} else if body != nil {
			return body, nil
		}
	}

	body, err := c.post(ctx, endpoint, payload)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, "apollo", cacheKey, body); err != nil {
			zap.L().Warn("apollo cache write failed", zap.Error(err))
		}
	}
	return body, nil
}

type organizationJSON struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	PrimaryDomain         string   `json:"primary_domain"`
	EstimatedNumEmployees *int     `json:"estimated_num_employees"`
	AnnualRevenue         *float64 `json:"annual_revenue"`
	Industry              string   `json:"industry"`
	Keywords              []string `json:"keywords"`
	FoundedYear           *int     `json:"founded_year"`
	LinkedInURL           string   `json:"linkedin_url"`
	WebsiteURL            string   `json:"website_url"`
	City                  string   `json:"city"`
	Country               string   `json:"country"`
}

func (c *httpClient) Enrich(ctx context.Context, name, domain string) (*Organization, error) {
	if name == "" && domain == "" {
		return nil, eris.New("apollo: enrich needs a name or domain")
	}

	payload := map[string]any{}
	if domain != "" {
		payload["domain"] = domain
	}
	if name != "" {
		payload["organization_name"] = name
	}

	body, err := c.postCached(ctx, "enrich:"+name+":"+domain, "organizations/enrich", payload)
	if err != nil {
		return nil, eris.Wrapf(err, "apollo: enrich %q", name)
	}

	var result struct {
		Organization *organizationJSON `json:"organization"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "apollo: unmarshal enrich response")
	}
	if result.Organization == nil {
		return nil, nil
	}

	raw, _ := json.Marshal(result.Organization)
	return fromJSON(result.Organization, raw), nil
}

func fromJSON(org *organizationJSON, raw []byte) *Organization {
	out := &Organization{
		ID:            org.ID,
		Name:          org.Name,
		Domain:        org.PrimaryDomain,
		EmployeeCount: org.EstimatedNumEmployees,
		Revenue:       org.AnnualRevenue,
		Industry:      org.Industry,
		Keywords:      org.Keywords,
		FoundedYear:   org.FoundedYear,
		LinkedInURL:   org.LinkedInURL,
		WebsiteURL:    org.WebsiteURL,
		City:          org.City,
		Country:       org.Country,
		Raw:           json.RawMessage(raw),
	}
	if out.EmployeeCount != nil {
		if r := ranges.EmployeeRangeFromCount(*out.EmployeeCount); r != "" {
			out.EmployeeRange = &r
		}
	}
	if out.Revenue != nil {
		if r := ranges.RevenueRangeFromAmount(int64(*out.Revenue)); r != "" {
			out.RevenueRange = &r
		}
	}
	return out
}

func (c *httpClient) FindDomainByName(ctx context.Context, name string) (string, error) {
	body, err := c.postCached(ctx, "search:"+name, "mixed_companies/search", map[string]any{
		"q_organization_name": name,
		"per_page":            5,
	})
	if err != nil {
		return "", eris.Wrapf(err, "apollo: search %q", name)
	}

	var result struct {
		Organizations []struct {
			Name          string `json:"name"`
			PrimaryDomain string `json:"primary_domain"`
		} `json:"organizations"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "apollo: unmarshal search response")
	}

	searchName := comparableName(name)
	for _, org := range result.Organizations {
		if org.PrimaryDomain == "" {
			continue
		}
		orgName := comparableName(org.Name)
		if strings.Contains(orgName, searchName) ||
			strings.Contains(searchName, orgName) ||
			nameSimilarity(searchName, orgName) > 0.5 {
			return org.PrimaryDomain, nil
		}
	}
	return "", nil
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]`)

// comparableName strips suffixes that make unrelated companies look alike.
func comparableName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, suffix := range []string{
		"b.v.", "bv", "n.v.", "nv", "b.v", "n.v",
		"holding", "group", "groep", "nederland",
		"international", "services", "solutions",
	} {
		name = strings.ReplaceAll(name, suffix, "")
	}
	return strings.TrimSpace(nonAlnumRe.ReplaceAllString(name, ""))
}

// nameSimilarity is word-overlap similarity between two names.
func nameSimilarity(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		setA[w] = true
	}
	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}
	overlap := 0
	for w := range setB {
		if setA[w] {
			overlap++
		}
	}
	smaller := len(setA)
	if len(setB) < smaller {
		smaller = len(setB)
	}
	return float64(overlap) / float64(smaller)
}
