// Package kvk provides a client for the KvK Handelsregister API, the
// Dutch business registry used as the authoritative enrichment source.
package kvk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/leadwerk/leadgen-cli/internal/apicache"
)

// Client defines the registry operations used by the external pass.
type Client interface {
	// FindRegistryNumber searches by company name and returns the
	// best-match registry number, or "" when nothing matches.
	FindRegistryNumber(ctx context.Context, companyName string) (string, error)
	// CompanyProfile fetches the full registry profile for a number.
	CompanyProfile(ctx context.Context, registryNumber string) (*CompanyProfile, error)
}

// SBICode is one industry classification entry on a profile.
type SBICode struct {
	Code        string
	Description string
}

// CompanyProfile is the parsed registry profile.
type CompanyProfile struct {
	RegistryNumber   string
	Name             string
	SBICodes         []SBICode
	EmployeeCount    *int
	EntityCount      *int
	RegistrationDate string
	Raw              json.RawMessage
}

// Option configures the KvK client.
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

// NewClient creates a new KvK client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: "https://api.kvk.nl",
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

// get performs an authenticated GET with retry on 5xx, connection errors,
// and timeouts. Client errors (4xx) never retry.
func (c *httpClient) get(ctx context.Context, reqURL string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "kvk: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "kvk: create request")
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")

	const maxAttempts = 3
	backoff := 1 * time.Second

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.http.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
		} else {
			body, readErr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if readErr != nil {
				return nil, eris.Wrap(readErr, "kvk: read response body")
			}

			if resp.StatusCode < 500 {
				if resp.StatusCode != http.StatusOK {
					return nil, eris.Errorf("kvk: status %d: %s", resp.StatusCode, string(body))
				}
				return body, nil
			}
			lastErr = eris.Errorf("kvk: status %d: %s", resp.StatusCode, string(body))
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

func (c *httpClient) getCached(ctx context.Context, cacheKey, reqURL string) ([]byte, error) {
	if c.cache != nil {
		body, err := c.cache.Get(ctx, "kvk", cacheKey)
		if err != nil {
			zap.L().Warn("kvk cache read failed", zap.Error(err))
		} else if body != nil {
			return body, nil
		}
	}

	body, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, "kvk", cacheKey, body); err != nil {
			zap.L().Warn("kvk cache write failed", zap.Error(err))
		}
	}
	return body, nil
}

type searchResponse struct {
	Resultaten []struct {
		KvkNummer string `json:"kvkNummer"`
	} `json:"resultaten"`
}

func (c *httpClient) FindRegistryNumber(ctx context.Context, companyName string) (string, error) {
	reqURL := fmt.Sprintf("%s/api/v2/zoeken?naam=%s&pagina=1&resultatenPerPagina=10",
		c.baseURL, url.QueryEscape(companyName))

	body, err := c.getCached(ctx, "search:"+companyName, reqURL)
	if err != nil {
		return "", eris.Wrapf(err, "kvk: search %q", companyName)
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", eris.Wrap(err, "kvk: unmarshal search response")
	}
	if len(result.Resultaten) == 0 {
		return "", nil
	}
	return result.Resultaten[0].KvkNummer, nil
}

type profileResponse struct {
	Naam                    string `json:"naam"`
	FormeleRegistratiedatum string `json:"formeleRegistratiedatum"`
	TotaalWerkzamePersonen  *int   `json:"totaalWerkzamePersonen"`
	SpiIds                  []struct {
		SpiCode         string `json:"spiCode"`
		SpiOmschrijving string `json:"spiOmschrijving"`
	} `json:"spiIds"`
	Vestigingen []json.RawMessage `json:"vestigingen"`
}

func (c *httpClient) CompanyProfile(ctx context.Context, registryNumber string) (*CompanyProfile, error) {
	reqURL := fmt.Sprintf("%s/api/v1/basisprofielen/%s", c.baseURL, url.PathEscape(registryNumber))

	body, err := c.getCached(ctx, "profile:"+registryNumber, reqURL)
	if err != nil {
		return nil, eris.Wrapf(err, "kvk: profile %s", registryNumber)
	}

	var result profileResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "kvk: unmarshal profile response")
	}

	profile := &CompanyProfile{
		RegistryNumber:   registryNumber,
		Name:             result.Naam,
		EmployeeCount:    result.TotaalWerkzamePersonen,
		RegistrationDate: result.FormeleRegistratiedatum,
		Raw:              json.RawMessage(body),
	}
	for _, sbi := range result.SpiIds {
		profile.SBICodes = append(profile.SBICodes, SBICode{
			Code:        sbi.SpiCode,
			Description: sbi.SpiOmschrijving,
		})
	}
	if n := len(result.Vestigingen); n > 0 {
		profile.EntityCount = &n
	}
	return profile, nil
}
