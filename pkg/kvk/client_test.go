package kvk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadwerk/leadgen-cli/internal/apicache"
)

const profileBody = `{
	"kvkNummer": "12345678",
	"naam": "Jansen Bouw B.V.",
	"formeleRegistratiedatum": "20080704",
	"totaalWerkzamePersonen": 120,
	"spiIds": [
		{"spiCode": "4120", "spiOmschrijving": "Algemene burgerlijke en utiliteitsbouw"},
		{"spiCode": "7112", "spiOmschrijving": "Ingenieurs"}
	],
	"vestigingen": [{}, {}, {}]
}`

func TestFindRegistryNumber(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		assert.Equal(t, "Jansen Bouw", r.URL.Query().Get("naam"))
		w.Write([]byte(`{"resultaten": [{"kvkNummer": "12345678"}, {"kvkNummer": "87654321"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("secret", WithBaseURL(srv.URL))
	number, err := c.FindRegistryNumber(context.Background(), "Jansen Bouw")
	require.NoError(t, err)
	assert.Equal(t, "12345678", number)
	assert.Equal(t, "/api/v2/zoeken", gotPath)
	assert.Equal(t, "secret", gotKey)
}

func TestFindRegistryNumberNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"resultaten": []}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	number, err := c.FindRegistryNumber(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Empty(t, number)
}

func TestCompanyProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/basisprofielen/12345678", r.URL.Path)
		w.Write([]byte(profileBody)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	profile, err := c.CompanyProfile(context.Background(), "12345678")
	require.NoError(t, err)

	assert.Equal(t, "Jansen Bouw B.V.", profile.Name)
	require.NotNil(t, profile.EmployeeCount)
	assert.Equal(t, 120, *profile.EmployeeCount)
	require.NotNil(t, profile.EntityCount)
	assert.Equal(t, 3, *profile.EntityCount)
	assert.Equal(t, "20080704", profile.RegistrationDate)
	require.Len(t, profile.SBICodes, 2)
	assert.Equal(t, "4120", profile.SBICodes[0].Code)
	assert.JSONEq(t, profileBody, string(profile.Raw))
}

func TestRetriesServerErrors(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"resultaten": [{"kvkNummer": "11112222"}]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL), WithHTTPClient(&http.Client{Timeout: time.Second}))
	number, err := c.FindRegistryNumber(context.Background(), "Flaky")
	require.NoError(t, err)
	assert.Equal(t, "11112222", number)
	assert.Equal(t, 3, attempts)
}

func TestClientErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient("k", WithBaseURL(srv.URL))
	_, err := c.CompanyProfile(context.Background(), "12345678")
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestCacheAvoidsSecondRequest(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		requests++
		w.Write([]byte(profileBody)) //nolint:errcheck
	}))
	defer srv.Close()

	cache, err := apicache.Open(filepath.Join(t.TempDir(), "cache.db"), time.Hour)
	require.NoError(t, err)
	defer cache.Close() //nolint:errcheck

	c := NewClient("k", WithBaseURL(srv.URL), WithCache(cache))
	for range 2 {
		profile, err := c.CompanyProfile(context.Background(), "12345678")
		require.NoError(t, err)
		assert.Equal(t, "Jansen Bouw B.V.", profile.Name)
	}
	assert.Equal(t, 1, requests)
}
