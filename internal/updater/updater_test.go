package updater

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withServer(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	orig := releaseEndpoint
	releaseEndpoint = srv.URL
	t.Cleanup(func() { releaseEndpoint = orig })
}

func TestNormalizeVersion_StripsV(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"v1.2.3", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"", ""},
		{"vv1.0.0", "v1.0.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeVersion(tt.input), "normalizeVersion(%q)", tt.input)
	}
}

func TestIsNewer(t *testing.T) {
	tests := []struct {
		name    string
		current string
		latest  string
		want    bool
	}{
		{"newer patch", "0.2.0", "0.2.1", true},
		{"newer minor", "0.2.0", "0.3.0", true},
		{"same version", "0.2.0", "0.2.0", false},
		{"older version", "0.3.0", "0.2.0", false},
		{"empty latest", "0.2.0", "", false},
		{"dev current", "dev", "0.2.0", false},
		{"two part latest", "0.2.0", "0.3", true},
		{"minor jump", "0.9.0", "0.10.0", true},
		{"prerelease suffix", "1.0.0", "1.0.1-rc1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNewer(tt.current, tt.latest))
		})
	}
}

func TestCheck_UpdateAvailable(t *testing.T) {
	var agent string
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		agent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"tag_name":"v0.2.0","html_url":"https://example.com/r"}`))
	})

	res := Check(context.Background(), "v0.1.0")
	assert.Equal(t, "llmprep/v0.1.0", agent)
	assert.True(t, res.UpdateAvailable)
	assert.Equal(t, "0.2.0", res.LatestVersion)
	assert.Equal(t, "https://example.com/r", res.ReleaseURL)
}

func TestCheck_ServerErrorIsSilent(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res := Check(context.Background(), "0.1.0")
	assert.False(t, res.UpdateAvailable)
	assert.Empty(t, res.LatestVersion)
	assert.Equal(t, "0.1.0", res.CurrentVersion)
}

func TestCheck_MalformedBody(t *testing.T) {
	withServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	assert.False(t, Check(context.Background(), "0.1.0").UpdateAvailable, "malformed response must not report an update")
}
