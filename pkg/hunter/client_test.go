package hunter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainSearch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantFirst string
		wantErr   string
	}{
		{
			name:      "first email",
			status:    http.StatusOK,
			body:      `{"data":{"domain":"acme.example","emails":[{"value":"owner@acme.example","confidence":94},{"value":"info@acme.example"}]}}`,
			wantFirst: "owner@acme.example",
		},
		{
			name:   "no emails",
			status: http.StatusOK,
			body:   `{"data":{"domain":"acme.example","emails":[]}}`,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"errors":[{"details":"No user found"}]}`,
			wantErr: "401",
		},
		{
			name:    "bad json",
			status:  http.StatusOK,
			body:    `{`,
			wantErr: "hunter: unmarshal response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/domain-search", r.URL.Path)
				assert.Equal(t, "acme.example", r.URL.Query().Get("domain"))
				assert.Equal(t, "h-key", r.URL.Query().Get("api_key"))
				assert.Equal(t, "1", r.URL.Query().Get("limit"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient("h-key", WithBaseURL(srv.URL), WithRateLimit(0))
			resp, err := c.DomainSearch(context.Background(), "acme.example", 1)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFirst, resp.First())
		})
	}
}

func TestFirst_NilResponse(t *testing.T) {
	var r *DomainSearchResponse
	assert.Empty(t, r.First())
}
