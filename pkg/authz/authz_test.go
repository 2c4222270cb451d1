package authz

import (
	"testing"

	"autotasking/pkg/config"

	"github.com/stretchr/testify/require"
)

func TestDefaultPolicies(t *testing.T) {
	e, err := NewEnforcer(&config.Config{})
	require.NoError(t, err)

	tests := []struct {
		sub, obj, act string
		allowed       bool
	}{
		{"intern", "/api/daily-tasks", "POST", true},
		{"intern", "/api/reddit-status", "GET", true},
		{"intern", "/api/youtube-videos", "DELETE", true},
		{"intern", "/api/destinations", "GET", true},
		{"intern", "/api/destinations", "POST", false},
		{"intern", "/api/interns", "GET", false},
		{"intern", "/api/admin-summary", "GET", false},
		{"admin", "/api/interns", "POST", true},
		{"admin", "/api/destinations", "DELETE", true},
		{"admin", "/api/admin-summary", "GET", true},
		{"admin", "/api/daily-tasks", "POST", false},
		{"guest", "/api/daily-tasks", "POST", false},
	}
	for _, tt := range tests {
		ok, err := e.Enforce(tt.sub, tt.obj, tt.act)
		require.NoError(t, err)
		require.Equal(t, tt.allowed, ok, "%s %s %s", tt.sub, tt.act, tt.obj)
	}
}
