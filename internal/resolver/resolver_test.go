package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	r := New(map[string]string{
		"gpt-3.5-turbo": "llama-2-13b-chat",
		"gpt-4":         "llama-2-70b-chat",
	}, "llama-2-70b-chat")

	testCases := []struct {
		name      string
		requested string
		want      string
	}{
		{"mapped model", "gpt-3.5-turbo", "llama-2-13b-chat"},
		{"another mapped model", "gpt-4", "llama-2-70b-chat"},
		{"unknown model falls back to default", "claude-3-opus", "llama-2-70b-chat"},
		{"empty identifier falls back to default", "", "llama-2-70b-chat"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, r.Resolve(tc.requested))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	r := New(map[string]string{"gpt-4": "llama-2-70b-chat"}, "fallback")

	assert.Equal(t, r.Resolve("gpt-4"), r.Resolve("gpt-4"))
	assert.Equal(t, r.Resolve("missing"), r.Resolve("missing"))
}

func TestResolveWithNilMappings(t *testing.T) {
	r := New(nil, "fallback")
	assert.Equal(t, "fallback", r.Resolve("anything"))
}
