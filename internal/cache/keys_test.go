package cache

import (
	"testing"

	"franklin/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "ratelimit",
			objectType:  "client",
			identifier:  "203.0.113.7",
			expectedKey: "franklin:ratelimit:client:203.0.113.7",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "ratelimit",
			objectType:  "client",
			identifier:  "203.0.113.7",
			paramsKey:   []string{},
			expectedKey: "franklin:ratelimit:client:203.0.113.7",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "ratelimit",
			objectType:  "client",
			identifier:  "::1",
			paramsKey:   []string{"generate", "v1"},
			expectedKey: "franklin:ratelimit:client:::1:generate_v1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedKey, GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...))
		})
	}
}

func TestNewRedisClient_EmptyAddress(t *testing.T) {
	_, err := NewRedisClient(config.RedisConfig{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "address is empty")
}
