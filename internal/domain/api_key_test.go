package domain

import (
	"strings"
	"testing"
)

func TestGenerateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		wantErr bool
	}{
		{
			name: "generate test key",
			env:  EnvTest,
		},
		{
			name: "generate live key",
			env:  EnvLive,
		},
		{
			name:    "invalid environment",
			env:     "prod",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := GenerateAPIKey(tt.env)

			if tt.wantErr {
				if err == nil {
					t.Errorf("GenerateAPIKey() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("GenerateAPIKey() unexpected error: %v", err)
			}

			expectedPrefix := "fm_" + tt.env + "_"
			if !strings.HasPrefix(key, expectedPrefix) {
				t.Errorf("key = %s, want prefix %s", key, expectedPrefix)
			}

			if len(key) != len(expectedPrefix)+apiKeyLength {
				t.Errorf("key length = %d, want %d", len(key), len(expectedPrefix)+apiKeyLength)
			}

			if !IsValidFormat(key) {
				t.Errorf("generated key has invalid format: %s", key)
			}
		})
	}
}

func TestGenerateAPIKey_Unique(t *testing.T) {
	a, _ := GenerateAPIKey(EnvLive)
	b, _ := GenerateAPIKey(EnvLive)
	if a == b {
		t.Errorf("two generated keys are equal: %s", a)
	}
}

func TestIsValidFormat(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want bool
	}{
		{
			name: "valid test key",
			key:  "fm_test_" + strings.Repeat("A", apiKeyLength),
			want: true,
		},
		{
			name: "valid live key",
			key:  "fm_live_" + strings.Repeat("b", apiKeyLength),
			want: true,
		},
		{
			name: "invalid prefix",
			key:  "xx_test_" + strings.Repeat("A", apiKeyLength),
			want: false,
		},
		{
			name: "invalid environment",
			key:  "fm_prod_" + strings.Repeat("A", apiKeyLength),
			want: false,
		},
		{
			name: "too short",
			key:  "fm_test_ABC",
			want: false,
		},
		{
			name: "invalid characters",
			key:  "fm_test_" + strings.Repeat("!", apiKeyLength),
			want: false,
		},
		{
			name: "missing parts",
			key:  "fm_test",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidFormat(tt.key); got != tt.want {
				t.Errorf("IsValidFormat() = %v, want %v", got, tt.want)
			}
		})
	}
}
