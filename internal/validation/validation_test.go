package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Str0ng-Passw0rd!", ""},
		{"minimum length", "Abcdefgh1234!", ""},
		{"too short", "Sh0rt!pass", "at least 12 characters"},
		{"too long", "Aa1!" + strings.Repeat("x", 128), "not exceed 128"},
		{"no uppercase", "lowercase-only-123!", "uppercase letter"},
		{"no lowercase", "UPPERCASE-ONLY-123!", "lowercase letter"},
		{"no digit", "No-Digits-Here!", "digit"},
		{"no special", "NoSpecialChars123", "special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{"valid", "alice", ""},
		{"with separators", "alice_b-99", ""},
		{"too short", "ab", "at least 3 characters"},
		{"too long", strings.Repeat("a", 31), "not exceed 30"},
		{"invalid characters", "alice smith", "letters, numbers"},
		{"leading underscore", "_alice", "start or end"},
		{"trailing hyphen", "alice-", "start or end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"with plus tag", "alice+chirp@example.co.uk", false},
		{"missing at", "alice.example.com", true},
		{"missing domain", "alice@", true},
		{"missing tld", "alice@example", true},
		{"too long", strings.Repeat("a", 250) + "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
