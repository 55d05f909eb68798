package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "valid", username: "jane_doe", wantErr: false},
		{name: "too short", username: "ab", wantErr: true},
		{name: "too long", username: "abcdefghijklmnopqrstu", wantErr: true},
		{name: "invalid characters", username: "jane.doe", wantErr: true},
		{name: "leading underscore", username: "_jane", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		wantErr  bool
	}{
		{password: "Abc123!@", wantErr: false},
		{password: "Ab1!", wantErr: true},
		{password: "abc123!@", wantErr: true},
		{password: "ABC123!@", wantErr: true},
		{password: "Abcdefg!", wantErr: true},
		{password: "Abc12345", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jane", NormalizeUsername("  Jane "))
	assert.Equal(t, "a@b.com", NormalizeEmail(" A@B.com"))
}
