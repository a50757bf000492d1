package security_test

import (
	"testing"

	"github.com/pagesift/pagesift/pkg/security"
	"github.com/stretchr/testify/assert"
)

func TestRedactor_Redact(t *testing.T) {
	tests := []struct {
		name    string
		secrets []string
		input   string
		want    string
	}{
		{
			name:    "exact match",
			secrets: []string{"supersecret"},
			input:   "The password is supersecret",
			want:    "The password is ********",
		},
		{
			name:    "multiple occurrences",
			secrets: []string{"abcdef"},
			input:   "API key: abcdef is being used. Backup key: abcdef should be stored.",
			want:    "API key: ******** is being used. Backup key: ******** should be stored.",
		},
		{
			name:    "substring of another word",
			secrets: []string{"key"},
			input:   "The keyboard has keys for typing. The key is important.",
			want:    "The ********board has ********s for typing. The ******** is important.",
		},
		{
			name:    "multiple secrets",
			secrets: []string{"pass123", "key456"},
			input:   "Password: pass123, API Key: key456",
			want:    "Password: ********, API Key: ********",
		},
		{
			name:    "overlapping secrets replace longest first",
			secrets: []string{"secret", "supersecret"},
			input:   "This contains supersecret and secret values",
			want:    "This contains ******** and ******** values",
		},
		{
			name:    "no secrets returns original string",
			secrets: nil,
			input:   "Original string",
			want:    "Original string",
		},
		{
			name:    "secret not found in input",
			secrets: []string{"notused"},
			input:   "This string doesn't contain the secret",
			want:    "This string doesn't contain the secret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &security.Redactor{Secrets: tt.secrets}
			assert.Equal(t, tt.want, r.Redact(tt.input))
		})
	}
}

func TestRedactor_NilReceiver(t *testing.T) {
	var r *security.Redactor
	assert.Equal(t, "untouched", r.Redact("untouched"))
}

func TestNewRedactor(t *testing.T) {
	tests := []struct {
		name        string
		inputs      []security.SecretInput
		vars        map[string]string
		apiKeys     []string
		wantSecrets []string
	}{
		{
			name: "collect secret input values",
			inputs: []security.SecretInput{
				{Name: "password", Secret: true},
				{Name: "username", Secret: false},
				{Name: "api_key", Secret: true},
			},
			vars: map[string]string{
				"password": "pass123",
				"username": "user1",
				"api_key":  "key456",
			},
			wantSecrets: []string{"pass123", "key456"},
		},
		{
			name: "provider api keys are always secret",
			inputs: []security.SecretInput{
				{Name: "username", Secret: false},
			},
			vars:        map[string]string{"username": "user1"},
			apiKeys:     []string{"sk-abc123"},
			wantSecrets: []string{"sk-abc123"},
		},
		{
			name: "empty values are excluded",
			inputs: []security.SecretInput{
				{Name: "password", Secret: true},
				{Name: "empty_secret", Secret: true},
			},
			vars: map[string]string{
				"password":     "pass123",
				"empty_secret": "",
			},
			apiKeys:     []string{""},
			wantSecrets: []string{"pass123"},
		},
		{
			name: "missing values in context are excluded",
			inputs: []security.SecretInput{
				{Name: "password", Secret: true},
				{Name: "missing_secret", Secret: true},
			},
			vars:        map[string]string{"password": "pass123"},
			wantSecrets: []string{"pass123"},
		},
		{
			name:        "no sources result in no secrets",
			inputs:      []security.SecretInput{},
			vars:        map[string]string{},
			wantSecrets: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := security.NewRedactor(tt.inputs, tt.vars, tt.apiKeys)
			assert.ElementsMatch(t, tt.wantSecrets, r.Secrets)
		})
	}
}
