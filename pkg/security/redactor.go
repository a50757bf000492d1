package security

import (
	"sort"
	"strings"
)

// Redactor masks secret values before log events reach any sink. Secrets come
// from two places: job inputs flagged `secret: true` and every resolved
// provider API key.
type Redactor struct {
	Secrets []string
}

// SecretInput is the subset of a job input the redactor cares about.
type SecretInput struct {
	Name   string
	Secret bool
}

func NewRedactor(inputs []SecretInput, vars map[string]string, apiKeys []string) *Redactor {
	var secretValues []string
	for _, input := range inputs {
		if input.Secret {
			if val, ok := vars[input.Name]; ok && val != "" {
				secretValues = append(secretValues, val)
			}
		}
	}
	for _, key := range apiKeys {
		if key != "" {
			secretValues = append(secretValues, key)
		}
	}
	return &Redactor{
		Secrets: secretValues,
	}
}

func (r *Redactor) Redact(s string) string {
	if r == nil || len(r.Secrets) == 0 {
		return s
	}

	// Sort secrets by length in descending order to handle overlapping secrets properly
	// This ensures longer secrets are replaced before their substrings
	secrets := make([]string, len(r.Secrets))
	copy(secrets, r.Secrets)
	sort.Slice(secrets, func(i, j int) bool {
		return len(secrets[i]) > len(secrets[j])
	})

	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "********")
	}
	return s
}
