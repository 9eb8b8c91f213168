package config

import "context"

// SecretProvider resolves secret references to plaintext values. Keys that
// cannot be found are omitted from the result rather than reported as errors.
type SecretProvider interface {
	GetParametersBatch(ctx context.Context, keys []string) (map[string]string, error)
}
