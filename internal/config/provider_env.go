package config

import (
	"context"
	"os"
	"strings"
)

// EnvVarProvider resolves SSM paths from environment variables named after
// the path: "/dev/croppredict/inference_key" is read from
// DEV_CROPPREDICT_INFERENCE_KEY. The CLI uses it so a non-local APP_ENV does
// not need AWS credentials.
type EnvVarProvider struct {
	lookup func(string) (string, bool)
}

func NewEnvVarProvider() *EnvVarProvider {
	return &EnvVarProvider{lookup: os.LookupEnv}
}

// ParamEnvName returns the variable EnvVarProvider reads for an SSM path.
func ParamEnvName(path string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, strings.Trim(path, "/"))
}

func (p *EnvVarProvider) GetParametersBatch(_ context.Context, paths []string) (map[string]string, error) {
	result := make(map[string]string, len(paths))
	for _, path := range paths {
		if val, ok := p.lookup(ParamEnvName(path)); ok {
			result[path] = val
		}
	}
	return result, nil
}
