package source

import (
	"context"
	"time"
)

// SecretReader fetches every key of one secret.  *vault.Client satisfies it.
type SecretReader interface {
	ReadSecret(ctx context.Context, path string, ttl time.Duration) (map[string]string, error)
}

type secrets struct {
	reader SecretReader
	path   string
	ttl    time.Duration
}

// Secrets returns a provider over one secret.  Values are cached by the
// reader for ttl, so snapshot resolution does not hit the secret store on
// every access.
func Secrets(r SecretReader, path string, ttl time.Duration) Provider {
	return &secrets{reader: r, path: path, ttl: ttl}
}

func (s *secrets) Name() string { return "secrets:" + s.path }

func (s *secrets) ReadAll(ctx context.Context) (map[string]string, error) {
	kv, err := s.reader.ReadSecret(ctx, s.path, s.ttl)
	if err != nil {
		return nil, Unavailable(s.Name(), err)
	}
	return kv, nil
}
