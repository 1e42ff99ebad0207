// internal/vault/vault.go
//
// Vault client wrapper for forecast.
//
// Context
// -------
//   - Provides a concurrency-safe client around the HashiCorp Vault Go SDK.
//   - Adds background token renewal and a per-secret TTL cache.
//   - Satisfies source.SecretReader, so one KV-v2 secret can act as a
//     settings provider.  Under the snapshot policy the cache keeps that
//     from turning into one Vault round-trip per request.
//   - Concurrent misses for the same secret collapse into one read
//     (singleflight).
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(ctx, log.Infof)                 // during boot.
//  2. kv,  err := cli.ReadSecret(ctx, "kv/forecast", ttl)   // per merge.
//
// Build tags: none.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
	"golang.org/x/sync/singleflight"
)

//
// SECTION 1.  Public façade
//

// Client is safe for concurrent use.  Create once at startup.  Zero value is
// invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)
	read  func(ctx context.Context, mount, rel string) (map[string]any, error)
	sfg   singleflight.Group

	cacheMu sync.RWMutex
	cache   map[string]cached // secret path → values + expiry.
}

type cached struct {
	val map[string]string
	exp time.Time
}

// New constructs a Vault client and starts a background token-renewal loop.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – initial token (falls back to ~/.vault-token).
func New(ctx context.Context, logFn func(string, ...any)) (*Client, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}

	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	c := newClient(logFn, func(ctx context.Context, mount, rel string) (map[string]any, error) {
		sec, err := apiCli.KVv2(mount).Get(ctx, rel)
		if err != nil {
			return nil, err
		}
		return sec.Data, nil
	})
	c.api = apiCli

	go c.renewLoop(ctx)

	return c, nil
}

func newClient(logFn func(string, ...any), read func(context.Context, string, string) (map[string]any, error)) *Client {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}
	return &Client{
		logFn: logFn,
		read:  read,
		cache: make(map[string]cached),
	}
}

// ReadSecret fetches every key of a KV-v2 secret as strings.  If ttl > 0 the
// result is cached for that duration.  Non-string values are rendered with
// fmt.
func (c *Client) ReadSecret(ctx context.Context, secretPath string, ttl time.Duration) (map[string]string, error) {
	if secretPath == "" {
		return nil, errors.New("secret path must be non-empty")
	}

	if ttl > 0 {
		c.cacheMu.RLock()
		if cv, ok := c.cache[secretPath]; ok && time.Now().Before(cv.exp) {
			c.cacheMu.RUnlock()
			return copyMap(cv.val), nil
		}
		c.cacheMu.RUnlock()
	}

	v, err, _ := c.sfg.Do(secretPath, func() (any, error) {
		mount, rel := splitMount(secretPath)
		data, err := c.read(ctx, mount, rel)
		if err != nil {
			return nil, fmt.Errorf("vault get %s: %w", secretPath, err)
		}

		out := make(map[string]string, len(data))
		for k, raw := range data {
			if s, ok := raw.(string); ok {
				out[k] = s
				continue
			}
			out[k] = fmt.Sprint(raw)
		}

		if ttl > 0 {
			c.cacheMu.Lock()
			c.cache[secretPath] = cached{val: out, exp: time.Now().Add(ttl)}
			c.cacheMu.Unlock()
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return copyMap(v.(map[string]string)), nil
}

//
// SECTION 2.  Background token renewal
//

func (c *Client) renewLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Check the current token.
		sec, err := c.api.Auth().Token().RenewSelf(0)
		if err != nil {
			c.logFn("vault: token renew self failed: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		if sec == nil || sec.Auth == nil || !sec.Auth.Renewable {
			c.logFn("vault: token is not renewable, sleeping 1h")
			backoff(ctx, time.Hour)
			continue
		}

		watcher, err := c.api.NewLifetimeWatcher(&vault.LifetimeWatcherInput{
			Secret: sec,
		})
		if err != nil {
			c.logFn("vault: watcher init error: %v", err)
			backoff(ctx, 30*time.Second)
			continue
		}

		go watcher.Start()
		c.watch(ctx, watcher)
	}
}

// watch blocks until the watcher stops or ctx ends.
func (c *Client) watch(ctx context.Context, w *vault.LifetimeWatcher) {
	defer w.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.DoneCh():
			if err != nil {
				c.logFn("vault: token renewal stopped: %v", err)
			}
			backoff(ctx, 15*time.Second)
			return
		case ev := <-w.RenewCh():
			if ev != nil && ev.Secret != nil && ev.Secret.Auth != nil {
				c.logFn("vault: token renewed, ttl=%ds", ev.Secret.Auth.LeaseDuration)
			}
		}
	}
}

//
// SECTION 3.  Helpers
//

func splitMount(p string) (mount, rel string) {
	if p == "" {
		return "", ""
	}
	parts := strings.SplitN(p, "/", 2)
	mount = parts[0]
	if len(parts) == 2 {
		rel = parts[1]
	}
	return
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func backoff(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
