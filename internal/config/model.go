// internal/config/model.go
//
// Typed bootstrap configuration for the forecast service.
//
// Context
// -------
// These structs describe how the service itself starts: where it listens,
// which lifetime policy the settings resolver uses, and which providers feed
// it.  They are built by `internal/config/loader.go` from three overlay
// layers:
//
//   • optional `conf/.env`                        – dotenv values,
//   • `conf/global.yaml`                          – primary static file,
//   • `FORECAST_`-prefixed environment overrides  – highest precedence.
//
// The application settings proper (`AppSettings`) are not here.  They are
// resolved, post-processed, and validated by `internal/resolver`.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

import (
	"path/filepath"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"  validate:"gte=0"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"gte=0"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"  validate:"gte=0"`

	// AdminAddr serves the operator endpoints (settings reload).  Empty
	// disables them; SIGHUP still reloads.
	AdminAddr string `koanf:"admin_addr" validate:"omitempty,hostname_port"`
}

//
// Settings section
//

// Settings selects the resolver policy and the provider stack, in merge
// order: host defaults, file, dotenv, SQL table, Vault secret, environment.
type Settings struct {
	Policy       string `koanf:"policy"        validate:"oneof=singleton snapshot"`
	File         string `koanf:"file"`
	FileOptional bool   `koanf:"file_optional"`
	Dotenv       string `koanf:"dotenv"`
	EnvPrefix    string `koanf:"env_prefix"`

	// SQL-backed overrides and allow list.  Both need DSN.
	DSN        string `koanf:"dsn"`
	Table      string `koanf:"table"`
	AllowTable string `koanf:"allow_table"`

	// Static allow list, used when AllowTable is empty.
	AllowedIPs []string `koanf:"allowed_ips" validate:"dive,ipv4"`

	// Vault KV-v2 secret merged just before the environment.
	VaultPath string        `koanf:"vault_path"`
	VaultTTL  time.Duration `koanf:"vault_ttl" validate:"gte=0"`
}

//
// Log section
//

// Log controls the zap logger.
type Log struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.  The loader discovers `Root` (repo root or
// FORECAST_ROOT override) so later code can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Settings Settings `koanf:"settings"`
	Log      Log      `koanf:"log"`
	Paths    Paths    `koanf:"-"`
}

// Abs resolves p against the runtime root unless it is already absolute or
// empty.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}
