// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load` calls `validateStruct` immediately after it unmarshals the merged
// Koanf tree into a `Config` instance.  Any tag mismatch aborts startup,
// so the binary never runs with a malformed bootstrap config.
//
// Notes
// -----
//   • Cross-field checks that tags cannot express live in `crossCheck`.
//   • Oxford commas, two spaces after periods.

package config

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns every tag failure, then the cross-field checks.
func validateStruct(c *Config) error {
	if err := v.Struct(c); err != nil {
		return err
	}
	return crossCheck(c)
}

func crossCheck(c *Config) error {
	s := c.Settings
	if (s.Table != "" || s.AllowTable != "") && s.DSN == "" {
		return errors.New("settings.dsn is required when settings.table or settings.allow_table is set")
	}
	if s.File == "" && s.Dotenv == "" && s.EnvPrefix == "" && s.DSN == "" && s.VaultPath == "" {
		return errors.New("settings: at least one provider must be configured")
	}
	return nil
}
