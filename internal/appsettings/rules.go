package appsettings

import (
	"strings"

	"github.com/yanizio/forecast/internal/allowlist"
	"github.com/yanizio/forecast/internal/postprocess"
	"github.com/yanizio/forecast/internal/validation"
)

const (
	// Suffix is appended to SomeKey by the post-process pipeline.
	Suffix = "Ahaha"

	localhost    = "127.0.0.1"
	reservedPort = 25
	adminMarker  = "Admin"
)

// AppendSuffix appends s to SomeKey.  Applying it twice appends twice.
func AppendSuffix(s string) postprocess.Step[AppSettings] {
	return postprocess.Step[AppSettings]{
		Name:  "append-suffix",
		Field: "SomeKey",
		Apply: func(a AppSettings) AppSettings {
			a.SomeKey += s
			return a
		},
	}
}

// Pipeline is the production post-process pipeline.
func Pipeline() postprocess.Pipeline[AppSettings] {
	return postprocess.New(AppendSuffix(Suffix))
}

// LocalhostPort: a localhost relay must listen on the reserved SMTP port.
func LocalhostPort() validation.Rule[AppSettings] {
	return validation.Rule[AppSettings]{
		Name: "localhost-port",
		Check: func(a AppSettings) []validation.FieldError {
			if a.SmtpIp == localhost && a.SmtpPort != reservedPort {
				return []validation.FieldError{{
					Field:   "SmtpPort",
					Message: "invalid port number for localhost SMTP server",
				}}
			}
			return nil
		},
	}
}

// AdminOnReservedPort: the reserved port is only for admin keys.
func AdminOnReservedPort() validation.Rule[AppSettings] {
	return validation.Rule[AppSettings]{
		Name: "admin-on-reserved-port",
		Check: func(a AppSettings) []validation.FieldError {
			if a.SmtpPort == reservedPort && !strings.Contains(a.SomeKey, adminMarker) {
				return []validation.FieldError{{
					Field:   "SomeKey",
					Message: "must contain the word 'Admin' when SmtpPort is 25",
				}}
			}
			return nil
		},
	}
}

// Chain is the production validation chain.  checker decides which SMTP
// relay addresses are acceptable.
func Chain(checker allowlist.Checker) validation.Chain[AppSettings] {
	return validation.NewChain[AppSettings]().
		WithCrossField(LocalhostPort(), AdminOnReservedPort()).
		WithExternal(validation.AllowListed("SmtpIp",
			func(a AppSettings) string { return a.SmtpIp }, checker))
}
