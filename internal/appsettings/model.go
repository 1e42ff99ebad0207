// internal/appsettings/model.go
//
// Typed model for the `AppSettings` section.
//
// Context
// -------
// One shape covers every variant the service has shipped with: flat SMTP
// fields at the top level and an optional nested `Host` block carrying the
// values injected at startup by the hosting layer.
//
// Two tag families sit side by side:
//
//   - `settings:"…"`  – binder names and the `required` presence check.
//   - `validate:"…"`  – declarative rules run by go-playground/validator.
//
// Notes
// -----
//   - `Host.AppName` is required only when the `Host` block is present;
//     the binder enforces that, so the validator tag is omitempty.
package appsettings

import "strconv"

// SectionName is the top-level key prefix.
const SectionName = "AppSettings"

// AppSettings is the resolved application section.
type AppSettings struct {
	SomeKey  string   `settings:"SomeKey,required" validate:"required,min=1,max=100"`
	SmtpIp   string   `settings:"SmtpIp,required" validate:"required,dottedquad"`
	SmtpPort int      `settings:"SmtpPort" validate:"min=1,max=65535"`
	Host     HostInfo `settings:"Host"`
}

// HostInfo describes the running application.
type HostInfo struct {
	AppName        string `settings:"AppName,required" validate:"omitempty,max=64"`
	AppVersion     string `settings:"AppVersion" validate:"omitempty,max=32"`
	AppDescription string `settings:"AppDescription" validate:"omitempty,max=256"`
}

// ConnectionString renders the SMTP endpoint as ip:port.
func (s AppSettings) ConnectionString() string {
	return s.SmtpIp + ":" + strconv.Itoa(s.SmtpPort)
}
