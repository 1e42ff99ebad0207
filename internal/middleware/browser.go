// internal/middleware/browser.go
//
// User-Agent parsing for the request scope.  Only this file touches the
// uasurfer API; the rest of the codebase sees Browser.
package middleware

import (
	"fmt"
	"strconv"
	"strings"

	surfer "github.com/avct/uasurfer"
)

// Browser is the subset of the UA the request scope logs.
//
// Device is one of "Desktop", "Mobile", "Tablet", or "Other".
type Browser struct {
	Name    string
	Version string
	Device  string
	IsBot   bool
}

// ParseBrowser converts a raw User-Agent header.  uasurfer enum names carry a
// "Browser" prefix ("BrowserChrome"); it is dropped, so an empty header
// yields Name "Unknown".
func ParseBrowser(raw string) Browser {
	ua := surfer.Parse(raw)

	b := Browser{
		Name:    strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		Version: version(ua.Browser.Version),
		IsBot:   ua.IsBot(),
	}
	switch ua.DeviceType {
	case surfer.DeviceComputer:
		b.Device = "Desktop"
	case surfer.DeviceTablet:
		b.Device = "Tablet"
	case surfer.DevicePhone, surfer.DeviceWearable:
		b.Device = "Mobile"
	default:
		b.Device = "Other"
	}
	return b
}

// version renders 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func version(v surfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	}
	return strconv.Itoa(int(v.Major))
}
