// Package device summarizes a User-Agent header for vote metadata and audit trails.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Info is the parsed view of a User-Agent string.
type Info struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile"`
	Bot     bool   `json:"bot"`
}

// Parse extracts browser, OS and device class from a User-Agent header.
func Parse(userAgent string) Info {
	if strings.TrimSpace(userAgent) == "" {
		return Info{}
	}
	ua := useragent.New(userAgent)
	name, _ := ua.Browser()
	return Info{
		Browser: name,
		OS:      ua.OS(),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// DisplayName renders "Browser on OS" for human-facing views.
func DisplayName(userAgent string) string {
	info := Parse(userAgent)
	if info.Browser == "" && info.OS == "" {
		if strings.TrimSpace(userAgent) == "" {
			return "Unknown Device"
		}
		return "Unknown Browser on Unknown OS"
	}
	browser := info.Browser
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := info.OS
	if os == "" {
		os = "Unknown OS"
	}
	return strings.Join(strings.Fields(browser+" on "+os), " ")
}
