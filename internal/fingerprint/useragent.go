package fingerprint

import (
	"strings"

	ua "github.com/mileusna/useragent"

	"github.com/seedlift/seedlift/domain"
)

// ParseUserAgent extracts the device fingerprint from a raw User-Agent
// header. An empty header yields an empty fingerprint, never nil fields
// that would later read as a mismatch.
func ParseUserAgent(raw string) *domain.UserAgentInfo {
	if raw == "" {
		return &domain.UserAgentInfo{}
	}

	parsed := ua.Parse(raw)

	return &domain.UserAgentInfo{
		Browser: parsed.Name,
		OS:      parsed.OS,
		Device:  strings.TrimSpace(parsed.Device),
	}
}
