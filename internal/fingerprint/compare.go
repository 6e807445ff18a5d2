// Package fingerprint derives and compares best-effort device and location
// descriptors for anomaly detection. Fingerprints are partial by nature:
// the user-agent parser or the geolocation lookup may leave any field
// empty, and an empty field is inconclusive rather than a mismatch.
package fingerprint

import "github.com/seedlift/seedlift/domain"

// valuesMatch reports whether two fingerprint values agree. Only two
// defined, non-empty values that differ count as a mismatch.
func valuesMatch(a, b string) bool {
	return a == b || a == "" || b == ""
}

// shallowMatch compares two partial records over the given keys.
func shallowMatch(a, b map[string]string, keys ...string) bool {
	for _, key := range keys {
		if !valuesMatch(a[key], b[key]) {
			return false
		}
	}
	return true
}

func agentFields(a *domain.UserAgentInfo) map[string]string {
	if a == nil {
		return map[string]string{}
	}
	return map[string]string{
		"browser": a.Browser,
		"os":      a.OS,
		"device":  a.Device,
	}
}

func locationFields(l *domain.Location) map[string]string {
	if l == nil {
		return map[string]string{}
	}
	return map[string]string{
		"countryCode": l.CountryCode,
		"countryName": l.CountryName,
		"city":        l.City,
		"state":       l.State,
		"postal":      l.Postal,
	}
}

// MatchUserAgent compares device fingerprints on browser, os and device.
func MatchUserAgent(a, b *domain.UserAgentInfo) bool {
	return shallowMatch(agentFields(a), agentFields(b), "browser", "os", "device")
}

// MatchLocation compares location fingerprints on country code and city.
// The finer-grained fields (state, postal) are too volatile for anomaly
// detection and are deliberately not compared.
func MatchLocation(a, b *domain.Location) bool {
	return shallowMatch(locationFields(a), locationFields(b), "countryCode", "city")
}
