package domain

import "time"

// UserAgentInfo is the parsed device fingerprint of a login. Every field is
// best effort: user-agent parsers regularly fail to fill one or more of
// them, and an empty field must never count as a mismatch.
type UserAgentInfo struct {
	Browser string `bson:"browser,omitempty" json:"browser,omitempty"`
	OS      string `bson:"os,omitempty" json:"os,omitempty"`
	Device  string `bson:"device,omitempty" json:"device,omitempty"`
}

// Location is the IP-geolocation fingerprint of a login, same best-effort
// semantics as UserAgentInfo.
type Location struct {
	CountryCode string `bson:"country_code,omitempty" json:"countryCode,omitempty"`
	CountryName string `bson:"country_name,omitempty" json:"countryName,omitempty"`
	City        string `bson:"city,omitempty" json:"city,omitempty"`
	State       string `bson:"state,omitempty" json:"state,omitempty"`
	Postal      string `bson:"postal,omitempty" json:"postal,omitempty"`
}

// Session represents one authenticated device/browser login. The session id
// doubles as the subject claim of both tokens. RefreshToken always holds the
// single currently-valid refresh token for this session; it is overwritten
// on every re-issuance, which is what invalidates the previous one.
type Session struct {
	ID           string         `bson:"_id" json:"id"`
	UserID       string         `bson:"user_id" json:"user"`
	RefreshToken string         `bson:"refresh_token" json:"-"`
	Valid        bool           `bson:"valid" json:"valid"`
	UserAgent    *UserAgentInfo `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	Location     *Location      `bson:"location,omitempty" json:"location,omitempty"`
	ExpiresAt    time.Time      `bson:"expires_at" json:"expiresAt"`
	CreatedAt    time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updated_at" json:"updatedAt"`
}

// PendingSession is a session that has an id but has not been persisted
// yet. The id must exist before the insert so it can be embedded as the
// token subject; only SaveSession turns a PendingSession into a stored
// Session.
type PendingSession struct {
	Session
}

// SessionFilter selects sessions by typed fields. The zero value matches
// all valid sessions; IncludeInvalid lifts the default valid-only
// restriction.
type SessionFilter struct {
	ID             string
	UserID         string
	RefreshToken   string
	IncludeInvalid bool
}
