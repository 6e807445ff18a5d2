package mongodb

const (
	UsersCollection    = "users"    // user accounts
	SessionsCollection = "sessions" // login sessions, TTL-expired on expires_at
)
