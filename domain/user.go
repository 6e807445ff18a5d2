package domain

import "time"

// User is the owner of zero or more sessions. Only the fields the session
// core needs are modeled here; project/profile data lives elsewhere.
type User struct {
	ID            string    `bson:"_id" json:"id"`
	Email         string    `bson:"email" json:"email"`
	Username      string    `bson:"username" json:"username"`
	PasswordHash  string    `bson:"password_hash" json:"-"`
	Confirmed     bool      `bson:"confirmed" json:"confirmed"`
	LogoURI       string    `bson:"logo_uri,omitempty" json:"logoUri,omitempty"`
	LikedProjects []string  `bson:"liked_projects,omitempty" json:"likedProjects,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}
