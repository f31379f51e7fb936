package models

import "time"

// User is the authenticated account as reported by the upstream auth
// endpoints.
type User struct {
	ID    string   `json:"userId"`
	Name  string   `json:"userName"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// Role returns the effective display role, defaulting to Student when
// the upstream sent no role list.
func (u User) Role() string {
	if len(u.Roles) == 0 {
		return "Student"
	}
	return u.Roles[len(u.Roles)-1]
}

// Session holds the upstream bearer token plus the user it belongs
// to, keyed by a gateway-issued session id. The token never leaves
// the gateway.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	User      User      `json:"user"`
	CreatedAt time.Time `json:"createdAt"`
}
