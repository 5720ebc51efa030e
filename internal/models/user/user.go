package user

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the client-facing view. The password hash never leaves the
// service, even hashed.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Email: u.Email,
	}
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
