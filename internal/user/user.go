package user

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// User is the persisted record. PasswordHash never reaches clients; only
// the Profile projection is serialized.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	UpdatedAt    time.Time
}

// Profile is the client-facing projection of a User.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UpdatedAt string `json:"updated_at"`
}

// Profile returns the sanitized projection with updated_at in RFC 3339.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// LocalsKey is where the auth middleware stashes the resolved User on the
// request context.
const LocalsKey = "user"

// FromCtx extracts the authenticated User placed in locals by the auth
// middleware.
func FromCtx(c *fiber.Ctx) (User, error) {
	u, ok := c.Locals(LocalsKey).(User)
	if !ok {
		return User{}, fiber.ErrUnauthorized
	}
	return u, nil
}
