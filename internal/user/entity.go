// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/food-orders/internal/authz"
)

type User struct {
	ID           int64     `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Active       bool      `db:"active"`
	Admin        bool      `db:"admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Admin
}

func (u *User) Actor() authz.Actor {
	return authz.Actor{
		ID:     u.ID,
		Admin:  u.Admin,
		Active: u.Active,
	}
}
