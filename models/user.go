package models

// Role is a user's role
type Role string

const (
	RoleWalikelas  Role = "walikelas"  // homeroom class lead, full access
	RoleSekretaris Role = "sekretaris" // class secretary, records attendance
	RoleOrangtua   Role = "orangtua"   // parent, read-only
)

// User is a login account
type User struct {
	ID           int64  `db:"id" json:"id"`
	Username     string `db:"username" json:"username"`
	PasswordHash string `db:"password_hash" json:"-"`
	Role         Role   `db:"role" json:"role"`
}

// HasRole reports whether u carries role r. A nil user has no role.
func (u *User) HasRole(r Role) bool {
	return u != nil && u.Role == r
}
