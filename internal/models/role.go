package models

// Role is the privilege tier of a user, ordered from lowest to highest
type Role int

// UserRole constants
const (
	RoleUser  Role = 1
	RoleTutor Role = 2
	RoleAdmin Role = 3
)

// String returns the role name used in logs and error messages
func (r Role) String() string {
	switch r {
	case RoleUser:
		return "user"
	case RoleTutor:
		return "tutor"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Principal is the authenticated actor of a request
type Principal struct {
	UserID int  `json:"userId"`
	Role   Role `json:"role"`
}

// CanManageContent reports whether the principal's role allows adding course content
func (p Principal) CanManageContent() bool {
	return p.Role > RoleUser
}
