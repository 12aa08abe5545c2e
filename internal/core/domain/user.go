package domain

// Role is the storefront role of a user.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleSeller
}

// LandingPath is where a user with this role is sent when a view refuses them.
func (r Role) LandingPath() string {
	if r == RoleSeller {
		return "/seller"
	}
	return "/"
}

// User models an authenticated shopper or seller.
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// HasRole reports whether the user holds one of roles. An empty list admits
// any role.
func (u *User) HasRole(roles ...Role) bool {
	if u == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
