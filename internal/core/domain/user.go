package domain

// Role is the closed, totally ordered set of organizational roles.
// Comparisons use the numeric order; never compare role names as strings.
type Role int

const (
	RoleStaff Role = iota + 1
	RoleAccountant
	RoleManager
	RoleDirector
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleStaff:      "STAFF",
	RoleAccountant: "ACCOUNTANT",
	RoleManager:    "MANAGER",
	RoleDirector:   "DIRECTOR",
	RoleAdmin:      "ADMIN",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "UNKNOWN"
}

// AtLeast reports whether r ranks at or above other in the hierarchy.
func (r Role) AtLeast(other Role) bool {
	return r >= other
}

// ParseRole maps a stored role name back to its Role. The boolean is false
// for names outside the closed set.
func ParseRole(name string) (Role, bool) {
	for role, n := range roleNames {
		if n == name {
			return role, true
		}
	}
	return 0, false
}

// User is identity data handed to the core by the external identity service.
// The core only authorizes against it; authentication happens elsewhere.
type User struct {
	UserID    string  `json:"userID"` // Primary Key (UUID)
	Name      string  `json:"name"`
	Role      Role    `json:"role"`
	ManagerID *string `json:"managerID,omitempty"` // Nullable self-reference, forms the management chain
	IsActive  bool    `json:"isActive"`
	AuditFields
}
