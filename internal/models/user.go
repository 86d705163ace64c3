package models

// User is the persistence shape of identity data consumed by the core.
type User struct {
	UserID    string  `json:"userID"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	ManagerID *string `json:"managerID"`
	IsActive  bool    `json:"isActive"`
	AuditFields
}
