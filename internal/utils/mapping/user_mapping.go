package mapping

import (
	"github.com/fintrak/fintrak/internal/core/domain"
	"github.com/fintrak/fintrak/internal/models"
)

// ToDomainUser converts a model User to its domain form. Unknown role names
// come back as the zero Role, which outranks nothing.
func ToDomainUser(m models.User) domain.User {
	role, _ := domain.ParseRole(m.Role)
	return domain.User{
		UserID:      m.UserID,
		Name:        m.Name,
		Role:        role,
		ManagerID:   m.ManagerID,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelUser converts a domain User to its model form.
func ToModelUser(d domain.User) models.User {
	return models.User{
		UserID:      d.UserID,
		Name:        d.Name,
		Role:        d.Role.String(),
		ManagerID:   d.ManagerID,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}
