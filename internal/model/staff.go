package model

type StaffRole string

const (
	StaffRoleDoctor        StaffRole = "doctor"
	StaffRoleNurse         StaffRole = "nurse"
	StaffRoleTherapist     StaffRole = "therapist"
	StaffRoleCoordinator   StaffRole = "coordinator"
	StaffRoleAdministrator StaffRole = "administrator"
)

type StaffMember struct {
	Base
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	Phone        string    `db:"phone" json:"phone,omitempty"`
	Role         StaffRole `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
}

type CreateStaffRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Phone    string    `json:"phone"`
	Role     StaffRole `json:"role" binding:"required,oneof=doctor nurse therapist coordinator administrator"`
	Password string    `json:"password" binding:"required,min=8"`
}

type UpdateStaffRequest struct {
	Name     *string    `json:"name"`
	Email    *string    `json:"email" binding:"omitempty,email"`
	Phone    *string    `json:"phone"`
	Role     *StaffRole `json:"role" binding:"omitempty,oneof=doctor nurse therapist coordinator administrator"`
	IsActive *bool      `json:"is_active"`
}

type StaffFilters struct {
	Role       StaffRole
	ActiveOnly bool
	SearchTerm string
}
