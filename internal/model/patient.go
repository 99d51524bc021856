package model

import (
	"time"
)

type PatientStatus string

const (
	PatientStatusActive   PatientStatus = "active"
	PatientStatusInactive PatientStatus = "inactive"
)

type Patient struct {
	Base
	Name        string        `db:"name" json:"name"`
	Email       string        `db:"email" json:"email"`
	Phone       string        `db:"phone" json:"phone,omitempty"`
	DateOfBirth *time.Time    `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      string        `db:"gender" json:"gender,omitempty"`
	Address     string        `db:"address" json:"address,omitempty"`
	Status      PatientStatus `db:"status" json:"status"`
	Notes       string        `db:"notes" json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Gender      string     `json:"gender"`
	Address     string     `json:"address"`
	Notes       string     `json:"notes"`
}

type UpdatePatientRequest struct {
	Name        *string        `json:"name"`
	Email       *string        `json:"email" binding:"omitempty,email"`
	Phone       *string        `json:"phone"`
	DateOfBirth *time.Time     `json:"date_of_birth"`
	Gender      *string        `json:"gender"`
	Address     *string        `json:"address"`
	Status      *PatientStatus `json:"status"`
	Notes       *string        `json:"notes"`
}

type PatientFilters struct {
	Status     PatientStatus
	SearchTerm string
	Pagination
}
