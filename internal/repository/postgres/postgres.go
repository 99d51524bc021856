package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/coopcare/admin-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

type staffRepository struct {
	BaseRepository
}

type scheduleRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type invoiceRepository struct {
	BaseRepository
}

type expenseRepository struct {
	BaseRepository
}

type messageRepository struct {
	BaseRepository
}

type taskRepository struct {
	BaseRepository
}

type notificationRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func NewStaffRepository(db *sqlx.DB) repository.StaffRepository {
	return &staffRepository{NewBaseRepository(db)}
}

func NewScheduleRepository(db *sqlx.DB) repository.ScheduleRepository {
	return &scheduleRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewInvoiceRepository(db *sqlx.DB) repository.InvoiceRepository {
	return &invoiceRepository{NewBaseRepository(db)}
}

func NewExpenseRepository(db *sqlx.DB) repository.ExpenseRepository {
	return &expenseRepository{NewBaseRepository(db)}
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{NewBaseRepository(db)}
}

func NewTaskRepository(db *sqlx.DB) repository.TaskRepository {
	return &taskRepository{NewBaseRepository(db)}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{NewBaseRepository(db)}
}
