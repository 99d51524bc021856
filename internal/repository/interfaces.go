package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/coopcare/admin-api/internal/model"
)

// Sentinel errors shared by all repositories.
var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a create/update would collide with an
	// existing active appointment for the same staff member.
	ErrConflict = errors.New("appointment conflicts with existing booking")
	// ErrDuplicate is returned on unique-constraint violations, e.g. a
	// second schedule row for the same staff member and date.
	ErrDuplicate = errors.New("record already exists")
	// ErrOverpayment is returned when a payment exceeds the invoice's
	// remaining amount. The check itself lives in Invoice.ApplyPayment.
	ErrOverpayment = model.ErrOverpayment
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.StaffMember) error
		Get(ctx context.Context, id uuid.UUID) (*model.StaffMember, error)
		GetByEmail(ctx context.Context, email string) (*model.StaffMember, error)
		Update(ctx context.Context, staff *model.StaffMember) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.StaffFilters) ([]*model.StaffMember, error)
	}

	ScheduleRepository interface {
		// Upsert replaces any existing row for the same staff member and
		// date, keeping the one-schedule-per-staff-per-date invariant.
		Upsert(ctx context.Context, schedule *model.StaffSchedule) error
		Get(ctx context.Context, id uuid.UUID) (*model.StaffSchedule, error)
		GetForDate(ctx context.Context, staffID uuid.UUID, date time.Time) (*model.StaffSchedule, error)
		Delete(ctx context.Context, id uuid.UUID) error
		ListForStaff(ctx context.Context, staffID uuid.UUID, rng model.DateRange) ([]*model.StaffSchedule, error)
	}

	AppointmentRepository interface {
		// Create inserts the appointment after re-checking staff and
		// patient overlaps inside the same transaction. ErrConflict is
		// returned instead of inserting unless force is set.
		Create(ctx context.Context, appointment *model.Appointment, force bool) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment, force bool) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForStaffDay(ctx context.Context, staffID uuid.UUID, day time.Time) ([]*model.Appointment, error)
		ListForPatientDay(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*model.Appointment, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		Update(ctx context.Context, invoice *model.Invoice) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.InvoiceFilters) ([]*model.Invoice, error)
		// RecordPayment inserts the payment and rolls the invoice's
		// paid/remaining amounts and status forward in one transaction.
		RecordPayment(ctx context.Context, payment *model.Payment) (*model.Invoice, error)
		ListPayments(ctx context.Context, filters *model.PaymentFilters) ([]*model.Payment, error)
	}

	ExpenseRepository interface {
		Create(ctx context.Context, expense *model.Expense) error
		Get(ctx context.Context, id uuid.UUID) (*model.Expense, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.ExpenseFilters) ([]*model.Expense, error)
	}

	MessageRepository interface {
		Create(ctx context.Context, message *model.Message) error
		Get(ctx context.Context, id uuid.UUID) (*model.Message, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.MessageFilters) ([]*model.Message, error)
		MarkRead(ctx context.Context, messageID, staffID uuid.UUID, readAt time.Time) error
		ListReads(ctx context.Context, messageID uuid.UUID) ([]*model.MessageRead, error)
	}

	TaskRepository interface {
		Create(ctx context.Context, task *model.Task) error
		Get(ctx context.Context, id uuid.UUID) (*model.Task, error)
		Update(ctx context.Context, task *model.Task) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.TaskFilters) ([]*model.Task, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		Get(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		Update(ctx context.Context, notification *model.Notification) error
		List(ctx context.Context, filters *model.NotificationFilters) ([]*model.Notification, error)
		// ListDue claims pending/retrying notifications whose retry time
		// has passed; a claimed row stays invisible to other workers
		// until its lease expires or an outcome is recorded.
		ListDue(ctx context.Context, limit int) ([]*model.Notification, error)
	}
)
