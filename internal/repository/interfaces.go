package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/store"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// All repository interfaces in one file
type (
	// AccountRepository holds credentials for the identity service
	AccountRepository interface {
		Create(ctx context.Context, account *model.Account) error
		Get(ctx context.Context, id string) (*model.Account, error)
		GetByEmail(ctx context.Context, email string) (*model.Account, error)
		UpdateDisplayName(ctx context.Context, id, name string) error
		UpdatePassword(ctx context.Context, id, passwordHash string) error
		MarkEmailVerified(ctx context.Context, id string) error
	}

	// StaffRepository reads and writes staffData profiles
	StaffRepository interface {
		Create(ctx context.Context, profile *model.StaffProfile) error
		Get(ctx context.Context, uid string) (*model.StaffProfile, error)
		UpdateLastLogin(ctx context.Context, uid string, at time.Time) error
		MarkEmailVerified(ctx context.Context, uid string) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		// ListNewestFirst returns every appointment ordered by createdAt descending.
		ListNewestFirst(ctx context.Context) ([]model.Appointment, error)
		// ListForDate returns the appointments of one day in booking order.
		ListForDate(ctx context.Context, date string) ([]model.Appointment, error)
	}

	MedicineRepository interface {
		Put(ctx context.Context, medicine *model.Medicine) error
		List(ctx context.Context) ([]model.Medicine, error)
		// Subscribe streams the catalog ordered by name.
		Subscribe(ctx context.Context) (*store.Subscription, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		Get(ctx context.Context, id string) (*model.Prescription, error)
		ListByDoctor(ctx context.Context, doctorID string) ([]model.Prescription, error)
	}
)
