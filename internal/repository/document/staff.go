package document

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
)

type staffRepository struct {
	gw store.Gateway
}

func NewStaffRepository(gw store.Gateway) repository.StaffRepository {
	return &staffRepository{gw: gw}
}

func (r *staffRepository) Create(ctx context.Context, profile *model.StaffProfile) error {
	if err := r.gw.Put(ctx, store.CollectionStaff, profile.ID, profile); err != nil {
		return fmt.Errorf("failed to create staff profile: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, uid string) (*model.StaffProfile, error) {
	doc, err := r.gw.Get(ctx, store.CollectionStaff, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff profile: %w", err)
	}

	var profile model.StaffProfile
	if err := doc.Decode(&profile); err != nil {
		return nil, err
	}
	if profile.ID == "" {
		profile.ID = doc.ID
	}
	return &profile, nil
}

func (r *staffRepository) UpdateLastLogin(ctx context.Context, uid string, at time.Time) error {
	err := r.gw.Update(ctx, store.CollectionStaff, uid, map[string]interface{}{
		"lastLogin": model.NewTimestamp(at),
	})
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

func (r *staffRepository) MarkEmailVerified(ctx context.Context, uid string) error {
	err := r.gw.Update(ctx, store.CollectionStaff, uid, map[string]interface{}{
		"emailVerified": true,
	})
	if err != nil {
		return fmt.Errorf("failed to mark email verified: %w", err)
	}
	return nil
}
