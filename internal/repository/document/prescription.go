package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
)

type prescriptionRepository struct {
	gw store.Gateway
}

func NewPrescriptionRepository(gw store.Gateway) repository.PrescriptionRepository {
	return &prescriptionRepository{gw: gw}
}

// Create always writes a new document; prescriptions are never replaced
func (r *prescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	prescription.ID = uuid.New().String()

	if err := r.gw.Put(ctx, store.CollectionPrescriptions, prescription.ID, prescription); err != nil {
		return fmt.Errorf("failed to create prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) Get(ctx context.Context, id string) (*model.Prescription, error) {
	doc, err := r.gw.Get(ctx, store.CollectionPrescriptions, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}

	var p model.Prescription
	if err := doc.Decode(&p); err != nil {
		return nil, err
	}
	p.ID = doc.ID
	return &p, nil
}

func (r *prescriptionRepository) ListByDoctor(ctx context.Context, doctorID string) ([]model.Prescription, error) {
	docs, err := r.gw.Query(ctx, store.CollectionPrescriptions, store.Query{
		OrderBy: "createdAt",
		Desc:    true,
		Filter:  map[string]interface{}{"doctorId": doctorID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}

	prescriptions := make([]model.Prescription, 0, len(docs))
	for _, doc := range docs {
		var p model.Prescription
		if err := doc.Decode(&p); err != nil {
			return nil, err
		}
		p.ID = doc.ID
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, nil
}
