package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
	"github.com/jwalitptl/clinic-api/internal/store"
)

var catalogOrder = store.Query{OrderBy: "name"}

type medicineRepository struct {
	gw store.Gateway
}

func NewMedicineRepository(gw store.Gateway) repository.MedicineRepository {
	return &medicineRepository{gw: gw}
}

func (r *medicineRepository) Put(ctx context.Context, medicine *model.Medicine) error {
	if medicine.ID == "" {
		medicine.ID = uuid.New().String()
	}
	if err := r.gw.Put(ctx, store.CollectionMedicines, medicine.ID, medicine); err != nil {
		return fmt.Errorf("failed to save medicine: %w", err)
	}
	return nil
}

func (r *medicineRepository) List(ctx context.Context) ([]model.Medicine, error) {
	docs, err := r.gw.Query(ctx, store.CollectionMedicines, catalogOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return DecodeMedicines(docs)
}

func (r *medicineRepository) Subscribe(ctx context.Context) (*store.Subscription, error) {
	sub, err := r.gw.Subscribe(ctx, store.CollectionMedicines, catalogOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to medicines: %w", err)
	}
	return sub, nil
}

// DecodeMedicines maps a catalog snapshot to medicines, keeping its order
func DecodeMedicines(docs []store.Document) ([]model.Medicine, error) {
	medicines := make([]model.Medicine, 0, len(docs))
	for _, doc := range docs {
		var m model.Medicine
		if err := doc.Decode(&m); err != nil {
			return nil, err
		}
		m.ID = doc.ID
		medicines = append(medicines, m)
	}
	return medicines, nil
}
