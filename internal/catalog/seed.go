package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/model"
	"github.com/jwalitptl/clinic-api/internal/repository"
)

var seedNamespace = uuid.MustParse("5b0d9a4e-2f43-4c1e-9f59-1c8e6b7a2d31")

var defaultMedicines = []model.Medicine{
	{Name: "Amoxicillin", Category: "Antibiotic", Strength: "500mg", Form: "Capsule"},
	{Name: "Azithromycin", Category: "Antibiotic", Strength: "250mg", Form: "Tablet"},
	{Name: "Cetirizine", Category: "Antihistamine", Strength: "10mg", Form: "Tablet"},
	{Name: "Ibuprofen", Category: "Analgesic", Strength: "400mg", Form: "Tablet"},
	{Name: "Metformin", Category: "Antidiabetic", Strength: "500mg", Form: "Tablet"},
	{Name: "Omeprazole", Category: "Antacid", Strength: "20mg", Form: "Capsule"},
	{Name: "Paracetamol", Category: "Analgesic", Strength: "500mg", Form: "Tablet"},
	{Name: "Salbutamol", Category: "Bronchodilator", Strength: "100mcg", Form: "Inhaler"},
	{Name: "Amlodipine", Category: "Antihypertensive", Strength: "5mg", Form: "Tablet"},
	{Name: "Cough Syrup", Category: "Antitussive", Form: "Syrup"},
}

// DefaultMedicines returns the starter catalog. Ids are derived from the
// name so reseeding overwrites instead of duplicating.
func DefaultMedicines() []model.Medicine {
	out := make([]model.Medicine, len(defaultMedicines))
	for i, m := range defaultMedicines {
		m.ID = uuid.NewSHA1(seedNamespace, []byte(m.Name)).String()
		out[i] = m
	}
	return out
}

// Seed writes the starter catalog
func Seed(ctx context.Context, medicines repository.MedicineRepository) (int, error) {
	list := DefaultMedicines()
	for i := range list {
		if err := medicines.Put(ctx, &list[i]); err != nil {
			return i, fmt.Errorf("failed to seed %s: %w", list[i].Name, err)
		}
	}
	log.Info().Int("count", len(list)).Msg("medicine catalog seeded")
	return len(list), nil
}
