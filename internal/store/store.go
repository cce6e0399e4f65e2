package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collections used by the clinic
const (
	CollectionStaff         = "staffData"
	CollectionAppointments  = "appointments"
	CollectionMedicines     = "medicines"
	CollectionPrescriptions = "prescriptions"
)

// Document is one record of a collection
type Document struct {
	ID   string          `db:"id" json:"id"`
	Data json.RawMessage `db:"data" json:"data"`
}

// Decode unmarshals the document body into v
func (d Document) Decode(v interface{}) error {
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", d.ID, err)
	}
	return nil
}

// Query selects and orders documents of a collection. Filter matches
// top-level fields by equality.
type Query struct {
	OrderBy string
	Desc    bool
	Filter  map[string]interface{}
	Limit   int
}

// Gateway is the persistence capability the clinic core depends on
type Gateway interface {
	// Get returns a PersistenceError of kind NotFound when id is absent.
	Get(ctx context.Context, collection, id string) (*Document, error)
	// Put creates or replaces the document.
	Put(ctx context.Context, collection, id string, data interface{}) error
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Subscribe streams a fresh snapshot of the query after every change
	// to the collection until the subscription is cancelled.
	Subscribe(ctx context.Context, collection string, q Query) (*Subscription, error)
}
