package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-api/internal/store"
	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
)

// Gateway keeps documents in process memory. Writes are announced on the
// broker exactly like the postgres gateway does.
type Gateway struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
	broker      messaging.Broker
}

func NewGateway(broker messaging.Broker) *Gateway {
	return &Gateway{
		collections: make(map[string]map[string]json.RawMessage),
		broker:      broker,
	}
}

var _ store.Gateway = (*Gateway)(nil)

func (g *Gateway) Get(ctx context.Context, collection, id string) (*store.Document, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	data, ok := g.collections[collection][id]
	if !ok {
		return nil, apperrors.NewPersistenceError(apperrors.PersistenceNotFound, collection, id, nil)
	}
	return &store.Document{ID: id, Data: clone(data)}, nil
}

func (g *Gateway) Put(ctx context.Context, collection, id string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return apperrors.NewPersistenceError(apperrors.WriteFailed, collection, id, err)
	}

	g.mu.Lock()
	if g.collections[collection] == nil {
		g.collections[collection] = make(map[string]json.RawMessage)
	}
	g.collections[collection][id] = raw
	g.mu.Unlock()

	g.notify(ctx, collection, id, "put")
	return nil
}

func (g *Gateway) Update(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	g.mu.Lock()
	existing, ok := g.collections[collection][id]
	if !ok {
		g.mu.Unlock()
		return apperrors.NewPersistenceError(apperrors.PersistenceNotFound, collection, id, nil)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(existing, &doc); err != nil {
		g.mu.Unlock()
		return apperrors.NewPersistenceError(apperrors.WriteFailed, collection, id, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		g.mu.Unlock()
		return apperrors.NewPersistenceError(apperrors.WriteFailed, collection, id, err)
	}
	g.collections[collection][id] = raw
	g.mu.Unlock()

	g.notify(ctx, collection, id, "update")
	return nil
}

func (g *Gateway) Query(ctx context.Context, collection string, q store.Query) ([]store.Document, error) {
	filter, err := encodeFilter(q.Filter)
	if err != nil {
		return nil, apperrors.NewPersistenceError(apperrors.PersistenceNetwork, collection, "", err)
	}

	type entry struct {
		doc    store.Document
		fields map[string]json.RawMessage
	}

	g.mu.RLock()
	entries := make([]entry, 0, len(g.collections[collection]))
	for id, data := range g.collections[collection] {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			continue
		}
		if !matches(fields, filter) {
			continue
		}
		entries = append(entries, entry{doc: store.Document{ID: id, Data: clone(data)}, fields: fields})
	}
	g.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if q.OrderBy != "" {
			c := compare(entries[i].fields[q.OrderBy], entries[j].fields[q.OrderBy])
			if c != 0 {
				if q.Desc {
					return c > 0
				}
				return c < 0
			}
			// ties break on id in the same direction, as postgres does
			if q.Desc {
				return entries[i].doc.ID > entries[j].doc.ID
			}
		}
		return entries[i].doc.ID < entries[j].doc.ID
	})

	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}

	docs := make([]store.Document, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs, nil
}

func (g *Gateway) Subscribe(ctx context.Context, collection string, q store.Query) (*store.Subscription, error) {
	return store.Watch(ctx, g.broker, collection, func(ctx context.Context) ([]store.Document, error) {
		return g.Query(ctx, collection, q)
	})
}

func (g *Gateway) notify(ctx context.Context, collection, id, op string) {
	notice := messaging.ChangeNotice{Collection: collection, ID: id, Op: op}
	if err := g.broker.Publish(ctx, messaging.ChangesChannel(collection), notice); err != nil {
		log.Warn().Err(err).Str("collection", collection).Str("id", id).Msg("failed to publish change notice")
	}
}

func encodeFilter(filter map[string]interface{}) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(filter))
	for k, v := range filter {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("invalid filter value for %s: %w", k, err)
		}
		out[k] = raw
	}
	return out, nil
}

func matches(fields, filter map[string]json.RawMessage) bool {
	for k, want := range filter {
		got, ok := fields[k]
		if !ok || !bytes.Equal(bytes.TrimSpace(got), want) {
			return false
		}
	}
	return true
}

// compare orders missing < null < numbers < strings, mirroring how the
// document service orders mixed-type fields.
func compare(a, b json.RawMessage) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 2:
		var fa, fb float64
		_ = json.Unmarshal(a, &fa)
		_ = json.Unmarshal(b, &fb)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 3:
		var sa, sb string
		_ = json.Unmarshal(a, &sa)
		_ = json.Unmarshal(b, &sb)
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
		return 0
	}
	return bytes.Compare(a, b)
}

func rank(v json.RawMessage) int {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return 0
	}
	switch v[0] {
	case 'n':
		return 1
	case '"':
		return 3
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return 2
	}
	return 4
}

func clone(b []byte) json.RawMessage {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
