package incidents

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/statuswatch/statuswatch/pkg/kv"
	"github.com/statuswatch/statuswatch/pkg/models"
)

const incidentsKey = "statuswatch:incidents"

// KVStore persists the incident list as a single JSON document in the
// key-value collaborator.
type KVStore struct {
	kv kv.KV
}

// NewKVStore creates an incident store over the given KV backend.
func NewKVStore(backend kv.KV) *KVStore {
	return &KVStore{kv: backend}
}

func (s *KVStore) Load(ctx context.Context) ([]models.Incident, error) {
	raw, ok, err := s.kv.Get(ctx, incidentsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load incident list: %w", err)
	}

	if !ok {
		return []models.Incident{}, nil
	}

	var list []models.Incident
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("failed to decode incident list: %w", err)
	}

	return list, nil
}

func (s *KVStore) Save(ctx context.Context, incidents []models.Incident) error {
	data, err := json.Marshal(incidents)
	if err != nil {
		return fmt.Errorf("failed to encode incident list: %w", err)
	}

	if err := s.kv.Put(ctx, incidentsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save incident list: %w", err)
	}

	return nil
}
