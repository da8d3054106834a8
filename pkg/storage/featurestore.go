package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cohortforge/platform/pkg/common/models"
	"github.com/redis/go-redis/v9"
)

// FeatureStore materializes derived per-patient features to redis so
// downstream consumers can read the latest run's features by patient
// without touching the extracts.
type FeatureStore struct {
	client   *redis.Client
	cacheTTL time.Duration
}

func NewFeatureStore(client *redis.Client, cacheTTL time.Duration) *FeatureStore {
	return &FeatureStore{client: client, cacheTTL: cacheTTL}
}

func featureKey(patientID string) string {
	return fmt.Sprintf("features:%s", patientID)
}

// Materialize writes one patient's derived features, stamping each with
// the run version so stale reads are detectable.
func (f *FeatureStore) Materialize(ctx context.Context, patientID string, features map[string]interface{}, version int) error {
	set := models.FeatureSet{
		PatientID: patientID,
		Features:  make(map[string]models.Feature, len(features)),
		Version:   version,
	}
	now := time.Now().UTC()
	for name, value := range features {
		set.Features[name] = models.Feature{
			Name:      name,
			Value:     value,
			Timestamp: now,
		}
	}

	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("marshalling feature set for %s: %w", patientID, err)
	}
	if err := f.client.Set(ctx, featureKey(patientID), data, f.cacheTTL).Err(); err != nil {
		return fmt.Errorf("caching features for %s: %w", patientID, err)
	}
	return nil
}

// GetFeatures reads one patient's materialized feature set. A cache
// miss returns an empty set rather than an error.
func (f *FeatureStore) GetFeatures(ctx context.Context, patientID string) (models.FeatureSet, error) {
	data, err := f.client.Get(ctx, featureKey(patientID)).Bytes()
	if err == redis.Nil {
		return models.FeatureSet{PatientID: patientID, Features: map[string]models.Feature{}}, nil
	}
	if err != nil {
		return models.FeatureSet{}, fmt.Errorf("reading features for %s: %w", patientID, err)
	}

	var set models.FeatureSet
	if err := json.Unmarshal(data, &set); err != nil {
		return models.FeatureSet{}, fmt.Errorf("decoding features for %s: %w", patientID, err)
	}
	return set, nil
}
