package records

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
)

// KVRepository implements Repository over the key-value store.
type KVRepository struct {
	store kvstore.Store
}

func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Save(ctx context.Context, rec *models.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, kvstore.RecordKey(string(rec.Kind), rec.UserID, rec.ID), data)
}

func (r *KVRepository) Get(ctx context.Context, kind models.RecordKind, userID, id string) (*models.Record, error) {
	data, err := r.store.Get(ctx, kvstore.RecordKey(string(kind), userID, id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, common.ErrRecordNotFound
	}

	var rec models.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s record %s: %v", common.ErrStorageCorrupted, kind, id, err)
	}
	return &rec, nil
}

func (r *KVRepository) Delete(ctx context.Context, kind models.RecordKind, userID, id string) error {
	key := kvstore.RecordKey(string(kind), userID, id)

	data, err := r.store.Get(ctx, key)
	if err != nil {
		return err
	}
	if data == nil {
		return common.ErrRecordNotFound
	}
	return r.store.Delete(ctx, key)
}

func (r *KVRepository) ListByUser(ctx context.Context, kind models.RecordKind, userID string) ([]models.Record, error) {
	pairs, err := r.store.List(ctx, kvstore.RecordPrefix(string(kind), userID))
	if err != nil {
		return nil, err
	}

	result := make([]models.Record, 0, len(pairs))
	for key, data := range pairs {
		var rec models.Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("%w: record %s: %v", common.ErrStorageCorrupted, key, err)
		}
		result = append(result, rec)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}
