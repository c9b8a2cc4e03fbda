// Package resetcodes stores outstanding password-reset codes, one per email.
package resetcodes

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
)

// Repository keeps at most one outstanding code per email; Save overwrites.
type Repository interface {
	Save(ctx context.Context, email string, code models.ResetCode) error
	// Get returns the outstanding code or common.ErrNoResetCode.
	Get(ctx context.Context, email string) (*models.ResetCode, error)
	Delete(ctx context.Context, email string) error
}

// KVRepository implements Repository over the key-value store.
type KVRepository struct {
	store kvstore.Store
}

func NewKVRepository(store kvstore.Store) *KVRepository {
	return &KVRepository{store: store}
}

func (r *KVRepository) Save(ctx context.Context, email string, code models.ResetCode) error {
	data, err := json.Marshal(code)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, kvstore.ResetCodeKey(email), data)
}

func (r *KVRepository) Get(ctx context.Context, email string) (*models.ResetCode, error) {
	data, err := r.store.Get(ctx, kvstore.ResetCodeKey(email))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, common.ErrNoResetCode
	}

	var code models.ResetCode
	if err := json.Unmarshal(data, &code); err != nil {
		return nil, fmt.Errorf("%w: reset code for %s: %v", common.ErrStorageCorrupted, email, err)
	}
	return &code, nil
}

func (r *KVRepository) Delete(ctx context.Context, email string) error {
	return r.store.Delete(ctx, kvstore.ResetCodeKey(email))
}
