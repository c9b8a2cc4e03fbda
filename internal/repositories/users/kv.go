package users

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/dbx"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/google/uuid"
)

// KVRepository keeps each user under its own key plus an email index key and
// a salt key, so a registration never rewrites the whole directory. Writes
// that touch several keys run in one transaction.
type KVRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewKVRepository(db *sql.DB) *KVRepository {
	return &KVRepository{db: db, now: time.Now}
}

func (r *KVRepository) Create(ctx context.Context, user *models.User, salt []byte) (*models.User, error) {
	created := *user
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = r.now().UTC()
	}

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := kvstore.NewSQLiteStore(tx)

		taken, err := store.Get(ctx, kvstore.EmailIndexKey(created.Email))
		if err != nil {
			return err
		}
		if taken != nil {
			return common.ErrDuplicateEmail
		}

		if err := putUser(ctx, store, &created); err != nil {
			return err
		}
		if err := store.Set(ctx, kvstore.SaltKey(created.ID), salt); err != nil {
			return err
		}
		return store.Set(ctx, kvstore.EmailIndexKey(created.Email), []byte(created.ID))
	})
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *KVRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	store := kvstore.NewSQLiteStore(r.db)

	id, err := store.Get(ctx, kvstore.EmailIndexKey(email))
	if err != nil {
		return nil, err
	}
	if id == nil {
		return nil, common.ErrUserNotFound
	}

	return getUser(ctx, store, string(id))
}

func (r *KVRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return getUser(ctx, kvstore.NewSQLiteStore(r.db), id)
}

func (r *KVRepository) UpdateCredentials(ctx context.Context, id string, newDigest string, salt []byte) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := kvstore.NewSQLiteStore(tx)

		user, err := getUser(ctx, store, id)
		if err != nil {
			return err
		}
		user.PasswordDigest = newDigest
		if err := putUser(ctx, store, user); err != nil {
			return err
		}
		return store.Set(ctx, kvstore.SaltKey(id), salt)
	})
}

func (r *KVRepository) UpdateProfile(ctx context.Context, id string, name, email string) (*models.User, error) {
	var updated *models.User

	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := kvstore.NewSQLiteStore(tx)

		user, err := getUser(ctx, store, id)
		if err != nil {
			return err
		}

		if email != "" && email != user.Email {
			taken, err := store.Get(ctx, kvstore.EmailIndexKey(email))
			if err != nil {
				return err
			}
			if taken != nil {
				return common.ErrDuplicateEmail
			}
			if err := store.Delete(ctx, kvstore.EmailIndexKey(user.Email)); err != nil {
				return err
			}
			if err := store.Set(ctx, kvstore.EmailIndexKey(email), []byte(user.ID)); err != nil {
				return err
			}
			user.Email = email
		}
		if name != "" {
			user.Name = name
		}

		if err := putUser(ctx, store, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func getUser(ctx context.Context, store kvstore.Store, id string) (*models.User, error) {
	data, err := store.Get(ctx, kvstore.UserKey(id))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, common.ErrUserNotFound
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("%w: user record %s: %v", common.ErrStorageCorrupted, id, err)
	}
	return &user, nil
}

func putUser(ctx context.Context, store kvstore.Store, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return store.Set(ctx, kvstore.UserKey(user.ID), data)
}
