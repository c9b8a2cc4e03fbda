// Package services contains the application services of CoinKeeper: the
// session manager, the auth facade, the transaction ledger, the budget plan
// and the derived statistics.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/auth"
	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/dbx"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
)

const (
	// DefaultSessionTTL is the session lifetime without "remember me".
	DefaultSessionTTL = 24 * time.Hour
	// RememberSessionTTL is the session lifetime with "remember me".
	RememberSessionTTL = 7 * 24 * time.Hour

	signingSecretSize = 32
)

// SessionManager owns the single local session: it issues, persists,
// restores and expires it. The session record and the public user
// projection are written together, so an unexpired session always has a
// matching projection.
//
// Expiry is enforced twice: lazily in Load (covers cold starts) and by a
// one-shot timer armed while the process is alive.
type SessionManager struct {
	db  *sql.DB
	log logging.Logger
	now func() time.Time

	sessionTTL  time.Duration
	rememberTTL time.Duration

	mu    sync.Mutex
	timer *time.Timer

	// OnExpire, if set, is called after the armed timer purged the session.
	OnExpire func()
}

func NewSessionManager(db *sql.DB, log logging.Logger) *SessionManager {
	return &SessionManager{
		db:          db,
		log:         log,
		now:         time.Now,
		sessionTTL:  DefaultSessionTTL,
		rememberTTL: RememberSessionTTL,
	}
}

// Create issues a new session for the user and persists it together with
// the public projection. Any previous session is replaced.
func (m *SessionManager) Create(ctx context.Context, user *models.User, remember bool) (*models.Session, error) {
	secret, err := m.ensureSecret(ctx)
	if err != nil {
		return nil, err
	}

	ttl := m.sessionTTL
	if remember {
		ttl = m.rememberTTL
	}
	expiresAt := m.now().Add(ttl).UTC()

	token, err := auth.GenerateToken(user.ID, secret, expiresAt)
	if err != nil {
		return nil, err
	}

	session := &models.Session{Token: token, UserID: user.ID, ExpiresAt: expiresAt}
	projection := user.Public()

	err = dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := kvstore.NewSQLiteStore(tx)
		if err := putJSON(ctx, store, kvstore.KeySession, session); err != nil {
			return err
		}
		return putJSON(ctx, store, kvstore.KeyCurrentUser, projection)
	})
	if err != nil {
		return nil, err
	}

	m.armTimer(ttl)
	m.log.Info(ctx, "session created", "user_id", user.ID, "remember", remember, "expires_at", expiresAt)

	return session, nil
}

// Load returns the persisted session and user projection, or (nil, nil, nil)
// when no usable session exists. Expired, tampered or malformed state is
// purged on sight: storage problems here reset to a logged-out state rather
// than failing the startup.
func (m *SessionManager) Load(ctx context.Context) (*models.Session, *models.PublicUser, error) {
	store := kvstore.NewSQLiteStore(m.db)

	data, err := store.Get(ctx, kvstore.KeySession)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		m.log.Warn(ctx, "malformed session record, resetting to logged-out state", "error", err)
		return nil, nil, m.Destroy(ctx)
	}

	if session.Expired(m.now()) {
		m.log.Info(ctx, "session expired, purging", "user_id", session.UserID)
		return nil, nil, m.Destroy(ctx)
	}

	secret, err := m.ensureSecret(ctx)
	if err != nil {
		return nil, nil, err
	}
	userID, err := auth.GetUserIDFromToken(session.Token, secret, m.now)
	if err != nil || userID != session.UserID {
		m.log.Warn(ctx, "session token failed verification, purging", "user_id", session.UserID)
		return nil, nil, m.Destroy(ctx)
	}

	userData, err := store.Get(ctx, kvstore.KeyCurrentUser)
	if err != nil {
		return nil, nil, err
	}
	var projection models.PublicUser
	if userData == nil || json.Unmarshal(userData, &projection) != nil {
		// invariant broken: unexpired session without a usable projection
		m.log.Warn(ctx, "session present but user projection unusable, purging", "user_id", session.UserID)
		return nil, nil, m.Destroy(ctx)
	}

	m.armTimer(session.ExpiresAt.Sub(m.now()))

	return &session, &projection, nil
}

// Destroy purges the session and the user projection. The permanent user
// directory and salts are untouched. Safe to call with no session present.
func (m *SessionManager) Destroy(ctx context.Context) error {
	m.stopTimer()

	return dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		store := kvstore.NewSQLiteStore(tx)
		if err := store.Delete(ctx, kvstore.KeySession); err != nil {
			return err
		}
		return store.Delete(ctx, kvstore.KeyCurrentUser)
	})
}

// SaveProjection rewrites the public user projection, e.g. after a profile
// update. Fails with common.ErrNotAuthenticated when no session exists.
func (m *SessionManager) SaveProjection(ctx context.Context, projection models.PublicUser) error {
	store := kvstore.NewSQLiteStore(m.db)

	data, err := store.Get(ctx, kvstore.KeySession)
	if err != nil {
		return err
	}
	if data == nil {
		return common.ErrNotAuthenticated
	}

	return putJSON(ctx, store, kvstore.KeyCurrentUser, projection)
}

// WithClock replaces the time source. Test helper.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	m.now = now
	return m
}

// WithTTLs overrides the session lifetimes; zero values keep the defaults.
func (m *SessionManager) WithTTLs(sessionTTL, rememberTTL time.Duration) *SessionManager {
	if sessionTTL > 0 {
		m.sessionTTL = sessionTTL
	}
	if rememberTTL > 0 {
		m.rememberTTL = rememberTTL
	}
	return m
}

func (m *SessionManager) ensureSecret(ctx context.Context) ([]byte, error) {
	store := kvstore.NewSQLiteStore(m.db)

	secret, err := store.Get(ctx, kvstore.KeySigningSecret)
	if err != nil {
		return nil, err
	}
	if secret != nil {
		return secret, nil
	}

	secret = common.GenerateRandByteArray(signingSecretSize)
	if err := store.Set(ctx, kvstore.KeySigningSecret, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

// armTimer schedules a one-shot purge for the remaining session lifetime.
// The timer only exists while the process is alive; cold starts rely on the
// lazy check in Load.
func (m *SessionManager) armTimer(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(d, func() {
		ctx := context.Background()
		if err := m.Destroy(ctx); err != nil {
			m.log.Error(ctx, "failed to purge expired session", "error", err)
			return
		}
		m.log.Info(ctx, "session expired by timer")
		if m.OnExpire != nil {
			m.OnExpire()
		}
	})
}

func (m *SessionManager) stopTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func putJSON(ctx context.Context, store kvstore.Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data)
}
