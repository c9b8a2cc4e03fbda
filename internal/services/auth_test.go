package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/resetcodes"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

type authEnv struct {
	auth     *AuthService
	users    *users.KVRepository
	codes    *resetcodes.KVRepository
	sessions *SessionManager
	store    *kvstore.SQLiteStore
	clock    *fakeClock
}

func setupAuth(t *testing.T) *authEnv {
	t.Helper()

	db, err := kvstore.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := newFakeClock()
	store := kvstore.NewSQLiteStore(db)
	userRepo := users.NewKVRepository(db)
	codeRepo := resetcodes.NewKVRepository(store)
	sessions := NewSessionManager(db, logging.NopLogger{}).WithClock(clock.Now)
	auth := NewAuthService(userRepo, codeRepo, sessions, store, logging.NopLogger{}).WithClock(clock.Now)

	return &authEnv{auth: auth, users: userRepo, codes: codeRepo, sessions: sessions, store: store, clock: clock}
}

func (e *authEnv) digestOf(t *testing.T, email string) string {
	t.Helper()
	u, err := e.users.GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.PasswordDigest
}

// ---- sign-up / sign-in ----

func TestSignUpThenSignIn_SameUser(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	created, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	require.NoError(t, env.auth.SignOut(ctx))

	signedIn, err := env.auth.SignIn(ctx, "alice@example.com", "password1", false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, signedIn.ID)
}

func TestSignUp_SetsCurrentUserAndSession(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	created, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	current := env.auth.CurrentUser()
	require.NotNil(t, current)
	assert.Equal(t, created.ID, current.ID)

	session, _, err := env.sessions.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, created.ID, session.UserID)
}

func TestSignUp_DuplicateEmail_DirectoryUnchanged(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	before := env.digestOf(t, "alice@example.com")

	_, err = env.auth.SignUp(ctx, "alice@example.com", "Mallory", "different1")
	require.ErrorIs(t, err, common.ErrDuplicateEmail)

	u, err := env.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, before, u.PasswordDigest)
}

func TestSignUp_Validation(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		userName string
		password string
	}{
		{name: "empty email", email: "", userName: "Alice", password: "password1"},
		{name: "malformed email", email: "not-an-email", userName: "Alice", password: "password1"},
		{name: "empty name", email: "a@b.cd", userName: "", password: "password1"},
		{name: "short password", email: "a@b.cd", userName: "Alice", password: "12345"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.auth.SignUp(ctx, tc.email, tc.userName, tc.password)
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Nil(t, env.auth.CurrentUser())
		})
	}
}

func TestSignIn_UnknownEmail(t *testing.T) {
	env := setupAuth(t)

	_, err := env.auth.SignIn(context.Background(), "nobody@example.com", "password1", false)
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestSignIn_WrongPassword_DigestUnchanged(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx))
	before := env.digestOf(t, "alice@example.com")

	_, err = env.auth.SignIn(ctx, "alice@example.com", "wrong-password", false)
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	assert.Equal(t, before, env.digestOf(t, "alice@example.com"))
	assert.Nil(t, env.auth.CurrentUser())
}

func TestSignIn_MissingSaltIsCorruption(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	created, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx))
	before := env.digestOf(t, "alice@example.com")

	// simulate lost salt; a wrong password must NOT become "correct"
	require.NoError(t, env.store.Delete(ctx, kvstore.SaltKey(created.ID)))

	_, err = env.auth.SignIn(ctx, "alice@example.com", "totally-wrong", false)
	require.ErrorIs(t, err, common.ErrStorageCorrupted)

	assert.Equal(t, before, env.digestOf(t, "alice@example.com"))
}

// ---- sign-out / restore ----

func TestSignOut_Idempotent(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	require.NoError(t, env.auth.SignOut(ctx))
	require.NoError(t, env.auth.SignOut(ctx))

	session, _, err := env.sessions.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
	assert.Nil(t, env.auth.CurrentUser())
}

func TestRestore_ColdStart(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	created, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	// a fresh facade over the same storage, as after an app restart
	auth2 := NewAuthService(env.users, env.codes, env.sessions, env.store, logging.NopLogger{}).WithClock(env.clock.Now)

	restored, err := auth2.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, created.ID, restored.ID)
}

func TestRestore_ExpiredSessionYieldsLoggedOut(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	env.clock.Advance(8 * 24 * time.Hour) // sign-up sessions use the remember window

	restored, err := env.auth.Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

// ---- password reset ----

func TestPasswordReset_FullFlow(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx))

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "alice@example.com"))

	issued, err := env.codes.Get(ctx, "alice@example.com")
	require.NoError(t, err)

	env.clock.Advance(2 * time.Minute) // still inside the 5-minute window
	require.NoError(t, env.auth.ResetPassword(ctx, "alice@example.com", issued.Code, "password2"))

	// old password no longer works, new one does
	_, err = env.auth.SignIn(ctx, "alice@example.com", "password1", false)
	require.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, err = env.auth.SignIn(ctx, "alice@example.com", "password2", false)
	require.NoError(t, err)

	// the code was consumed and cannot be replayed
	err = env.auth.ResetPassword(ctx, "alice@example.com", issued.Code, "password3")
	require.ErrorIs(t, err, common.ErrNoResetCode)
}

func TestRequestPasswordReset_UnknownEmail(t *testing.T) {
	env := setupAuth(t)

	err := env.auth.RequestPasswordReset(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestRequestPasswordReset_OverwritesPriorCode(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "alice@example.com"))
	first, err := env.codes.Get(ctx, "alice@example.com")
	require.NoError(t, err)

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "alice@example.com"))
	second, err := env.codes.Get(ctx, "alice@example.com")
	require.NoError(t, err)

	if first.Code != second.Code {
		// practically always: the first code is gone
		err = env.auth.ResetPassword(ctx, "alice@example.com", first.Code, "password2")
		require.ErrorIs(t, err, common.ErrInvalidCode)
	}
}

func TestResetPassword_ExpiredCode(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	before := env.digestOf(t, "alice@example.com")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "alice@example.com"))
	issued, err := env.codes.Get(ctx, "alice@example.com")
	require.NoError(t, err)

	env.clock.Advance(6 * time.Minute)

	err = env.auth.ResetPassword(ctx, "alice@example.com", issued.Code, "password2")
	require.ErrorIs(t, err, common.ErrCodeExpired)
	assert.Equal(t, before, env.digestOf(t, "alice@example.com"))

	// the expired code was dropped
	err = env.auth.ResetPassword(ctx, "alice@example.com", issued.Code, "password2")
	require.ErrorIs(t, err, common.ErrNoResetCode)
}

func TestResetPassword_WrongCode(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	before := env.digestOf(t, "alice@example.com")

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "alice@example.com"))
	issued, err := env.codes.Get(ctx, "alice@example.com")
	require.NoError(t, err)

	wrong := "000000"
	if issued.Code == wrong {
		wrong = "111111"
	}

	err = env.auth.ResetPassword(ctx, "alice@example.com", wrong, "password2")
	require.ErrorIs(t, err, common.ErrInvalidCode)
	assert.Equal(t, before, env.digestOf(t, "alice@example.com"))
}

// failingUsers makes every credentials update fail, simulating a write error
// mid-reset.
type failingUsers struct {
	users.Repository
}

func (f *failingUsers) UpdateCredentials(context.Context, string, string, []byte) error {
	return errors.New("disk full")
}

func TestResetPassword_FailedWriteKeepsOldCredentials(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	_, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)
	require.NoError(t, env.auth.SignOut(ctx))

	require.NoError(t, env.auth.RequestPasswordReset(ctx, "alice@example.com"))
	issued, err := env.codes.Get(ctx, "alice@example.com")
	require.NoError(t, err)

	// the same storage behind a facade whose credential writes fail
	broken := NewAuthService(&failingUsers{env.users}, env.codes, env.sessions, env.store,
		logging.NopLogger{}).WithClock(env.clock.Now)

	err = broken.ResetPassword(ctx, "alice@example.com", issued.Code, "password2")
	require.Error(t, err)

	// the old password still works: digest and salt were never split
	_, err = env.auth.SignIn(ctx, "alice@example.com", "password1", false)
	require.NoError(t, err)

	// the new one never took effect
	require.NoError(t, env.auth.SignOut(ctx))
	_, err = env.auth.SignIn(ctx, "alice@example.com", "password2", false)
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestResetPassword_NoOutstandingCode(t *testing.T) {
	env := setupAuth(t)

	err := env.auth.ResetPassword(context.Background(), "alice@example.com", "123456", "password2")
	require.ErrorIs(t, err, common.ErrNoResetCode)
}

// ---- profile ----

func TestUpdateProfile_RequiresAuth(t *testing.T) {
	env := setupAuth(t)

	_, err := env.auth.UpdateProfile(context.Background(), "New Name", "")
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestUpdateProfile_UpdatesDirectoryAndProjection(t *testing.T) {
	env := setupAuth(t)
	ctx := context.Background()

	created, err := env.auth.SignUp(ctx, "alice@example.com", "Alice", "password1")
	require.NoError(t, err)

	updated, err := env.auth.UpdateProfile(ctx, "Alice B", "alice@new.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "alice@new.com", updated.Email)

	// directory entry follows
	u, err := env.users.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B", u.Name)
	assert.Equal(t, "alice@new.com", u.Email)

	// persisted projection follows too
	_, projection, err := env.sessions.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, projection)
	assert.Equal(t, "Alice B", projection.Name)
}
