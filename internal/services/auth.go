package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/cryptox"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/resetcodes"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/users"
	"github.com/go-playground/validator/v10"
)

const (
	resetCodeTTL    = 5 * time.Minute
	resetCodeDigits = 6
)

// AuthService orchestrates sign-up, sign-in, sign-out, password reset and
// profile updates against the user directory, the session manager and the
// password hasher. It is the sole owner of the "current user" state; other
// services read the current actor through it.
//
// Every operation validates its inputs before touching storage, so prior
// state is untouched on validation failure.
type AuthService struct {
	users    users.Repository
	codes    resetcodes.Repository
	sessions *SessionManager
	salts    kvstore.Store
	log      logging.Logger
	validate *validator.Validate
	now      func() time.Time

	mu      sync.RWMutex
	current *models.PublicUser
}

func NewAuthService(
	userRepo users.Repository,
	codeRepo resetcodes.Repository,
	sessions *SessionManager,
	salts kvstore.Store,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		users:    userRepo,
		codes:    codeRepo,
		sessions: sessions,
		salts:    salts,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

type signUpInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required,min=6"`
}

type signInInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignUp registers a new account and signs it in (remember=true, matching
// the mobile app's behavior). Returns common.ErrDuplicateEmail when the
// email is already registered.
func (s *AuthService) SignUp(ctx context.Context, email, name, password string) (*models.PublicUser, error) {
	in := signUpInput{Email: email, Name: name, Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	salt := cryptox.GenerateSalt()
	digest := cryptox.DigestPassword([]byte(password), salt)

	user, err := s.users.Create(ctx, &models.User{
		Email:          email,
		Name:           name,
		PasswordDigest: digest,
	}, []byte(cryptox.EncodeSalt(salt)))
	if err != nil {
		return nil, err
	}

	if _, err := s.sessions.Create(ctx, user, true); err != nil {
		return nil, err
	}

	projection := user.Public()
	s.setCurrent(&projection)

	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return &projection, nil
}

// SignIn authenticates the email/password pair and creates a session.
//
// A user whose salt is missing from storage is rejected with
// common.ErrStorageCorrupted: a missing salt is unrecoverable state, never
// an implicit password reset.
func (s *AuthService) SignIn(ctx context.Context, email, password string, remember bool) (*models.PublicUser, error) {
	in := signInInput{Email: email, Password: password}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	salt, err := s.loadSalt(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if !cryptox.VerifyDigest(user.PasswordDigest, []byte(password), salt) {
		s.log.Warn(ctx, "sign-in rejected", "user_id", user.ID)
		return nil, common.ErrInvalidCredentials
	}

	if _, err := s.sessions.Create(ctx, user, remember); err != nil {
		return nil, err
	}

	projection := user.Public()
	s.setCurrent(&projection)

	s.log.Info(ctx, "user signed in", "user_id", user.ID, "remember", remember)
	return &projection, nil
}

// SignOut destroys the session, if any. Idempotent.
func (s *AuthService) SignOut(ctx context.Context) error {
	if err := s.sessions.Destroy(ctx); err != nil {
		return err
	}
	s.setCurrent(nil)
	s.log.Info(ctx, "user signed out")
	return nil
}

// Restore loads a persisted unexpired session at startup and makes its user
// the current actor. No error when no session exists.
func (s *AuthService) Restore(ctx context.Context) (*models.PublicUser, error) {
	_, projection, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	s.setCurrent(projection)
	return projection, nil
}

// RequestPasswordReset issues a 6-digit code with a 5-minute expiry,
// overwriting any prior outstanding code for the email. Real email delivery
// is out of scope; the code is handed to the log.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return err
	}

	code, err := common.MakeNumericCode(resetCodeDigits)
	if err != nil {
		return err
	}

	expiry := s.now().Add(resetCodeTTL).UTC()
	if err := s.codes.Save(ctx, email, models.ResetCode{Code: code, Expiry: expiry}); err != nil {
		return err
	}

	// delivery stub: there is no mail transport in a local-only build
	s.log.Info(ctx, "password reset code issued", "email", email, "code", code, "expires_at", expiry)
	return nil
}

// ResetPassword confirms the reset code and replaces the user's salt and
// digest. The code is consumed on success; an expired code is deleted when
// detected. The stored digest is unchanged on every failure path.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := s.validate.Var(newPassword, "required,min=6"); err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	stored, err := s.codes.Get(ctx, email)
	if err != nil {
		return err
	}

	if stored.Expired(s.now()) {
		_ = s.codes.Delete(ctx, email)
		return common.ErrCodeExpired
	}

	if subtle.ConstantTimeCompare([]byte(stored.Code), []byte(code)) != 1 {
		return common.ErrInvalidCode
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	salt := cryptox.GenerateSalt()
	digest := cryptox.DigestPassword([]byte(newPassword), salt)

	// digest and salt land in one transaction: a failure here leaves the
	// old credential pair intact
	if err := s.users.UpdateCredentials(ctx, user.ID, digest, []byte(cryptox.EncodeSalt(salt))); err != nil {
		return err
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		return err
	}

	s.log.Info(ctx, "password reset", "user_id", user.ID)
	return nil
}

// UpdateProfile merges non-empty fields into the directory entry and the
// public projection. Fails with common.ErrNotAuthenticated without an
// active session.
func (s *AuthService) UpdateProfile(ctx context.Context, name, email string) (*models.PublicUser, error) {
	current := s.CurrentUser()
	if current == nil {
		return nil, common.ErrNotAuthenticated
	}
	if email != "" {
		if err := s.validate.Var(email, "email"); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
		}
	}

	user, err := s.users.UpdateProfile(ctx, current.ID, name, email)
	if err != nil {
		return nil, err
	}

	projection := user.Public()
	if err := s.sessions.SaveProjection(ctx, projection); err != nil {
		return nil, err
	}
	s.setCurrent(&projection)

	s.log.Info(ctx, "profile updated", "user_id", user.ID)
	return &projection, nil
}

// CurrentUser returns a copy of the signed-in user's public projection, or
// nil when nobody is signed in.
func (s *AuthService) CurrentUser() *models.PublicUser {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

// WithClock replaces the time source. Test helper.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) setCurrent(u *models.PublicUser) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = u
}

func (s *AuthService) loadSalt(ctx context.Context, userID string) ([]byte, error) {
	data, err := s.salts.Get(ctx, kvstore.SaltKey(userID))
	if err != nil {
		return nil, err
	}
	if data == nil {
		s.log.Error(ctx, "salt missing for user, storage corrupted", "user_id", userID)
		return nil, fmt.Errorf("%w: missing salt for user %s", common.ErrStorageCorrupted, userID)
	}

	salt, err := cryptox.DecodeSalt(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: malformed salt for user %s", common.ErrStorageCorrupted, userID)
	}
	return salt, nil
}
