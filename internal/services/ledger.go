package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/coinkeeper/internal/common"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/models"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/records"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// actorProvider supplies the current signed-in user. Satisfied by
// *AuthService; tests can stub it.
type actorProvider interface {
	CurrentUser() *models.PublicUser
}

// RecordInput is the user-supplied part of a transaction.
type RecordInput struct {
	Amount      float64   `validate:"required,gt=0"`
	Description string    `validate:"max=200"`
	Category    string    `validate:"required"`
	Date        time.Time `validate:"required"`
}

// LedgerService implements expense/income CRUD, every record scoped to the
// signed-in user.
type LedgerService struct {
	repo     records.Repository
	actor    actorProvider
	log      logging.Logger
	validate *validator.Validate
	now      func() time.Time
}

func NewLedgerService(repo records.Repository, actor actorProvider, log logging.Logger) *LedgerService {
	return &LedgerService{
		repo:     repo,
		actor:    actor,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Add creates a new transaction of the given kind for the current user.
func (s *LedgerService) Add(ctx context.Context, kind models.RecordKind, in RecordInput) (*models.Record, error) {
	user, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	rec := &models.Record{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Kind:        kind,
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date.UTC(),
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "record added", "kind", kind, "id", rec.ID, "user_id", user.ID)
	return rec, nil
}

// Update replaces the editable fields of an existing transaction.
func (s *LedgerService) Update(ctx context.Context, kind models.RecordKind, id string, in RecordInput) (*models.Record, error) {
	user, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	rec, err := s.repo.Get(ctx, kind, user.ID, id)
	if err != nil {
		return nil, err
	}

	rec.Amount = in.Amount
	rec.Description = in.Description
	rec.Category = in.Category
	rec.Date = in.Date.UTC()

	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "record updated", "kind", kind, "id", id, "user_id", user.ID)
	return rec, nil
}

// Delete removes one of the current user's transactions.
func (s *LedgerService) Delete(ctx context.Context, kind models.RecordKind, id string) error {
	user, err := s.requireUser()
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, kind, user.ID, id); err != nil {
		return err
	}

	s.log.Debug(ctx, "record deleted", "kind", kind, "id", id, "user_id", user.ID)
	return nil
}

// List returns the current user's transactions of one kind, newest first.
func (s *LedgerService) List(ctx context.Context, kind models.RecordKind) ([]models.Record, error) {
	user, err := s.requireUser()
	if err != nil {
		return nil, err
	}
	return s.repo.ListByUser(ctx, kind, user.ID)
}

func (s *LedgerService) requireUser() (*models.PublicUser, error) {
	user := s.actor.CurrentUser()
	if user == nil {
		return nil, common.ErrNotAuthenticated
	}
	return user, nil
}
