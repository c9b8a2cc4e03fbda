// Package cli implements the interactive CoinKeeper command-line client.
package cli

import (
	"bufio"
	"context"
	"log/slog"
	"os"

	"github.com/dmitrijs2005/coinkeeper/internal/config"
	"github.com/dmitrijs2005/coinkeeper/internal/logging"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/kvstore"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/records"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/resetcodes"
	"github.com/dmitrijs2005/coinkeeper/internal/repositories/users"
	"github.com/dmitrijs2005/coinkeeper/internal/services"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	auth   *services.AuthService
	ledger *services.LedgerService
	plans  *services.PlanService
	stats  *services.StatsService
	log    logging.Logger
	reader *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()

	db, err := kvstore.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	log := logging.NewDefault(os.Stderr, slog.LevelInfo)
	store := kvstore.NewSQLiteStore(db)

	sessions := services.NewSessionManager(db, log).WithTTLs(c.SessionTTL, c.RememberTTL)
	auth := services.NewAuthService(
		users.NewKVRepository(db),
		resetcodes.NewKVRepository(store),
		sessions,
		store,
		log,
	)
	ledger := services.NewLedgerService(records.NewKVRepository(store), auth, log)
	plans := services.NewPlanService(store, auth, log)
	stats := services.NewStatsService(ledger, plans)

	app := &App{
		config: c,
		auth:   auth,
		ledger: ledger,
		plans:  plans,
		stats:  stats,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
	}

	sessions.OnExpire = func() {
		printlnFn("Session expired, please log in again")
	}

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	// pick up a persisted session from a previous run
	if user, err := a.auth.Restore(ctx); err == nil && user != nil {
		printlnFn("Welcome back,", user.Name)
	}

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.auth.CurrentUser() != nil
}
