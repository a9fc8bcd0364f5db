// Package app ties the domain services together.
package app

import (
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/auth"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/notify"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/services/accounts"
	savingssvc "github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/services/savings"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/app/storage/memory"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/internal/config"
	"github.com/Kanjo-Elkamira-Ndi/PiggyVest/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to
// the in-memory implementation.
type Stores struct {
	Users   storage.UserStore
	Savings storage.SavingsStore
}

// Application wires the account lifecycle and savings services.
type Application struct {
	log *logger.Logger

	Accounts *accounts.Service
	Savings  *savingssvc.Service
	Tokens   *auth.TokenService
}

// New builds a fully initialised application with the provided stores.
func New(cfg *config.Config, stores Stores, notifier notify.Notifier, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	if stores.Users == nil || stores.Savings == nil {
		mem := memory.New()
		if stores.Users == nil {
			stores.Users = mem
		}
		if stores.Savings == nil {
			stores.Savings = mem
		}
	}

	if notifier == nil {
		notifier = notify.NewLogSender(log)
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)

	accountsSvc := accounts.New(stores.Users, tokens, notifier, log,
		accounts.WithCodeTTL(cfg.Auth.CodeTTL),
		accounts.WithBcryptCost(cfg.Auth.BcryptCost),
	)
	savingsSvc := savingssvc.New(stores.Savings, stores.Users, log)

	return &Application{
		log:      log,
		Accounts: accountsSvc,
		Savings:  savingsSvc,
		Tokens:   tokens,
	}, nil
}
