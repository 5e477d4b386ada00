package main

import (
	"log"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"tellweb/internal/config"
	"tellweb/internal/handlers"
	"tellweb/internal/repositories"
	"tellweb/internal/services"
)

type application struct {
	infoLog  *log.Logger
	errorLog *log.Logger

	signupHandler   *handlers.SignupHandler
	checkoutHandler *handlers.CheckoutHandler
	webhookHandler  *handlers.WebhookHandler
	authHandler     *handlers.AuthHandler
	accountHandler  *handlers.AccountHandler
	pagesHandler    *handlers.PagesHandler
}

func initializeApp(cfg config.Config, rdb *redis.Client, logger *slog.Logger, infoLog, errorLog *log.Logger) (*application, error) {
	platform, err := services.NewPlatformService(services.PlatformConfig{
		BaseURL: cfg.Platform.URL,
		APIKey:  cfg.Platform.APIKey,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}

	polar, err := services.NewPolarService(services.PolarConfig{
		BaseURL:       cfg.PolarURL(),
		AccessToken:   cfg.Polar.AccessToken,
		WebhookSecret: cfg.Polar.WebhookSecret,
		SuccessURL:    cfg.Polar.SuccessURL,
		Logger:        logger,
	})
	if err != nil {
		return nil, err
	}

	var sessions repositories.SessionStore
	var claims repositories.ClaimStore
	if rdb != nil {
		sessions = &repositories.RedisSessionStore{RDB: rdb}
		claims = &repositories.RedisClaimStore{RDB: rdb}
	} else {
		sessions = repositories.NewMemorySessionStore()
		claims = repositories.NewMemoryClaimStore()
	}

	watcher := &services.LicenseWatcher{
		Fetcher:     platform,
		Interval:    cfg.WaitInterval(),
		MaxAttempts: cfg.WaitMaxAttempts(),
		Logger:      logger,
	}

	return &application{
		infoLog:  infoLog,
		errorLog: errorLog,
		signupHandler: &handlers.SignupHandler{
			Platform:     platform,
			ProProductID: cfg.Polar.ProProductID,
			Logger:       logger,
		},
		checkoutHandler: &handlers.CheckoutHandler{Polar: polar, Logger: logger},
		webhookHandler: &handlers.WebhookHandler{
			Polar:    polar,
			Platform: platform,
			Claims:   claims,
			Logger:   logger,
		},
		authHandler: &handlers.AuthHandler{
			Platform:   platform,
			Sessions:   sessions,
			SessionTTL: cfg.SessionTTL(),
			Logger:     logger,
		},
		accountHandler: &handlers.AccountHandler{
			Platform: platform,
			Watcher:  watcher,
			Sessions: sessions,
			Logger:   logger,
		},
		pagesHandler: &handlers.PagesHandler{Logger: logger},
	}, nil
}
