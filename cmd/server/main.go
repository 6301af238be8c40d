package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"campusnest/internal/app"
	"campusnest/internal/config"
	"campusnest/internal/dataclient"
	"campusnest/internal/objstore"
	"campusnest/internal/server"
	"campusnest/internal/store"
	"campusnest/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	sessions := store.NewRedisSessionStore(cfg.RedisAddr, cfg.RedisPassword, cfg.SessionSecret, sessionTTL)
	appCore, err := app.New(app.Config{
		Data:                dataclient.NewClient(cfg.DataServiceURL, cfg.DataServiceKey),
		Objects:             objstore.NewClient(cfg.DataServiceURL, cfg.DataServiceKey),
		Sessions:            sessions,
		PlaceholderImageURL: cfg.PlaceholderImageURL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		TrustedProxies:             trustedProxies,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		ReportRateLimitPerMinute:   cfg.ReportRateLimitPerMinute,
		CookieName:                 cfg.SessionCookieName,
		CookieDomain:               cfg.SessionCookieDomain,
		CookieSecure:               cfg.SessionCookieSecure,
		CookieSameSite:             cfg.SessionCookieSameSite,
		SessionTTL:                 sessionTTL,
		MaxUploadBytes:             cfg.MaxUploadBytes,
		AllowedImageExtensions:     cfg.AllowedImageExtensions,
		AllowedDocumentExtensions:  cfg.AllowedDocumentExtensions,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	handler := util.WithRequestID(util.WithRequestLog("campusnest", httpServer.Router()))

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
