package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuceimatch/matchcore/internal/client"
	"github.com/cuceimatch/matchcore/internal/config"
	"github.com/cuceimatch/matchcore/internal/db"
	"github.com/cuceimatch/matchcore/internal/handler"
	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/cuceimatch/matchcore/internal/observability"
	"github.com/cuceimatch/matchcore/internal/service"
	"github.com/cuceimatch/matchcore/internal/storage"
)

// credentialStore - STORAGE_DRIVER에 따라 선택되는 저장소
type credentialStore interface {
	Load(ctx context.Context) (model.PersistedSession, error)
	Save(ctx context.Context, session model.PersistedSession) error
	Clear(ctx context.Context) error
}

func main() {
	cfg := config.Load()

	if err := observability.InitSentry(cfg.Sentry.DSN, cfg.Sentry.Environment); err != nil {
		log.Printf("[Main] Failed to init sentry: %v", err)
	}
	defer observability.FlushSentry()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("[Main] Failed to open credential store: %v", err)
	}
	defer closeStore()

	// 코어 컴포넌트 연결: API 클라이언트 ← 세션 매니저(Renewer)
	hub := service.NewHub()
	api := client.NewAPIClient(cfg.API, store)
	sessions := service.NewSessionManager(store, api, hub)
	api.SetRenewer(sessions)

	matches := service.NewMatchRegistry(api)
	swipes := service.NewSwipeService(api, matches, hub, cfg.Swipe.AutoRefill)

	// 갱신 실패로 세션이 무효화되면 세션에 묶인 상태 정리
	invalidations, cancelInvalidations := hub.Subscribe(0)
	defer cancelInvalidations()
	go func() {
		for evt := range invalidations {
			if evt.Type != model.EventSessionInvalidated {
				continue
			}
			swipes.Detach()
			matches.Reset()
		}
	}()

	if cfg.Notify.WebhookURL != "" {
		relayEvents, cancelRelay := hub.Subscribe(0)
		defer cancelRelay()
		relay := service.NewNotificationRelay(cfg.Notify.WebhookURL, cfg.Notify.MatchTemplate)
		go relay.Run(ctx, relayEvents)
		log.Printf("[Main] Notification relay enabled")
	}

	sessions.Restore(ctx)

	router := handler.NewRouter(handler.Services{
		Sessions: sessions,
		Swipes:   swipes,
		Matches:  matches,
		Events:   hub,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}
	go func() {
		log.Printf("[Main] Bridge listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("[Main] Bridge stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Printf("[Main] Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Main] Failed to shut down bridge: %v", err)
	}
}

func openStore(ctx context.Context, cfg config.Config) (credentialStore, func(), error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStore(), func() {}, nil
	case "postgres":
		pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		pg := db.NewPostgres(pool, cfg.Storage.Namespace)
		if err := pg.EnsureSessionSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pg, pool.Close, nil
	case "file", "":
		fs, err := storage.NewFileStore(cfg.Storage.FilePath, cfg.Storage.Namespace, cfg.Storage.Secret)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
