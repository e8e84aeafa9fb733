package main

import (
	"context"
	"expvar"
	"log"
	"runtime"
	"time"

	"github.com/arvidfm/codeshare/internal/admission"
	"github.com/arvidfm/codeshare/internal/infrastructure/configs"
	"github.com/arvidfm/codeshare/internal/infrastructure/mailer"
	"github.com/arvidfm/codeshare/internal/infrastructure/ratelimiter"
	"github.com/arvidfm/codeshare/internal/infrastructure/repository"
	"github.com/arvidfm/codeshare/internal/infrastructure/sign"
	"github.com/arvidfm/codeshare/internal/infrastructure/tracing"
	"github.com/arvidfm/codeshare/internal/infrastructure/ws"
	"github.com/arvidfm/codeshare/internal/presentation/api"
	"github.com/arvidfm/codeshare/internal/presentation/handler/health"
	"github.com/arvidfm/codeshare/internal/presentation/handler/rooms"
	"go.uber.org/zap"
)

func main() {
	logger := zap.Must(zap.NewProduction()).Sugar()
	defer logger.Sync()

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if cfg.Sign.Secret == "" {
		log.Fatal("sign.secret is required: decision links are useless without it")
	}

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(tracing.Config{
			ServiceName: cfg.Tracing.ServiceName,
			Environment: cfg.Tracing.Environment,
			Endpoint:    cfg.Tracing.Endpoint,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	roomRepository := repository.NewRoomRepository(cfg.RoomStore.Capacity, cfg.RoomStore.TTL)
	signer := sign.New([]byte(cfg.Sign.Secret))
	smtp := mailer.NewSMTP(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password, cfg.Mail.From)
	dispatcher := admission.NewDispatcher(smtp, signer, cfg.Mail.FrontendURL, cfg.Sign.LinkTTL)
	service := admission.NewService(roomRepository, dispatcher, signer, cfg.RoomStore.TTL, logger)

	hub := ws.NewHub()
	go hub.Run()

	roomHandler := rooms.NewHandler(service, hub, logger)
	healthHandler := health.NewHandler()
	rateLimiter := ratelimiter.NewFixedWindowRateLimiter(cfg.RateLimiter.RequestsPerTimeFrame, cfg.RateLimiter.TimeFrame)
	defer rateLimiter.Close()

	app := api.NewApplication(*cfg, roomHandler, healthHandler, logger, rateLimiter)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	logger.Fatal(app.Run(mux))
}
