package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"herald/internal/audit"
	"herald/internal/auth"
	"herald/internal/config"
	herdb "herald/internal/db"
	"herald/internal/events"
	"herald/internal/handlers"
	"herald/internal/mail"
	"herald/internal/otel"
	"herald/internal/reports"
	"herald/internal/storage"
	"herald/internal/version"
	"herald/internal/workflow"
	"herald/pkg/bus"
	"herald/pkg/db"
	"herald/pkg/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	cleanup, err := otel.Init(ctx, version.Name, version.Version, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("init otel")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := cleanup(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown otel")
		}
	}()

	pool, err := db.Open(ctx, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open database pool")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	orm, err := db.OpenORM(cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("open orm")
	}
	defer func() {
		if err := db.CloseORM(orm); err != nil {
			log.Error().Err(err).Msg("close orm")
		}
	}()

	if err := herdb.Seed(ctx, orm, cfg.SeedAdminEmail, cfg.SeedAdminPass); err != nil {
		log.Fatal().Err(err).Msg("seed database")
	}

	tokens := auth.NewTokenManager(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.AccessTokenTTL)
	mailer := mail.NewSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	recorder := audit.NewRecorder(orm)

	var images *storage.Images
	if s3Client, err := s3.NewClientFromEnv(); err != nil {
		log.Warn().Err(err).Msg("object store unavailable, image uploads disabled")
	} else {
		images = storage.NewImages(s3Client, cfg.ImageBucket, cfg.ImageURLTTL)
	}

	var eventBus *bus.Bus
	if cfg.NATSURL != "" {
		eventBus, err = bus.New(cfg.NATSURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect nats")
		}
		defer eventBus.Close()
	}

	var wfBus workflow.Publisher
	if eventBus != nil {
		wfBus = eventBus
	}
	// Leave the interface nil when the client is absent; a typed-nil *Images
	// would satisfy the interface and panic on first use.
	var imageStore workflow.ImageStore
	if images != nil {
		imageStore = images
	}
	wf := workflow.NewService(orm, imageStore, recorder, wfBus)
	rep := reports.NewStore(pool)

	if eventBus != nil {
		notifier := events.NewNotifier(orm, mailer, cfg.FrontendURL)
		if err := notifier.Start(ctx, eventBus); err != nil {
			log.Fatal().Err(err).Msg("start newsletter notifier")
		}
		defer func() {
			if err := notifier.Close(); err != nil {
				log.Error().Err(err).Msg("close newsletter notifier")
			}
		}()
	}

	server := handlers.NewServer(cfg, orm, pool, tokens, wf, rep, images, mailer, recorder)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("starting heraldd")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}
}
