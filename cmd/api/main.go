package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/feermza/sistema-justificaciones/internal/api/http"
	"github.com/feermza/sistema-justificaciones/internal/api/http/handlers"
	"github.com/feermza/sistema-justificaciones/internal/auth"
	"github.com/feermza/sistema-justificaciones/internal/config"
	"github.com/feermza/sistema-justificaciones/internal/events"
	"github.com/feermza/sistema-justificaciones/internal/mail"
	"github.com/feermza/sistema-justificaciones/internal/media"
	"github.com/feermza/sistema-justificaciones/internal/observability"
	"github.com/feermza/sistema-justificaciones/internal/persistence"
	"github.com/feermza/sistema-justificaciones/internal/repository"
	"github.com/feermza/sistema-justificaciones/internal/service"
	"github.com/feermza/sistema-justificaciones/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	agenteRepo := repository.NewAgenteRepository(pool)
	tipoRepo := repository.NewTipoLicenciaRepository(pool)
	credencialRepo := repository.NewCredencialRepository(pool)
	solicitudRepo := repository.NewSolicitudRepository(pool)

	tokens := auth.NewTokenManager(cfg.Auth.TokenSecret, cfg.Auth.SessionTTL(), cfg.Auth.ActivationTTL())
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	mailer := mail.NewMailer(cfg.Mail, logger)
	documentos := media.NewGeneradorPDF(cfg.Media, logger)
	adjuntos := media.NewAlmacenAdjuntos(cfg.Media)

	solicitudService := service.NewSolicitudService(service.SolicitudDependencies{
		SolicitudRepo: solicitudRepo,
		AgenteRepo:    agenteRepo,
		TipoRepo:      tipoRepo,
		Adjuntos:      adjuntos,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	activacionService := service.NewActivacionService(service.ActivacionDependencies{
		AgenteRepo:     agenteRepo,
		CredencialRepo: credencialRepo,
		Tokens:         tokens,
		TokensUsados:   redis,
		Dispatcher:     dispatcher,
		BcryptCost:     cfg.Auth.BcryptCost,
		Logger:         logger,
	})
	agenteService := service.NewAgenteService(agenteRepo, logger)
	notificaciones := service.NewNotificacionService(dispatcher, mailer, documentos, logger)
	worker.StartNotificacionWorker(notificaciones)

	authMiddleware := auth.NewAuthMiddleware(tokens, agenteRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: 20 * 1024 * 1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Agentes:        handlers.NewAgentesHandler(activacionService, agenteService),
		Solicitudes:    handlers.NewSolicitudesHandler(solicitudService),
		Licencias:      handlers.NewLicenciasHandler(tipoRepo),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
