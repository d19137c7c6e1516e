package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-catalog/catalog/config"
	"github.com/Astemirdum/library-catalog/catalog/internal/handler"
	"github.com/Astemirdum/library-catalog/catalog/internal/repository"
	"github.com/Astemirdum/library-catalog/catalog/internal/server"
	"github.com/Astemirdum/library-catalog/catalog/internal/service"
	"github.com/Astemirdum/library-catalog/catalog/migrations"
	"github.com/Astemirdum/library-catalog/pkg/auth0"
	"github.com/Astemirdum/library-catalog/pkg/circuit_breaker"
	"github.com/Astemirdum/library-catalog/pkg/kafka"
	"github.com/Astemirdum/library-catalog/pkg/logger"
	"github.com/Astemirdum/library-catalog/pkg/postgres"
)

func Run(cfg *config.Config) error {
	log := logger.NewLogger(cfg.Log, "catalog")
	defer log.Sync() //nolint:errcheck

	repo, closeStore, err := openStore(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := newPublisher(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("kafka.NewProducer %v", err)
	}
	defer publisher.Close() //nolint:errcheck

	authMW, err := auth0.NewMiddleware(cfg.Auth0)
	if err != nil {
		return fmt.Errorf("auth0.NewMiddleware %v", err)
	}

	svc := service.NewService(repo, publisher, log)
	h := handler.New(svc, log, handler.WithAuth(authMW))
	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)),
		zap.String("store", cfg.Store.Driver))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err = srv.Stop(closeCtx); err != nil {
		log.Error("srv.Stop", zap.Error(err))
	}
	log.Info("Graceful shutdown finished")
	return nil
}

// openStore returns the configured catalog store and its release func.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Repository, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return repository.NewMemoryRepository(log), func() {}, nil
	case config.DriverPostgres, "":
		db, err := postgres.NewPostgresDB(ctx, &cfg.Database, migrations.MigrationFiles)
		if err != nil {
			return nil, nil, fmt.Errorf("db init %v", err)
		}
		repo, err := repository.NewRepository(db, log)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("repo %v", err)
		}
		return repo, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

type publisher interface {
	service.EventPublisher
	Close() error
}

func newPublisher(cfg kafka.Config) (publisher, error) {
	if !cfg.Enable {
		return kafka.NopPublisher{}, nil
	}
	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}
	return kafka.NewPublisher(producer, cfg.Topic, circuit_breaker.New(cfg.CB)), nil
}
