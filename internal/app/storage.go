package app

import (
	"context"
	"time"

	"github.com/adanyl0v/todo-reminders/internal/config"
	"github.com/adanyl0v/todo-reminders/internal/storage"
)

const storageCloseTimeout = 10 * time.Second

var globalTaskRepository storage.TaskRepository

func MustOpenStorage() {
	cfg := config.Global()
	logger := componentLogger("storage").With().
		Str("storage_driver", cfg.Storage.Driver).
		Logger()

	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		repo := storage.NewPostgresRepository(logger, mustConnectPostgres())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Postgres.ConnectTimeout)
		defer cancel()

		err := repo.Migrate(ctx)
		if err != nil {
			logger.Error().
				Err(err).
				Msg("failed to migrate postgres")
			panic(err)
		}
		globalTaskRepository = repo
	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
		defer cancel()

		repo, err := storage.OpenMongo(ctx, logger, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
		if err != nil {
			logger.Error().
				Err(err).
				Msg("failed to connect to mongo")
			panic(err)
		}
		globalTaskRepository = repo
	case config.DriverSQLite:
		repo, err := storage.OpenSQLite(context.Background(), logger, cfg.SQLite.Path)
		if err != nil {
			logger.Error().
				Err(err).
				Str("path", cfg.SQLite.Path).
				Msg("failed to open sqlite")
			panic(err)
		}
		globalTaskRepository = repo
	case config.DriverMemory:
		logger.Warn().Msg("tasks are kept in memory and lost on restart")
		globalTaskRepository = storage.NewMemoryRepository()
	default:
		logger.Error().Msg("unknown storage driver")
		panic(storage.ErrUnknownDriver)
	}

	logger.Info().Msg("opened task storage")
}

func CloseStorage() {
	ctx, cancel := context.WithTimeout(context.Background(), storageCloseTimeout)
	defer cancel()

	err := globalTaskRepository.Close(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to close task storage")
		return
	}
	globalLogger.Info().Msg("closed task storage")
}
