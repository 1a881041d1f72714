package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"insights/internal/amqp"
	"insights/internal/services"
	"insights/internal/storage"
	"insights/internal/store/google"
	"insights/internal/store/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		result *BackendResult
		err    error
	)
	switch config.Type {
	case SQLiteBackend:
		result, err = f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		result, err = f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		result, err = f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	f.attachPublisher(result, config)
	return result, nil
}

// attachPublisher connects the optional AMQP publisher. A broker that cannot
// be reached disables events but never the backend.
func (f *DefaultFactory) attachPublisher(result *BackendResult, config Config) {
	if !config.AMQPEnabled() {
		return
	}

	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)

	result.Publisher = client
	backendCleanup := result.Cleanup
	result.Cleanup = func() error {
		var errs []error
		if backendCleanup != nil {
			errs = append(errs, backendCleanup())
		}
		errs = append(errs, client.Close())
		return errors.Join(errs...)
	}
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	if config.DataDirectory != "" {
		if err := f.seedSQLite(ctx, repo, config.DataDirectory); err != nil {
			repo.Close()
			return nil, err
		}
	}

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

// seedSQLite upserts the transactions of dir/transactions.json, if present,
// into repo.
func (f *DefaultFactory) seedSQLite(ctx context.Context, repo *storage.SQLiteRepository, dir string) error {
	seed, err := memory.NewFromFiles(dir)
	if err != nil {
		return fmt.Errorf("failed to read transaction seed: %w", err)
	}

	n, err := services.NewImporter(seed, repo, services.DefaultBatchSize).Import(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed SQLite transactions: %w", err)
	}
	if n > 0 {
		f.logger.Info("Seeded SQLite transactions", "count", n, "data_directory", dir)
	}
	return nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, google.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		CredentialsJSON: config.GoogleServiceAccountJSON,
		CredentialsFile: config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend", "spreadsheet_id", config.GoogleSpreadsheetID)

	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}

	st, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &BackendResult{Backend: st}, nil
}
