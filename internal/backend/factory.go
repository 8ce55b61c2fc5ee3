package backend

import (
	"context"
	"errors"
	"fmt"

	"ledger/internal/amqp"
	ledgerlog "ledger/internal/log"
	"ledger/internal/ports"
	"ledger/internal/storage"
	"ledger/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *ledgerlog.Logger
	// dial opens the broker connection; replaced in tests.
	dial func(url, exchange, queue string) (*amqp.Client, error)
}

func NewFactory(logger *ledgerlog.Logger) Factory {
	if logger == nil {
		logger = ledgerlog.New(ledgerlog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(ledgerlog.ComponentBackend),
		dial:   amqp.NewClient,
	}
}

// CreateBackend opens the configured store and, when a broker URL is set,
// an AMQP publisher. A broker that cannot be reached is logged and skipped:
// the ledger keeps working without the journal export.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store ports.Store
		err   error
	)
	switch config.Type {
	case SQLiteBackend:
		store, err = f.createSQLiteStore(config)
	case MemoryBackend:
		store = f.createMemoryStore(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, err
	}

	result := &BackendResult{Store: store}
	client := f.connectBroker(config)
	if client != nil {
		result.Publisher = client
	}

	result.Cleanup = func() error {
		var errs []error
		if client != nil {
			errs = append(errs, client.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}
	return result, nil
}

func (f *DefaultFactory) createSQLiteStore(config Config) (ports.Store, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}
	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return repo, nil
}

func (f *DefaultFactory) createMemoryStore(config Config) ports.Store {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	f.logger.Info("Initialized memory backend", "data_directory", dataDir)
	return memory.NewFromFiles(dataDir)
}

func (f *DefaultFactory) connectBroker(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		f.logger.Info("AMQP disabled, transaction events will not be published")
		return nil
	}
	client, err := f.dial(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		return nil
	}
	f.logger.Info("Initialized AMQP client", "exchange", config.AMQPExchange, "queue", config.AMQPQueue)
	return client
}
