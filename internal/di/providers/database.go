package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/config"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.ShutdownerWithError.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the sqlite database inside the data directory.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := cfg.Storage.DatabasePath()
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}
