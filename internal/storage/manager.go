// Package storage provides the top-level StorageManager that coordinates
// the two storage areas: lotsdb and internaldb.
package storage

import (
	"fmt"

	"github.com/omercanyy/investrack/internal/common"
	"github.com/omercanyy/investrack/internal/interfaces"
	"github.com/omercanyy/investrack/internal/storage/internaldb"
	"github.com/omercanyy/investrack/internal/storage/lotsdb"
)

// Manager implements interfaces.StorageManager.
type Manager struct {
	lots     *lotsdb.Store
	internal *internaldb.Store
	logger   *common.Logger
}

// NewManager creates a new StorageManager with both storage areas open.
func NewManager(logger *common.Logger, config *common.Config) (*Manager, error) {
	lotStore, err := lotsdb.NewStore(logger, config.Storage.Lots.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create lots store: %w", err)
	}

	internalStore, err := internaldb.NewStore(logger, config.Storage.Internal.Path)
	if err != nil {
		lotStore.Close()
		return nil, fmt.Errorf("failed to create internal store: %w", err)
	}

	logger.Info().
		Str("lots", config.Storage.Lots.Path).
		Str("internal", config.Storage.Internal.Path).
		Msg("Storage manager initialized (2 areas)")

	return &Manager{
		lots:     lotStore,
		internal: internalStore,
		logger:   logger,
	}, nil
}

func (m *Manager) LotStorage() interfaces.LotStorage {
	return m.lots
}

func (m *Manager) InternalStore() interfaces.InternalStore {
	return m.internal
}

// Close closes both storage areas, returning the first error encountered.
func (m *Manager) Close() error {
	var firstErr error
	if err := m.lots.Close(); err != nil {
		firstErr = fmt.Errorf("failed to close lots store: %w", err)
	}
	if err := m.internal.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("failed to close internal store: %w", err)
	}
	if firstErr != nil {
		return firstErr
	}
	m.logger.Debug().Msg("Storage manager closed")
	return nil
}
