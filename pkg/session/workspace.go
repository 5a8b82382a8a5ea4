// pkg/session/workspace.go
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/David-Botos/datahub/pkg/model"
)

var (
	// ErrAlreadyLoaded is returned when a filename is added twice
	ErrAlreadyLoaded = errors.New("file already loaded")
	// ErrNoTabularData is returned for tables without rows
	ErrNoTabularData = errors.New("file contains no readable tabular data")
)

// Workspace holds the tables a user has loaded, keyed by filename.
// It is owned by the caller and safe for concurrent use.
type Workspace struct {
	ID        string
	CreatedAt time.Time

	logger *zap.Logger
	mu     sync.RWMutex
	tables map[string]*model.Table
	order  []string
}

// NewWorkspace creates an empty workspace with a fresh ID
func NewWorkspace(logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	return &Workspace{
		ID:        id,
		CreatedAt: time.Now(),
		logger:    logger.With(zap.String("workspace", id)),
		tables:    make(map[string]*model.Table),
	}
}

// Add stores a copy of table under name. Known names are left untouched
// and yield ErrAlreadyLoaded; tables without rows yield ErrNoTabularData.
func (w *Workspace) Add(name string, table *model.Table) error {
	if table == nil || table.IsEmpty() {
		w.logger.Warn("Rejected file without tabular data", zap.String("file", name))
		return ErrNoTabularData
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.tables[name]; ok {
		w.logger.Info("File already loaded, skipping", zap.String("file", name))
		return ErrAlreadyLoaded
	}
	w.tables[name] = table.Clone()
	w.order = append(w.order, name)

	w.logger.Debug("Loaded file",
		zap.String("file", name),
		zap.Int("rows", table.NumRows()),
		zap.Int("columns", table.NumColumns()))
	return nil
}

// Table returns a copy of the table loaded under name
func (w *Workspace) Table(name string) (*model.Table, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	t, ok := w.tables[name]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Names returns the loaded filenames in load order
func (w *Workspace) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]string(nil), w.order...)
}

// Len returns the number of loaded files
func (w *Workspace) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}
