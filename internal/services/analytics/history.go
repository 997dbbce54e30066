package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/folioapp/folio/internal/common"
	"github.com/folioapp/folio/internal/interfaces"
	"github.com/folioapp/folio/internal/models"
)

// HistoryKey is the logical key the value series is persisted under.
const HistoryKey = "portfolio_history"

// DefaultMaxPoints caps the persisted series; the oldest points are
// dropped once the cap is reached.
const DefaultMaxPoints = 10000

// History is the persisted portfolio value time series.
type History struct {
	mu        sync.Mutex
	store     interfaces.KVStore
	logger    *common.Logger
	maxPoints int
}

// NewHistory creates a history backed by the given store.
// store may be nil — Load then returns empty and Append is a no-op.
func NewHistory(store interfaces.KVStore, logger *common.Logger) *History {
	return &History{
		store:     store,
		logger:    logger,
		maxPoints: DefaultMaxPoints,
	}
}

// Load reads the persisted series. An unreadable or corrupt blob is
// logged and treated as empty.
func (h *History) Load(ctx context.Context) []models.ValuePoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

func (h *History) load(ctx context.Context) []models.ValuePoint {
	if h.store == nil {
		return nil
	}

	raw, err := h.store.Get(ctx, HistoryKey)
	if err != nil || raw == "" {
		return nil
	}

	var points []models.ValuePoint
	if err := json.Unmarshal([]byte(raw), &points); err != nil {
		h.logger.Warn().Err(err).Msg("Portfolio history blob is corrupt, starting empty")
		return nil
	}
	return points
}

// Append adds one point to the series and persists it, trimming the
// oldest points past the cap.
func (h *History) Append(ctx context.Context, point models.ValuePoint) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil
	}

	points := append(h.load(ctx), point)
	if len(points) > h.maxPoints {
		points = points[len(points)-h.maxPoints:]
	}

	data, err := json.Marshal(points)
	if err != nil {
		return fmt.Errorf("failed to serialize portfolio history: %w", err)
	}
	if err := h.store.Set(ctx, HistoryKey, string(data)); err != nil {
		return fmt.Errorf("failed to persist portfolio history: %w", err)
	}
	return nil
}
