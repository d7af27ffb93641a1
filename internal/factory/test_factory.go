package factory

import (
	"time"

	"github.com/mcoot/teamrank/internal/balance"
	"github.com/mcoot/teamrank/internal/dependencies/mocks"
	"github.com/mcoot/teamrank/internal/metrics"
	"github.com/mcoot/teamrank/internal/model"
	"github.com/mcoot/teamrank/internal/rating"
	"github.com/mcoot/teamrank/internal/storage/memory"
	"github.com/mcoot/teamrank/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock   *mocks.MockClock
	MockIDs     *mocks.MockIDs
	MemoryStore *memory.Storage
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp(kind model.StrategyKind) *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	cfg := rating.DefaultConfig()
	cfg.Kind = kind
	strategy, err := rating.New(cfg)
	if err != nil {
		panic(err)
	}

	app := newWithDependencies(
		store, strategy, balance.New(balance.DefaultMaxPlayers), model.MetricMu,
		mockClock, mockIDs, metrics.New(), testutil.NopLogger(),
	)

	return &TestApp{
		App:         app,
		MockClock:   mockClock,
		MockIDs:     mockIDs,
		MemoryStore: store,
	}
}
