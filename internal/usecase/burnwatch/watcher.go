package burnwatch

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/simaogato/estateledger-backend/internal/domain"
	"github.com/simaogato/estateledger-backend/internal/observability"
)

const jobName = "burn_window_watcher"

// ExpiredLister lists delisted tokens whose burn window has closed.
type ExpiredLister interface {
	ExpiredBurnWindows(ctx context.Context, now time.Time) ([]*domain.EstateToken, error)
}

// Watcher periodically reports tokens whose burn window expired. Each expiry
// is reported once per deadline; extending the deadline re-arms the report.
type Watcher struct {
	Tokens    ExpiredLister
	Publisher domain.EventPublisher
	Logger    *zap.Logger
	Clock     func() time.Time

	interval  time.Duration
	scheduler gocron.Scheduler

	mu       sync.Mutex
	reported map[uint64]time.Time
}

// NewWatcher creates a new Watcher instance
func NewWatcher(tokens ExpiredLister, publisher domain.EventPublisher, logger *zap.Logger, interval time.Duration) (*Watcher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("burn watch interval must be positive, got %s", interval)
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Watcher{
		Tokens:    tokens,
		Publisher: publisher,
		Logger:    logger,
		Clock:     time.Now,
		interval:  interval,
		scheduler: s,
		reported:  make(map[uint64]time.Time),
	}, nil
}

// Start registers the watch job and starts the scheduler.
func (w *Watcher) Start() error {
	_, err := w.scheduler.NewJob(
		gocron.DurationJob(w.interval),
		gocron.NewTask(w.run),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", jobName, err)
	}
	w.scheduler.Start()
	w.Logger.Info("burn window watcher started", zap.Duration("interval", w.interval))
	return nil
}

// Stop shuts the scheduler down and waits for a running check to finish.
func (w *Watcher) Stop() error {
	if err := w.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to shutdown scheduler: %w", err)
	}
	w.Logger.Info("burn window watcher stopped")
	return nil
}

func (w *Watcher) run() {
	if _, err := w.Check(context.Background()); err != nil {
		w.Logger.Error("burn window check failed", zap.Error(err))
	}
}

// Check publishes one BurnWindowExpired event for every newly expired token
// and returns how many were published.
func (w *Watcher) Check(ctx context.Context) (int, error) {
	now := w.Clock()
	expired, err := w.Tokens.ExpiredBurnWindows(ctx, now)
	if err != nil {
		return 0, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	published := 0
	for _, token := range expired {
		if deadline, ok := w.reported[token.ID]; ok && deadline.Equal(token.BurnDeadline) {
			continue
		}
		w.reported[token.ID] = token.BurnDeadline

		w.Publisher.Publish(ctx, domain.NewEvent(domain.EventBurnWindowExpired, common.Address{}, token.ID, now, map[string]string{
			"burn_deadline": strconv.FormatInt(token.BurnDeadline.Unix(), 10),
		}))
		observability.RecordBurnWindowExpired()
		w.Logger.Info("burn window expired",
			zap.Uint64("token_id", token.ID),
			zap.Time("burn_deadline", token.BurnDeadline),
		)
		published++
	}
	return published, nil
}
