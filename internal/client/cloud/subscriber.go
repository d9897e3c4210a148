package cloud

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/prolens/internal/client/models"
	"github.com/dmitrijs2005/prolens/internal/logging"
	"github.com/dmitrijs2005/prolens/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// notifyConn is the part of *pgx.Conn the subscriber needs.
type notifyConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Lister provides the full ordered result set delivered to subscribers.
type Lister interface {
	List(ctx context.Context) ([]models.LearningMaterial, error)
}

// Subscriber keeps a live query over the materials collection. Every
// callback receives the complete set, newest first.
type Subscriber struct {
	connect func(ctx context.Context) (notifyConn, error)
	lister  Lister
	retry   time.Duration
	log     logging.Logger
}

func NewSubscriber(dsn string, lister Lister, retry time.Duration, log logging.Logger) *Subscriber {
	return &Subscriber{
		connect: func(ctx context.Context) (notifyConn, error) {
			return pgx.Connect(ctx, dsn)
		},
		lister: lister,
		retry:  retry,
		log:    log,
	}
}

// Subscribe starts delivering result sets to fn: once as soon as the
// listener is up and again after every change notification. Connection
// failures are logged and retried after the configured delay. Callbacks
// never overlap. The returned function stops the subscription and waits
// for the last callback to finish.
func (s *Subscriber) Subscribe(ctx context.Context, fn func([]models.LearningMaterial)) (func(), error) {
	if fn == nil {
		return nil, errors.New("nil subscription callback")
	}

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.run(ctx, fn)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			wg.Wait()
		})
	}, nil
}

func (s *Subscriber) run(ctx context.Context, fn func([]models.LearningMaterial)) {
	for {
		err := s.listen(ctx, fn)
		if ctx.Err() != nil {
			return
		}
		s.log.Warn(ctx, "materials subscription interrupted", "error", err, "retry_in", s.retry)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retry):
		}
	}
}

// listen holds one connection until it fails or ctx ends.
func (s *Subscriber) listen(ctx context.Context, fn func([]models.LearningMaterial)) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+ChangeChannel); err != nil {
		return err
	}

	if err := s.deliver(ctx, fn); err != nil {
		return err
	}

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return err
		}
		if err := s.deliver(ctx, fn); err != nil {
			return err
		}
	}
}

func (s *Subscriber) deliver(ctx context.Context, fn func([]models.LearningMaterial)) error {
	list, err := s.lister.List(ctx)
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	metrics.SubscriptionRefreshes.Inc()
	fn(list)
	return nil
}
