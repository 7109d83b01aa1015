// Package journal persists executions and rejections to PostgreSQL. Writes
// are fire-and-forget from the routing hot path: records queue into a
// buffered channel and a single worker flushes them, dropping (and counting)
// when the buffer is full.
package journal

import (
	"context"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"main/internal/obs"
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultHost       = "localhost"
	defaultPort       = 5432
	defaultSSLMode    = "disable"
	defaultBufferSize = 4096
)

// Recorder is the persistence surface the server writes through.
type Recorder interface {
	RecordExecution(appID string, exec schema.Execution)
	RecordRejection(appID string, rej schema.Rejection)
}

// ExecutionRecord is one persisted fill.
type ExecutionRecord struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	AppID       string `gorm:"index"`
	OrderID     string `gorm:"index"`
	ExecutionID string
	Provider    string
	Symbol      string
	Side        string
	Size        int64
	Price       string
	AvgPrice    string
	LeavesQty   int64
	CumQty      int64
	Kind        string
	ExecutedAt  time.Time
	CreatedAt   time.Time
}

// RejectionRecord is one persisted rejection.
type RejectionRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	AppID      string `gorm:"index"`
	OrderID    string `gorm:"index"`
	Provider   string
	Symbol     string
	Reason     string
	RejectedAt time.Time
	CreatedAt  time.Time
}

// Option defines connection options for the journal database.
type Option struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	ConnString string
	BufferSize int
}

// Store is the PostgreSQL-backed recorder. A nil *Store is a no-op recorder.
type Store struct {
	db      *gorm.DB
	ch      chan any
	metrics *obs.Metrics
	closed  uint32
}

// Open connects, migrates the record tables and returns a store. Run must
// be called for records to reach the database.
func Open(opt Option, metrics *obs.Metrics) (*Store, error) {
	dsn, err := opt.dsn()
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&ExecutionRecord{}, &RejectionRecord{}); err != nil {
		return nil, err
	}
	size := opt.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	return &Store{
		db:      db,
		ch:      make(chan any, size),
		metrics: metrics,
	}, nil
}

// RecordExecution queues one execution, dropping when the buffer is full.
func (s *Store) RecordExecution(appID string, exec schema.Execution) {
	if s == nil {
		return
	}
	s.offer(ExecutionRecord{
		AppID:       appID,
		OrderID:     exec.Order.OrderID,
		ExecutionID: exec.Fill.ExecutionID,
		Provider:    exec.Provider,
		Symbol:      exec.Order.Symbol,
		Side:        exec.Order.Side.String(),
		Size:        exec.Order.Size,
		Price:       exec.Fill.Price.String(),
		AvgPrice:    exec.Fill.AvgPrice.String(),
		LeavesQty:   exec.Fill.LeavesQty,
		CumQty:      exec.Fill.CumQty,
		Kind:        exec.Fill.Kind.String(),
		ExecutedAt:  exec.Fill.DateTime,
	})
}

// RecordRejection queues one rejection, dropping when the buffer is full.
func (s *Store) RecordRejection(appID string, rej schema.Rejection) {
	if s == nil {
		return
	}
	s.offer(RejectionRecord{
		AppID:      appID,
		OrderID:    rej.OrderID,
		Provider:   rej.Provider,
		Symbol:     rej.Symbol,
		Reason:     rej.Reason,
		RejectedAt: rej.DateTime,
	})
}

func (s *Store) offer(record any) {
	if atomic.LoadUint32(&s.closed) != 0 {
		return
	}
	select {
	case s.ch <- record:
	default:
		s.metrics.Inc(obs.CounterJournalDrop)
		logs.Warnf("journal: buffer full, record dropped")
	}
}

// Run flushes queued records until the context is done.
func (s *Store) Run(ctx context.Context) {
	if s == nil {
		return
	}
	for {
		select {
		case <-sys.Shutdown():
			return
		case <-ctx.Done():
			return
		case record := <-s.ch:
			if err := s.db.Create(record).Error; err != nil {
				logs.Errorf("journal: write failed: %+v", err)
			}
		}
	}
}

// Close stops accepting records and closes the connection pool.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	if !atomic.CompareAndSwapUint32(&s.closed, 0, 1) {
		return exception.ErrJournalClosed
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (opt Option) dsn() (string, error) {
	if opt.ConnString != "" {
		return opt.ConnString, nil
	}
	if opt.Database == "" {
		return "", exception.ErrJournalEmptyDSN
	}

	host := opt.Host
	if host == "" {
		host = defaultHost
	}
	port := opt.Port
	if port == 0 {
		port = defaultPort
	}
	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
		Path:   "/" + opt.Database,
	}
	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}
	query := url.Values{}
	query.Set("sslmode", sslMode)
	u.RawQuery = query.Encode()
	return u.String(), nil
}
