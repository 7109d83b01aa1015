package journal

import (
	"testing"

	"main/internal/obs"
	"main/internal/schema"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

func TestDSN(t *testing.T) {
	testCases := []struct {
		desc     string
		opt      Option
		expected string
	}{
		{
			"defaults",
			Option{Database: "journal"},
			"postgres://localhost:5432/journal?sslmode=disable",
		},
		{
			"full credentials",
			Option{Host: "db", Port: 5433, User: "oes", Password: "secret", Database: "journal", SSLMode: "require"},
			"postgres://oes:secret@db:5433/journal?sslmode=require",
		},
		{
			"user without password",
			Option{User: "oes", Database: "journal"},
			"postgres://oes@localhost:5432/journal?sslmode=disable",
		},
		{
			"conn string wins",
			Option{ConnString: "postgres://elsewhere/x", Database: "ignored"},
			"postgres://elsewhere/x",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			got, err := tc.opt.dsn()
			if err != nil {
				t.Fatalf("dsn failed: %v", err)
			}
			if got != tc.expected {
				t.Fatalf("dsn mismatch! should be %s but got %s", tc.expected, got)
			}
		})
	}
}

func TestDSNEmptyDatabase(t *testing.T) {
	if _, err := (Option{}).dsn(); !errors.Is(err, exception.ErrJournalEmptyDSN) {
		t.Fatalf("error mismatch! should be empty dsn but got %v", err)
	}
}

func TestNilStoreIsNoOp(t *testing.T) {
	var s *Store
	s.RecordExecution("A1", schema.Execution{})
	s.RecordRejection("A1", schema.Rejection{})
	if err := s.Close(); err != nil {
		t.Fatalf("nil close failed: %v", err)
	}
}

func TestOfferDropsWhenFull(t *testing.T) {
	metrics := obs.NewMetrics()
	s := &Store{ch: make(chan any, 1), metrics: metrics}

	s.RecordRejection("A1", schema.Rejection{OrderID: "X1"})
	s.RecordRejection("A1", schema.Rejection{OrderID: "X2"})

	if got := metrics.Get(obs.CounterJournalDrop); got != 1 {
		t.Fatalf("drop counter mismatch! should be 1 but got %d", got)
	}
	if len(s.ch) != 1 {
		t.Fatalf("buffer length mismatch! should be 1 but got %d", len(s.ch))
	}
}
