package exception

import "errors"

// General errors
var (
	ErrNilInstance = errors.New("nil instance")
)

// Journal errors
var (
	ErrJournalEmptyDSN = errors.New("journal: empty dsn")
	ErrJournalClosed   = errors.New("journal: store closed")
)
