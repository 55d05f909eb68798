package services

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

type LoginOutcome string

const (
	OutcomeSuccess            LoginOutcome = "success"
	OutcomeInvalidCredentials LoginOutcome = "invalid_credentials"
	OutcomeLocked             LoginOutcome = "locked"
	OutcomeUnverified         LoginOutcome = "unverified"
	OutcomeInactive           LoginOutcome = "inactive"
	OutcomeError              LoginOutcome = "error"
)

type LoginEvent struct {
	AccountID string       `db:"account_id" json:"-"`
	Email     string       `db:"email" json:"email"`
	Outcome   LoginOutcome `db:"outcome" json:"outcome"`
	IP        string       `db:"ip_address" json:"ip"`
	UserAgent string       `db:"user_agent" json:"userAgent"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

// LoginAuditor records sign-in attempts.
type LoginAuditor interface {
	Record(ctx context.Context, ev LoginEvent) error
}

// LoginHistory reads recorded sign-in attempts back.
type LoginHistory interface {
	RecentFailures(ctx context.Context, email string, since time.Time) (int, error)
	History(ctx context.Context, accountID string, limit int) ([]LoginEvent, error)
}

type NopAuditor struct{}

func (NopAuditor) Record(context.Context, LoginEvent) error { return nil }

type PostgresAuditor struct {
	db *sqlx.DB
}

func NewPostgresAuditor(db *sqlx.DB) *PostgresAuditor {
	return &PostgresAuditor{db: db}
}

func (a *PostgresAuditor) Record(ctx context.Context, ev LoginEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	var accountID *string
	if ev.AccountID != "" {
		accountID = &ev.AccountID
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO login_events (account_id, email, outcome, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		accountID, ev.Email, string(ev.Outcome), ev.IP, ev.UserAgent, ev.CreatedAt,
	)
	return err
}

// RecentFailures counts failed attempts for email since the given time.
func (a *PostgresAuditor) RecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	var n int
	err := a.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM login_events WHERE email = $1 AND outcome <> $2 AND created_at >= $3`,
		email, string(OutcomeSuccess), since,
	)
	return n, err
}

// History returns the latest events of an account, newest first.
func (a *PostgresAuditor) History(ctx context.Context, accountID string, limit int) ([]LoginEvent, error) {
	var events []LoginEvent
	err := a.db.SelectContext(ctx, &events,
		`SELECT COALESCE(account_id, '') AS account_id, email, outcome,
		        COALESCE(ip_address, '') AS ip_address, COALESCE(user_agent, '') AS user_agent, created_at
		   FROM login_events WHERE account_id = $1 ORDER BY created_at DESC LIMIT $2`,
		accountID, limit,
	)
	return events, err
}
