package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fightcard/platform/internal/domain"
	"github.com/fightcard/platform/internal/repository"
)

const (
	MaxAttempts   = 5
	LockoutWindow = 15 * time.Minute
)

// Lockout tracks login attempts in login_attempts and locks an email after
// MaxAttempts failures within LockoutWindow.
type Lockout struct {
	db     repository.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewLockout creates a Lockout.
func NewLockout(db repository.DBTX, logger *slog.Logger) *Lockout {
	return &Lockout{db: db, logger: logger, now: time.Now}
}

// RecordAttempt inserts a login attempt row. Failures are logged, not returned.
func (l *Lockout) RecordAttempt(ctx context.Context, email, ip string, success bool) {
	_, err := l.db.Exec(ctx, `
		INSERT INTO login_attempts (email, ip_address, success)
		VALUES ($1, $2, $3)`,
		email, ip, success)
	if err != nil {
		l.logger.Warn("record login attempt", "email", email, "error", err)
	}
}

// CheckLocked returns ErrAccountLocked if the account has >= MaxAttempts failed
// logins within the lockout window. Lookup errors fail open.
func (l *Lockout) CheckLocked(ctx context.Context, email string) error {
	count, err := l.recentFailures(ctx, email)
	if err != nil {
		l.logger.Warn("check login lockout", "email", email, "error", err)
		return nil
	}
	if count >= MaxAttempts {
		return domain.ErrAccountLocked("too many failed login attempts, try again later")
	}
	return nil
}

func (l *Lockout) recentFailures(ctx context.Context, email string) (int, error) {
	var count int
	err := l.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM login_attempts
		WHERE email = $1 AND success = false
		  AND created_at > $2`,
		email, l.now().Add(-LockoutWindow)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count failed logins: %w", err)
	}
	return count, nil
}
