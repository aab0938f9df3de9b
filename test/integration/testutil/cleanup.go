//go:build integration

package testutil

import (
	"context"
	"time"
)

// CleanAll truncates every table and re-seeds the default bet type.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx, `
		TRUNCATE TABLE user_bets, bout_results, bouts, events, fighters, bet_types,
		               event_outbox, login_attempts, users
		RESTART IDENTITY CASCADE`)
	if err != nil {
		env.t.Fatalf("CleanAll: truncate: %v", err)
	}

	_, err = env.Pool.Exec(ctx, `
		INSERT INTO bet_types (name, description)
		VALUES ('Winner', 'Pick the winning fighter by any method')
		ON CONFLICT (name) DO NOTHING`)
	if err != nil {
		env.t.Fatalf("CleanAll: seed bet types: %v", err)
	}
}
