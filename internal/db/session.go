package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cuceimatch/matchcore/internal/model"
	"github.com/jackc/pgx/v5"
)

func (db *Postgres) EnsureSessionSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS client_sessions (
			namespace        TEXT        PRIMARY KEY,
			access_token     TEXT        NOT NULL,
			refresh_token    TEXT        NOT NULL,
			user_profile     JSONB,
			is_authenticated BOOLEAN     NOT NULL DEFAULT FALSE,
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := db.Pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create client_sessions table: %w", err)
	}
	return nil
}

// Load - 네임스페이스의 세션 조회 (없으면 빈 값)
func (db *Postgres) Load(ctx context.Context) (model.PersistedSession, error) {
	query := `
		SELECT access_token, refresh_token, user_profile, is_authenticated, updated_at
		FROM client_sessions
		WHERE namespace = $1
	`
	var session model.PersistedSession
	var userJSON []byte
	err := db.Pool.QueryRow(ctx, query, db.namespace).Scan(
		&session.Credentials.Access,
		&session.Credentials.Refresh,
		&userJSON,
		&session.Authenticated,
		&session.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return model.PersistedSession{}, nil
		}
		return model.PersistedSession{}, fmt.Errorf("failed to load session: %w", err)
	}

	if len(userJSON) > 0 {
		var user model.User
		if err := json.Unmarshal(userJSON, &user); err != nil {
			return model.PersistedSession{}, fmt.Errorf("failed to unmarshal user profile: %w", err)
		}
		session.User = &user
	}
	return session, nil
}

// Save - upsert (네임스페이스당 한 행)
func (db *Postgres) Save(ctx context.Context, session model.PersistedSession) error {
	var userJSON []byte
	if session.User != nil {
		encoded, err := json.Marshal(session.User)
		if err != nil {
			return fmt.Errorf("failed to marshal user profile: %w", err)
		}
		userJSON = encoded
	}

	query := `
		INSERT INTO client_sessions (namespace, access_token, refresh_token, user_profile, is_authenticated, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (namespace)
		DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			user_profile = EXCLUDED.user_profile,
			is_authenticated = EXCLUDED.is_authenticated,
			updated_at = EXCLUDED.updated_at
	`
	_, err := db.Pool.Exec(ctx, query,
		db.namespace,
		session.Credentials.Access,
		session.Credentials.Refresh,
		userJSON,
		session.Authenticated,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (db *Postgres) Clear(ctx context.Context) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM client_sessions WHERE namespace = $1`, db.namespace)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
