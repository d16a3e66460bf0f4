package db

import (
	"testing"

	"github.com/cuceimatch/matchcore/internal/config"
)

func TestBuildPostgresURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.PostgresConfig
		want    string
		wantErr bool
	}{
		{
			name: "database-url-wins",
			cfg:  config.PostgresConfig{DatabaseURL: "postgres://x@db/app", User: "ignored", Database: "ignored"},
			want: "postgres://x@db/app",
		},
		{
			name: "from-parts",
			cfg:  config.PostgresConfig{User: "match", Password: "pw", Database: "core", Host: "db", Port: "6543", SSLMode: "require"},
			want: "postgres://match:pw@db:6543/core?sslmode=require",
		},
		{
			name: "defaults",
			cfg:  config.PostgresConfig{User: "match", Database: "core"},
			want: "postgres://match@localhost:5432/core?sslmode=disable",
		},
		{
			name:    "missing-user",
			cfg:     config.PostgresConfig{Database: "core"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildPostgresURL(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("buildPostgresURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
