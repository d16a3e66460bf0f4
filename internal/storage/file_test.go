package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cuceimatch/matchcore/internal/model"
)

func sampleSession() model.PersistedSession {
	return model.PersistedSession{
		Credentials:   model.CredentialPair{Access: "access-token", Refresh: "refresh-token"},
		User:          &model.User{ID: 7, FullName: "Ana"},
		Authenticated: true,
	}
}

func TestFileStoreEncryptedRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store, err := NewFileStore(path, "auth-storage", "s3cret")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := store.Save(ctx, sampleSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "refresh-token") {
		t.Fatalf("token stored in plain text: %s", data)
	}

	reopened, _ := NewFileStore(path, "auth-storage", "s3cret")
	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Credentials.Refresh != "refresh-token" || got.User == nil || got.User.ID != 7 {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestFileStoreWrongSecret(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	store, _ := NewFileStore(path, "auth-storage", "right")
	if err := store.Save(ctx, sampleSession()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	other, _ := NewFileStore(path, "auth-storage", "wrong")
	if _, err := other.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestFileStoreClearKeepsOtherNamespaces(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.json")

	a, _ := NewFileStore(path, "auth-storage", "")
	b, _ := NewFileStore(path, "other", "")
	if err := a.Save(ctx, sampleSession()); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if err := b.Save(ctx, sampleSession()); err != nil {
		t.Fatalf("Save b: %v", err)
	}

	if err := a.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := a.Load(ctx)
	if err != nil || !got.Credentials.Empty() {
		t.Fatalf("expected empty session after clear, got %+v (%v)", got, err)
	}
	if other, _ := b.Load(ctx); other.Credentials.Access != "access-token" {
		t.Fatalf("other namespace lost")
	}

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear b: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, got %v", err)
	}
	// 두 번째 Clear도 에러 없음
	if err := b.Clear(ctx); err != nil {
		t.Fatalf("second Clear: %v", err)
	}
}

func TestFileStoreMissingFile(t *testing.T) {
	store, _ := NewFileStore(filepath.Join(t.TempDir(), "none.json"), "", "")
	got, err := store.Load(context.Background())
	if err != nil || !got.Credentials.Empty() {
		t.Fatalf("expected empty session, got %+v (%v)", got, err)
	}
}
