// 파일 기반 credential store
//
// 하나의 JSON 파일 안에 네임스페이스(기본 auth-storage) 단위로 세션을 보관합니다.
// STORAGE_SECRET이 설정되면 엔트리를 XChaCha20-Poly1305로 암호화하고,
// 키는 HKDF-SHA256으로 secret에서 유도합니다.

package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cuceimatch/matchcore/internal/model"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "cuceimatch-credential-store"

// ErrCorrupt - 저장된 엔트리를 해석/복호화할 수 없음
var ErrCorrupt = errors.New("credential store entry is corrupt")

type FileStore struct {
	mu        sync.Mutex
	path      string
	namespace string
	aead      cipher.AEAD
}

// NewFileStore - secret이 비어 있으면 평문 JSON으로 저장
func NewFileStore(path, namespace, secret string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("storage file path is required")
	}
	if namespace == "" {
		namespace = "auth-storage"
	}

	s := &FileStore{path: path, namespace: namespace}
	if secret != "" {
		aead, err := newAEAD(secret)
		if err != nil {
			return nil, err
		}
		s.aead = aead
	}
	return s, nil
}

func newAEAD(secret string) (cipher.AEAD, error) {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo))
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage cipher: %w", err)
	}
	return aead, nil
}

func (s *FileStore) Load(ctx context.Context) (model.PersistedSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return model.PersistedSession{}, err
	}
	raw, ok := entries[s.namespace]
	if !ok {
		return model.PersistedSession{}, nil
	}
	return s.decode(raw)
}

func (s *FileStore) Save(ctx context.Context, session model.PersistedSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		// 깨진 파일은 덮어씀 (fail closed 이후 새 로그인 저장)
		entries = map[string]json.RawMessage{}
	}
	raw, err := s.encode(session)
	if err != nil {
		return err
	}
	entries[s.namespace] = raw
	return s.writeAll(entries)
}

func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll()
	if err != nil {
		return os.Remove(s.path)
	}
	if _, ok := entries[s.namespace]; !ok {
		return nil
	}
	delete(entries, s.namespace)
	if len(entries) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove storage file: %w", err)
		}
		return nil
	}
	return s.writeAll(entries)
}

func (s *FileStore) readAll() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read storage file: %w", err)
	}
	entries := map[string]json.RawMessage{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return entries, nil
}

// 임시 파일에 쓴 뒤 rename (부분 기록 방지)
func (s *FileStore) writeAll(entries map[string]json.RawMessage) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal storage entries: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create storage dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close storage file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace storage file: %w", err)
	}
	return nil
}

func (s *FileStore) encode(session model.PersistedSession) (json.RawMessage, error) {
	plain, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}
	if s.aead == nil {
		return plain, nil
	}

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plain)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := s.aead.Seal(nonce, nonce, plain, []byte(s.namespace))
	return json.Marshal(base64.StdEncoding.EncodeToString(sealed))
}

func (s *FileStore) decode(raw json.RawMessage) (model.PersistedSession, error) {
	var session model.PersistedSession

	if s.aead == nil {
		if err := json.Unmarshal(raw, &session); err != nil {
			return model.PersistedSession{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		return session, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return model.PersistedSession{}, fmt.Errorf("%w: entry is not encrypted", ErrCorrupt)
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(sealed) < s.aead.NonceSize() {
		return model.PersistedSession{}, ErrCorrupt
	}
	nonce, ciphertext := sealed[:s.aead.NonceSize()], sealed[s.aead.NonceSize():]
	plain, err := s.aead.Open(nil, nonce, ciphertext, []byte(s.namespace))
	if err != nil {
		return model.PersistedSession{}, ErrCorrupt
	}
	if err := json.Unmarshal(plain, &session); err != nil {
		return model.PersistedSession{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return session, nil
}
