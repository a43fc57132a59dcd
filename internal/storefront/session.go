package storefront

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"naijashop/internal/usecase"
)

// SessionTTL はクライアント側で保持する期間（トークン有効期限と同じ7日）
const SessionTTL = 7 * 24 * time.Hour

// GuestLine は未ログイン時にローカルへ保存するカートの1行
type GuestLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type Session struct {
	Token     string           `json:"token,omitempty"`
	User      *usecase.UserDTO `json:"user,omitempty"`
	GuestCart []GuestLine      `json:"guest_cart,omitempty"`
	ExpiresAt time.Time        `json:"expires_at,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileStore はセッションをJSONファイルに保存する
type FileStore struct {
	path string
	now  func() time.Time
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, now: time.Now}
}

// DefaultSessionPath は ~/.naijashop/session.json
func DefaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "naijashop", "session.json")
}

// ファイルが無い・壊れている・期限切れは空セッション
func (f *FileStore) Load() (Session, error) {
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		_ = os.Remove(f.path)
		return Session{}, nil
	}

	// 期限切れならログイン情報だけ捨てる（ゲストカートは残す）
	if s.Token != "" && !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(f.now()) {
		s.Token = ""
		s.User = nil
		s.ExpiresAt = time.Time{}
	}
	return s, nil
}

func (f *FileStore) Save(s Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}
	raw, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
