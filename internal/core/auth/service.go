package auth

import (
	"strings"
	"sync"
)

// Service はメモリ上のユーザー一覧によるログイン管理です。
// 一覧は永続化されず、プロセス再起動で初期状態に戻ります。
type Service struct {
	mu      sync.RWMutex
	users   []Credential
	current *Credential
}

// UseCase は認証ユースケースの公開インターフェースです。
type UseCase interface {
	Login(username, password string) bool
	Logout()
	CurrentUser() (Credential, bool)
	Register(username, password string) bool
	EditUser(username, newPassword string) error
	DeleteUser(username string) error
	Users() []string
}

// NewService は管理者アカウントのみが登録された Service を生成します。
func NewService() *Service {
	return &Service{
		users: []Credential{{Username: SeedUsername, Password: SeedPassword}},
	}
}

// Login はユーザー名とパスワードが一致すればログイン状態にして true を返します。
func (s *Service) Login(username, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username && u.Password == password {
			found := u
			s.current = &found
			return true
		}
	}
	return false
}

// Logout はログイン状態を解除します。
func (s *Service) Logout() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// CurrentUser はログイン中のユーザーを返します。
func (s *Service) CurrentUser() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return Credential{}, false
	}
	return *s.current, true
}

// Register はユーザーを追加します。既存のユーザー名や空白のみの入力では false を返します。
// 入力は加工せずにそのまま保存します。
func (s *Service) Register(username, password string) bool {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(username) >= 0 {
		return false
	}
	s.users = append(s.users, Credential{Username: username, Password: password})
	return true
}

// EditUser はユーザーのパスワードを変更します。ログイン中のユーザーにも反映されます。
func (s *Service) EditUser(username, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return ErrInvalidPassword
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(username)
	if idx < 0 {
		return ErrUserNotFound
	}
	s.users[idx].Password = newPassword

	if s.current != nil && s.current.Username == username {
		s.current.Password = newPassword
	}
	return nil
}

// DeleteUser はユーザーを削除します。ログイン中のユーザーを削除した場合はログアウトします。
func (s *Service) DeleteUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOfLocked(username)
	if idx < 0 {
		return ErrUserNotFound
	}
	s.users = append(s.users[:idx:idx], s.users[idx+1:]...)

	if s.current != nil && s.current.Username == username {
		s.current = nil
	}
	return nil
}

// Users は登録順のユーザー名一覧を返します。
func (s *Service) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.users))
	for _, u := range s.users {
		names = append(names, u.Username)
	}
	return names
}

func (s *Service) indexOfLocked(username string) int {
	for i, u := range s.users {
		if u.Username == username {
			return i
		}
	}
	return -1
}
