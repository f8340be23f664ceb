package service

import (
	"context"
	"sync"
	"time"

	"finax/internal/models"
)

// mockUsers is a lightweight in-test mock for repository.Users.
type mockUsers struct {
	CreateFn          func(u models.User) (models.User, error)
	GetByIDFn         func(id string) (*models.User, error)
	GetByEmailFn      func(email string) (*models.User, error)
	GetByResetTokenFn func(hash string, now time.Time) (*models.User, error)
	UpdateFn          func(id string, upd models.UserUpdate) (bool, error)
	UpdateAvatarFn    func(id, url string) (bool, error)
	SetResetTokenFn   func(id, hash string, expiry time.Time) error
	ResetPasswordFn   func(id, tokenHash, passwordHash string) (bool, error)

	createCalls []models.User
	emailCalls  []string
	updateCalls []models.UserUpdate
	resetCalls  []resetCall
	tokenCalls  []tokenCall
}

type resetCall struct {
	id, tokenHash, passwordHash string
}

type tokenCall struct {
	id, hash string
	expiry   time.Time
}

func (m *mockUsers) Create(_ context.Context, u models.User) (models.User, error) {
	m.createCalls = append(m.createCalls, u)
	return m.CreateFn(u)
}

func (m *mockUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return m.GetByIDFn(id)
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.emailCalls = append(m.emailCalls, email)
	return m.GetByEmailFn(email)
}

func (m *mockUsers) GetByResetToken(_ context.Context, hash string, now time.Time) (*models.User, error) {
	return m.GetByResetTokenFn(hash, now)
}

func (m *mockUsers) Update(_ context.Context, id string, upd models.UserUpdate) (bool, error) {
	m.updateCalls = append(m.updateCalls, upd)
	return m.UpdateFn(id, upd)
}

func (m *mockUsers) UpdateAvatar(_ context.Context, id, url string) (bool, error) {
	return m.UpdateAvatarFn(id, url)
}

func (m *mockUsers) SetResetToken(_ context.Context, id, hash string, expiry time.Time) error {
	m.tokenCalls = append(m.tokenCalls, tokenCall{id: id, hash: hash, expiry: expiry})
	return m.SetResetTokenFn(id, hash, expiry)
}

func (m *mockUsers) ResetPassword(_ context.Context, id, tokenHash, passwordHash string) (bool, error) {
	m.resetCalls = append(m.resetCalls, resetCall{id: id, tokenHash: tokenHash, passwordHash: passwordHash})
	return m.ResetPasswordFn(id, tokenHash, passwordHash)
}

type mockCategories struct {
	CreateFn      func(c models.Category) (models.Category, error)
	ListVisibleFn func(userID string) ([]models.Category, error)
	GetVisibleFn  func(id, userID string) (*models.Category, error)
}

func (m *mockCategories) Create(_ context.Context, c models.Category) (models.Category, error) {
	return m.CreateFn(c)
}

func (m *mockCategories) ListVisible(_ context.Context, userID string) ([]models.Category, error) {
	return m.ListVisibleFn(userID)
}

func (m *mockCategories) GetVisible(_ context.Context, id, userID string) (*models.Category, error) {
	return m.GetVisibleFn(id, userID)
}

type mockTransactions struct {
	CreateFn           func(t models.Transaction) (models.Transaction, error)
	ListWithCategoryFn func(userID string) ([]models.Transaction, error)
	ListRecentFirstFn  func(userID string) ([]models.Transaction, error)
}

func (m *mockTransactions) Create(_ context.Context, t models.Transaction) (models.Transaction, error) {
	return m.CreateFn(t)
}

func (m *mockTransactions) ListWithCategory(_ context.Context, userID string) ([]models.Transaction, error) {
	return m.ListWithCategoryFn(userID)
}

func (m *mockTransactions) ListRecentFirst(_ context.Context, userID string) ([]models.Transaction, error) {
	return m.ListRecentFirstFn(userID)
}

// fakeMailer records sent emails; safe for the background sender.
type fakeMailer struct {
	mu         sync.Mutex
	resetErr   error
	changedErr error
	resets     []string // tokens
	changed    []string // recipients
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, name, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets = append(f.resets, token)
	return f.resetErr
}

func (f *fakeMailer) SendPasswordChanged(_ context.Context, to, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, to)
	return f.changedErr
}

func (f *fakeMailer) changedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.changed)
}
