package handlers

import (
	"context"
	"io"
	"net/http"

	"finax/internal/models"
	"finax/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser models.User
	registerErr  error
	loginRes     service.AuthResult
	loginErr     error
	parseID      string
	parseErr     error

	lastRegister   service.RegisterInput
	lastLogin      service.LoginInput
	lastParseToken string
}

func (m *mockAuth) Register(_ context.Context, in service.RegisterInput) (models.User, error) {
	m.lastRegister = in
	return m.registerUser, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, in service.LoginInput) (service.AuthResult, error) {
	m.lastLogin = in
	return m.loginRes, m.loginErr
}

func (m *mockAuth) ParseToken(token string) (string, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockPasswordReset struct {
	requestErr error
	resetErr   error

	lastRequest service.ForgotPasswordInput
	lastReset   service.ResetPasswordInput
}

func (m *mockPasswordReset) RequestPasswordReset(_ context.Context, in service.ForgotPasswordInput) error {
	m.lastRequest = in
	return m.requestErr
}

func (m *mockPasswordReset) ResetPassword(_ context.Context, in service.ResetPasswordInput) error {
	m.lastReset = in
	return m.resetErr
}

func (m *mockPasswordReset) Wait(context.Context) error { return nil }

type mockProfile struct {
	user models.User
	err  error

	lastUserID string
	lastUpdate service.UpdateProfileInput
	lastAvatar service.UpdateAvatarInput
}

func (m *mockProfile) GetProfile(_ context.Context, userID string) (models.User, error) {
	m.lastUserID = userID
	return m.user, m.err
}

func (m *mockProfile) UpdateProfile(_ context.Context, userID string, in service.UpdateProfileInput) (models.User, error) {
	m.lastUserID = userID
	m.lastUpdate = in
	return m.user, m.err
}

func (m *mockProfile) UpdateAvatar(_ context.Context, userID string, in service.UpdateAvatarInput) (models.User, error) {
	m.lastUserID = userID
	m.lastAvatar = in
	return m.user, m.err
}

type mockCategory struct {
	created models.Category
	list    []models.Category
	err     error

	lastUserID string
	lastInput  service.CategoryInput
}

func (m *mockCategory) CreateCategory(_ context.Context, userID string, in service.CategoryInput) (models.Category, error) {
	m.lastUserID = userID
	m.lastInput = in
	return m.created, m.err
}

func (m *mockCategory) ListCategories(_ context.Context, userID string) ([]models.Category, error) {
	m.lastUserID = userID
	return m.list, m.err
}

type mockTransaction struct {
	created   models.Transaction
	list      []models.Transaction
	balance   models.Balance
	dashboard models.Dashboard
	err       error

	lastUserID    string
	lastInput     service.TransactionInput
	dashboardHits int
}

func (m *mockTransaction) CreateTransaction(_ context.Context, userID string, in service.TransactionInput) (models.Transaction, error) {
	m.lastUserID = userID
	m.lastInput = in
	return m.created, m.err
}

func (m *mockTransaction) ListTransactions(_ context.Context, userID string) ([]models.Transaction, error) {
	m.lastUserID = userID
	return m.list, m.err
}

func (m *mockTransaction) Balance(_ context.Context, userID string) (models.Balance, error) {
	m.lastUserID = userID
	return m.balance, m.err
}

func (m *mockTransaction) Dashboard(_ context.Context, userID string) (models.Dashboard, error) {
	m.lastUserID = userID
	m.dashboardHits++
	return m.dashboard, m.err
}

type mockUpload struct {
	res  service.UploadResult
	err  error
	last service.UploadFile
	data []byte
}

func (m *mockUpload) SaveAvatar(_ context.Context, f service.UploadFile) (service.UploadResult, error) {
	m.last = f
	if f.Content != nil {
		m.data, _ = io.ReadAll(f.Content)
	}
	return m.res, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	return newTestRouterWithOptions(s, Options{})
}

func newTestRouterWithOptions(s *service.Service, opts Options) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, opts)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
