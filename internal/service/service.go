package service

import (
	"context"
	"time"

	"finax/internal/logger"
	"finax/internal/models"
	"finax/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, in RegisterInput) (models.User, error)
	Login(ctx context.Context, in LoginInput) (AuthResult, error)
	ParseToken(accessToken string) (string, error)
}

// PasswordReset runs the forgot/reset lifecycle. Wait blocks until detached
// confirmation emails finish or ctx is done.
type PasswordReset interface {
	RequestPasswordReset(ctx context.Context, in ForgotPasswordInput) error
	ResetPassword(ctx context.Context, in ResetPasswordInput) error
	Wait(ctx context.Context) error
}

type Profile interface {
	GetProfile(ctx context.Context, userID string) (models.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (models.User, error)
	UpdateAvatar(ctx context.Context, userID string, in UpdateAvatarInput) (models.User, error)
}

type Category interface {
	CreateCategory(ctx context.Context, userID string, in CategoryInput) (models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]models.Category, error)
}

type Transaction interface {
	CreateTransaction(ctx context.Context, userID string, in TransactionInput) (models.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	Balance(ctx context.Context, userID string) (models.Balance, error)
	Dashboard(ctx context.Context, userID string) (models.Dashboard, error)
}

type Upload interface {
	SaveAvatar(ctx context.Context, f UploadFile) (UploadResult, error)
}

// Mailer delivers the transactional emails of the reset flow.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, token string) error
	SendPasswordChanged(ctx context.Context, to, name string) error
}

// Options carries the tunables the services read from configuration.
type Options struct {
	JWTSecret     string
	TokenTTL      time.Duration
	ResetTTL      time.Duration
	UploadDir     string
	MaxUploadSize int64
}

// Service aggregates all sub-services.
type Service struct {
	Authorization
	PasswordReset
	Profile
	Category
	Transaction
	Upload
}

func NewService(repos *repository.Repository, mailer Mailer, opts Options, log *logger.Logger) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, opts.JWTSecret, opts.TokenTTL),
		PasswordReset: NewPasswordService(repos.Users, mailer, opts.ResetTTL, log),
		Profile:       NewProfileService(repos.Users),
		Category:      NewCategoryService(repos.Categories),
		Transaction:   NewTransactionService(repos.Transactions, repos.Categories),
		Upload:        NewUploadService(opts.UploadDir, opts.MaxUploadSize),
	}
}
