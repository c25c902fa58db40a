package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/auth"
	"hourbank/internal/config"
	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/redis"
	"hourbank/internal/repository"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID string, role domain.UserRole) (string, time.Time, error)
}

// UserService handles accounts, authentication and profiles.
type UserService struct {
	userRepo    repository.UserRepository
	serviceRepo repository.ServiceRepository
	txnRepo     repository.TransactionRepository
	cacheStore  redis.CacheStoreInterface
	tokens      TokenIssuer
	errLog      *logging.ErrorLogger
	log         logrus.FieldLogger
	bank        config.BankConfig
	adminEmails map[string]bool
}

// NewUserService creates a new UserService.
func NewUserService(
	userRepo repository.UserRepository,
	serviceRepo repository.ServiceRepository,
	txnRepo repository.TransactionRepository,
	cacheStore redis.CacheStoreInterface,
	tokens TokenIssuer,
	errLog *logging.ErrorLogger,
	log logrus.FieldLogger,
	bank config.BankConfig,
	adminEmails []string,
) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &UserService{
		userRepo:    userRepo,
		serviceRepo: serviceRepo,
		txnRepo:     txnRepo,
		cacheStore:  cacheStore,
		tokens:      tokens,
		errLog:      errLog,
		log:         log,
		bank:        bank,
		adminEmails: admins,
	}
}

// RegisterRequest contains the parameters for creating an account.
type RegisterRequest struct {
	Email     string
	Username  string
	Password  string
	FirstName string
	LastName  string
	Skills    []string
	Bio       string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates an account with the starting bank-hour balance.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)

	if err := auth.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := auth.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := domain.UserRoleMember
	if s.adminEmails[strings.ToLower(req.Email)] {
		role = domain.UserRoleAdmin
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		BankHours:    s.bank.DefaultBankHours,
		Skills:       cleanList(req.Skills),
		Bio:          req.Bio,
		Rating:       s.bank.DefaultRating,
		Role:         role,
		Status:       domain.UserStatusActive,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"bank_hours": user.BankHours,
	}).Info("user registered")

	return s.issue(user)
}

// Login authenticates by e-mail or username.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.GetByUsername(ctx, identifier)
	}
	if errors.Is(err, repository.ErrNotFound) {
		s.errLog.AuthError(ctx, "login", ErrInvalidCredentials, "")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		s.errLog.AuthError(ctx, "login", ErrInvalidCredentials, user.ID)
		return nil, ErrInvalidCredentials
	}
	if user.IsSuspended() {
		return nil, ErrUserSuspended
	}

	return s.issue(user)
}

func (s *UserService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// GetUser retrieves a user by ID.
func (s *UserService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		s.errLog.UserNotFound(ctx, userID, "GetUser", "UserService")
	}
	return user, err
}

// Profile is a user with their active services and completed exchanges.
type Profile struct {
	User                  *domain.User
	Services              []*domain.Service
	CompletedTransactions []*domain.Transaction
}

// GetProfile retrieves a user's public profile.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	services, err := s.serviceRepo.List(ctx, domain.ServiceFilter{UserID: userID, ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	txns, err := s.txnRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := make([]*domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if t.Status == domain.TransactionStatusCompleted {
			completed = append(completed, t)
		}
	}

	return &Profile{User: user, Services: services, CompletedTransactions: completed}, nil
}

// ProfileUpdate carries the editable profile fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	FirstName      *string
	LastName       *string
	Skills         []string
	Bio            *string
	ProfilePicture *string
}

// UpdateProfile applies a partial profile update.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		user.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		user.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Skills != nil {
		user.Skills = cleanList(upd.Skills)
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.ProfilePicture != nil {
		user.ProfilePicture = *upd.ProfilePicture
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetBalance returns the user's bank-hour balance, served from cache when possible.
func (s *UserService) GetBalance(ctx context.Context, userID string) (float64, error) {
	if userID == "" {
		return 0, ErrInvalidUserID
	}

	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetBalance(ctx, userID)
		if err != nil {
			s.log.WithError(err).Warn("balance cache read failed")
		} else if cached != nil {
			return cached.BankHours, nil
		}
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return 0, err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.SetBalance(ctx, &redis.CachedBalance{UserID: user.ID, BankHours: user.BankHours})
	}
	return user.BankHours, nil
}

// cleanList trims entries and drops empty and duplicate ones.
func cleanList(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := strings.ToLower(item)
		if item == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
