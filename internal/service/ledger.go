package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/redis"
	"hourbank/internal/repository"
	"hourbank/internal/repository/postgres"
)

const userLockTTL = 10 * time.Second

// LedgerService moves bank hours between users.
type LedgerService struct {
	db         *sql.DB
	userRepo   repository.UserRepository
	lockStore  redis.LockStoreInterface
	cacheStore redis.CacheStoreInterface
	errLog     *logging.ErrorLogger
	log        logrus.FieldLogger
	lockTTL    time.Duration
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(
	db *sql.DB,
	userRepo repository.UserRepository,
	lockStore redis.LockStoreInterface,
	cacheStore redis.CacheStoreInterface,
	errLog *logging.ErrorLogger,
	log logrus.FieldLogger,
) *LedgerService {
	return &LedgerService{
		db:         db,
		userRepo:   userRepo,
		lockStore:  lockStore,
		cacheStore: cacheStore,
		errLog:     errLog,
		log:        log,
		lockTTL:    userLockTTL,
	}
}

// SetLockTTL overrides how long per-user transfer locks are held.
func (s *LedgerService) SetLockTTL(ttl time.Duration) {
	if ttl > 0 {
		s.lockTTL = ttl
	}
}

// TransferRequest contains the parameters for a bank-hour transfer.
type TransferRequest struct {
	FromUserID    string
	ToUserID      string
	Hours         float64
	TransactionID string

	// Prepare, if set, runs inside the SQL transaction before balances move.
	Prepare func(ctx context.Context, tx *sql.Tx) error
}

// Transfer debits the payer, credits the payee and completes the linked
// transaction atomically. Both users are locked for the duration.
func (s *LedgerService) Transfer(ctx context.Context, req TransferRequest) (result *domain.TransferResult, err error) {
	if req.FromUserID == "" || req.ToUserID == "" {
		return nil, ErrInvalidUserID
	}
	if req.FromUserID == req.ToUserID {
		return nil, ErrSameUser
	}
	if req.Hours <= 0 || math.IsNaN(req.Hours) || math.IsInf(req.Hours, 0) {
		return nil, ErrInvalidHours
	}

	unlock, err := s.lockUsers(ctx, req.FromUserID, req.ToUserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	defer func() {
		if err != nil {
			s.errLog.TransactionError(ctx, req.TransactionID, "Transfer", err, map[string]any{
				"from_user_id": req.FromUserID,
				"to_user_id":   req.ToUserID,
				"hours":        req.Hours,
			})
		}
	}()

	result, err = s.transfer(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		if cacheErr := s.cacheStore.InvalidateBalances(ctx, req.FromUserID, req.ToUserID); cacheErr != nil {
			s.log.WithError(cacheErr).Warn("failed to invalidate balance cache")
		}
	}

	s.errLog.Log(ctx, nil, logging.Entry{
		Message:   "bank hours transferred",
		Severity:  logging.SeverityLow,
		Category:  logging.CategoryTransaction,
		Operation: "Transfer",
		Component: "LedgerService",
		Fields: map[string]any{
			"transaction_id":   result.TransactionID,
			"from_user_id":     result.FromUserID,
			"to_user_id":       result.ToUserID,
			"hours":            result.Hours,
			"from_new_balance": result.FromNewBalance,
			"to_new_balance":   result.ToNewBalance,
		},
	})
	return result, nil
}

func (s *LedgerService) transfer(ctx context.Context, req TransferRequest) (result *domain.TransferResult, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txUserRepo := postgres.NewUserRepositoryWithTx(tx)
	txTxnRepo := postgres.NewTransactionRepositoryWithTx(tx)

	if req.Prepare != nil {
		if err = req.Prepare(ctx, tx); err != nil {
			return nil, err
		}
	}

	fromBalance, err := txUserRepo.AdjustBankHours(ctx, req.FromUserID, -req.Hours)
	if err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			err = ErrInsufficientBalance
		}
		return nil, err
	}

	toBalance, err := txUserRepo.AdjustBankHours(ctx, req.ToUserID, req.Hours)
	if err != nil {
		return nil, err
	}

	if err = txUserRepo.IncrementTransactions(ctx, req.FromUserID); err != nil {
		return nil, err
	}
	if err = txUserRepo.IncrementTransactions(ctx, req.ToUserID); err != nil {
		return nil, err
	}

	now := time.Now()
	if req.TransactionID != "" {
		var txn *domain.Transaction
		txn, err = txTxnRepo.GetByID(ctx, req.TransactionID)
		if err != nil {
			return nil, err
		}
		if txn.Status != domain.TransactionStatusInProgress {
			err = ErrTransactionNotInProgress
			return nil, err
		}
		txn.Status = domain.TransactionStatusCompleted
		txn.CompletedAt = now
		if err = txTxnRepo.Update(ctx, txn); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	return &domain.TransferResult{
		TransactionID:  req.TransactionID,
		FromUserID:     req.FromUserID,
		ToUserID:       req.ToUserID,
		Hours:          req.Hours,
		FromNewBalance: fromBalance,
		ToNewBalance:   toBalance,
		TransferredAt:  now,
	}, nil
}

// lockUsers acquires balance locks in ID order so concurrent transfers
// between the same pair cannot deadlock.
func (s *LedgerService) lockUsers(ctx context.Context, userIDs ...string) (func(), error) {
	if s.lockStore == nil {
		return func() {}, nil
	}

	ids := append([]string(nil), userIDs...)
	sort.Strings(ids)

	type heldLock struct{ userID, token string }
	var held []heldLock
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			if err := s.lockStore.ReleaseUserLock(context.WithoutCancel(ctx), held[i].userID, held[i].token); err != nil {
				s.log.WithError(err).WithField("user_id", held[i].userID).Warn("failed to release user lock")
			}
		}
	}

	for _, id := range ids {
		token, ok, err := s.lockStore.AcquireUserLock(ctx, id, s.lockTTL)
		if err != nil {
			release()
			return nil, fmt.Errorf("acquire user lock: %w", err)
		}
		if !ok {
			release()
			return nil, ErrResourceBusy
		}
		held = append(held, heldLock{userID: id, token: token})
	}
	return release, nil
}

// AdminAdjust overwrites a user's balance and records the admin action.
func (s *LedgerService) AdminAdjust(ctx context.Context, adminID, userID string, newBalance float64, reason string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if newBalance < 0 || math.IsNaN(newBalance) || math.IsInf(newBalance, 0) {
		return nil, ErrInvalidHours
	}
	newBalance = math.Round(newBalance*100) / 100

	unlock, err := s.lockUsers(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.errLog.UserNotFound(ctx, userID, "AdminAdjust", "LedgerService")
		}
		return nil, err
	}
	previous := user.BankHours

	if err := s.userRepo.SetBankHours(ctx, userID, newBalance); err != nil {
		return nil, err
	}
	user.BankHours = newBalance

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateBalances(ctx, userID)
	}

	s.errLog.Log(ctx, nil, logging.Entry{
		Message:   "bank hours adjusted by admin",
		Severity:  logging.SeverityMedium,
		Category:  logging.CategoryAdmin,
		Operation: "AdminAdjust",
		Component: "LedgerService",
		UserID:    adminID,
		Fields: map[string]any{
			"target_user_id": userID,
			"previous":       previous,
			"new_balance":    newBalance,
			"reason":         reason,
		},
	})
	return user, nil
}
