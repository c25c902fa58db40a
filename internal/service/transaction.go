package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// TransactionService handles direct service requests between users.
type TransactionService struct {
	txnRepo             repository.TransactionRepository
	serviceRepo         repository.ServiceRepository
	userRepo            repository.UserRepository
	ledger              *LedgerService
	notificationService *NotificationService
	log                 logrus.FieldLogger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(
	txnRepo repository.TransactionRepository,
	serviceRepo repository.ServiceRepository,
	userRepo repository.UserRepository,
	ledger *LedgerService,
	notificationService *NotificationService,
	log logrus.FieldLogger,
) *TransactionService {
	return &TransactionService{
		txnRepo:             txnRepo,
		serviceRepo:         serviceRepo,
		userRepo:            userRepo,
		ledger:              ledger,
		notificationService: notificationService,
		log:                 log,
	}
}

// RequestService opens a PENDING transaction for a service that does not
// use scheduling.
func (s *TransactionService) RequestService(ctx context.Context, consumerID, serviceID, description string) (*domain.Transaction, error) {
	if consumerID == "" {
		return nil, ErrInvalidUserID
	}
	if serviceID == "" {
		return nil, ErrInvalidServiceID
	}

	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}
	if svc.RequiresScheduling {
		return nil, ErrSchedulingRequired
	}
	if svc.UserID == consumerID {
		return nil, ErrOwnService
	}

	consumer, err := s.userRepo.GetByID(ctx, consumerID)
	if err != nil {
		return nil, err
	}
	if consumer.IsSuspended() {
		return nil, ErrUserSuspended
	}

	txn := &domain.Transaction{
		ID:          uuid.New().String(),
		ProviderID:  svc.UserID,
		ConsumerID:  consumerID,
		ServiceID:   svc.ID,
		HoursSpent:  float64(domain.NormalizeHourlyDuration(float64(svc.HourlyDuration))),
		Status:      domain.TransactionStatusPending,
		Description: description,
	}
	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, err
	}

	if err := s.notificationService.NotifyTransactionRequested(ctx, txn, svc); err != nil {
		s.log.WithError(err).Warn("failed to notify provider")
	}

	s.log.WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"service_id":     svc.ID,
		"hours":          txn.HoursSpent,
	}).Info("service requested")
	return txn, nil
}

// UpdateStatus moves a transaction through its lifecycle. Completing it
// pays the provider.
func (s *TransactionService) UpdateStatus(ctx context.Context, actorID, transactionID string, status domain.TransactionStatus) (*domain.Transaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.Involves(actorID) {
		return nil, ErrForbidden
	}

	switch status {
	case domain.TransactionStatusInProgress, domain.TransactionStatusCompleted:
		if actorID != txn.ProviderID {
			return nil, ErrForbidden
		}
	case domain.TransactionStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	if !txn.CanTransition(status) {
		return nil, ErrInvalidStatusTransition
	}

	if status == domain.TransactionStatusCompleted {
		txn, err = s.CompleteWithPayment(ctx, transactionID)
		if err != nil {
			return nil, err
		}
	} else {
		txn.Status = status
		txn.UpdatedAt = time.Now()
		if err := s.txnRepo.Update(ctx, txn); err != nil {
			return nil, err
		}
	}

	if err := s.notificationService.NotifyTransactionUpdated(ctx, txn, actorID); err != nil {
		s.log.WithError(err).Warn("failed to notify transaction party")
	}
	return txn, nil
}

// CompleteWithPayment transfers the agreed hours from consumer to provider
// and marks the transaction COMPLETED.
func (s *TransactionService) CompleteWithPayment(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != domain.TransactionStatusInProgress {
		return nil, ErrTransactionNotInProgress
	}

	result, err := s.ledger.Transfer(ctx, TransferRequest{
		FromUserID:    txn.ConsumerID,
		ToUserID:      txn.ProviderID,
		Hours:         txn.HoursSpent,
		TransactionID: txn.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.notificationService.NotifyHoursReceived(ctx, result); err != nil {
		s.log.WithError(err).Warn("failed to notify payee")
	}

	txn.Status = domain.TransactionStatusCompleted
	txn.CompletedAt = result.TransferredAt
	return txn, nil
}

// Get returns a transaction the caller takes part in.
func (s *TransactionService) Get(ctx context.Context, actorID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.txnRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if !txn.Involves(actorID) {
		return nil, ErrForbidden
	}
	return txn, nil
}

// TransactionRole filters transactions by the caller's side.
type TransactionRole string

const (
	TransactionRoleAny      TransactionRole = ""
	TransactionRoleProvided TransactionRole = "provided"
	TransactionRoleReceived TransactionRole = "received"
)

// TransactionFilter narrows ListForUser.
type TransactionFilter struct {
	Status domain.TransactionStatus
	Role   TransactionRole
}

// ListForUser returns a user's transactions, newest first.
func (s *TransactionService) ListForUser(ctx context.Context, userID string, filter TransactionFilter) ([]*domain.Transaction, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	var (
		txns []*domain.Transaction
		err  error
	)
	if filter.Role == TransactionRoleProvided {
		txns, err = s.txnRepo.ListByProvider(ctx, userID)
	} else {
		txns, err = s.txnRepo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*domain.Transaction, 0, len(txns))
	for _, t := range txns {
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Role == TransactionRoleReceived && t.ConsumerID != userID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
