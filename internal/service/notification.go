package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hourbank/internal/domain"
	"hourbank/internal/repository"
)

// NotificationService stores in-app notifications for users.
type NotificationService struct {
	repo repository.NotificationRepository
	log  logrus.FieldLogger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, log logrus.FieldLogger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// NotifyBookingRequested tells the provider about a new booking.
func (s *NotificationService) NotifyBookingRequested(ctx context.Context, booking *domain.Booking, svc *domain.Service) error {
	return s.send(ctx, &domain.Notification{
		UserID:    booking.ProviderID,
		Type:      domain.NotificationBookingRequested,
		Title:     "New Booking Request",
		Message:   fmt.Sprintf("%s requested on %s at %s (%.1f h)", svc.Title, booking.BookingDate, booking.StartTime, booking.Duration),
		RelatedID: booking.ID,
	})
}

// NotifyBookingStatus tells the other party that a booking changed state.
func (s *NotificationService) NotifyBookingStatus(ctx context.Context, booking *domain.Booking, actorID string) error {
	recipientID := booking.ConsumerID
	if actorID == booking.ConsumerID {
		recipientID = booking.ProviderID
	}

	n := &domain.Notification{
		UserID:    recipientID,
		RelatedID: booking.ID,
	}
	switch {
	case booking.Status == domain.BookingStatusConfirmed:
		n.Type = domain.NotificationBookingConfirmed
		n.Title = "Booking Confirmed"
		n.Message = fmt.Sprintf("Your booking on %s at %s was confirmed", booking.BookingDate, booking.StartTime)
	case booking.IsCancelled():
		n.Type = domain.NotificationBookingCancelled
		n.Title = "Booking Cancelled"
		n.Message = fmt.Sprintf("The booking on %s at %s was cancelled", booking.BookingDate, booking.StartTime)
		if booking.CancellationReason != "" {
			n.Message += ": " + booking.CancellationReason
		}
	case booking.Status == domain.BookingStatusCompleted:
		n.Type = domain.NotificationBookingCompleted
		n.Title = "Booking Completed"
		n.Message = fmt.Sprintf("The booking on %s was completed", booking.BookingDate)
	default:
		n.Type = domain.NotificationBookingUpdated
		n.Title = "Booking Updated"
		n.Message = fmt.Sprintf("The booking on %s is now %s", booking.BookingDate, booking.Status)
	}
	return s.send(ctx, n)
}

// NotifyTransactionRequested tells the provider about a service request.
func (s *NotificationService) NotifyTransactionRequested(ctx context.Context, txn *domain.Transaction, svc *domain.Service) error {
	return s.send(ctx, &domain.Notification{
		UserID:    txn.ProviderID,
		Type:      domain.NotificationTransactionRequested,
		Title:     "New Service Request",
		Message:   fmt.Sprintf("Someone requested %s for %.1f bank hours", svc.Title, txn.HoursSpent),
		RelatedID: txn.ID,
	})
}

// NotifyTransactionUpdated tells the other party about a status change.
func (s *NotificationService) NotifyTransactionUpdated(ctx context.Context, txn *domain.Transaction, actorID string) error {
	recipientID := txn.ConsumerID
	if actorID == txn.ConsumerID {
		recipientID = txn.ProviderID
	}
	return s.send(ctx, &domain.Notification{
		UserID:    recipientID,
		Type:      domain.NotificationTransactionUpdated,
		Title:     "Transaction Updated",
		Message:   fmt.Sprintf("Transaction status changed to %s", txn.Status),
		RelatedID: txn.ID,
	})
}

// NotifyHoursReceived tells the payee that bank hours arrived.
func (s *NotificationService) NotifyHoursReceived(ctx context.Context, result *domain.TransferResult) error {
	return s.send(ctx, &domain.Notification{
		UserID:    result.ToUserID,
		Type:      domain.NotificationHoursReceived,
		Title:     "Bank Hours Received",
		Message:   fmt.Sprintf("You received %.2f bank hours. New balance: %.2f", result.Hours, result.ToNewBalance),
		RelatedID: result.TransactionID,
	})
}

// NotifyRatingReceived tells the provider they were rated.
func (s *NotificationService) NotifyRatingReceived(ctx context.Context, rating *domain.Rating) error {
	return s.send(ctx, &domain.Notification{
		UserID:    rating.RatedUserID,
		Type:      domain.NotificationRatingReceived,
		Title:     "New Rating",
		Message:   fmt.Sprintf("You received a %d-star rating", rating.Score),
		RelatedID: rating.TransactionID,
	})
}

// List returns a user's notifications.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks a single notification as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead marks all of a user's notifications as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

// send persists a notification and logs it.
func (s *NotificationService) send(ctx context.Context, n *domain.Notification) error {
	if n.UserID == "" {
		return nil // No one to notify
	}
	n.ID = uuid.New().String()
	n.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, n); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"type":      n.Type,
			"recipient": n.UserID,
		}).Warn("failed to store notification")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"type":      n.Type,
		"recipient": n.UserID,
		"title":     n.Title,
	}).Debug("notification sent")
	return nil
}
