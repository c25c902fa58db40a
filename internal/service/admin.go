package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"hourbank/internal/domain"
	"hourbank/internal/logging"
	"hourbank/internal/redis"
	"hourbank/internal/repository"
)

// AdminService aggregates platform statistics and performs account actions.
type AdminService struct {
	userRepo    repository.UserRepository
	serviceRepo repository.ServiceRepository
	txnRepo     repository.TransactionRepository
	ledger      *LedgerService
	cacheStore  redis.CacheStoreInterface
	errLog      *logging.ErrorLogger
	log         logrus.FieldLogger

	queryLimit   int
	recentWindow time.Duration
	now          func() time.Time
}

// NewAdminService creates a new AdminService.
func NewAdminService(
	userRepo repository.UserRepository,
	serviceRepo repository.ServiceRepository,
	txnRepo repository.TransactionRepository,
	ledger *LedgerService,
	cacheStore redis.CacheStoreInterface,
	errLog *logging.ErrorLogger,
	log logrus.FieldLogger,
	queryLimit int,
	recentWindow time.Duration,
) *AdminService {
	if queryLimit <= 0 {
		queryLimit = 1000
	}
	if recentWindow <= 0 {
		recentWindow = 30 * 24 * time.Hour
	}
	return &AdminService{
		userRepo:     userRepo,
		serviceRepo:  serviceRepo,
		txnRepo:      txnRepo,
		ledger:       ledger,
		cacheStore:   cacheStore,
		errLog:       errLog,
		log:          log,
		queryLimit:   queryLimit,
		recentWindow: recentWindow,
		now:          time.Now,
	}
}

// SetClock overrides the time source.
func (s *AdminService) SetClock(now func() time.Time) {
	s.now = now
}

type platformSnapshot struct {
	users    []*domain.User
	services []*domain.Service
	txns     []*domain.Transaction
}

// snapshot fetches users, services and transactions concurrently.
func (s *AdminService) snapshot(ctx context.Context) (*platformSnapshot, error) {
	var snap platformSnapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		users, err := s.userRepo.List(gctx, s.queryLimit)
		snap.users = users
		return err
	})
	g.Go(func() error {
		services, err := s.serviceRepo.List(gctx, domain.ServiceFilter{Limit: s.queryLimit})
		snap.services = services
		return err
	})
	g.Go(func() error {
		txns, err := s.txnRepo.List(gctx, s.queryLimit)
		snap.txns = txns
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Stats returns platform-wide aggregates, cached briefly.
func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	if s.cacheStore != nil {
		cached, err := s.cacheStore.GetAdminStats(ctx)
		if err != nil {
			s.log.WithError(err).Warn("admin stats cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		s.errLog.Log(ctx, err, logging.Entry{
			Severity:  logging.SeverityHigh,
			Category:  logging.CategoryAdmin,
			Operation: "Stats",
			Component: "AdminService",
		})
		return nil, err
	}
	stats := s.computeStats(snap)

	if s.cacheStore != nil {
		_ = s.cacheStore.SetAdminStats(ctx, stats)
	}
	return stats, nil
}

func (s *AdminService) computeStats(snap *platformSnapshot) *domain.AdminStats {
	owners := make(map[string]bool, len(snap.services))
	for _, svc := range snap.services {
		owners[svc.UserID] = true
	}

	cutoff := s.now().Add(-s.recentWindow)
	stats := &domain.AdminStats{
		TotalUsers:        len(snap.users),
		TotalServices:     len(snap.services),
		TotalTransactions: len(snap.txns),
	}
	for _, u := range snap.users {
		stats.TotalBankHours += u.BankHours
		if u.TotalTransactions > 0 || owners[u.ID] {
			stats.ActiveUsers++
		}
		if u.CreatedAt.After(cutoff) {
			stats.RecentSignups++
		}
	}
	stats.TotalBankHours = roundHundredth(stats.TotalBankHours)
	return stats
}

// SystemHealth scores the platform from its aggregates.
func (s *AdminService) SystemHealth(ctx context.Context) (*domain.SystemHealth, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	score := HealthScore(stats)
	return &domain.SystemHealth{
		AdminStats:  *stats,
		Score:       score,
		Status:      HealthStatusFor(score),
		LastChecked: s.now(),
	}, nil
}

// HealthScore starts at 100 and deducts for signs of an idle platform.
func HealthScore(stats *domain.AdminStats) int {
	score := 100
	if stats.RecentSignups == 0 {
		score -= 20
	}
	if float64(stats.ActiveUsers) < float64(stats.TotalUsers)*0.3 {
		score -= 30
	}
	if stats.TotalTransactions == 0 {
		score -= 25
	}
	if stats.TotalServices == 0 {
		score -= 25
	}
	if score < 0 {
		score = 0
	}
	return score
}

// HealthStatusFor buckets a health score.
func HealthStatusFor(score int) domain.HealthStatus {
	switch {
	case score > 80:
		return domain.HealthHealthy
	case score > 60:
		return domain.HealthWarning
	default:
		return domain.HealthCritical
	}
}

// UsersWithStats annotates every user with activity counters.
func (s *AdminService) UsersWithStats(ctx context.Context) ([]*domain.UserWithStats, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	servicesBy := make(map[string]int)
	for _, svc := range snap.services {
		servicesBy[svc.UserID]++
	}
	txnsBy := make(map[string]int)
	lastBy := make(map[string]time.Time)
	touch := func(userID string, at time.Time) {
		txnsBy[userID]++
		if at.After(lastBy[userID]) {
			lastBy[userID] = at
		}
	}
	for _, t := range snap.txns {
		touch(t.ProviderID, t.CreatedAt)
		if t.ConsumerID != t.ProviderID {
			touch(t.ConsumerID, t.CreatedAt)
		}
	}

	cutoff := s.now().Add(-s.recentWindow)
	out := make([]*domain.UserWithStats, 0, len(snap.users))
	for _, u := range snap.users {
		ws := &domain.UserWithStats{
			User:              u,
			ServicesCount:     servicesBy[u.ID],
			TransactionsCount: txnsBy[u.ID],
			LastActivity:      lastBy[u.ID],
			Status:            domain.ActivityInactive,
		}
		switch {
		case u.IsSuspended():
			ws.Status = domain.ActivitySuspended
		case ws.LastActivity.After(cutoff) || ws.ServicesCount > 0:
			ws.Status = domain.ActivityActive
		}
		out = append(out, ws)
	}
	return out, nil
}

// UserDetails returns a user with everything they offer and took part in.
func (s *AdminService) UserDetails(ctx context.Context, userID string) (*domain.UserDetails, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := &domain.UserDetails{User: user}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		services, err := s.serviceRepo.List(gctx, domain.ServiceFilter{UserID: userID})
		details.Services = services
		return err
	})
	g.Go(func() error {
		txns, err := s.txnRepo.ListByUser(gctx, userID)
		details.Transactions = txns
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return details, nil
}

// UpdateBankHours sets a user's balance on behalf of an admin.
func (s *AdminService) UpdateBankHours(ctx context.Context, adminID, userID string, hours float64, reason string) (*domain.User, error) {
	user, err := s.ledger.AdminAdjust(ctx, adminID, userID, hours, reason)
	if err != nil {
		return nil, err
	}
	s.invalidateStats(ctx)
	return user, nil
}

// UpdateUserStatus suspends or reactivates a user.
func (s *AdminService) UpdateUserStatus(ctx context.Context, adminID, userID string, status domain.UserStatus, reason string) (*domain.User, error) {
	if status != domain.UserStatusActive && status != domain.UserStatusSuspended {
		return nil, ErrInvalidStatus
	}
	if userID == adminID && status == domain.UserStatusSuspended {
		return nil, ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
		return nil, err
	}
	user.Status = status

	s.errLog.Log(ctx, nil, logging.Entry{
		Message:   "user status changed by admin",
		Severity:  logging.SeverityMedium,
		Category:  logging.CategoryAdmin,
		Operation: "UpdateUserStatus",
		Component: "AdminService",
		UserID:    adminID,
		Fields: map[string]any{
			"target_user_id": userID,
			"status":         status,
			"reason":         reason,
		},
	})
	s.invalidateStats(ctx)
	return user, nil
}

// RecentErrors returns the latest recorded error entries.
func (s *AdminService) RecentErrors(limit int) []logging.Entry {
	return s.errLog.Recent(limit)
}

func (s *AdminService) invalidateStats(ctx context.Context) {
	if s.cacheStore == nil {
		return
	}
	if err := s.cacheStore.InvalidateAdminStats(ctx); err != nil {
		s.log.WithError(err).Warn("failed to invalidate admin stats")
	}
}

func roundHundredth(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
