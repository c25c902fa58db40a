package service

import "errors"

var (
	// ErrInvalidUserID is returned when a user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidCredentials is returned when login fails.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountExists is returned when the e-mail or username is taken.
	ErrAccountExists = errors.New("an account with this email or username already exists")

	// ErrUserSuspended is returned when a suspended user tries to act.
	ErrUserSuspended = errors.New("user account is suspended")

	// ErrForbidden is returned when the caller may not act on a resource.
	ErrForbidden = errors.New("not allowed")

	// ErrInvalidServiceID is returned when a service ID is empty.
	ErrInvalidServiceID = errors.New("invalid service id")

	// ErrInvalidService is returned when a service is missing required fields.
	ErrInvalidService = errors.New("title, description and category are required")

	// ErrInvalidBookingBounds is returned when min/max booking hours are inconsistent.
	ErrInvalidBookingBounds = errors.New("invalid booking hour bounds")

	// ErrServiceInactive is returned when acting on a deactivated service.
	ErrServiceInactive = errors.New("service is not active")

	// ErrSchedulingRequired is returned when a scheduled service is requested without a booking.
	ErrSchedulingRequired = errors.New("service requires a booking")

	// ErrSchedulingNotRequired is returned when booking a service that takes direct requests.
	ErrSchedulingNotRequired = errors.New("service does not use scheduling")

	// ErrOwnService is returned when a user requests their own service.
	ErrOwnService = errors.New("cannot request your own service")

	// ErrInvalidSchedule is returned when a schedule has a bad day or time range.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrScheduleOverlap is returned when a schedule overlaps another on the same day.
	ErrScheduleOverlap = errors.New("schedule overlaps an existing schedule")

	// ErrInvalidDate is returned when a date cannot be parsed or is in the past.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDateOutOfRange is returned when a date is beyond the advance booking window.
	ErrDateOutOfRange = errors.New("date is beyond the advance booking window")

	// ErrInvalidDuration is returned when a booking duration is out of bounds.
	ErrInvalidDuration = errors.New("invalid booking duration")

	// ErrSlotUnavailable is returned when the requested time slot cannot be booked.
	ErrSlotUnavailable = errors.New("time slot is not available")

	// ErrResourceBusy is returned when a lock is held by another request.
	ErrResourceBusy = errors.New("resource is busy, try again")

	// ErrInvalidStatusTransition is returned for a disallowed status change.
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrCancellationWindow is returned when cancelling too close to the start.
	ErrCancellationWindow = errors.New("booking can no longer be cancelled")

	// ErrInvalidHours is returned when a bank-hour amount is not positive and finite.
	ErrInvalidHours = errors.New("invalid bank hours amount")

	// ErrSameUser is returned when transferring hours to oneself.
	ErrSameUser = errors.New("cannot transfer hours to the same user")

	// ErrInsufficientBalance is returned when a payer lacks bank hours.
	ErrInsufficientBalance = errors.New("insufficient bank hours")

	// ErrTransactionNotInProgress is returned when completing a transaction not in progress.
	ErrTransactionNotInProgress = errors.New("transaction is not in progress")

	// ErrTransactionNotCompleted is returned when rating an unfinished transaction.
	ErrTransactionNotCompleted = errors.New("only completed transactions can be rated")

	// ErrAlreadyRated is returned when a transaction already has a rating.
	ErrAlreadyRated = errors.New("transaction already rated")

	// ErrInvalidScore is returned when a rating is outside 1..5.
	ErrInvalidScore = errors.New("rating must be between 1 and 5")

	// ErrInvalidStatus is returned for an unknown status value.
	ErrInvalidStatus = errors.New("invalid status")
)
