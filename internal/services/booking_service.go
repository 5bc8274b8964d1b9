package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

var (
	ErrForbidden              = errors.New("forbidden")
	ErrConflict               = errors.New("conflict")
	ErrInvalidInput           = errors.New("invalid input")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUserNotFound           = errors.New("user not found")
	ErrNotFound               = errors.New("not found")
)

type userReader interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// emailDispatcher delivers the out-of-band copy of a notification after
// the triggering transaction has committed. Implementations never block
// and never surface delivery failures to the caller.
type emailDispatcher interface {
	DeliverAsync(userID int64, notificationType string, title string, body string)
}

type BookingService struct {
	db          *pgxpool.Pool
	bookingRepo *repository.BookingRepository
	userRepo    userReader
	dispatcher  emailDispatcher
}

func NewBookingService(
	db *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	userRepo userReader,
	dispatcher emailDispatcher,
) *BookingService {
	return &BookingService{
		db:          db,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		dispatcher:  dispatcher,
	}
}

type CreateBookingInput struct {
	InstructorID int64
	HomestayID   *int64
	StartDate    time.Time
	EndDate      time.Time
	TotalAmount  float64
	Notes        *string
}

func (s *BookingService) CreateBooking(
	ctx context.Context,
	studentID int64,
	role models.Role,
	input CreateBookingInput,
) (*models.Booking, error) {
	if role != models.RoleStudent {
		return nil, ErrForbidden
	}
	if input.InstructorID <= 0 || input.InstructorID == studentID {
		return nil, ErrInvalidInput
	}
	if err := validateBookingWindow(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.TotalAmount < 0 {
		return nil, ErrInvalidInput
	}

	instructor, err := s.userRepo.GetByID(ctx, input.InstructorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if instructor.Role != models.RoleInstructor {
		return nil, ErrInvalidInput
	}

	student, err := s.userRepo.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Serialize booking writes per instructor. There is deliberately no
	// overlap check here: students may book overlapping intervals with
	// the same instructor, matching the platform's historical behavior.
	// The lock keeps that write path single-file so an interval guard
	// can slot in without reshaping this code.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", input.InstructorID); err != nil {
		return nil, err
	}

	txBookingRepo := repository.NewBookingRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	booking, err := txBookingRepo.Create(ctx, repository.CreateBookingInput{
		StudentID:    studentID,
		InstructorID: input.InstructorID,
		HomestayID:   input.HomestayID,
		StartDate:    input.StartDate.UTC(),
		EndDate:      input.EndDate.UTC(),
		TotalAmount:  input.TotalAmount,
		Notes:        input.Notes,
	})
	if err != nil {
		return nil, err
	}

	event := BookingEvent{
		Kind:      BookingCreated,
		Booking:   booking,
		ActorID:   studentID,
		ActorName: student.Name,
	}
	notification := event.Notification()
	if _, err := txNotificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.dispatcher.DeliverAsync(
		notification.UserID,
		notification.NotificationType,
		notification.Title,
		notification.Message,
	)

	return booking, nil
}

func (s *BookingService) GetBooking(
	ctx context.Context,
	actorID int64,
	role models.Role,
	bookingID int64,
) (*models.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !canAccessBooking(role, actorID, booking) {
		return nil, ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListBookings(
	ctx context.Context,
	actorID int64,
	role models.Role,
	filter repository.BookingListFilter,
) ([]models.Booking, error) {
	if role != models.RoleStudent && role != models.RoleInstructor {
		return nil, ErrForbidden
	}
	return s.bookingRepo.List(ctx, repository.BookingListFilter{
		ActorID:   actorID,
		Role:      role,
		Status:    filter.Status,
		Timeframe: filter.Timeframe,
	})
}

// Confirm moves a pending booking to confirmed. Only the booking's
// instructor may confirm, and only from pending; confirming from any
// other status is a state error rather than a silent overwrite.
func (s *BookingService) Confirm(
	ctx context.Context,
	actorID int64,
	role models.Role,
	bookingID int64,
) (*models.Booking, error) {
	return s.transition(ctx, actorID, role, bookingID, models.BookingStatusConfirmed)
}

// Cancel moves a pending or confirmed booking to cancelled. Either the
// student or the instructor on the booking may cancel.
func (s *BookingService) Cancel(
	ctx context.Context,
	actorID int64,
	role models.Role,
	bookingID int64,
) (*models.Booking, error) {
	return s.transition(ctx, actorID, role, bookingID, models.BookingStatusCancelled)
}

// Complete marks a confirmed booking completed once its end date has
// passed. Instructor only.
func (s *BookingService) Complete(
	ctx context.Context,
	actorID int64,
	role models.Role,
	bookingID int64,
) (*models.Booking, error) {
	return s.transition(ctx, actorID, role, bookingID, models.BookingStatusCompleted)
}

func (s *BookingService) transition(
	ctx context.Context,
	actorID int64,
	role models.Role,
	bookingID int64,
	nextStatus string,
) (*models.Booking, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	txBookingRepo := repository.NewBookingRepository(tx)
	txNotificationRepo := repository.NewNotificationRepository(tx)

	booking, err := txBookingRepo.GetByIDForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if err := validateBookingTransition(role, actorID, booking, nextStatus); err != nil {
		return nil, err
	}

	updated, err := txBookingRepo.UpdateStatusIfCurrent(ctx, bookingID, booking.Status, nextStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	event := BookingEvent{
		Kind:      bookingEventKindFor(nextStatus),
		Booking:   updated,
		ActorID:   actorID,
		ActorName: actor.Name,
	}
	notification := event.Notification()
	if _, err := txNotificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.dispatcher.DeliverAsync(
		notification.UserID,
		notification.NotificationType,
		notification.Title,
		notification.Message,
	)

	return updated, nil
}

func validateBookingWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidInput
	}
	if !start.Before(end) {
		return ErrInvalidInput
	}
	return nil
}

func canAccessBooking(role models.Role, actorID int64, booking *models.Booking) bool {
	switch role {
	case models.RoleStudent:
		return booking.StudentID == actorID
	case models.RoleInstructor:
		return booking.InstructorID == actorID
	case models.RoleAdmin:
		return true
	default:
		return false
	}
}

func validateBookingTransition(
	role models.Role,
	actorID int64,
	booking *models.Booking,
	nextStatus string,
) error {
	switch nextStatus {
	case models.BookingStatusConfirmed:
		if role != models.RoleInstructor || booking.InstructorID != actorID {
			return ErrForbidden
		}
		if booking.Status != models.BookingStatusPending {
			return ErrInvalidStateTransition
		}
		return nil
	case models.BookingStatusCancelled:
		isStudent := role == models.RoleStudent && booking.StudentID == actorID
		isInstructor := role == models.RoleInstructor && booking.InstructorID == actorID
		if !isStudent && !isInstructor {
			return ErrForbidden
		}
		if booking.Status == models.BookingStatusCancelled ||
			booking.Status == models.BookingStatusCompleted {
			return ErrInvalidStateTransition
		}
		return nil
	case models.BookingStatusCompleted:
		if role != models.RoleInstructor || booking.InstructorID != actorID {
			return ErrForbidden
		}
		if booking.Status != models.BookingStatusConfirmed {
			return ErrInvalidStateTransition
		}
		if booking.EndDate.After(time.Now().UTC()) {
			return ErrInvalidStateTransition
		}
		return nil
	default:
		return ErrInvalidInput
	}
}
