package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type CreateBookingInput struct {
	StudentID    int64
	InstructorID int64
	HomestayID   *int64
	StartDate    time.Time
	EndDate      time.Time
	TotalAmount  float64
	Notes        *string
}

type BookingListFilter struct {
	ActorID   int64
	Role      models.Role
	Status    string
	Timeframe string
}

type BookingRepository struct {
	db DBTX
}

func NewBookingRepository(db DBTX) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(
	ctx context.Context,
	input CreateBookingInput,
) (*models.Booking, error) {
	query := `
		INSERT INTO bookings (student_id, instructor_id, homestay_id, start_date, end_date, status, total_amount, notes)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7)
		RETURNING id, student_id, instructor_id, homestay_id, start_date, end_date, status, total_amount, notes, created_at, updated_at
	`
	var booking models.Booking
	err := r.db.QueryRow(
		ctx,
		query,
		input.StudentID,
		input.InstructorID,
		input.HomestayID,
		input.StartDate,
		input.EndDate,
		input.TotalAmount,
		input.Notes,
	).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.InstructorID,
		&booking.HomestayID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Status,
		&booking.TotalAmount,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, bookingID int64) (*models.Booking, error) {
	query := `
		SELECT id, student_id, instructor_id, homestay_id, start_date, end_date, status, total_amount, notes, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking models.Booking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.InstructorID,
		&booking.HomestayID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Status,
		&booking.TotalAmount,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) GetByIDForUpdate(
	ctx context.Context,
	bookingID int64,
) (*models.Booking, error) {
	query := `
		SELECT id, student_id, instructor_id, homestay_id, start_date, end_date, status, total_amount, notes, created_at, updated_at
		FROM bookings
		WHERE id = $1
		FOR UPDATE
	`
	var booking models.Booking
	err := r.db.QueryRow(ctx, query, bookingID).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.InstructorID,
		&booking.HomestayID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Status,
		&booking.TotalAmount,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) List(
	ctx context.Context,
	filter BookingListFilter,
) ([]models.Booking, error) {
	actorColumn := "student_id"
	if filter.Role == models.RoleInstructor {
		actorColumn = "instructor_id"
	}

	args := []any{filter.ActorID}
	whereParts := []string{fmt.Sprintf("%s = $1", actorColumn)}

	if status := strings.TrimSpace(filter.Status); status != "" {
		args = append(args, status)
		whereParts = append(whereParts, fmt.Sprintf("status = $%d", len(args)))
	}

	switch strings.TrimSpace(filter.Timeframe) {
	case "upcoming":
		whereParts = append(whereParts, "end_date > NOW()")
	case "past":
		whereParts = append(whereParts, "end_date <= NOW()")
	}

	query := fmt.Sprintf(`
		SELECT id, student_id, instructor_id, homestay_id, start_date, end_date, status, total_amount, notes, created_at, updated_at
		FROM bookings
		WHERE %s
		ORDER BY start_date ASC, id ASC
	`, strings.Join(whereParts, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		var booking models.Booking
		if err := rows.Scan(
			&booking.ID,
			&booking.StudentID,
			&booking.InstructorID,
			&booking.HomestayID,
			&booking.StartDate,
			&booking.EndDate,
			&booking.Status,
			&booking.TotalAmount,
			&booking.Notes,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		); err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// UpdateStatusIfCurrent performs a compare-and-set on the booking status
// and returns pgx.ErrNoRows when the current status no longer matches.
func (r *BookingRepository) UpdateStatusIfCurrent(
	ctx context.Context,
	bookingID int64,
	currentStatus string,
	nextStatus string,
) (*models.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING id, student_id, instructor_id, homestay_id, start_date, end_date, status, total_amount, notes, created_at, updated_at
	`
	var booking models.Booking
	err := r.db.QueryRow(ctx, query, bookingID, currentStatus, nextStatus).Scan(
		&booking.ID,
		&booking.StudentID,
		&booking.InstructorID,
		&booking.HomestayID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Status,
		&booking.TotalAmount,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
