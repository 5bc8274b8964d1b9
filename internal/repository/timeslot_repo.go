package repository

import (
	"context"
	"time"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type CreateTimeSlotInput struct {
	InstructorID int64
	StartTime    time.Time
	EndTime      time.Time
	Recurring    bool
}

type TimeSlotRepository struct {
	db DBTX
}

func NewTimeSlotRepository(db DBTX) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

func (r *TimeSlotRepository) Create(
	ctx context.Context,
	input CreateTimeSlotInput,
) (*models.TimeSlot, error) {
	query := `
		INSERT INTO time_slots (instructor_id, start_time, end_time, is_available, recurring)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id, instructor_id, start_time, end_time, is_available, recurring, created_at, updated_at
	`
	var slot models.TimeSlot
	err := r.db.QueryRow(
		ctx,
		query,
		input.InstructorID,
		input.StartTime,
		input.EndTime,
		input.Recurring,
	).Scan(
		&slot.ID,
		&slot.InstructorID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.Recurring,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *TimeSlotRepository) GetByID(ctx context.Context, slotID int64) (*models.TimeSlot, error) {
	query := `
		SELECT id, instructor_id, start_time, end_time, is_available, recurring, created_at, updated_at
		FROM time_slots
		WHERE id = $1
	`
	var slot models.TimeSlot
	err := r.db.QueryRow(ctx, query, slotID).Scan(
		&slot.ID,
		&slot.InstructorID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.Recurring,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// ListAvailable returns open slots starting at or after the given time.
// Expired slots are filtered here, not flagged in storage.
func (r *TimeSlotRepository) ListAvailable(
	ctx context.Context,
	now time.Time,
	instructorID int64,
) ([]models.TimeSlot, error) {
	query := `
		SELECT id, instructor_id, start_time, end_time, is_available, recurring, created_at, updated_at
		FROM time_slots
		WHERE is_available = TRUE
		  AND start_time >= $1
		  AND ($2::bigint = 0 OR instructor_id = $2)
		ORDER BY start_time ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, now, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]models.TimeSlot, 0)
	for rows.Next() {
		var slot models.TimeSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.InstructorID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsAvailable,
			&slot.Recurring,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

// ListByInstructor returns every slot the instructor has published,
// including unavailable and past slots.
func (r *TimeSlotRepository) ListByInstructor(
	ctx context.Context,
	instructorID int64,
) ([]models.TimeSlot, error) {
	query := `
		SELECT id, instructor_id, start_time, end_time, is_available, recurring, created_at, updated_at
		FROM time_slots
		WHERE instructor_id = $1
		ORDER BY start_time ASC, id ASC
	`
	rows, err := r.db.Query(ctx, query, instructorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]models.TimeSlot, 0)
	for rows.Next() {
		var slot models.TimeSlot
		if err := rows.Scan(
			&slot.ID,
			&slot.InstructorID,
			&slot.StartTime,
			&slot.EndTime,
			&slot.IsAvailable,
			&slot.Recurring,
			&slot.CreatedAt,
			&slot.UpdatedAt,
		); err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *TimeSlotRepository) SetAvailability(
	ctx context.Context,
	slotID int64,
	available bool,
) (*models.TimeSlot, error) {
	query := `
		UPDATE time_slots
		SET is_available = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, instructor_id, start_time, end_time, is_available, recurring, created_at, updated_at
	`
	var slot models.TimeSlot
	err := r.db.QueryRow(ctx, query, slotID, available).Scan(
		&slot.ID,
		&slot.InstructorID,
		&slot.StartTime,
		&slot.EndTime,
		&slot.IsAvailable,
		&slot.Recurring,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *TimeSlotRepository) Delete(ctx context.Context, slotID int64, instructorID int64) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM time_slots
		WHERE id = $1 AND instructor_id = $2
	`, slotID, instructorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
