package services

import (
	"context"
	"time"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

type timeSlotStore interface {
	Create(ctx context.Context, input repository.CreateTimeSlotInput) (*models.TimeSlot, error)
	GetByID(ctx context.Context, slotID int64) (*models.TimeSlot, error)
	ListAvailable(ctx context.Context, now time.Time, instructorID int64) ([]models.TimeSlot, error)
	ListByInstructor(ctx context.Context, instructorID int64) ([]models.TimeSlot, error)
	SetAvailability(ctx context.Context, slotID int64, available bool) (*models.TimeSlot, error)
	Delete(ctx context.Context, slotID int64, instructorID int64) (bool, error)
}

// AvailabilityService owns instructor-published time slots. Slots may
// overlap; the platform has never rejected overlapping availability and
// callers depend on that.
type AvailabilityService struct {
	slotRepo timeSlotStore
}

func NewAvailabilityService(slotRepo timeSlotStore) *AvailabilityService {
	return &AvailabilityService{slotRepo: slotRepo}
}

func (s *AvailabilityService) PublishSlot(
	ctx context.Context,
	actorID int64,
	role models.Role,
	start time.Time,
	end time.Time,
	recurring bool,
) (*models.TimeSlot, error) {
	if role != models.RoleInstructor {
		return nil, ErrForbidden
	}
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return nil, ErrInvalidInput
	}

	return s.slotRepo.Create(ctx, repository.CreateTimeSlotInput{
		InstructorID: actorID,
		StartTime:    start.UTC(),
		EndTime:      end.UTC(),
		Recurring:    recurring,
	})
}

// ListAvailable returns open future slots. Passing an instructor id
// narrows the listing to that instructor's open slots.
func (s *AvailabilityService) ListAvailable(
	ctx context.Context,
	now time.Time,
	instructorID int64,
) ([]models.TimeSlot, error) {
	return s.slotRepo.ListAvailable(ctx, now.UTC(), instructorID)
}

// ListOwn returns every slot the calling instructor has published,
// including closed and past ones.
func (s *AvailabilityService) ListOwn(
	ctx context.Context,
	actorID int64,
	role models.Role,
) ([]models.TimeSlot, error) {
	if role != models.RoleInstructor {
		return nil, ErrForbidden
	}
	return s.slotRepo.ListByInstructor(ctx, actorID)
}

func (s *AvailabilityService) SetAvailability(
	ctx context.Context,
	actorID int64,
	role models.Role,
	slotID int64,
	available bool,
) (*models.TimeSlot, error) {
	if role != models.RoleInstructor {
		return nil, ErrForbidden
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.InstructorID != actorID {
		return nil, ErrForbidden
	}

	return s.slotRepo.SetAvailability(ctx, slotID, available)
}

func (s *AvailabilityService) DeleteSlot(
	ctx context.Context,
	actorID int64,
	role models.Role,
	slotID int64,
) error {
	if role != models.RoleInstructor {
		return ErrForbidden
	}

	deleted, err := s.slotRepo.Delete(ctx, slotID, actorID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
