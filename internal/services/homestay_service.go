package services

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
)

type homestayStore interface {
	Create(ctx context.Context, input repository.CreateHomestayInput) (*models.Homestay, error)
	GetByID(ctx context.Context, homestayID int64) (*models.Homestay, error)
	List(ctx context.Context, filter repository.HomestayListFilter) ([]models.Homestay, error)
	Update(ctx context.Context, homestayID int64, hostID int64, input repository.UpdateHomestayInput) (*models.Homestay, error)
	AddImage(ctx context.Context, homestayID int64, imageURL string, caption *string, isPrimary bool) (*models.HomestayImage, error)
	ListImages(ctx context.Context, homestayID int64) ([]models.HomestayImage, error)
	CreateReview(ctx context.Context, homestayID int64, studentID int64, rating int, comment string) (*models.HomestayReview, error)
	RatingSummary(ctx context.Context, homestayID int64) (*float64, int, error)
}

// HomestayService manages host listings. Hosting is an instructor
// capability; students interact through search and reviews.
type HomestayService struct {
	repo homestayStore
}

func NewHomestayService(repo homestayStore) *HomestayService {
	return &HomestayService{repo: repo}
}

func (s *HomestayService) CreateHomestay(
	ctx context.Context,
	actorID int64,
	role models.Role,
	input repository.CreateHomestayInput,
) (*models.Homestay, error) {
	if role != models.RoleInstructor && role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.City) == "" {
		return nil, ErrInvalidInput
	}
	if input.PricePerNight < 0 || input.MaxGuests <= 0 {
		return nil, ErrInvalidInput
	}

	input.HostID = actorID
	return s.repo.Create(ctx, input)
}

// GetHomestay returns the listing with its images and review summary.
func (s *HomestayService) GetHomestay(ctx context.Context, homestayID int64) (*models.HomestayDetail, error) {
	homestay, err := s.repo.GetByID(ctx, homestayID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	images, err := s.repo.ListImages(ctx, homestayID)
	if err != nil {
		return nil, err
	}

	average, count, err := s.repo.RatingSummary(ctx, homestayID)
	if err != nil {
		return nil, err
	}

	return &models.HomestayDetail{
		Homestay:      *homestay,
		Images:        images,
		AverageRating: average,
		ReviewCount:   count,
	}, nil
}

func (s *HomestayService) ListHomestays(
	ctx context.Context,
	filter repository.HomestayListFilter,
) ([]models.Homestay, error) {
	return s.repo.List(ctx, filter)
}

func (s *HomestayService) UpdateHomestay(
	ctx context.Context,
	actorID int64,
	homestayID int64,
	input repository.UpdateHomestayInput,
) (*models.Homestay, error) {
	homestay, err := s.repo.Update(ctx, homestayID, actorID, input)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	return homestay, nil
}

func (s *HomestayService) AddImage(
	ctx context.Context,
	actorID int64,
	homestayID int64,
	imageURL string,
	caption *string,
	isPrimary bool,
) (*models.HomestayImage, error) {
	homestay, err := s.repo.GetByID(ctx, homestayID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if homestay.HostID != actorID {
		return nil, ErrForbidden
	}
	if strings.TrimSpace(imageURL) == "" {
		return nil, ErrInvalidInput
	}

	return s.repo.AddImage(ctx, homestayID, imageURL, caption, isPrimary)
}

// ReviewHomestay records a student's rating. A student may review the
// same homestay more than once; the listing shows the running average.
func (s *HomestayService) ReviewHomestay(
	ctx context.Context,
	actorID int64,
	role models.Role,
	homestayID int64,
	rating int,
	comment string,
) (*models.HomestayReview, error) {
	if role != models.RoleStudent {
		return nil, ErrForbidden
	}
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidInput
	}

	homestay, err := s.repo.GetByID(ctx, homestayID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if homestay.HostID == actorID {
		return nil, ErrForbidden
	}

	return s.repo.CreateReview(ctx, homestayID, actorID, rating, strings.TrimSpace(comment))
}
