package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
)

type CreateHomestayInput struct {
	HostID        int64
	Title         string
	Description   string
	Address       string
	City          string
	State         string
	Country       string
	PostalCode    string
	PricePerNight float64
	MaxGuests     int
	Amenities     map[string]any
}

type HomestayListFilter struct {
	HostID     int64
	City       string
	ActiveOnly bool
}

type HomestayRepository struct {
	db DBTX
}

func NewHomestayRepository(db DBTX) *HomestayRepository {
	return &HomestayRepository{db: db}
}

const homestayColumns = "id, host_id, title, description, address, city, state, country, postal_code, price_per_night, max_guests, amenities, is_active, created_at, updated_at"

func (r *HomestayRepository) Create(
	ctx context.Context,
	input CreateHomestayInput,
) (*models.Homestay, error) {
	amenities, err := marshalAmenities(input.Amenities)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		INSERT INTO homestays (host_id, title, description, address, city, state, country, postal_code, price_per_night, max_guests, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s
	`, homestayColumns)

	row := r.db.QueryRow(
		ctx,
		query,
		input.HostID,
		input.Title,
		input.Description,
		input.Address,
		input.City,
		input.State,
		input.Country,
		input.PostalCode,
		input.PricePerNight,
		input.MaxGuests,
		amenities,
	)
	return scanHomestay(row)
}

func (r *HomestayRepository) GetByID(ctx context.Context, homestayID int64) (*models.Homestay, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM homestays
		WHERE id = $1
	`, homestayColumns)
	return scanHomestay(r.db.QueryRow(ctx, query, homestayID))
}

func (r *HomestayRepository) List(
	ctx context.Context,
	filter HomestayListFilter,
) ([]models.Homestay, error) {
	args := []any{}
	whereParts := []string{}

	if filter.ActiveOnly {
		whereParts = append(whereParts, "is_active = TRUE")
	}
	if filter.HostID > 0 {
		args = append(args, filter.HostID)
		whereParts = append(whereParts, fmt.Sprintf("host_id = $%d", len(args)))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		args = append(args, "%"+city+"%")
		whereParts = append(whereParts, fmt.Sprintf("city ILIKE $%d", len(args)))
	}

	where := ""
	if len(whereParts) > 0 {
		where = "WHERE " + strings.Join(whereParts, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM homestays
		%s
		ORDER BY created_at DESC, id DESC
	`, homestayColumns, where)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	homestays := make([]models.Homestay, 0)
	for rows.Next() {
		homestay, err := scanHomestay(rows)
		if err != nil {
			return nil, err
		}
		homestays = append(homestays, *homestay)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return homestays, nil
}

type UpdateHomestayInput struct {
	Title         *string
	Description   *string
	PricePerNight *float64
	MaxGuests     *int
	Amenities     map[string]any
	IsActive      *bool
}

func (r *HomestayRepository) Update(
	ctx context.Context,
	homestayID int64,
	hostID int64,
	input UpdateHomestayInput,
) (*models.Homestay, error) {
	var amenities []byte
	if input.Amenities != nil {
		encoded, err := marshalAmenities(input.Amenities)
		if err != nil {
			return nil, err
		}
		amenities = encoded
	}

	query := fmt.Sprintf(`
		UPDATE homestays
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    price_per_night = COALESCE($5, price_per_night),
		    max_guests = COALESCE($6, max_guests),
		    amenities = COALESCE($7, amenities),
		    is_active = COALESCE($8, is_active),
		    updated_at = NOW()
		WHERE id = $1 AND host_id = $2
		RETURNING %s
	`, homestayColumns)

	row := r.db.QueryRow(
		ctx,
		query,
		homestayID,
		hostID,
		input.Title,
		input.Description,
		input.PricePerNight,
		input.MaxGuests,
		amenities,
		input.IsActive,
	)
	return scanHomestay(row)
}

func (r *HomestayRepository) AddImage(
	ctx context.Context,
	homestayID int64,
	imageURL string,
	caption *string,
	isPrimary bool,
) (*models.HomestayImage, error) {
	query := `
		INSERT INTO homestay_images (homestay_id, image_url, caption, is_primary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, homestay_id, image_url, caption, is_primary, created_at
	`
	var image models.HomestayImage
	err := r.db.QueryRow(ctx, query, homestayID, imageURL, caption, isPrimary).Scan(
		&image.ID,
		&image.HomestayID,
		&image.ImageURL,
		&image.Caption,
		&image.IsPrimary,
		&image.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &image, nil
}

func (r *HomestayRepository) ListImages(
	ctx context.Context,
	homestayID int64,
) ([]models.HomestayImage, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, homestay_id, image_url, caption, is_primary, created_at
		FROM homestay_images
		WHERE homestay_id = $1
		ORDER BY is_primary DESC, id ASC
	`, homestayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]models.HomestayImage, 0)
	for rows.Next() {
		var image models.HomestayImage
		if err := rows.Scan(
			&image.ID,
			&image.HomestayID,
			&image.ImageURL,
			&image.Caption,
			&image.IsPrimary,
			&image.CreatedAt,
		); err != nil {
			return nil, err
		}
		images = append(images, image)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return images, nil
}

func (r *HomestayRepository) CreateReview(
	ctx context.Context,
	homestayID int64,
	studentID int64,
	rating int,
	comment string,
) (*models.HomestayReview, error) {
	query := `
		INSERT INTO homestay_reviews (homestay_id, student_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, homestay_id, student_id, rating, comment, created_at
	`
	var review models.HomestayReview
	err := r.db.QueryRow(ctx, query, homestayID, studentID, rating, comment).Scan(
		&review.ID,
		&review.HomestayID,
		&review.StudentID,
		&review.Rating,
		&review.Comment,
		&review.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *HomestayRepository) RatingSummary(
	ctx context.Context,
	homestayID int64,
) (*float64, int, error) {
	var average *float64
	var count int
	err := r.db.QueryRow(ctx, `
		SELECT AVG(rating), COUNT(*)
		FROM homestay_reviews
		WHERE homestay_id = $1
	`, homestayID).Scan(&average, &count)
	if err != nil {
		return nil, 0, err
	}
	return average, count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHomestay(row rowScanner) (*models.Homestay, error) {
	var homestay models.Homestay
	var amenities []byte
	err := row.Scan(
		&homestay.ID,
		&homestay.HostID,
		&homestay.Title,
		&homestay.Description,
		&homestay.Address,
		&homestay.City,
		&homestay.State,
		&homestay.Country,
		&homestay.PostalCode,
		&homestay.PricePerNight,
		&homestay.MaxGuests,
		&amenities,
		&homestay.IsActive,
		&homestay.CreatedAt,
		&homestay.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(amenities) > 0 {
		if err := json.Unmarshal(amenities, &homestay.Amenities); err != nil {
			return nil, err
		}
	}
	return &homestay, nil
}

func marshalAmenities(amenities map[string]any) ([]byte, error) {
	if amenities == nil {
		amenities = map[string]any{}
	}
	return json.Marshal(amenities)
}
