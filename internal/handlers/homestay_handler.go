package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

const maxHomestayImageBytes = 5 * 1024 * 1024

type homestayApplicationService interface {
	CreateHomestay(ctx context.Context, actorID int64, role models.Role, input repository.CreateHomestayInput) (*models.Homestay, error)
	GetHomestay(ctx context.Context, homestayID int64) (*models.HomestayDetail, error)
	ListHomestays(ctx context.Context, filter repository.HomestayListFilter) ([]models.Homestay, error)
	UpdateHomestay(ctx context.Context, actorID int64, homestayID int64, input repository.UpdateHomestayInput) (*models.Homestay, error)
	AddImage(ctx context.Context, actorID int64, homestayID int64, imageURL string, caption *string, isPrimary bool) (*models.HomestayImage, error)
	ReviewHomestay(ctx context.Context, actorID int64, role models.Role, homestayID int64, rating int, comment string) (*models.HomestayReview, error)
}

type HomestayHandler struct {
	service        homestayApplicationService
	storageService services.StorageService
}

func NewHomestayHandler(service homestayApplicationService, storageService services.StorageService) *HomestayHandler {
	return &HomestayHandler{
		service:        service,
		storageService: storageService,
	}
}

type createHomestayRequest struct {
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Address       string         `json:"address"`
	City          string         `json:"city"`
	State         string         `json:"state"`
	Country       string         `json:"country"`
	PostalCode    string         `json:"postal_code"`
	PricePerNight float64        `json:"price_per_night"`
	MaxGuests     int            `json:"max_guests"`
	Amenities     map[string]any `json:"amenities"`
}

type updateHomestayRequest struct {
	Title         *string        `json:"title"`
	Description   *string        `json:"description"`
	PricePerNight *float64       `json:"price_per_night"`
	MaxGuests     *int           `json:"max_guests"`
	Amenities     map[string]any `json:"amenities"`
	IsActive      *bool          `json:"is_active"`
}

type reviewHomestayRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *HomestayHandler) CreateHomestay(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createHomestayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	homestay, err := h.service.CreateHomestay(c.Context(), actorID, role, repository.CreateHomestayInput{
		Title:         req.Title,
		Description:   req.Description,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		PostalCode:    req.PostalCode,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Amenities:     req.Amenities,
	})
	if err != nil {
		return mapHomestayError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"homestay": homestay})
}

func (h *HomestayHandler) ListHomestays(c *fiber.Ctx) error {
	var hostID int64
	if raw := strings.TrimSpace(c.Query("host_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid host id"})
		}
		hostID = parsed
	}

	homestays, err := h.service.ListHomestays(c.Context(), repository.HomestayListFilter{
		HostID:     hostID,
		City:       c.Query("city"),
		ActiveOnly: c.QueryBool("active_only", true),
	})
	if err != nil {
		return mapHomestayError(c, err)
	}

	return c.JSON(fiber.Map{"homestays": homestays})
}

func (h *HomestayHandler) GetHomestay(c *fiber.Ctx) error {
	homestayID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || homestayID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid homestay id"})
	}

	detail, err := h.service.GetHomestay(c.Context(), homestayID)
	if err != nil {
		return mapHomestayError(c, err)
	}

	return c.JSON(fiber.Map{"homestay": detail})
}

func (h *HomestayHandler) UpdateHomestay(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	homestayID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || homestayID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid homestay id"})
	}

	var req updateHomestayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	homestay, err := h.service.UpdateHomestay(c.Context(), actorID, homestayID, repository.UpdateHomestayInput{
		Title:         req.Title,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		MaxGuests:     req.MaxGuests,
		Amenities:     req.Amenities,
		IsActive:      req.IsActive,
	})
	if err != nil {
		return mapHomestayError(c, err)
	}

	return c.JSON(fiber.Map{"homestay": homestay})
}

// UploadImage stores the photo in object storage and records it against
// the listing.
func (h *HomestayHandler) UploadImage(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	homestayID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || homestayID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid homestay id"})
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file is empty"})
	}
	if fileHeader.Size > maxHomestayImageBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "image must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open image file"})
	}
	defer file.Close()

	filename := fmt.Sprintf("%d-%d%s", homestayID, time.Now().UnixNano(), ext)
	imageURL, err := h.storageService.UploadFile(c.Context(), file, filename, services.StorageFolderHomestayPhotos)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload image"})
	}

	var caption *string
	if value := strings.TrimSpace(c.FormValue("caption")); value != "" {
		caption = &value
	}
	isPrimary := c.FormValue("is_primary") == "true"

	image, err := h.service.AddImage(c.Context(), actorID, homestayID, imageURL, caption, isPrimary)
	if err != nil {
		return mapHomestayError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"image": image})
}

func (h *HomestayHandler) ReviewHomestay(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	homestayID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || homestayID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid homestay id"})
	}

	var req reviewHomestayRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	review, err := h.service.ReviewHomestay(c.Context(), actorID, role, homestayID, req.Rating, req.Comment)
	if err != nil {
		return mapHomestayError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"review": review})
}

func mapHomestayError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Homestay not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process homestay request"})
	}
}
