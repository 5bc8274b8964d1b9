package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

const maxAvatarSizeBytes = 5 * 1024 * 1024

type ProfileHandler struct {
	profileService *services.ProfileService
	storageService services.StorageService
}

func NewProfileHandler(
	profileService *services.ProfileService,
	storageService services.StorageService,
) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		storageService: storageService,
	}
}

type updateContactRequest struct {
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`
}

type updateStudentProfileRequest struct {
	DateOfBirth      *string `json:"date_of_birth"`
	EmergencyContact *string `json:"emergency_contact"`
	MedicalNotes     *string `json:"medical_notes"`
	LearningGoals    *string `json:"learning_goals"`
}

type updateTeacherProfileRequest struct {
	Qualifications  *string  `json:"qualifications"`
	ExperienceYears *int     `json:"experience_years"`
	HourlyRate      *float64 `json:"hourly_rate"`
}

func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	profile, err := h.profileService.GetProfile(c.Context(), actorID)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(profile)
}

func (h *ProfileHandler) UpdateContact(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, err := h.profileService.UpdateContact(c.Context(), actorID, req.Phone, req.Bio, nil)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"user": user})
}

func (h *ProfileHandler) UpdateStudentProfile(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateStudentProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	var dateOfBirth *time.Time
	if req.DateOfBirth != nil {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(*req.DateOfBirth))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "date_of_birth must be YYYY-MM-DD"})
		}
		dateOfBirth = &parsed
	}

	profile, err := h.profileService.UpdateStudentProfile(c.Context(), actorID, role, repository.StudentProfileInput{
		DateOfBirth:      dateOfBirth,
		EmergencyContact: req.EmergencyContact,
		MedicalNotes:     req.MedicalNotes,
		LearningGoals:    req.LearningGoals,
	})
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) UpdateTeacherProfile(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req updateTeacherProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "experience_years must not be negative"})
	}
	if req.HourlyRate != nil && *req.HourlyRate < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "hourly_rate must not be negative"})
	}

	profile, err := h.profileService.UpdateTeacherProfile(c.Context(), actorID, role, repository.TeacherProfileInput{
		Qualifications:  req.Qualifications,
		ExperienceYears: req.ExperienceYears,
		HourlyRate:      req.HourlyRate,
	})
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{"profile": profile})
}

func (h *ProfileHandler) UploadAvatar(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	if h.storageService == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage service is not configured"})
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is required"})
	}
	if fileHeader.Size <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file is empty"})
	}
	if fileHeader.Size > maxAvatarSizeBytes {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar file exceeds 5MB limit"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp":
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "avatar must be a jpg, jpeg, png, or webp file"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open avatar file"})
	}
	defer file.Close()

	filename := fmt.Sprintf("%d-%d%s", actorID, time.Now().UnixNano(), ext)
	avatarURL, err := h.storageService.UploadFile(c.Context(), file, filename, services.StorageFolderAvatars)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to upload avatar"})
	}

	current, err := h.profileService.GetProfile(c.Context(), actorID)
	if err == nil && current.User.AvatarURL != nil &&
		*current.User.AvatarURL != "" && *current.User.AvatarURL != avatarURL {
		_ = h.storageService.DeleteFile(c.Context(), *current.User.AvatarURL)
	}

	user, err := h.profileService.UpdateContact(c.Context(), actorID, nil, nil, &avatarURL)
	if err != nil {
		return mapProfileError(c, err)
	}

	return c.JSON(fiber.Map{
		"avatar_url": avatarURL,
		"user":       user,
	})
}

func mapProfileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process profile request"})
	}
}
