package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/models"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
)

type courseApplicationService interface {
	CreateCourse(ctx context.Context, actorID int64, role models.Role, title, description string, price float64) (*models.Course, error)
	GetCourse(ctx context.Context, actorID int64, courseID int64) (*models.Course, error)
	ListCourses(ctx context.Context, actorID int64, role models.Role) ([]models.Course, error)
	UpdateCourse(ctx context.Context, actorID int64, courseID int64, input repository.UpdateCourseInput) (*models.Course, error)
	AddLesson(ctx context.Context, actorID int64, courseID int64, title, content string, position int) (*models.Lesson, error)
	ListLessons(ctx context.Context, actorID int64, courseID int64) ([]models.Lesson, error)
	UpdateLesson(ctx context.Context, actorID int64, courseID int64, lessonID int64, input repository.UpdateLessonInput) (*models.Lesson, error)
}

type CourseHandler struct {
	service courseApplicationService
}

func NewCourseHandler(service courseApplicationService) *CourseHandler {
	return &CourseHandler{service: service}
}

type createCourseRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type updateCourseRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	Status       *string  `json:"status"`
	ThumbnailURL *string  `json:"thumbnail_url"`
}

type createLessonRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Position int    `json:"position"`
}

type updateLessonRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Position    *int    `json:"position"`
	IsPublished *bool   `json:"is_published"`
}

func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	var req createCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	course, err := h.service.CreateCourse(c.Context(), actorID, role, req.Title, req.Description, req.Price)
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"course": course})
}

func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	role, ok := parseActorRole(c)
	if !ok {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	}

	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	courses, err := h.service.ListCourses(c.Context(), actorID, role)
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.JSON(fiber.Map{"courses": courses})
}

func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	courseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	course, err := h.service.GetCourse(c.Context(), actorID, courseID)
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.JSON(fiber.Map{"course": course})
}

func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	courseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	var req updateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	course, err := h.service.UpdateCourse(c.Context(), actorID, courseID, repository.UpdateCourseInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		Status:       req.Status,
		ThumbnailURL: req.ThumbnailURL,
	})
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.JSON(fiber.Map{"course": course})
}

func (h *CourseHandler) AddLesson(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	courseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	var req createLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	lesson, err := h.service.AddLesson(c.Context(), actorID, courseID, req.Title, req.Content, req.Position)
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"lesson": lesson})
}

func (h *CourseHandler) ListLessons(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	courseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	lessons, err := h.service.ListLessons(c.Context(), actorID, courseID)
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.JSON(fiber.Map{"lessons": lessons})
}

func (h *CourseHandler) UpdateLesson(c *fiber.Ctx) error {
	actorID, err := parseActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	courseID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || courseID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid course id"})
	}

	lessonID, err := strconv.ParseInt(c.Params("lessonId"), 10, 64)
	if err != nil || lessonID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid lesson id"})
	}

	var req updateLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	lesson, err := h.service.UpdateLesson(c.Context(), actorID, courseID, lessonID, repository.UpdateLessonInput{
		Title:       req.Title,
		Content:     req.Content,
		Position:    req.Position,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		return mapCourseError(c, err)
	}

	return c.JSON(fiber.Map{"lesson": lesson})
}

func mapCourseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	case errors.Is(err, services.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
	case errors.Is(err, services.ErrNotFound), errors.Is(err, pgx.ErrNoRows):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Course not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to process course request"})
	}
}
