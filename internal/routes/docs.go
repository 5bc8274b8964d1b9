package routes

import (
	"github.com/gofiber/fiber/v2"
)

type docEndpoint struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

var docEndpoints = []docEndpoint{
	{"POST", "/api/auth/register", "Register a student or instructor account"},
	{"POST", "/api/auth/login", "Exchange credentials for a JWT"},
	{"GET", "/api/auth/me", "Current account with role profile"},
	{"GET", "/api/v1/profile", "Current account with role profile"},
	{"PUT", "/api/v1/profile/contact", "Update phone and bio"},
	{"PUT", "/api/v1/profile/student", "Update the student profile"},
	{"PUT", "/api/v1/profile/teacher", "Update the teacher profile"},
	{"POST", "/api/v1/profile/avatar", "Upload an avatar image"},
	{"POST", "/api/v1/time-slots", "Publish an availability slot (instructor)"},
	{"GET", "/api/v1/time-slots", "List open future slots, optionally by instructor"},
	{"GET", "/api/v1/time-slots/mine", "List the caller's published slots"},
	{"PUT", "/api/v1/time-slots/:id/availability", "Open or close a slot"},
	{"DELETE", "/api/v1/time-slots/:id", "Delete a slot"},
	{"POST", "/api/v1/bookings", "Request a booking (student)"},
	{"GET", "/api/v1/bookings", "List the caller's bookings"},
	{"GET", "/api/v1/bookings/:id", "Fetch one booking"},
	{"POST", "/api/v1/bookings/:id/confirm", "Confirm a pending booking (instructor)"},
	{"POST", "/api/v1/bookings/:id/cancel", "Cancel a booking"},
	{"POST", "/api/v1/bookings/:id/complete", "Mark a finished booking completed (instructor)"},
	{"GET", "/api/v1/conversations", "List conversations with unread counts"},
	{"POST", "/api/v1/conversations", "Start a conversation"},
	{"POST", "/api/v1/conversations/direct", "Find or start a two-person conversation"},
	{"GET", "/api/v1/conversations/:id/messages", "Page through messages, oldest first"},
	{"POST", "/api/v1/conversations/:id/messages", "Send a message"},
	{"GET", "/api/v1/notifications", "List notifications"},
	{"POST", "/api/v1/notifications/mark-read", "Acknowledge notifications"},
	{"GET", "/api/v1/notifications/unread-count", "Unread notification count"},
	{"GET", "/api/v1/notifications/preferences", "Delivery preferences"},
	{"PUT", "/api/v1/notifications/preferences", "Update delivery preferences"},
	{"POST", "/api/v1/homestays", "Create a homestay listing (host)"},
	{"GET", "/api/v1/homestays", "Search homestay listings"},
	{"GET", "/api/v1/homestays/:id", "Listing with images and rating"},
	{"PUT", "/api/v1/homestays/:id", "Update a listing (host)"},
	{"POST", "/api/v1/homestays/:id/images", "Upload a listing photo"},
	{"POST", "/api/v1/homestays/:id/reviews", "Review a homestay (student)"},
	{"POST", "/api/v1/courses", "Create a course (instructor)"},
	{"GET", "/api/v1/courses", "List visible courses"},
	{"GET", "/api/v1/courses/:id", "Fetch one course"},
	{"PUT", "/api/v1/courses/:id", "Update a course"},
	{"POST", "/api/v1/courses/:id/lessons", "Add a lesson"},
	{"GET", "/api/v1/courses/:id/lessons", "List lessons"},
	{"PUT", "/api/v1/courses/:id/lessons/:lessonId", "Update a lesson"},
	{"GET", "/api/v1/ws", "WebSocket chat endpoint"},
}

// RegisterDocs exposes a machine-readable endpoint index. Enabled per
// environment via ENABLE_DOCS.
func RegisterDocs(app *fiber.App) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"endpoints": docEndpoints})
	})
}
