package routes

import (
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ENGLISHWITHTOTO/totobackend/internal/config"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/handlers"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/middleware"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/repository"
	"github.com/ENGLISHWITHTOTO/totobackend/internal/services"
	chatws "github.com/ENGLISHWITHTOTO/totobackend/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	studentProfileRepo := repository.NewStudentProfileRepository(db)
	teacherProfileRepo := repository.NewTeacherProfileRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	homestayRepo := repository.NewHomestayRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	var storageService services.StorageService
	if cfg.SupabaseURL != "" && cfg.SupabaseBucket != "" && cfg.SupabaseServiceKey != "" {
		storageService = services.NewSupabaseStorageService(cfg.SupabaseURL, cfg.SupabaseBucket, cfg.SupabaseServiceKey)
	}

	var mailer services.Mailer
	if cfg.MailEnabled() {
		mailer = services.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	notificationService := services.NewNotificationService(notificationRepo, userRepo, mailer)
	availabilityService := services.NewAvailabilityService(timeSlotRepo)
	bookingService := services.NewBookingService(db, bookingRepo, userRepo, notificationService)
	messagingService := services.NewMessagingService(db, conversationRepo, messageRepo, userRepo, notificationService)
	profileService := services.NewProfileService(userRepo, studentProfileRepo, teacherProfileRepo)
	homestayService := services.NewHomestayService(homestayRepo)
	courseService := services.NewCourseService(courseRepo)

	chatHub := chatws.NewHub()
	go chatHub.Run()

	authHandler := handlers.NewAuthHandler(db, userRepo, profileService, cfg.JWTSecret)
	profileHandler := handlers.NewProfileHandler(profileService, storageService)
	timeSlotHandler := handlers.NewTimeSlotHandler(availabilityService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	chatHandler := handlers.NewChatHandler(messagingService, chatHub, cfg.JWTSecret)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	homestayHandler := handlers.NewHomestayHandler(homestayService, storageService)
	courseHandler := handlers.NewCourseHandler(courseService)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	profile := authProtected.Group("/profile")
	profile.Get("", profileHandler.GetProfile)
	profile.Put("/contact", profileHandler.UpdateContact)
	profile.Put("/student", profileHandler.UpdateStudentProfile)
	profile.Put("/teacher", profileHandler.UpdateTeacherProfile)
	profile.Post("/avatar", profileHandler.UploadAvatar)

	timeSlots := authProtected.Group("/time-slots")
	timeSlots.Post("", timeSlotHandler.PublishSlot)
	timeSlots.Get("", timeSlotHandler.ListAvailable)
	timeSlots.Get("/mine", timeSlotHandler.ListOwn)
	timeSlots.Put("/:id/availability", timeSlotHandler.SetAvailability)
	timeSlots.Delete("/:id", timeSlotHandler.DeleteSlot)

	bookings := authProtected.Group("/bookings")
	bookings.Post("", bookingHandler.CreateBooking)
	bookings.Get("", bookingHandler.ListBookings)
	bookings.Get("/:id", bookingHandler.GetBooking)
	bookings.Post("/:id/confirm", bookingHandler.Confirm)
	bookings.Post("/:id/cancel", bookingHandler.Cancel)
	bookings.Post("/:id/complete", bookingHandler.Complete)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Post("/direct", chatHandler.GetOrCreateDirect)
	conversations.Get("/:id/messages", chatHandler.GetMessages)
	conversations.Post("/:id/messages", chatHandler.SendMessage)

	notifications := authProtected.Group("/notifications")
	notifications.Get("", notificationHandler.ListNotifications)
	notifications.Post("/mark-read", notificationHandler.MarkRead)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Get("/preferences", notificationHandler.GetPreferences)
	notifications.Put("/preferences", notificationHandler.UpdatePreferences)

	homestays := authProtected.Group("/homestays")
	homestays.Post("", homestayHandler.CreateHomestay)
	homestays.Get("", homestayHandler.ListHomestays)
	homestays.Get("/:id", homestayHandler.GetHomestay)
	homestays.Put("/:id", homestayHandler.UpdateHomestay)
	homestays.Post("/:id/images", homestayHandler.UploadImage)
	homestays.Post("/:id/reviews", homestayHandler.ReviewHomestay)

	courses := authProtected.Group("/courses")
	courses.Post("", courseHandler.CreateCourse)
	courses.Get("", courseHandler.ListCourses)
	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Post("/:id/lessons", courseHandler.AddLesson)
	courses.Get("/:id/lessons", courseHandler.ListLessons)
	courses.Put("/:id/lessons/:lessonId", courseHandler.UpdateLesson)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))

	if cfg.EnableDocs {
		RegisterDocs(app)
	}
}
