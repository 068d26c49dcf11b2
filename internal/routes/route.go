package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/evently/internal/container"
	"github.com/joshua-takyi/evently/internal/handlers"
	"github.com/joshua-takyi/evently/internal/middleware"
	"github.com/joshua-takyi/evently/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	secure := cfg.IsProduction()

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.Recovery(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.SecurityHeaders())

	// API version 1
	v1 := r.Group("/api/v1")
	v1.Use(container.RateLimiter.Middleware())

	// Health check
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"service": "evently-api",
		})
	})

	// the socket authenticates inside the upgrade so browsers can pass ?token=
	v1.GET("/ws", handlers.ServeWS(container.Hub))

	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", handlers.SignUp(container.UserService))
		authRoutes.POST("/signin", handlers.SignIn(container.UserService, secure))
		authRoutes.POST("/refresh", handlers.RefreshSession(container.UserService, secure))
		authRoutes.POST("/logout", handlers.Logout(secure))
	}

	// public catalogue
	v1.GET("/events", handlers.ListEvents(container.EventService))
	v1.GET("/events/:id", handlers.GetEvent(container.EventService))
	v1.GET("/event-spaces", handlers.ListEventSpaces(container.EventSpaceService))
	v1.GET("/event-spaces/:id", handlers.GetEventSpace(container.EventSpaceService))
	v1.GET("/event-spaces/:id/availability", handlers.EventSpaceAvailability(container.EventSpaceService))
	v1.GET("/services", handlers.ListServices(container.ServiceCatalog))
	v1.GET("/services/:id", handlers.GetService(container.ServiceCatalog))
	v1.GET("/reviews/target/:targetId", handlers.ListTargetReviews(container.ReviewService))

	protected := v1.Group("/")
	protected.Use(container.Auth.Required())

	protected.GET("/me", handlers.Me(container.UserService))
	protected.POST("/me/avatar", handlers.UploadAvatar(container.UserService))

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.DELETE("/:id", handlers.DeleteUser(container.UserService, secure))
	}

	listers := middleware.RequireRole(models.RoleAdmin, models.RoleHost, models.RoleProvider)

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("", listers, handlers.CreateEvent(container.EventService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
	}

	spaceRoutes := protected.Group("/event-spaces")
	{
		spaceRoutes.POST("", listers, handlers.CreateEventSpace(container.EventSpaceService))
		spaceRoutes.PATCH("/:id", handlers.UpdateEventSpace(container.EventSpaceService))
		spaceRoutes.DELETE("/:id", handlers.DeleteEventSpace(container.EventSpaceService))
	}

	serviceRoutes := protected.Group("/services")
	{
		serviceRoutes.POST("", listers, handlers.CreateService(container.ServiceCatalog))
		serviceRoutes.PATCH("/:id", handlers.UpdateService(container.ServiceCatalog))
		serviceRoutes.DELETE("/:id", handlers.DeleteService(container.ServiceCatalog))
	}

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/mine", handlers.ListMyBookings(container.BookingService))
		bookingRoutes.GET("/provider", handlers.ListProviderBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/respond", handlers.RespondToBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/cancel", handlers.CancelBooking(container.BookingService))

		if container.PaymentService != nil {
			bookingRoutes.POST("/:id/payment-intent", handlers.CreatePaymentIntent(container.PaymentService))
			bookingRoutes.POST("/:id/payment-confirm", handlers.ConfirmPayment(container.PaymentService))
		} else {
			bookingRoutes.POST("/:id/payment-intent", paymentsDisabled)
			bookingRoutes.POST("/:id/payment-confirm", paymentsDisabled)
		}
	}

	notificationRoutes := protected.Group("/notifications")
	{
		notificationRoutes.GET("", handlers.ListNotifications(container.NotificationService))
		notificationRoutes.GET("/unread-count", handlers.UnreadNotifications(container.NotificationService))
		notificationRoutes.PATCH("/read-all", handlers.MarkAllNotificationsRead(container.NotificationService))
		notificationRoutes.PATCH("/:id/read", handlers.MarkNotificationRead(container.NotificationService))
		notificationRoutes.DELETE("/:id", handlers.DeleteNotification(container.NotificationService))
	}

	chatRoutes := protected.Group("/conversations")
	{
		chatRoutes.POST("", handlers.OpenConversation(container.ChatService))
		chatRoutes.GET("", handlers.ListConversations(container.ChatService))
		chatRoutes.GET("/:roomId/messages", handlers.ListMessages(container.ChatService))
	}
	protected.POST("/messages", handlers.SendMessage(container.ChatService))
	protected.PATCH("/messages/:id/status", handlers.UpdateMessageStatus(container.ChatService))

	wishlistRoutes := protected.Group("/wishlist")
	{
		wishlistRoutes.GET("", handlers.GetWishlist(container.WishlistService))
		wishlistRoutes.POST("", handlers.AddToWishlist(container.WishlistService))
		wishlistRoutes.DELETE("/:itemId", handlers.RemoveFromWishlist(container.WishlistService))
	}

	reviewRoutes := protected.Group("/reviews")
	{
		reviewRoutes.POST("", handlers.CreateReview(container.ReviewService))
		reviewRoutes.GET("/mine", handlers.ListMyReviews(container.ReviewService))
		reviewRoutes.DELETE("/:id", handlers.DeleteReview(container.ReviewService))
	}

	return r
}

func paymentsDisabled(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse("payments are not configured"))
}
