package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/evently/internal/config"
	"github.com/joshua-takyi/evently/internal/guard"
	"github.com/joshua-takyi/evently/internal/handlers"
	"github.com/joshua-takyi/evently/internal/helpers"
	"github.com/joshua-takyi/evently/internal/middleware"
	"github.com/joshua-takyi/evently/internal/models"
	"github.com/joshua-takyi/evently/internal/queue"
	"github.com/joshua-takyi/evently/internal/realtime"
	"github.com/joshua-takyi/evently/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client
	RedisClient    *redis.Client

	Tokens      *helpers.TokenValidator
	Auth        *middleware.Auth
	RateLimiter *middleware.RateLimiter
	Hub         *realtime.Hub
	Guards      *guard.Registry

	// Publisher and Consumer are nil when no broker is configured.
	Publisher *queue.Publisher
	Consumer  *queue.Consumer

	UserService         *services.UserService
	EventService        *services.EventService
	EventSpaceService   *services.EventSpaceService
	ServiceCatalog      *services.ServiceCatalog
	BookingService      *services.BookingService
	NotificationService *services.NotificationService
	ChatService         *services.ChatService
	WishlistService     *services.WishlistService
	ReviewService       *services.ReviewService
	// PaymentService is nil without a Stripe key.
	PaymentService *services.PaymentService
}

// Clients are the connected backends handed to NewContainer.
type Clients struct {
	Cloudinary *cloudinary.Cloudinary
	Supabase   *supabase.Client
	MongoDB    *mongo.Client
	Redis      *redis.Client
	Stripe     *client.API
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, clients Clients) *Container {
	// Initialize repositories
	supa := models.SupabaseNewRepo(clients.Supabase, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	mdb := models.MongodbNewRepo(clients.MongoDB)

	var uploader services.ImageUploader
	if clients.Cloudinary != nil {
		uploader = services.NewCloudinaryUploader(clients.Cloudinary)
	}

	c := &Container{
		Config:         cfg,
		Logger:         logger,
		Cloudinary:     clients.Cloudinary,
		SupabaseClient: clients.Supabase,
		MongoDBClient:  clients.MongoDB,
		RedisClient:    clients.Redis,
	}

	c.UserService = services.NewUserService(supa, uploader)
	c.Tokens = helpers.NewTokenValidator(cfg.SupabaseURL, cfg.AllowUnverifiedTokens)
	c.Auth = middleware.NewAuth(c.Tokens, c.UserService, logger, cfg.IsProduction())
	c.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPM, cfg.RateLimitBurst)

	c.Hub = realtime.NewHub(realtime.HubOptions{
		Authenticator:  handlers.HubAuthenticator(c.Auth),
		Logger:         logger,
		AllowedOrigins: cfg.CORSOrigins,
	})

	var mailer services.Mailer
	if cfg.EmailEnabled() {
		mailer = services.NewEmailService(services.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	c.NotificationService = services.NewNotificationService(mdb, services.NotificationServiceOptions{
		Emitter: c.Hub,
		Users:   c.UserService,
		Mailer:  mailer,
		Logger:  logger,
	})

	c.EventService = services.NewEventService(supa, uploader)
	c.ServiceCatalog = services.NewServiceCatalog(supa, uploader)
	c.EventSpaceService = services.NewEventSpaceService(supa, supa, uploader)

	var publisher services.BookingEventPublisher = services.DirectPublisher{Handler: c.NotificationService}
	if cfg.RabbitMQURL != "" {
		c.Publisher = queue.NewPublisher(cfg.RabbitMQURL, logger)
		c.Consumer = queue.NewConsumer(cfg.RabbitMQURL, c.NotificationService, logger)
		publisher = c.Publisher
	}

	c.Guards = guard.NewRegistry(guard.Options{CoolDown: cfg.BookingCoolDown})
	var locker guard.Locker
	if clients.Redis != nil {
		locker = guard.NewRedisLocker(clients.Redis, "")
	}
	c.BookingService = services.NewBookingService(supa, supa, c.EventSpaceService, services.BookingServiceOptions{
		Guards:    c.Guards,
		Locker:    locker,
		Publisher: publisher,
		Logger:    logger,
	})

	c.ChatService = services.NewChatService(mdb, c.Hub, logger)
	c.WishlistService = services.NewWishlistService(mdb)
	c.ReviewService = services.NewReviewService(mdb)
	if clients.Stripe != nil {
		c.PaymentService = services.NewPaymentService(supa, c.BookingService, services.NewStripeGateway(clients.Stripe), cfg.Currency)
	}

	c.Hub.SetDispatcher(&handlers.RealtimeDispatcher{Chat: c.ChatService, Bookings: c.BookingService})
	return c
}

// Close releases everything the container started.
func (c *Container) Close() {
	if c.Hub != nil {
		c.Hub.Close()
	}
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	if c.Tokens != nil {
		c.Tokens.Close()
	}
}
