package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/asia-medicare/medicare_portal/internal/admin"
	"github.com/asia-medicare/medicare_portal/internal/auth"
	"github.com/asia-medicare/medicare_portal/internal/booking"
	"github.com/asia-medicare/medicare_portal/internal/concierge"
	"github.com/asia-medicare/medicare_portal/internal/config"
	"github.com/asia-medicare/medicare_portal/internal/identity"
	"github.com/asia-medicare/medicare_portal/internal/ledger"
	"github.com/asia-medicare/medicare_portal/internal/logging"
	"github.com/asia-medicare/medicare_portal/internal/loyalty"
	"github.com/asia-medicare/medicare_portal/internal/member"
	"github.com/asia-medicare/medicare_portal/internal/middleware"
	"github.com/asia-medicare/medicare_portal/internal/notification"
	"github.com/asia-medicare/medicare_portal/internal/profile"
	"github.com/asia-medicare/medicare_portal/internal/session"
)

// Deps aggregates shared dependencies required to wire routes. DB and Cache
// may be nil in development; memory implementations are used instead.
type Deps struct {
	Cfg       config.Config
	DB        *pgxpool.Pool
	Cache     redis.UniversalClient
	Logger    *slog.Logger
	Completer concierge.Completer
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}
	d.Logger = logging.OrDiscard(d.Logger)

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log in desired format: [HH:MM:SS] 200 -  145ms METHOD /path
	if d.Cfg.LogLevel == "debug" {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	}
	app.Use(middleware.Audit(d.Logger))
	app.Use(middleware.Locale())

	RegisterHealthRoutes(app, d)

	// Storage
	var sessions session.Store
	var flows loyalty.FlowStore
	if d.Cache != nil {
		sessions = session.NewRedisStore(d.Cache)
		flows = loyalty.NewRedisFlowStore(d.Cache)
	} else {
		sessions = session.NewMemoryStore()
		flows = loyalty.NewMemoryFlowStore()
	}

	var journal ledger.Journal
	var bookingRepo booking.Repository
	var credentials identity.CredentialRepository
	if d.DB != nil {
		journal = ledger.NewPostgresJournal(d.DB)
		bookingRepo = booking.NewPostgresRepository(d.DB)
		credentials = identity.NewPostgresRepository(d.DB)
	} else {
		journal = ledger.NewInMemory()
		bookingRepo = booking.NewMemoryRepository()
		credentials = identity.NewMemoryRepository()
	}

	var authn identity.Authenticator
	if d.Cfg.AuthMode == config.AuthModeHashed {
		authn = identity.NewHashedAuthenticator(credentials, profile.DemoEmail)
	}

	completer := d.Completer
	if completer == nil {
		completer = concierge.NewGeminiClient(concierge.GeminiConfig{
			APIKey:  d.Cfg.GeminiAPIKey,
			Model:   d.Cfg.GeminiModel,
			BaseURL: d.Cfg.GeminiURL,
		})
	}

	// Services and handlers
	notifier := notification.NewLoggerNotifier(d.Logger)
	issuer := auth.NewIssuer(d.Cfg.SessionSecret, d.Cfg.SessionTTL, d.Cfg.AdminEmails)
	profiles := profile.NewService(sessions, authn, nil, d.Logger)
	loyaltySvc := loyalty.NewService(profiles, flows, journal, notifier, d.Logger, loyalty.Options{
		ConfirmTTL:      d.Cfg.RedemptionConfirmTTL,
		SuccessTTL:      d.Cfg.RedemptionSuccessTTL,
		ProcessingDelay: d.Cfg.RedemptionProcessingDelay,
	})
	bookingSvc := booking.NewService(bookingRepo, notifier, d.Logger)
	conciergeSvc := concierge.NewService(completer, d.Logger)
	adminSvc := admin.NewService(sessions, bookingSvc, profiles, journal, nil, d.Logger)
	loyaltyHandler := loyalty.NewHandler(loyaltySvc)
	bookingHandler := booking.NewHandler(bookingSvc)

	var lookup middleware.ProfileLookup = func(ctx context.Context, sid string) (member.Profile, error) {
		return profiles.GetProfile(ctx, sid, "")
	}
	requireMember := middleware.RequireMember(lookup)
	idempotent := middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)

	// API routes
	api := app.Group("/api/v1", middleware.Session(issuer))
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.GetRequestID(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAuthRoutes(api, profiles, issuer, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit), d.Logger)
	RegisterNavigationRoutes(api, lookup, issuer)
	RegisterCatalogRoutes(api, loyaltyHandler, bookingHandler)
	RegisterChatRoutes(api, concierge.NewHandler(conciergeSvc))

	// Administrator routes
	RegisterAdminRoutes(api.Group("/admin", middleware.RequireAdmin(lookup, issuer)), admin.NewHandler(adminSvc))

	// Protected routes
	protected := api.Group("", requireMember)
	RegisterMemberRoutes(protected, profiles)
	RegisterLoyaltyRoutes(protected, loyaltyHandler, idempotent)
	RegisterBookingRoutes(protected, bookingHandler, idempotent)

	return nil
}
