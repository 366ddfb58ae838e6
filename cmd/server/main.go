package main

import (
	"context"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"lager-backend/internal/admin"
	"lager-backend/internal/auth"
	"lager-backend/internal/config"
	"lager-backend/internal/dashboard"
	"lager-backend/internal/database"
	"lager-backend/internal/inventory"
	"lager-backend/internal/metrics"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	cfg := config.Load()

	store, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Speicher konnte nicht geöffnet werden: %v", err)
	}
	defer store.Close()

	if _, err := auth.HashLegacyPasswords(context.Background(), store); err != nil {
		log.Fatalf("Passwörter konnten nicht gehasht werden: %v", err)
	}

	var opts []inventory.Option
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.WatchStore(store)
		opts = append(opts, inventory.WithRecorder(m))
	}
	svc := inventory.NewService(store, opts...)
	users := admin.NewUserService(store)

	app := fiber.New(fiber.Config{
		// Artikelnamen und Usernamen in :key/:username enthalten Umlaute und Leerzeichen
		UnescapePath: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unerwarteter Fehler:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Interner Serverfehler",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.New())

	// CORS origins kommagetrennt
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: true,
	}))

	if m != nil {
		app.Use(m.Middleware())
		app.Get("/metrics", m.Handler())
	}
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Public
	api.Post("/login", auth.LoginHandler(cfg, store))
	api.Post("/logout", auth.LogoutHandler())

	// Session, auch bei mustChangePassword erreichbar
	session := api.Group("", auth.JWTMiddleware(cfg))
	session.Get("/me", auth.MeHandler(store))
	session.Post("/change-password", auth.ChangePasswordHandler(store))

	protected := session.Group("", auth.RequirePasswordChanged(store))

	// Artikel
	protected.Get("/articles", inventory.ListArticlesHandler(svc))
	protected.Get("/articles/export.xlsx", inventory.ExportArticlesHandler(svc))
	protected.Post("/articles/import", inventory.ImportArticlesHandler(svc))
	protected.Get("/articles/:key", inventory.GetArticleHandler(svc))
	protected.Post("/articles", inventory.CreateArticleHandler(svc))
	protected.Put("/articles/:id", inventory.UpdateArticleHandler(svc))
	protected.Delete("/articles/:key", inventory.DeleteArticleHandler(svc))
	protected.Post("/add", inventory.CreateArticleHandler(svc))
	protected.Delete("/remove", inventory.RemoveArticleHandler(svc))

	// Buchungen
	protected.Post("/bookings", inventory.CreateBookingHandler(svc))
	protected.Get("/bookings", inventory.ListBookingsHandler(svc))
	protected.Post("/verbrauch", inventory.BookTypeHandler(svc, models.BookingConsume))
	protected.Post("/consume", inventory.BookTypeHandler(svc, models.BookingConsume))
	protected.Post("/einkauf", inventory.BookTypeHandler(svc, models.BookingPurchase))
	protected.Post("/purchase", inventory.BookTypeHandler(svc, models.BookingPurchase))

	// Sichten
	protected.Get("/warnlist", inventory.WarnlistHandler(svc))
	protected.Get("/warnlist/export.xlsx", inventory.ExportWarnlistHandler(svc))
	protected.Get("/badges", dashboard.BadgesHandler(svc))

	// Benutzerverwaltung (manageUsers, geprüft im Service)
	protected.Get("/users", admin.ListUsersHandler(users))
	protected.Post("/users", admin.CreateUserHandler(users))
	protected.Put("/users/:username", admin.UpdateUserHandler(users))
	protected.Delete("/users/:username", admin.DeleteUserHandler(users))
	protected.Post("/admin/reset-password", admin.ResetPasswordHandler(users))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Println("Server wird beendet...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Println("Shutdown:", err)
		}
	}()

	log.Println("Server läuft auf Port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
