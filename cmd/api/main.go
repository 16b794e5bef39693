package main

import (
	"database/sql"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"auth-backend/internal/auth"
	"auth-backend/internal/config"
	"auth-backend/internal/password"
	"auth-backend/internal/token"
	"auth-backend/internal/user"
)

// main wires dependencies and starts the HTTP server.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	hasher, err := password.New(cfg.HashMethod, cfg.HashIterations)
	if err != nil {
		log.Fatalf("password config: %v", err)
	}

	codec, err := token.NewCodec(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL)
	if err != nil {
		log.Fatalf("token config: %v", err)
	}

	repo, closeDB := mustOpenRepository(cfg)
	defer closeDB()

	service := user.NewService(repo, hasher)
	handler := user.NewHandler(service, codec)

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	registerGeneralRoutes(app)
	handler.RegisterPublicRoutes(app)

	app.Use("/user", auth.New(auth.Config{Codec: codec, Users: service}))
	handler.RegisterProtectedRoutes(app)

	log.Printf("starting server on %s", cfg.Addr)
	if err := app.Listen(cfg.Addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// mustOpenRepository selects the store: Postgres when DATABASE_URL is set,
// an empty in-memory store otherwise (dev mode, seed via the API's
// collaborators or tests).
func mustOpenRepository(cfg config.Config) (user.Repository, func()) {
	if cfg.DatabaseURL == "" {
		log.Println("DATABASE_URL not set, using in-memory user store")
		return user.NewInMemoryRepository(nil), func() {}
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	repo := user.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	return repo, func() { db.Close() }
}

func registerGeneralRoutes(app *fiber.App) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "Authentication API",
			"version": "1.0",
			"endpoints": fiber.Map{
				"health":      "/health",
				"login":       "/auth/login",
				"user_info":   "/user/me",
				"user_update": "/user/update",
			},
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"message": "API is running",
			"status":  "healthy",
		})
	})
}

// errorHandler shapes every error Fiber surfaces (404s, panics recovered
// by the middleware, handler errors) into the standard envelope without
// leaking internals.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		switch code {
		case fiber.StatusNotFound:
			message = "Resource not found"
		case fiber.StatusMethodNotAllowed:
			message = "Method not allowed"
		case fiber.StatusInternalServerError:
			log.Printf("internal error: %v", err)
		default:
			message = fiberErr.Message
		}
	} else {
		log.Printf("unhandled error: %v", err)
	}

	return c.Status(code).JSON(fiber.Map{"success": false, "message": message})
}
