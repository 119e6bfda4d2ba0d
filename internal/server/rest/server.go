// Package rest exposes the flashdeck services over HTTP/JSON.
package rest

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	recoverMiddleware "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	address string
	app     *fiber.App
	users   *services.UserService
	decks   *services.DeckService
	cards   *services.FlashcardService
	images  *services.ImageService
	logger  logging.Logger
}

func NewServer(a string, l logging.Logger, us *services.UserService, ds *services.DeckService, fs *services.FlashcardService, is *services.ImageService) *Server {
	s := &Server{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		decks:   ds,
		cards:   fs,
		images:  is,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "flashdeck",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.routes()

	return s
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger)
	s.app.Use(recoverMiddleware.New())

	s.app.Get("/health", s.health)

	auth := s.app.Group("/auth")
	auth.Post("/register", s.register)
	auth.Post("/login", s.login)
	auth.Get("/me", s.authenticate, s.me)

	decks := s.app.Group("/decks", s.authenticate)
	decks.Get("/", s.listDecks)
	decks.Post("/", s.createDeck)
	decks.Get("/:id", s.getDeck)
	decks.Patch("/:id", s.updateDeck)
	decks.Delete("/:id", s.deleteDeck)

	cards := s.app.Group("/flashcards", s.authenticate)
	cards.Get("/", s.listFlashcards)
	cards.Post("/", s.createFlashcard)
	cards.Post("/images/upload-url", s.imageUploadURL)
	cards.Get("/:id", s.getFlashcard)
	cards.Put("/:id", s.updateFlashcard)
	cards.Delete("/:id", s.deleteFlashcard)
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(context.Background(), "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	return s.app.Listen(s.address)
}

func (s *Server) health(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "flashdeck is running", nil)
}
