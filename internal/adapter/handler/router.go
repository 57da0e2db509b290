package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Sjf12/AACL/internal/adapter/middleware"
)

// NewRouter wires every route onto a fresh fiber app
func NewRouter(grammars *GrammarHandler, accounts *AccountHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// The grammar itself is the capability, so execute needs no identity
	app.Post("/aacl/execute", grammars.Execute)
	app.Post("/aacl/issue/:intent", middleware.Protected(), grammars.Issue)

	v1 := app.Group("/v1", middleware.Protected())
	v1.Get("/accounts/me", accounts.GetAccount)
	v1.Get("/accounts/me/transfers", accounts.GetHistory)

	return app
}
