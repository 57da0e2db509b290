package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/Sjf12/AACL/internal/adapter/middleware"
	"github.com/Sjf12/AACL/internal/adapter/storage"
	"github.com/Sjf12/AACL/internal/core/domain"
)

type AccountHandler struct {
	Accounts *storage.AccountStore
	Ledger   *storage.Ledger
}

// GetAccount returns the caller's own account
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	account, err := h.Accounts.Get(userID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
	}
	if err != nil {
		slog.Error("Failed to load account", "error", err, "user_id", userID)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Could not load account"})
	}

	return c.JSON(account)
}

// GetHistory returns the caller's latest executed transfers
func (h *AccountHandler) GetHistory(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	if _, err := h.Accounts.Get(userID); err != nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"error": "Account not found"})
	}

	return c.JSON(fiber.Map{
		"transfers": h.Ledger.History(userID),
	})
}
