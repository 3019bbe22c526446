package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lightning66/GiftMe/api/middleware"
	"github.com/lightning66/GiftMe/auth"
	"github.com/lightning66/GiftMe/models"
	"github.com/lightning66/GiftMe/store"
)

// identityProvider is recorded on users created through /exchange.
const identityProvider = "google"

// Exchange returns a handler for POST /exchange.
//
// It verifies the identity token, creates the user on first sign-in and
// appends a sign-in event. A failing sign-in log does not fail the request.
func Exchange(v auth.Verifier, st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ExchangeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "missing_token")
			return
		}

		id, err := v.Verify(req.Token)
		if err != nil {
			slog.Debug("exchange rejected", "error", err)
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid_token")
			return
		}

		ctx := c.Request.Context()
		info := id.UserInfo()
		created, err := st.UpsertUser(ctx, info, identityProvider)
		if err != nil {
			respondInternal(c, "failed to save user", err)
			return
		}

		ev := models.SignInEvent{Email: info.Email, Action: "sign_in", Timestamp: time.Now().UTC()}
		if err := st.LogSignIn(ctx, ev); err != nil {
			slog.Error("failed to log sign-in", "email", info.Email, "error", err)
		}

		c.JSON(http.StatusOK, models.ExchangeResponse{Success: true, User: info, IsNewUser: created})
	}
}

// AddItem returns a handler for POST /add-item.
func AddItem(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.Identity(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Access token required")
			return
		}

		var req models.AddItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, models.ErrCodeInvalidInput, "invalid item")
			return
		}

		_, err := st.AppendItem(c.Request.Context(), id.Email, models.Item{
			Title:  req.Title,
			Image:  req.Image,
			Price:  req.Price,
			URL:    req.URL,
			Source: req.Source,
		})
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "User not found")
		case err != nil:
			respondInternal(c, "Failed to add item", err)
		default:
			c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
		}
	}
}

// ListItems returns a handler for GET /items.
func ListItems(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.Identity(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Access token required")
			return
		}

		items, err := st.ListItems(c.Request.Context(), id.Email)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "User not found")
		case err != nil:
			respondInternal(c, "Failed to list items", err)
		default:
			if items == nil {
				items = []models.Item{}
			}
			c.JSON(http.StatusOK, items)
		}
	}
}

// DeleteItem returns a handler for DELETE /items/:index.
// A non-numeric or out-of-range index is a 404, as is an unknown user.
func DeleteItem(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := middleware.Identity(c)
		if !ok {
			respondError(c, http.StatusUnauthorized, models.ErrCodeUnauthorized, "Access token required")
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "Item not found")
			return
		}

		err = st.DeleteItem(c.Request.Context(), id.Email, index)
		switch {
		case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrItemNotFound):
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "Item not found")
		case err != nil:
			respondInternal(c, "Failed to delete item", err)
		default:
			c.JSON(http.StatusOK, models.SuccessResponse{Success: true})
		}
	}
}

// GetUser returns a handler for GET /users/:email.
func GetUser(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := st.GetUser(c.Request.Context(), c.Param("email"))
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "User not found")
		case err != nil:
			respondInternal(c, "Failed to load user", err)
		default:
			c.JSON(http.StatusOK, u)
		}
	}
}

// DeleteUser returns a handler for DELETE /users/:email.
func DeleteUser(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		err := st.DeleteUser(c.Request.Context(), email)
		switch {
		case errors.Is(err, store.ErrUserNotFound):
			respondError(c, http.StatusNotFound, models.ErrCodeNotFound, "User not found")
		case err != nil:
			respondInternal(c, "Failed to delete user", err)
		default:
			slog.Info("user deleted", "email", email)
			c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Message: "User deleted"})
		}
	}
}
