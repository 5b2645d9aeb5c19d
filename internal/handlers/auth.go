package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/sirupsen/logrus"

	"github.com/avissapr/projectdesk/internal/models"
	"github.com/avissapr/projectdesk/internal/services"
)

// AuthHandler handles login and logout. Authentication state lives in the
// session cookie; the API itself is stateless beyond that.
type AuthHandler struct {
	store *session.Store
	auth  *services.AuthService
	log   *logrus.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(store *session.Store, auth *services.AuthService, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{store: store, auth: auth, log: log}
}

// Login validates credentials and establishes a session.
//
// Route: POST /api/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var form models.LoginForm
	if err := c.BodyParser(&form); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if form.Email == "" || form.Password == "" {
		return fail(c, fiber.StatusBadRequest, "email and password are required")
	}

	user, err := h.auth.Authenticate(c.Context(), form.Email, form.Password)
	if err != nil {
		// One message for unknown account and wrong password alike.
		h.log.WithFields(logrus.Fields{"email": form.Email, "ip": c.IP()}).
			Warn("failed login attempt")
		return fail(c, fiber.StatusUnauthorized, "invalid credentials")
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "session error")
	}

	// Fresh session ID on login to prevent fixation.
	if err := sess.Regenerate(); err != nil {
		return fail(c, fiber.StatusInternalServerError, "session error")
	}

	sess.Set("user_id", user.ID)
	sess.Set("user_role", user.Role)
	sess.Set("user_name", user.Name)
	if err := sess.Save(); err != nil {
		return fail(c, fiber.StatusInternalServerError, "session error")
	}

	h.log.WithFields(logrus.Fields{"user_id": user.ID, "ip": c.IP()}).Info("user logged in")

	return ok(c, fiber.Map{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
		"role":  user.Role,
	})
}

// Logout destroys the session.
//
// Route: POST /api/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err == nil {
		_ = sess.Destroy()
	}
	return ok(c, nil)
}
