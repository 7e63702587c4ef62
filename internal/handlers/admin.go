package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/store_api/internal/logging"
	"github.com/Skotchmaster/store_api/internal/service"
)

type AdminHandler struct {
	Svc *service.AuthService
}

// UserInfo lists every user with their categories. Admin only.
func (h *AdminHandler) UserInfo(c echo.Context) error {
	users, err := h.Svc.Users(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin_delete_user")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		l.Warn("delete user failed", "user_id", id, "error", err)
		return httpError(err)
	}

	l.Info("user deleted", "user_id", id)
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted."})
}
