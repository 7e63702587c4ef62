package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/service"
)

type BrandHandler struct {
	Svc *service.CatalogService
}

func (h *BrandHandler) GetBrands(c echo.Context) error {
	brands, err := h.Svc.Brands(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"brands": brands})
}

func (h *BrandHandler) GetBrand(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	brand, err := h.Svc.Brand(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brand)
}

// CreateBrands accepts a list; the whole batch succeeds or none of it does.
func (h *BrandHandler) CreateBrands(c echo.Context) error {
	var req []struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	names := make([]string, 0, len(req))
	for _, r := range req {
		names = append(names, r.Name)
	}

	userID, _ := mwauth.UserID(c)
	brands, err := h.Svc.CreateBrands(c.Request().Context(), names, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, brands)
}

func (h *BrandHandler) UpdateBrand(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	brand, err := h.Svc.UpdateBrand(c.Request().Context(), id, req.Name)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, brand)
}

func (h *BrandHandler) DeleteBrand(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	name, err := h.Svc.DeleteBrand(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("The brand %s was deleted", name)})
}
