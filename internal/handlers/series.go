package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/service"
)

type SeriesHandler struct {
	Svc *service.CatalogService
}

func (h *SeriesHandler) GetAllSeries(c echo.Context) error {
	series, err := h.Svc.AllSeries(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) GetSeriesByBrand(c echo.Context) error {
	brandID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	series, err := h.Svc.SeriesByBrand(c.Request().Context(), brandID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) GetSeries(c echo.Context) error {
	brandID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}
	seriesID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid series id")
	}

	series, err := h.Svc.Series(c.Request().Context(), brandID, seriesID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) CreateSeries(c echo.Context) error {
	brandID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	userID, _ := mwauth.UserID(c)
	series, err := h.Svc.CreateSeries(c.Request().Context(), brandID, req.Name, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, series)
}

func (h *SeriesHandler) UpdateSeries(c echo.Context) error {
	brandID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}
	seriesID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid series id")
	}

	var req struct {
		Name    string     `json:"name"`
		BrandID *uuid.UUID `json:"brand_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	series, err := h.Svc.UpdateSeries(c.Request().Context(), brandID, seriesID, req.Name, req.BrandID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, series)
}

func (h *SeriesHandler) DeleteSeries(c echo.Context) error {
	brandID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid brand id")
	}
	seriesID, err := uuid.Parse(c.Param("sid"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid series id")
	}

	name, err := h.Svc.DeleteSeries(c.Request().Context(), brandID, seriesID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("The series %s was deleted", name)})
}
