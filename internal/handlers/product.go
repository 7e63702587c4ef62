package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/service"
	"github.com/Skotchmaster/store_api/internal/util"
)

type ProductHandler struct {
	Svc *service.CatalogService
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.Products(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data": items,
		"meta": echo.Map{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Svc.Product(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req struct {
		Name               string         `json:"name"`
		Description        string         `json:"description"`
		Price              float64        `json:"price"`
		StockQuantity      uint           `json:"stock_quantity"`
		SpecificAttributes map[string]any `json:"specific_attributes"`
		SeriesID           uuid.UUID      `json:"series_id"`
		TopicIDs           []uuid.UUID    `json:"topic_ids"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	userID, _ := mwauth.UserID(c)
	product, err := h.Svc.CreateProduct(c.Request().Context(), service.ProductInput{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		StockQuantity:      req.StockQuantity,
		SpecificAttributes: req.SpecificAttributes,
		SeriesID:           req.SeriesID,
		TopicIDs:           req.TopicIDs,
	}, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Name               *string        `json:"name"`
		Description        *string        `json:"description"`
		Price              *float64       `json:"price"`
		StockQuantity      *uint          `json:"stock_quantity"`
		SpecificAttributes map[string]any `json:"specific_attributes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Svc.UpdateProduct(c.Request().Context(), id, service.ProductPatch{
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		StockQuantity:      req.StockQuantity,
		SpecificAttributes: req.SpecificAttributes,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	name, err := h.Svc.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("The product %s was deleted", name)})
}
