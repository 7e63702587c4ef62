package handlers

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	mwauth "github.com/Skotchmaster/store_api/internal/middleware/auth"
	"github.com/Skotchmaster/store_api/internal/service"
)

type TopicHandler struct {
	Svc *service.CatalogService
}

func (h *TopicHandler) GetTopics(c echo.Context) error {
	count, topics, err := h.Svc.Topics(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"topic_count": count,
		"topics":      topics,
	})
}

func (h *TopicHandler) GetTopic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid topic id")
	}

	topic, err := h.Svc.Topic(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) CreateTopic(c echo.Context) error {
	var req struct {
		Name       string    `json:"name"`
		CategoryID uuid.UUID `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	userID, _ := mwauth.UserID(c)
	topic, err := h.Svc.CreateTopic(c.Request().Context(), req.Name, req.CategoryID, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, topic)
}

func (h *TopicHandler) UpdateTopic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid topic id")
	}

	var req struct {
		Name       string    `json:"name"`
		CategoryID uuid.UUID `json:"category_id"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	topic, err := h.Svc.UpdateTopic(c.Request().Context(), id, req.Name, req.CategoryID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, topic)
}

func (h *TopicHandler) DeleteTopic(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid topic id")
	}

	name, err := h.Svc.DeleteTopic(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("The topic %s was deleted", name)})
}
