package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"teenpatti-service/internal/middleware"
	"teenpatti-service/internal/service"
	"teenpatti-service/internal/ws"
	appErr "teenpatti-service/pkg/errors"
	"teenpatti-service/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Game)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})
	r.GET("/status", handler.Status)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/tournaments", handler.ListTournaments)
		v1.GET("/tournaments/:key", handler.GetTournament)
	}

	r.GET("/ws", middleware.SessionOptional(), wsHandler.HandleWS)
}

func (h *Handler) Status(c *gin.Context) {
	response.Success(c, gin.H{
		"status": "ok",
		"rooms":  h.services.Game.RoomCount(),
	})
}

func (h *Handler) ListTournaments(c *gin.Context) {
	page, err := parsePositiveIntQuery(c, "page", 1)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}
	size, err := parsePositiveIntQuery(c, "size", 20)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.services.Game.ListTournaments(c.Request.Context(), page, size)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list tournaments")
		return
	}
	response.Page(c, result.Items, result.Total, page, size)
}

func (h *Handler) GetTournament(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		response.Error(c, http.StatusBadRequest, "invalid tournament key")
		return
	}
	detail, err := h.services.Game.GetTournament(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, appErr.ErrTournamentNotFound) {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load tournament")
		return
	}
	response.Success(c, detail)
}

func parsePositiveIntQuery(c *gin.Context, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}
