package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neartalkapp/neartalk/internal/middleware"
	"github.com/neartalkapp/neartalk/internal/model"
	"github.com/neartalkapp/neartalk/internal/service"
)

// StationHandler handles station creation and subscription
type StationHandler struct {
	stationService *service.StationService
}

func NewStationHandler(stationService *service.StationService) *StationHandler {
	return &StationHandler{stationService: stationService}
}

// Create godoc
// @Summary Create a station at the given coordinates
// @Tags Stations
// @Accept json
// @Produce json
// @Param session-id header string true "Session id"
// @Param body body model.LocationRequest true "Coordinates"
// @Success 201 {object} model.Station
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /stations [post]
func (h *StationHandler) Create(c *gin.Context) {
	var req model.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	station, err := h.stationService.CreateStationAt(req.Lat, req.Lon)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusCreated, station)
}

// Subscribe godoc
// @Summary Subscribe the user to the station nearest the given coordinates
// @Tags Stations
// @Accept json
// @Produce json
// @Param session-id header string true "Session id"
// @Param body body model.LocationRequest true "Coordinates"
// @Success 200 {object} model.Subscription
// @Failure 400 {object} model.ErrorResponse
// @Router /stations/subscribe [post]
func (h *StationHandler) Subscribe(c *gin.Context) {
	var req model.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user := middleware.UserFrom(c)
	subscription, err := h.stationService.Subscribe(user, req.Lat, req.Lon)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, subscription)
}
