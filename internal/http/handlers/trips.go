package handlers

import (
	"net/http"
	"strings"

	"tripmarket/internal/domain/models"
	"tripmarket/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type createTripRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Destination     string   `json:"destination"`
	Country         string   `json:"country"`
	State           string   `json:"state"`
	City            string   `json:"city"`
	Price           float64  `json:"price"`
	MaxParticipants int      `json:"maxParticipants"`
	NoOfDays        int      `json:"noOfDays"`
	StartDate       FlexDate `json:"startDate"`
	EndDate         FlexDate `json:"endDate"`
	Status          string   `json:"status"`
	Filters         []string `json:"filters"`
	Languages       []string `json:"languages"`
}

// ListTrips serves the cached ACTIVE listings, filtered by ?q=.
func (a *API) ListTrips(c *gin.Context) {
	trips, err := a.Trips.ListActive(c.Request.Context(), c.Query("q"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trips": trips})
}

func (a *API) GetTrip(c *gin.Context) {
	s, _ := middleware.SessionFrom(c)
	t, err := a.Trips.GetTrip(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trip": t})
}

func (a *API) ListHostTrips(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	trips, err := a.Trips.ListHostTrips(c.Request.Context(), s.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trips": trips})
}

func (a *API) CreateTrip(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req createTripRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	t, err := a.Trips.CreateTrip(c.Request.Context(), s.UserID, models.TravelPlanInput{
		Title:           req.Title,
		Description:     req.Description,
		Destination:     req.Destination,
		Country:         req.Country,
		State:           req.State,
		City:            req.City,
		Price:           req.Price,
		MaxParticipants: req.MaxParticipants,
		NoOfDays:        req.NoOfDays,
		StartDate:       req.StartDate.Time,
		EndDate:         req.EndDate.Time,
		Status:          models.TripStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
		Filters:         req.Filters,
		Languages:       req.Languages,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "trip": t})
}

func (a *API) UpdateTripStatus(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	status := models.TripStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	t, err := a.Trips.UpdateTripStatus(c.Request.Context(), s, c.Param("id"), status)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "trip": t})
}

func (a *API) ClearTripCache(c *gin.Context) {
	a.Trips.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"success": true})
}
