package handlers

import (
	"net/http"
	"strings"

	"tripmarket/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	TravelPlanID        string         `json:"travelPlanId"`
	StartDate           FlexDate       `json:"startDate"`
	EndDate             FlexDate       `json:"endDate"`
	Participants        int            `json:"participants"`
	Guests              []models.Guest `json:"guests"`
	SpecialRequirements string         `json:"specialRequirements"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (a *API) CreateBooking(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := a.Bookings.CreateBooking(c.Request.Context(), s.UserID, models.BookingInput{
		TravelPlanID:        req.TravelPlanID,
		StartDate:           req.StartDate.Time,
		EndDate:             req.EndDate.Time,
		Participants:        req.Participants,
		Guests:              req.Guests,
		SpecialRequirements: req.SpecialRequirements,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": b})
}

func (a *API) ListMyBookings(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	list, err := a.Bookings.ListUserBookings(c.Request.Context(), s.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": list})
}

func (a *API) GetBooking(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	b, err := a.Bookings.GetBooking(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

func (a *API) UpdateGuestInfo(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req models.GuestInfoUpdate
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := a.Bookings.UpdateGuestInfo(c.Request.Context(), s.UserID, c.Param("id"), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

func (a *API) UpdateBookingStatus(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	to := models.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	b, err := a.Bookings.ChangeStatus(c.Request.Context(), s, c.Param("id"), to)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "booking": b})
}

// SweepOverdue runs the deadline sweep on demand; the CLI runs the same job.
func (a *API) SweepOverdue(c *gin.Context) {
	n, err := a.Bookings.MarkOverdue(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": n})
}
