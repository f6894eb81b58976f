package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (a *API) SubmitReview(c *gin.Context) {
	s, ok := sessionOrAbort(c)
	if !ok {
		return
	}
	var req reviewRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	rv, err := a.Reviews.SubmitReview(c.Request.Context(), s.UserID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "review": rv})
}

func (a *API) ListTripReviews(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := a.Reviews.ListTripReviews(ctx, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	stats, err := a.Reviews.TripRatingStats(ctx, c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": list, "stats": stats})
}

func (a *API) HostRating(c *gin.Context) {
	stats, err := a.Reviews.HostRatingStats(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stats": stats})
}
