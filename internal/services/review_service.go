package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"

	"github.com/google/uuid"
)

const maxReviewComment = 2000

// ReviewService accepts one review per confirmed booking. Ratings are aggregated
// from the reviews table at read time, so there are no counters to keep in sync.
type ReviewService struct {
	Reviews  ReviewStore
	Bookings BookingStore
	Trips    TripStore
	Now      func() time.Time
}

func (s ReviewService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s ReviewService) SubmitReview(ctx context.Context, userID, bookingID string, rating int, comment string) (models.Review, error) {
	if rating < 1 || rating > 5 {
		return models.Review{}, domain.ValidationError{Field: "rating", Msg: "must be between 1 and 5"}
	}
	comment = utils.TrimOrEmpty(comment)
	if utf8.RuneCountInString(comment) > maxReviewComment {
		return models.Review{}, domain.ValidationError{Field: "comment", Msg: fmt.Sprintf("at most %d characters", maxReviewComment)}
	}

	b, err := s.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return models.Review{}, err
	}
	if !b.OwnedBy(userID) {
		return models.Review{}, domain.NotFoundError{Resource: "booking"}
	}
	plan, err := s.Trips.GetByID(ctx, b.TravelPlanID)
	if err != nil {
		return models.Review{}, err
	}

	rv := models.Review{
		ID:           uuid.NewString(),
		UserID:       userID,
		BookingID:    b.ID,
		TravelPlanID: plan.ID,
		HostID:       plan.HostID,
		Rating:       rating,
		Comment:      comment,
		CreatedAt:    s.now(),
	}
	if err := s.Reviews.CreateForBooking(ctx, rv); err != nil {
		return models.Review{}, err
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "review", "submit", fmt.Sprintf("booking_id=%s plan=%s rating=%d", b.ID, plan.ID, rating))
	return rv, nil
}

func (s ReviewService) ListTripReviews(ctx context.Context, travelPlanID string) ([]models.Review, error) {
	return s.Reviews.ListByTrip(ctx, travelPlanID)
}

func (s ReviewService) TripRatingStats(ctx context.Context, travelPlanID string) (models.RatingStats, error) {
	st, err := s.Reviews.TripStats(ctx, travelPlanID)
	if err != nil {
		return models.RatingStats{}, err
	}
	st.AverageRating = roundRating(st.AverageRating)
	return st, nil
}

func (s ReviewService) HostRatingStats(ctx context.Context, hostID string) (models.RatingStats, error) {
	st, err := s.Reviews.HostStats(ctx, hostID)
	if err != nil {
		return models.RatingStats{}, err
	}
	st.AverageRating = roundRating(st.AverageRating)
	return st, nil
}

// roundRating keeps one decimal, the precision shown next to a listing.
func roundRating(avg float64) float64 {
	return float64(int(avg*10+0.5)) / 10
}
