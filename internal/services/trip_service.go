package services

import (
	"context"
	"fmt"
	"time"

	"tripmarket/internal/domain"
	"tripmarket/internal/domain/models"
	"tripmarket/internal/utils"

	"github.com/google/uuid"
)

// TripService manages listings. Every mutation clears the listing cache.
type TripService struct {
	Trips TripStore
	Cache *TripCache
	Now   func() time.Time
}

func (s TripService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s TripService) CreateTrip(ctx context.Context, hostID string, in models.TravelPlanInput) (models.TravelPlan, error) {
	if hostID == "" {
		return models.TravelPlan{}, domain.UnauthorizedError{Msg: "missing session"}
	}
	in.Title = utils.NormalizeSpace(in.Title)
	in.Destination = utils.NormalizeSpace(in.Destination)
	switch {
	case in.Title == "":
		return models.TravelPlan{}, domain.ValidationError{Field: "title", Msg: "required"}
	case in.Destination == "":
		return models.TravelPlan{}, domain.ValidationError{Field: "destination", Msg: "required"}
	case in.Price <= 0:
		return models.TravelPlan{}, domain.ValidationError{Field: "price", Msg: "must be positive"}
	case in.MaxParticipants < 1:
		return models.TravelPlan{}, domain.ValidationError{Field: "maxParticipants", Msg: "must be at least 1"}
	case !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.StartDate.After(in.EndDate):
		return models.TravelPlan{}, domain.ValidationError{Field: "startDate", Msg: "must not be after endDate"}
	}

	status := in.Status
	if status == "" {
		status = models.TripDraft
	}
	if !status.IsValid() {
		return models.TravelPlan{}, domain.ValidationError{Field: "status", Msg: "unknown status " + string(status)}
	}
	days := in.NoOfDays
	if days < 1 && !in.StartDate.IsZero() && !in.EndDate.IsZero() {
		days = int(utils.StartOfDay(in.EndDate).Sub(utils.StartOfDay(in.StartDate)).Hours()/24) + 1
	}
	if days < 1 {
		days = 1
	}

	now := s.now()
	t := models.TravelPlan{
		ID:              uuid.NewString(),
		HostID:          hostID,
		Title:           in.Title,
		Description:     utils.TrimOrEmpty(in.Description),
		Destination:     in.Destination,
		Country:         utils.NormalizeSpace(in.Country),
		State:           utils.NormalizeSpace(in.State),
		City:            utils.NormalizeSpace(in.City),
		Price:           utils.RoundMoney(in.Price),
		MaxParticipants: in.MaxParticipants,
		NoOfDays:        days,
		StartDate:       in.StartDate.UTC(),
		EndDate:         in.EndDate.UTC(),
		Status:          status,
		Filters:         utils.CleanList(in.Filters),
		Languages:       utils.CleanList(in.Languages),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.Trips.Create(ctx, t); err != nil {
		return models.TravelPlan{}, err
	}
	s.clearCache(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "trip", "create", fmt.Sprintf("trip_id=%s host=%s status=%s", t.ID, hostID, status))
	return t, nil
}

// UpdateTripStatus is allowed for the owning host and for ADMIN.
func (s TripService) UpdateTripStatus(ctx context.Context, caller domain.Session, tripID string, status models.TripStatus) (models.TravelPlan, error) {
	if !status.IsValid() {
		return models.TravelPlan{}, domain.ValidationError{Field: "status", Msg: "unknown status " + string(status)}
	}
	t, err := s.Trips.GetByID(ctx, tripID)
	if err != nil {
		return models.TravelPlan{}, err
	}
	if t.HostID != caller.UserID && caller.Role != domain.RoleAdmin {
		return models.TravelPlan{}, domain.ForbiddenError{Resource: "travel plan"}
	}

	now := s.now()
	if err := s.Trips.UpdateStatus(ctx, t.ID, status, now); err != nil {
		return models.TravelPlan{}, err
	}
	s.clearCache(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "trip", "update_status", fmt.Sprintf("trip_id=%s %s->%s", t.ID, t.Status, status))

	t.Status = status
	t.UpdatedAt = now
	return t, nil
}

// GetTrip reads one plan with its rating aggregate, bypassing the listing cache.
// Plans that are not ACTIVE are only visible to their host and to ADMIN; caller may be empty.
func (s TripService) GetTrip(ctx context.Context, caller domain.Session, id string) (models.TravelPlan, error) {
	t, err := s.Trips.GetByID(ctx, id)
	if err != nil {
		return models.TravelPlan{}, err
	}
	if t.Status == models.TripActive {
		return t, nil
	}
	if !caller.Empty() && (t.HostID == caller.UserID || caller.Role == domain.RoleAdmin) {
		return t, nil
	}
	return models.TravelPlan{}, domain.NotFoundError{Resource: "travel plan"}
}

func (s TripService) ListActive(ctx context.Context, query string) ([]models.TravelPlan, error) {
	if s.Cache == nil {
		trips, err := s.Trips.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return filterTrips(trips, query), nil
	}
	return s.Cache.GetActiveTrips(ctx, query)
}

func (s TripService) ListHostTrips(ctx context.Context, hostID string) ([]models.TravelPlan, error) {
	return s.Trips.ListByHost(ctx, hostID)
}

func (s TripService) ClearCache(ctx context.Context) {
	s.clearCache(ctx)
	utils.LogEvent(utils.RequestIDFrom(ctx), "trip", "clear_cache", "listing cache cleared")
}

func (s TripService) clearCache(ctx context.Context) {
	if s.Cache != nil {
		s.Cache.Clear(ctx)
	}
}
