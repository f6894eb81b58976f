package models

import "time"

type TripStatus string

const (
	TripActive   TripStatus = "ACTIVE"
	TripInactive TripStatus = "INACTIVE"
	TripDraft    TripStatus = "DRAFT"
)

func (s TripStatus) IsValid() bool {
	switch s {
	case TripActive, TripInactive, TripDraft:
		return true
	}
	return false
}

// TravelPlan is a bookable trip listing owned by a host.
// AverageRating and ReviewCount are computed from reviews when the plan is read.
type TravelPlan struct {
	ID              string     `json:"travelPlanId"`
	HostID          string     `json:"hostId"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Destination     string     `json:"destination"`
	Country         string     `json:"country"`
	State           string     `json:"state"`
	City            string     `json:"city"`
	Price           float64    `json:"price"`
	MaxParticipants int        `json:"maxParticipants"`
	NoOfDays        int        `json:"noOfDays"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	Status          TripStatus `json:"status"`
	Filters         []string   `json:"filters"`
	Languages       []string   `json:"languages"`
	AverageRating   float64    `json:"averageRating"`
	ReviewCount     int        `json:"reviewCount"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type TravelPlanInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Destination     string     `json:"destination"`
	Country         string     `json:"country"`
	State           string     `json:"state"`
	City            string     `json:"city"`
	Price           float64    `json:"price"`
	MaxParticipants int        `json:"maxParticipants"`
	NoOfDays        int        `json:"noOfDays"`
	StartDate       time.Time  `json:"startDate"`
	EndDate         time.Time  `json:"endDate"`
	Status          TripStatus `json:"status"`
	Filters         []string   `json:"filters"`
	Languages       []string   `json:"languages"`
}

// TripSnapshot is one cached copy of the active listings.
type TripSnapshot struct {
	Trips     []TravelPlan `json:"trips"`
	FetchedAt time.Time    `json:"fetchedAt"`
}
