package domain

import (
	"math"
	"time"
)

// PayoutPolicy controls how booking revenue is split between the platform and the host.
type PayoutPolicy struct {
	CommissionPercent float64 // platform share of the booking total
	FirstPercent      float64 // share of the host amount paid in the first installment
	SettlementDays    int     // days after trip end for the second installment
}

func DefaultPayoutPolicy() PayoutPolicy {
	return PayoutPolicy{
		CommissionPercent: 10,
		FirstPercent:      50,
		SettlementDays:    7,
	}
}

type PayoutSplit struct {
	HostTotal     float64   `json:"hostTotal"`
	Commission    float64   `json:"commission"`
	FirstAmount   float64   `json:"firstAmount"`
	FirstPercent  float64   `json:"firstPercent"`
	FirstDate     time.Time `json:"firstDate"`
	SecondAmount  float64   `json:"secondAmount"`
	SecondPercent float64   `json:"secondPercent"`
	SecondDate    time.Time `json:"secondDate"`
}

func roundMoney(x float64) float64 {
	return math.Round(x*100) / 100
}

func clampPercent(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// ComputePayoutSchedule splits a booking total into two dated host installments.
// The second installment absorbs rounding so both always sum to HostTotal.
func ComputePayoutSchedule(total float64, tripStart, tripEnd time.Time, p PayoutPolicy) PayoutSplit {
	commissionPct := clampPercent(p.CommissionPercent)
	firstPct := clampPercent(p.FirstPercent)

	commission := roundMoney(total * commissionPct / 100)
	hostTotal := roundMoney(total - commission)
	if hostTotal < 0 {
		hostTotal = 0
	}

	first := roundMoney(hostTotal * firstPct / 100)
	second := roundMoney(hostTotal - first)

	settlement := p.SettlementDays
	if settlement < 0 {
		settlement = 0
	}

	return PayoutSplit{
		HostTotal:     hostTotal,
		Commission:    commission,
		FirstAmount:   first,
		FirstPercent:  firstPct,
		FirstDate:     tripStart,
		SecondAmount:  second,
		SecondPercent: 100 - firstPct,
		SecondDate:    tripEnd.AddDate(0, 0, settlement),
	}
}

// BookingPolicy holds the payment terms applied when a booking is created.
type BookingPolicy struct {
	MinPaymentPercent float64
	DeadlineDays      int // days before trip start the balance is due
}

func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{MinPaymentPercent: 30, DeadlineDays: 7}
}

func (p BookingPolicy) MinPayment(total float64) float64 {
	return roundMoney(total * clampPercent(p.MinPaymentPercent) / 100)
}

// PaymentDeadline is DeadlineDays before start, but never sooner than 24h from now.
func (p BookingPolicy) PaymentDeadline(start, now time.Time) time.Time {
	days := p.DeadlineDays
	if days < 0 {
		days = 0
	}
	deadline := start.AddDate(0, 0, -days)
	if floor := now.Add(24 * time.Hour); deadline.Before(floor) {
		return floor
	}
	return deadline
}
