package models

import (
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OwnerTotal is the sum of one owner's deliveries inside a range.
type OwnerTotal struct {
	OwnerID uuid.UUID       `json:"ownerId"`
	Email   string          `json:"email,omitempty"`
	Count   int             `json:"count"`
	Total   decimal.Decimal `json:"total"`
}

// RangeReport is computed per query and never stored.
type RangeReport struct {
	StartDate   utils.Date      `json:"startDate"`
	EndDate     utils.Date      `json:"endDate"`
	Records     []Delivery      `json:"records"`
	OwnerTotals []OwnerTotal    `json:"ownerTotals"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
}

// PersonalReport is the single-owner view: own records and one total.
type PersonalReport struct {
	StartDate  utils.Date      `json:"startDate"`
	EndDate    utils.Date      `json:"endDate"`
	Records    []Delivery      `json:"records"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// Dashboard is a member's month-to-date summary.
type Dashboard struct {
	Today              utils.Date      `json:"today"`
	MonthStart         utils.Date      `json:"monthStart"`
	MonthEnd           utils.Date      `json:"monthEnd"`
	MonthCount         int             `json:"monthCount"`
	MonthTotal         decimal.Decimal `json:"monthTotal"`
	PreviousMonthCount int             `json:"previousMonthCount"`
	PreviousMonthTotal decimal.Decimal `json:"previousMonthTotal"`
	Recent             []Delivery      `json:"recent"`
}
