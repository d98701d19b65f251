package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrEmptyInvoiceNumber = errors.New("invoice number is required")
)

// amountScale and maxAmount mirror the numeric(12,2) column.
const amountScale = 2

var maxAmount = decimal.New(1, 10)

// Delivery is one billable delivery ("entrega") registered by its owner.
type Delivery struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID       uuid.UUID       `gorm:"type:uuid;index;not null" json:"ownerId"`
	ServiceDate   utils.Date      `gorm:"type:date;index;not null" json:"serviceDate"`
	InvoiceNumber string          `gorm:"not null" json:"invoiceNumber"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

func (d *Delivery) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return d.Validate()
}

// Validate trims the invoice number in place and checks the record
// invariants: positive amount that fits numeric(12,2), non-empty invoice,
// canonical date.
func (d *Delivery) Validate() error {
	d.InvoiceNumber = strings.TrimSpace(d.InvoiceNumber)
	if d.InvoiceNumber == "" {
		return ErrEmptyInvoiceNumber
	}
	if !d.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !d.Amount.Equal(d.Amount.Round(amountScale)) {
		return fmt.Errorf("%w, with at most %d decimals", ErrInvalidAmount, amountScale)
	}
	if d.Amount.GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("%w, below %s", ErrInvalidAmount, maxAmount.StringFixed(0))
	}
	date, err := utils.ParseDate(string(d.ServiceDate))
	if err != nil {
		return err
	}
	d.ServiceDate = date
	return nil
}
