// controllers/delivery.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/services"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CreateDeliveryInput defines the expected JSON structure for creating a delivery.
// ServiceDate stays a plain string so a bad value reaches the date
// normalizer and comes back quoted in the error.
type CreateDeliveryInput struct {
	ServiceDate   string          `json:"serviceDate" binding:"required"`
	InvoiceNumber string          `json:"invoiceNumber" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
}

// UpdateDeliveryInput defines the expected JSON structure for updating a delivery
type UpdateDeliveryInput struct {
	ServiceDate   *string          `json:"serviceDate"`
	InvoiceNumber *string          `json:"invoiceNumber"`
	Amount        *decimal.Decimal `json:"amount"`
}

// DeliveryResponse renders amounts with two decimals.
type DeliveryResponse struct {
	ID            uuid.UUID  `json:"id"`
	OwnerID       uuid.UUID  `json:"ownerId"`
	ServiceDate   utils.Date `json:"serviceDate"`
	InvoiceNumber string     `json:"invoiceNumber"`
	Amount        string     `json:"amount"`
	CreatedAt     string     `json:"createdAt"`
}

type DeliveryListResponse struct {
	StartDate  utils.Date         `json:"startDate,omitempty"`
	EndDate    utils.Date         `json:"endDate,omitempty"`
	Count      int                `json:"count"`
	Total      string             `json:"total"`
	Deliveries []DeliveryResponse `json:"deliveries"`
}

type DeliveryController struct {
	deliveries *services.DeliveryService
	log        *logrus.Logger
}

func NewDeliveryController(deliveries *services.DeliveryService, log *logrus.Logger) *DeliveryController {
	return &DeliveryController{deliveries: deliveries, log: log}
}

// CreateDelivery registers a delivery owned by the caller
func (dc *DeliveryController) CreateDelivery(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}

	var input CreateDeliveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	delivery, err := dc.deliveries.Create(c.Request.Context(), user, services.DeliveryInput{
		ServiceDate:   input.ServiceDate,
		InvoiceNumber: input.InvoiceNumber,
		Amount:        input.Amount,
	})
	if err != nil {
		dc.respondWithServiceError(c, err)
		return
	}

	dc.log.WithFields(logrus.Fields{
		"delivery_id":  delivery.ID,
		"owner_id":     delivery.OwnerID,
		"service_date": delivery.ServiceDate,
	}).Info("delivery created")
	c.JSON(http.StatusCreated, toDeliveryResponse(*delivery))
}

// GetDeliveries lists the caller's own deliveries, optionally within
// ?start=YYYY-MM-DD&end=YYYY-MM-DD, with their total.
func (dc *DeliveryController) GetDeliveries(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}

	start, end, err := services.ParseRange(c.Query("start"), c.Query("end"))
	if err != nil {
		dc.respondWithServiceError(c, err)
		return
	}

	report, err := dc.deliveries.ListOwn(c.Request.Context(), user, start, end)
	if err != nil {
		dc.respondWithServiceError(c, err)
		return
	}

	resp := DeliveryListResponse{
		StartDate:  report.StartDate,
		EndDate:    report.EndDate,
		Count:      len(report.Records),
		Total:      utils.FormatAmount(report.GrandTotal),
		Deliveries: make([]DeliveryResponse, 0, len(report.Records)),
	}
	for _, d := range report.Records {
		resp.Deliveries = append(resp.Deliveries, toDeliveryResponse(d))
	}
	c.JSON(http.StatusOK, resp)
}

func (dc *DeliveryController) GetDelivery(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, ok := parseDeliveryID(c)
	if !ok {
		return
	}

	delivery, err := dc.deliveries.Get(c.Request.Context(), user, id)
	if err != nil {
		dc.respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(*delivery))
}

func (dc *DeliveryController) UpdateDelivery(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, ok := parseDeliveryID(c)
	if !ok {
		return
	}

	var input UpdateDeliveryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	delivery, err := dc.deliveries.Update(c.Request.Context(), user, id, services.DeliveryUpdate{
		ServiceDate:   input.ServiceDate,
		InvoiceNumber: input.InvoiceNumber,
		Amount:        input.Amount,
	})
	if err != nil {
		dc.respondWithServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDeliveryResponse(*delivery))
}

// DeleteDelivery permanently removes one of the caller's deliveries
func (dc *DeliveryController) DeleteDelivery(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}
	id, ok := parseDeliveryID(c)
	if !ok {
		return
	}

	if err := dc.deliveries.Delete(c.Request.Context(), user, id); err != nil {
		dc.respondWithServiceError(c, err)
		return
	}

	dc.log.WithFields(logrus.Fields{"delivery_id": id, "owner_id": user.ID}).Info("delivery deleted")
	c.JSON(http.StatusOK, gin.H{"message": "Delivery deleted successfully"})
}

func parseDeliveryID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid delivery ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (dc *DeliveryController) respondWithServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidDateFormat),
		errors.Is(err, utils.ErrInvalidCalendarDate),
		errors.Is(err, models.ErrInvalidAmount),
		errors.Is(err, models.ErrEmptyInvoiceNumber),
		errors.Is(err, services.ErrInvalidRange):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Delivery not found")
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, http.StatusForbidden, "Not allowed")
	default:
		_ = c.Error(err)
		dc.log.WithError(err).WithField("path", c.FullPath()).Error("delivery request failed")
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func toDeliveryResponse(d models.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:            d.ID,
		OwnerID:       d.OwnerID,
		ServiceDate:   d.ServiceDate,
		InvoiceNumber: d.InvoiceNumber,
		Amount:        utils.FormatAmount(d.Amount),
		CreatedAt:     d.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
