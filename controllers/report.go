// controllers/report.go
package controllers

import (
	"errors"
	"net/http"

	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/Erick01081/ComisionTecni/services"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ReportController handles the admin reporting endpoints
type ReportController struct {
	deliveries *services.DeliveryService
	log        *logrus.Logger
}

type OwnerTotalResponse struct {
	OwnerID uuid.UUID `json:"ownerId"`
	Email   string    `json:"email"`
	Count   int       `json:"count"`
	Total   string    `json:"total"`
}

// RangeReportResponse represents the admin report for a date range
type RangeReportResponse struct {
	StartDate   utils.Date           `json:"startDate"`
	EndDate     utils.Date           `json:"endDate"`
	StartLabel  string               `json:"startLabel"`
	EndLabel    string               `json:"endLabel"`
	Count       int                  `json:"count"`
	GrandTotal  string               `json:"grandTotal"`
	OwnerTotals []OwnerTotalResponse `json:"ownerTotals"`
	Deliveries  []DeliveryResponse   `json:"deliveries"`
}

func NewReportController(deliveries *services.DeliveryService, log *logrus.Logger) *ReportController {
	return &ReportController{deliveries: deliveries, log: log}
}

// GetDeliveryReport returns totals per owner for ?start=&end= (both required)
func (rc *ReportController) GetDeliveryReport(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}

	start, end, err := services.ParseRange(c.Query("start"), c.Query("end"))
	if err == nil && start == "" {
		err = services.ErrInvalidRange
	}
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := rc.deliveries.RangeReport(c.Request.Context(), user, start, end)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			utils.RespondWithError(c, http.StatusForbidden, "Admin access required")
			return
		}
		rc.log.WithError(err).Error("failed to build delivery report")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to build report")
		return
	}

	resp := RangeReportResponse{
		StartDate:   report.StartDate,
		EndDate:     report.EndDate,
		Count:       len(report.Records),
		GrandTotal:  utils.FormatAmount(report.GrandTotal),
		OwnerTotals: make([]OwnerTotalResponse, 0, len(report.OwnerTotals)),
		Deliveries:  make([]DeliveryResponse, 0, len(report.Records)),
	}
	// bounds passed ParseRange, so formatting cannot fail
	resp.StartLabel, _ = utils.FormatDateLong(string(start))
	resp.EndLabel, _ = utils.FormatDateLong(string(end))

	for _, ot := range report.OwnerTotals {
		resp.OwnerTotals = append(resp.OwnerTotals, OwnerTotalResponse{
			OwnerID: ot.OwnerID,
			Email:   ot.Email,
			Count:   ot.Count,
			Total:   utils.FormatAmount(ot.Total),
		})
	}
	for _, d := range report.Records {
		resp.Deliveries = append(resp.Deliveries, toDeliveryResponse(d))
	}

	rc.log.WithFields(logrus.Fields{
		"admin_id": user.ID,
		"start":    start,
		"end":      end,
		"records":  resp.Count,
	}).Info("delivery report built")
	c.JSON(http.StatusOK, resp)
}
