package controllers

import (
	"net/http"
	"time"

	"github.com/Erick01081/ComisionTecni/middleware"
	"github.com/Erick01081/ComisionTecni/services"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type DashboardOverview struct {
	Today              utils.Date       `json:"today"`
	TodayLabel         string           `json:"todayLabel"`
	MonthStart         utils.Date       `json:"monthStart"`
	MonthEnd           utils.Date       `json:"monthEnd"`
	MonthCount         int              `json:"monthCount"`
	MonthTotal         string           `json:"monthTotal"`
	PreviousMonthCount int              `json:"previousMonthCount"`
	PreviousMonthTotal string           `json:"previousMonthTotal"`
	RecentDeliveries   []RecentDelivery `json:"recentDeliveries"`
}

type RecentDelivery struct {
	DeliveryResponse
	DateLabel string `json:"dateLabel"` // e.g. "15 ene 2024"
}

type DashboardController struct {
	deliveries *services.DeliveryService
	loc        *time.Location
	log        *logrus.Logger
	now        func() time.Time
}

// NewDashboardController reads "today" in loc, the business timezone.
func NewDashboardController(deliveries *services.DeliveryService, loc *time.Location, log *logrus.Logger) *DashboardController {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardController{deliveries: deliveries, loc: loc, log: log, now: time.Now}
}

func (dc *DashboardController) GetDashboardOverview(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}

	today := utils.DateOf(dc.now(), dc.loc)
	dash, err := dc.deliveries.Dashboard(c.Request.Context(), user, today)
	if err != nil {
		dc.log.WithError(err).WithField("user_id", user.ID).Error("failed to build dashboard")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	resp := DashboardOverview{
		Today:              dash.Today,
		MonthStart:         dash.MonthStart,
		MonthEnd:           dash.MonthEnd,
		MonthCount:         dash.MonthCount,
		MonthTotal:         utils.FormatAmount(dash.MonthTotal),
		PreviousMonthCount: dash.PreviousMonthCount,
		PreviousMonthTotal: utils.FormatAmount(dash.PreviousMonthTotal),
		RecentDeliveries:   make([]RecentDelivery, 0, len(dash.Recent)),
	}
	resp.TodayLabel, _ = utils.FormatDateLong(string(dash.Today))
	for _, d := range dash.Recent {
		label, _ := utils.FormatDateShort(string(d.ServiceDate))
		resp.RecentDeliveries = append(resp.RecentDeliveries, RecentDelivery{
			DeliveryResponse: toDeliveryResponse(d),
			DateLabel:        label,
		})
	}

	c.JSON(http.StatusOK, resp)
}
