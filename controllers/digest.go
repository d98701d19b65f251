package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	defaultDigestLogLimit = 50
	maxDigestLogLimit     = 200
)

// DigestLogReader lists recorded digest sends.
type DigestLogReader interface {
	ListRecent(ctx context.Context, limit int) ([]models.DigestLog, error)
}

type DigestController struct {
	logs DigestLogReader
	log  *logrus.Logger
}

func NewDigestController(logs DigestLogReader, log *logrus.Logger) *DigestController {
	return &DigestController{logs: logs, log: log}
}

// GetDigestLogs returns the latest digest attempts (?limit=, default 50).
func (dc *DigestController) GetDigestLogs(c *gin.Context) {
	limit := defaultDigestLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxDigestLogLimit {
			utils.RespondWithError(c, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxDigestLogLimit))
			return
		}
		limit = n
	}

	logs, err := dc.logs.ListRecent(c.Request.Context(), limit)
	if err != nil {
		dc.log.WithError(err).Error("failed to list digest logs")
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch digest logs")
		return
	}
	if logs == nil {
		logs = []models.DigestLog{}
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(logs),
		"logs":  logs,
	})
}
