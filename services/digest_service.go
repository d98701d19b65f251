// services/digest_service.go
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Erick01081/ComisionTecni/metrics"
	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const digestTopOwners = 5

// Messenger delivers a text message to a phone number.
type Messenger interface {
	Send(ctx context.Context, to, body string) error
	Channel() string
}

// DigestLogStore persists each send attempt.
type DigestLogStore interface {
	Create(ctx context.Context, l *models.DigestLog) error
}

// ReportSource builds the range report the digest summarizes.
type ReportSource interface {
	BuildReport(ctx context.Context, start, end utils.Date) (models.RangeReport, error)
}

// DigestService sends admins a summary of the previous day's deliveries.
type DigestService struct {
	reports    ReportSource
	messenger  Messenger
	recipients []string
	schedule   string
	loc        *time.Location
	log        *logrus.Logger
	logs       DigestLogStore
	now        func() time.Time
	cron       *cron.Cron
}

func NewDigestService(reports ReportSource, messenger Messenger, recipients []string, schedule string, loc *time.Location, log *logrus.Logger) *DigestService {
	if loc == nil {
		loc = time.UTC
	}
	return &DigestService{
		reports:    reports,
		messenger:  messenger,
		recipients: recipients,
		schedule:   schedule,
		loc:        loc,
		log:        log,
		now:        time.Now,
	}
}

// RecordTo makes every send attempt land in store.
func (s *DigestService) RecordTo(store DigestLogStore) *DigestService {
	s.logs = store
	return s
}

// StartScheduler registers the daily job, evaluated in the business timezone.
func (s *DigestService) StartScheduler() error {
	c := cron.New(cron.WithLocation(s.loc))
	if _, err := c.AddFunc(s.schedule, func() {
		if err := s.SendDailyDigest(context.Background()); err != nil {
			s.log.WithError(err).Error("daily digest failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", s.schedule, err)
	}
	c.Start()
	s.cron = c
	s.log.WithFields(logrus.Fields{
		"schedule":   s.schedule,
		"timezone":   s.loc.String(),
		"recipients": len(s.recipients),
	}).Info("digest scheduler started")
	return nil
}

// Stop waits for a running job to finish.
func (s *DigestService) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// SendDailyDigest reports on yesterday in the business timezone. A failed
// recipient does not stop the others; the last error is returned.
func (s *DigestService) SendDailyDigest(ctx context.Context) error {
	day := utils.DateOf(s.now().In(s.loc).AddDate(0, 0, -1), s.loc)

	report, err := s.reports.BuildReport(ctx, day, day)
	if err != nil {
		return fmt.Errorf("failed to build digest report: %w", err)
	}
	body := ComposeDigest(report)

	var lastErr error
	for _, to := range s.recipients {
		entry := s.log.WithFields(logrus.Fields{"to": to, "date": day})
		record := &models.DigestLog{
			ReportDate: day,
			Recipient:  to,
			Channel:    s.messenger.Channel(),
			Message:    body,
			Status:     models.DigestStatusSent,
		}
		if err := s.messenger.Send(ctx, to, body); err != nil {
			entry.WithError(err).Warn("failed to send digest")
			record.Status = models.DigestStatusFailed
			record.ErrorMessage = err.Error()
			lastErr = err
		} else {
			entry.Info("digest sent")
		}
		metrics.DigestsSent.WithLabelValues(record.Status).Inc()
		s.record(ctx, record)
	}
	return lastErr
}

func (s *DigestService) record(ctx context.Context, l *models.DigestLog) {
	if s.logs == nil {
		return
	}
	l.SentAt = s.now()
	if err := s.logs.Create(ctx, l); err != nil {
		s.log.WithError(err).WithField("to", l.Recipient).Warn("failed to record digest attempt")
	}
}

// ComposeDigest renders the Spanish summary text for a single-day report.
func ComposeDigest(report models.RangeReport) string {
	label, err := utils.FormatDateLong(string(report.StartDate))
	if err != nil {
		label = string(report.StartDate)
	}

	var b strings.Builder
	if len(report.Records) == 0 {
		fmt.Fprintf(&b, "Entregas del %s: sin registros.", label)
		return b.String()
	}

	noun := "registros"
	if len(report.Records) == 1 {
		noun = "registro"
	}
	fmt.Fprintf(&b, "Entregas del %s: %d %s, total %s",
		label, len(report.Records), noun, utils.FormatCurrency(report.GrandTotal))

	for i, ot := range report.OwnerTotals {
		if i == digestTopOwners {
			fmt.Fprintf(&b, "\n... y %d más", len(report.OwnerTotals)-digestTopOwners)
			break
		}
		who := ot.Email
		if who == "" {
			who = ot.OwnerID.String()
		}
		fmt.Fprintf(&b, "\n%d. %s %s (%d)", i+1, who, utils.FormatCurrency(ot.Total), ot.Count)
	}
	return b.String()
}
