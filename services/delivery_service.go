package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Erick01081/ComisionTecni/metrics"
	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/repository"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dashboardRecent = 5

var (
	ErrNotFound     = errors.New("delivery not found")
	ErrForbidden    = errors.New("not allowed")
	ErrInvalidRange = errors.New("both start and end dates are required")
)

// DeliveryStore is the record store the service reads and writes.
type DeliveryStore interface {
	Create(ctx context.Context, d *models.Delivery) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	Update(ctx context.Context, d *models.Delivery) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID, start, end utils.Date) ([]models.Delivery, error)
	ListInRange(ctx context.Context, start, end utils.Date) ([]models.Delivery, error)
}

// OwnerDirectory resolves owner ids to users for report labels.
type OwnerDirectory interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.User, error)
}

// DeliveryInput is the raw shape accepted from the client. Dates are
// normalized and checked here, not at JSON binding time, so the error can
// carry the exact value that was sent.
type DeliveryInput struct {
	ServiceDate   string
	InvoiceNumber string
	Amount        decimal.Decimal
}

// DeliveryUpdate holds optional changes; nil fields stay as they are.
type DeliveryUpdate struct {
	ServiceDate   *string
	InvoiceNumber *string
	Amount        *decimal.Decimal
}

type DeliveryService struct {
	store  DeliveryStore
	owners OwnerDirectory
	now    func() time.Time
}

func NewDeliveryService(store DeliveryStore, owners OwnerDirectory) *DeliveryService {
	return &DeliveryService{store: store, owners: owners, now: time.Now}
}

// ParseServiceDate normalizes a date from the input boundary and rejects
// impossible calendar days.
func ParseServiceDate(raw string) (utils.Date, error) {
	date, err := utils.ParseDate(raw)
	if err != nil {
		return "", err
	}
	if err := utils.ValidateCalendarDate(string(date)); err != nil {
		return "", err
	}
	return date, nil
}

// ParseRange normalizes an optional [start, end] pair. Either both bounds
// are given or neither, and each must be a real calendar day.
func ParseRange(rawStart, rawEnd string) (utils.Date, utils.Date, error) {
	rawStart, rawEnd = strings.TrimSpace(rawStart), strings.TrimSpace(rawEnd)
	if rawStart == "" && rawEnd == "" {
		return "", "", nil
	}
	if rawStart == "" || rawEnd == "" {
		return "", "", ErrInvalidRange
	}
	start, err := ParseServiceDate(rawStart)
	if err != nil {
		return "", "", err
	}
	end, err := ParseServiceDate(rawEnd)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

func (s *DeliveryService) Create(ctx context.Context, owner models.AuthenticatedUser, in DeliveryInput) (*models.Delivery, error) {
	date, err := ParseServiceDate(in.ServiceDate)
	if err != nil {
		return nil, err
	}
	d := &models.Delivery{
		ID:            uuid.New(),
		OwnerID:       owner.ID,
		ServiceDate:   date,
		InvoiceNumber: in.InvoiceNumber,
		Amount:        in.Amount,
		CreatedAt:     s.now(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, d); err != nil {
		return nil, err
	}
	metrics.DeliveriesCreated.Inc()
	return d, nil
}

// Get returns a delivery its owner can see. Admins can read any record.
func (s *DeliveryService) Get(ctx context.Context, caller models.AuthenticatedUser, id uuid.UUID) (*models.Delivery, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != caller.ID && !caller.IsAdmin {
		return nil, ErrNotFound
	}
	return d, nil
}

// Update changes date, invoice or amount. Only the owner may update,
// admins included.
func (s *DeliveryService) Update(ctx context.Context, caller models.AuthenticatedUser, id uuid.UUID, in DeliveryUpdate) (*models.Delivery, error) {
	d, err := s.ownedBy(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if in.ServiceDate != nil {
		if d.ServiceDate, err = ParseServiceDate(*in.ServiceDate); err != nil {
			return nil, err
		}
	}
	if in.InvoiceNumber != nil {
		d.InvoiceNumber = *in.InvoiceNumber
	}
	if in.Amount != nil {
		d.Amount = *in.Amount
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, d); err != nil {
		return nil, translateStoreErr(err)
	}
	metrics.DeliveriesUpdated.Inc()
	return d, nil
}

func (s *DeliveryService) Delete(ctx context.Context, caller models.AuthenticatedUser, id uuid.UUID) error {
	if _, err := s.ownedBy(ctx, caller, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id, caller.ID); err != nil {
		return translateStoreErr(err)
	}
	metrics.DeliveriesDeleted.Inc()
	return nil
}

// ListOwn is the personal view. Without bounds every own record is listed.
func (s *DeliveryService) ListOwn(ctx context.Context, caller models.AuthenticatedUser, start, end utils.Date) (models.PersonalReport, error) {
	rows, err := s.store.ListByOwner(ctx, caller.ID, start, end)
	if err != nil {
		return models.PersonalReport{}, err
	}
	if start == "" && end == "" {
		SortByServiceDateDesc(rows)
		return models.PersonalReport{Records: rows, GrandTotal: SumAmounts(rows)}, nil
	}
	return BuildPersonalReport(rows, start, end), nil
}

// Dashboard summarizes the caller's month containing today and the month
// before it. Recent holds the latest deliveries of the current month.
func (s *DeliveryService) Dashboard(ctx context.Context, caller models.AuthenticatedUser, today utils.Date) (models.Dashboard, error) {
	monthStart, monthEnd, err := utils.MonthBounds(today)
	if err != nil {
		return models.Dashboard{}, err
	}
	prevStart, prevEnd, err := utils.PreviousMonthBounds(today)
	if err != nil {
		return models.Dashboard{}, err
	}

	current, err := s.ListOwn(ctx, caller, monthStart, monthEnd)
	if err != nil {
		return models.Dashboard{}, err
	}
	previous, err := s.ListOwn(ctx, caller, prevStart, prevEnd)
	if err != nil {
		return models.Dashboard{}, err
	}

	recent := current.Records
	if len(recent) > dashboardRecent {
		recent = recent[:dashboardRecent]
	}
	return models.Dashboard{
		Today:              today,
		MonthStart:         monthStart,
		MonthEnd:           monthEnd,
		MonthCount:         len(current.Records),
		MonthTotal:         current.GrandTotal,
		PreviousMonthCount: len(previous.Records),
		PreviousMonthTotal: previous.GrandTotal,
		Recent:             recent,
	}, nil
}

// RangeReport builds the admin report for [start, end] and attaches owner
// emails. Callers without the admin role get ErrForbidden.
func (s *DeliveryService) RangeReport(ctx context.Context, caller models.AuthenticatedUser, start, end utils.Date) (models.RangeReport, error) {
	if !caller.IsAdmin {
		return models.RangeReport{}, ErrForbidden
	}
	return s.BuildReport(ctx, start, end)
}

// BuildReport skips the caller check; the digest job uses it directly.
func (s *DeliveryService) BuildReport(ctx context.Context, start, end utils.Date) (models.RangeReport, error) {
	rows, err := s.store.ListInRange(ctx, start, end)
	if err != nil {
		return models.RangeReport{}, err
	}
	report := BuildRangeReport(rows, start, end)
	metrics.ReportsBuilt.Inc()

	if s.owners == nil || len(report.OwnerTotals) == 0 {
		return report, nil
	}
	ids := make([]uuid.UUID, 0, len(report.OwnerTotals))
	for _, ot := range report.OwnerTotals {
		ids = append(ids, ot.OwnerID)
	}
	users, err := s.owners.FindByIDs(ctx, ids)
	if err != nil {
		return models.RangeReport{}, err
	}
	emails := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}
	for i := range report.OwnerTotals {
		report.OwnerTotals[i].Email = emails[report.OwnerTotals[i].OwnerID]
	}
	return report, nil
}

func (s *DeliveryService) find(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	d, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err)
	}
	return d, nil
}

func (s *DeliveryService) ownedBy(ctx context.Context, caller models.AuthenticatedUser, id uuid.UUID) (*models.Delivery, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.OwnerID != caller.ID {
		if caller.IsAdmin {
			return nil, ErrForbidden
		}
		return nil, ErrNotFound
	}
	return d, nil
}

func translateStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
