package repository

import (
	"context"

	"github.com/Erick01081/ComisionTecni/models"
	"github.com/Erick01081/ComisionTecni/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const deliveryListOrder = "service_date DESC, created_at DESC"

// DeliveryRepository reads and writes deliveries through gorm.
// Every member-facing query is filtered by owner_id.
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return errors.Wrap(err, "failed to create delivery")
	}
	return nil
}

func (r *DeliveryRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var d models.Delivery
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find delivery")
	}
	return &d, nil
}

// Update writes the mutable fields of d, matching on id and owner.
func (r *DeliveryRepository) Update(ctx context.Context, d *models.Delivery) error {
	res := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Where("id = ? AND owner_id = ?", d.ID, d.OwnerID).
		Updates(map[string]interface{}{
			"service_date":   d.ServiceDate,
			"invoice_number": d.InvoiceNumber,
			"amount":         d.Amount,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update delivery")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row permanently.
func (r *DeliveryRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Delivery{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete delivery")
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByOwner returns one owner's deliveries, newest first. Empty bounds
// leave that side of the range open.
func (r *DeliveryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, start, end utils.Date) ([]models.Delivery, error) {
	q := withDateBounds(r.db.WithContext(ctx).Where("owner_id = ?", ownerID), start, end)

	var rows []models.Delivery
	if err := q.Order(deliveryListOrder).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list deliveries by owner")
	}
	return rows, nil
}

// ListInRange returns every owner's deliveries in [start, end]. Admin only.
func (r *DeliveryRepository) ListInRange(ctx context.Context, start, end utils.Date) ([]models.Delivery, error) {
	var rows []models.Delivery
	err := r.db.WithContext(ctx).
		Where("service_date BETWEEN ? AND ?", start, end).
		Order(deliveryListOrder).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list deliveries in range")
	}
	return rows, nil
}

func withDateBounds(q *gorm.DB, start, end utils.Date) *gorm.DB {
	if start != "" {
		q = q.Where("service_date >= ?", start)
	}
	if end != "" {
		q = q.Where("service_date <= ?", end)
	}
	return q
}
