package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/yashrajoria/storefront/services/order-service/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderRepository interface {
	// CreateIfAbsent inserts order unless one with the same external session id
	// exists. On conflict order is overwritten with the stored row and created is false.
	CreateIfAbsent(ctx context.Context, order *models.Order) (created bool, err error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error)
	FindByID(ctx context.Context, tenantID int64, id uuid.UUID) (*models.Order, error)
	ListByTenant(ctx context.Context, tenantID int64, status models.OrderStatus, page, pageSize int) ([]models.Order, int64, error)
	// UpdateStatus moves an order from one status to another and reports
	// whether a row matched; a concurrent transition makes it return false.
	UpdateStatus(ctx context.Context, tenantID int64, id uuid.UUID, from, to models.OrderStatus) (bool, error)
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) CreateIfAbsent(ctx context.Context, order *models.Order) (bool, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "external_session_id"}},
			DoNothing: true,
		}).
		Create(order)
	if res.Error != nil {
		return false, pkgerrors.Wrapf(res.Error, "insert order for session %s", order.ExternalSessionID)
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	existing, err := r.FindBySessionID(ctx, order.ExternalSessionID)
	if err != nil {
		return false, err
	}
	*order = *existing
	return false, nil
}

func (r *GormOrderRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("external_session_id = ?", sessionID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find order by session %s", sessionID)
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, tenantID int64, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find order %s", id)
	}
	return &order, nil
}

func (r *GormOrderRepository) ListByTenant(ctx context.Context, tenantID int64, status models.OrderStatus, page, pageSize int) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.Wrap(err, "count orders")
	}

	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, pkgerrors.Wrap(err, "list orders")
	}
	return orders, total, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, tenantID int64, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, from).
		Update("status", to)
	if res.Error != nil {
		return false, pkgerrors.Wrapf(res.Error, "update status of order %s", id)
	}
	return res.RowsAffected == 1, nil
}
