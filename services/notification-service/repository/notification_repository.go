package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yashrajoria/storefront/services/notification-service/models"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	SaveLog(ctx context.Context, log *models.NotificationLog) error
	// WasSent reports whether a successful delivery with the same identity exists.
	WasSent(ctx context.Context, orderID string, kind models.Kind, recipient, detail string) (bool, error)
	GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) SaveLog(ctx context.Context, log *models.NotificationLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	return errors.Wrap(r.db.WithContext(ctx).Create(log).Error, "save notification log")
}

func (r *notificationRepository) WasSent(ctx context.Context, orderID string, kind models.Kind, recipient, detail string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Where("order_id = ? AND kind = ? AND recipient = ? AND detail = ? AND status = ?",
			orderID, kind, recipient, detail, models.StatusSent).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrapf(err, "check notification log for order %s", orderID)
	}
	return count > 0, nil
}

func (r *notificationRepository) GetLogs(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationLog, int64, error) {
	var logs []models.NotificationLog
	var total int64

	if filter.PageSize < 1 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	query := r.db.WithContext(ctx).Model(&models.NotificationLog{}).Where("tenant_id = ?", filter.TenantID)
	if filter.OrderID != "" {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count notification logs")
	}

	err := query.Order("created_at DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&logs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "list notification logs")
	}
	return logs, total, nil
}
