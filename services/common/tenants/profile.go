// Package tenants is the storage access for tenant payment profiles, shared by
// onboarding, checkout and order notifications.
package tenants

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProfileNotFound is returned when a tenant has no payment profile row.
var ErrProfileNotFound = errors.New("tenant payment profile not found")

// Profile links a tenant to its payment processor account. ExternalAccountID
// is written once by onboarding and never changed afterwards.
type Profile struct {
	TenantID          int64     `json:"tenant_id" gorm:"primaryKey;autoIncrement:false"`
	StoreName         string    `json:"store_name"`
	OwnerEmail        string    `json:"owner_email"`
	ExternalAccountID *string   `json:"external_account_id,omitempty" gorm:"uniqueIndex"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Profile) TableName() string { return "tenant_payment_profiles" }

// Payable reports whether checkout may route funds to this tenant.
func (p *Profile) Payable() bool {
	return p.ExternalAccountID != nil && *p.ExternalAccountID != ""
}

type Repository interface {
	FindByTenantID(ctx context.Context, tenantID int64) (*Profile, error)
	// Ensure creates an empty profile for tenantID if none exists and returns the stored row.
	Ensure(ctx context.Context, tenantID int64) (*Profile, error)
	// SetExternalAccountOnce stores accountID only if no account is stored yet and
	// returns whichever id is stored afterwards.
	SetExternalAccountOnce(ctx context.Context, tenantID int64, accountID string) (string, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByTenantID(ctx context.Context, tenantID int64) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "find payment profile for tenant %d", tenantID)
	}
	return &p, nil
}

func (r *gormRepository) Ensure(ctx context.Context, tenantID int64) (*Profile, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "tenant_id"}}, DoNothing: true}).
		Create(&Profile{TenantID: tenantID}).Error
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "ensure payment profile for tenant %d", tenantID)
	}
	return r.FindByTenantID(ctx, tenantID)
}

func (r *gormRepository) SetExternalAccountOnce(ctx context.Context, tenantID int64, accountID string) (string, error) {
	res := r.db.WithContext(ctx).Model(&Profile{}).
		Where("tenant_id = ? AND external_account_id IS NULL", tenantID).
		Update("external_account_id", accountID)
	if res.Error != nil {
		return "", pkgerrors.Wrapf(res.Error, "store external account for tenant %d", tenantID)
	}
	if res.RowsAffected == 1 {
		return accountID, nil
	}

	p, err := r.FindByTenantID(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if !p.Payable() {
		return "", pkgerrors.Errorf("external account for tenant %d was not stored", tenantID)
	}
	return *p.ExternalAccountID, nil
}
