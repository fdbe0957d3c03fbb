package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stripe/stripe-go/v80"
	awspkg "github.com/yashrajoria/storefront/pkg/aws"
	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/logger"
	"github.com/yashrajoria/storefront/services/common/tenants"
	"github.com/yashrajoria/storefront/services/payment-service/models"
	"go.uber.org/zap"
)

type OnboardingService interface {
	// EnsureAccount creates the tenant's processor account unless one is
	// already stored, then returns a fresh hosted onboarding link for it.
	EnsureAccount(ctx context.Context, tenantID int64, domain string) (*models.OnboardingResponse, error)
}

type onboardingService struct {
	stripe   StripeClient
	profiles tenants.Repository
	metrics  awspkg.Recorder
	log      *zap.Logger
}

func NewOnboardingService(client StripeClient, profiles tenants.Repository, metrics awspkg.Recorder, log *zap.Logger) OnboardingService {
	if metrics == nil {
		metrics = awspkg.NopRecorder{}
	}
	return &onboardingService{stripe: client, profiles: profiles, metrics: metrics, log: log}
}

func accountIdempotencyKey(tenantID int64) string {
	return fmt.Sprintf("tenant-account-%d", tenantID)
}

func (s *onboardingService) EnsureAccount(ctx context.Context, tenantID int64, domain string) (*models.OnboardingResponse, error) {
	log := logger.FromContext(ctx, s.log).With(zap.Int64("tenant_id", tenantID))

	if tenantID <= 0 {
		return nil, apperrors.Validation("tenant_id must be positive")
	}
	if err := checkDomain(domain); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Ensure(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Internal("failed to load tenant payment profile", err)
	}

	accountID := ""
	if profile.Payable() {
		accountID = *profile.ExternalAccountID
	} else {
		params := &stripe.AccountParams{Type: stripe.String(string(stripe.AccountTypeStandard))}
		if profile.OwnerEmail != "" {
			params.Email = stripe.String(profile.OwnerEmail)
		}
		params.AddMetadata("tenant_id", strconv.FormatInt(tenantID, 10))
		// Concurrent first-time calls share the key, so Stripe returns one account.
		params.SetIdempotencyKey(accountIdempotencyKey(tenantID))

		acct, err := s.stripe.CreateAccount(ctx, params)
		if err != nil {
			log.Error("Stripe account creation failed", zap.Error(err))
			return nil, apperrors.Processor("failed to create payment account", err)
		}

		accountID, err = s.profiles.SetExternalAccountOnce(ctx, tenantID, acct.ID)
		if err != nil {
			log.Error("Payment account created but not stored on tenant profile",
				zap.String("orphaned_account_id", acct.ID),
				zap.Error(err),
			)
			return nil, apperrors.ProfilePersistence("payment account created but could not be linked to tenant", err)
		}
		if accountID != acct.ID {
			log.Warn("Another request linked a payment account first",
				zap.String("stored_account_id", accountID),
				zap.String("created_account_id", acct.ID),
			)
		} else {
			log.Info("Payment account linked", zap.String("account_id", accountID))
			_ = s.metrics.RecordCount(ctx, awspkg.MetricTenantsOnboarded, nil)
		}
	}

	link, err := s.stripe.CreateAccountLink(ctx, &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(adminURL(domain)),
		ReturnURL:  stripe.String(adminURL(domain)),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	})
	if err != nil {
		log.Error("Stripe account link creation failed", zap.String("account_id", accountID), zap.Error(err))
		return nil, apperrors.Processor("failed to create onboarding link", err)
	}
	return &models.OnboardingResponse{SetupURL: link.URL}, nil
}
