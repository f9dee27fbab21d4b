package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"

	"github.com/rs/zerolog"
)

// SubscriptionService fronts the plan endpoints. Payment activation is a local stub: every user is
// treated as subscribed.
type SubscriptionService struct {
	gateway SubscriptionGateway
	logger  zerolog.Logger
	now     func() time.Time
}

func NewSubscriptionService(gateway SubscriptionGateway, logger zerolog.Logger) *SubscriptionService {
	return &SubscriptionService{
		gateway: gateway,
		logger:  logger.With().Str("component", "subscription").Logger(),
		now:     time.Now,
	}
}

func (s *SubscriptionService) Plan(ctx context.Context) (*models.PlanInfo, error) {
	return s.gateway.Plan(ctx)
}

// Upgrade moves to a paid tier. Only basic and pro are accepted.
func (s *SubscriptionService) Upgrade(ctx context.Context, tier string) (*models.PlanInfo, error) {
	plan := models.PlanTier(strings.ToLower(strings.TrimSpace(tier)))
	if plan != models.PlanBasic && plan != models.PlanPro {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid plan %q. Choose basic or pro", tier))
	}
	info, err := s.gateway.UpgradePlan(ctx, plan)
	if err != nil {
		s.logger.Error().Err(err).Str("plan", string(plan)).Msg("Plan upgrade failed")
		return nil, err
	}
	s.logger.Info().Str("plan", string(info.Plan)).Msg("Plan upgraded")
	return info, nil
}

func (s *SubscriptionService) Downgrade(ctx context.Context) (*models.PlanInfo, error) {
	info, err := s.gateway.DowngradePlan(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Plan downgrade failed")
		return nil, err
	}
	return info, nil
}

func (s *SubscriptionService) Active() bool {
	return true
}

// Activate returns a mock subscription id for planID.
func (s *SubscriptionService) Activate(planID string) (string, error) {
	if strings.TrimSpace(planID) == "" {
		return "", apperrors.NewValidationError("Plan is required")
	}
	id := fmt.Sprintf("sub_%d", s.now().UnixMilli())
	s.logger.Info().Str("plan_id", planID).Str("subscription_id", id).Msg("Subscription activated")
	return id, nil
}
