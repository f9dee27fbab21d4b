package api

import (
	"context"
	"net/http"

	"lovedu_client/internal/models"
)

func (c *Client) Plan(ctx context.Context) (*models.PlanInfo, error) {
	var plan models.PlanInfo
	if err := c.call(ctx, http.MethodGet, "/subscription/plan", nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) UpgradePlan(ctx context.Context, tier models.PlanTier) (*models.PlanInfo, error) {
	var plan models.PlanInfo
	if err := c.call(ctx, http.MethodPost, "/subscription/upgrade", models.PlanChangeRequest{Plan: tier}, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *Client) DowngradePlan(ctx context.Context) (*models.PlanInfo, error) {
	var plan models.PlanInfo
	if err := c.call(ctx, http.MethodPost, "/subscription/downgrade", nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
