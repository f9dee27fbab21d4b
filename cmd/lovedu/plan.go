package main

import (
	"context"
	"fmt"

	"lovedu_client/internal/devserver"
	apperrors "lovedu_client/internal/errors"
	"lovedu_client/internal/models"
)

func runPlan(ctx context.Context, a *app, args []string) error {
	if err := a.requireSession(ctx); err != nil {
		return err
	}

	var (
		info *models.PlanInfo
		err  error
	)
	switch {
	case len(args) == 0 || args[0] == "show":
		info, err = a.plans.Plan(ctx)
	case args[0] == "upgrade" && len(args) > 1:
		info, err = a.plans.Upgrade(ctx, args[1])
	case args[0] == "downgrade":
		info, err = a.plans.Downgrade(ctx)
	case args[0] == "activate" && len(args) > 1:
		id, err := a.plans.Activate(args[1])
		if err != nil {
			return err
		}
		a.printf("Subscription %s active: %t\n", id, a.plans.Active())
		return nil
	default:
		return apperrors.NewValidationError("Usage: lovedu plan [show | upgrade <basic|pro> | downgrade | activate <plan id>]")
	}
	if err != nil {
		return err
	}
	printPlan(a, info)
	return nil
}

func printPlan(a *app, info *models.PlanInfo) {
	price := "free"
	if info.PricePerMonth != nil {
		price = fmt.Sprintf("$%.2f / month", *info.PricePerMonth)
	}
	a.printf("Plan:        %s (%s)\n", info.Plan, price)
	a.printf("Tokens:      %d used today, %d remaining of %d\n", info.TokensUsedToday, info.TokensRemaining, info.TokensLimit)
	a.printf("PDF uploads: %d of %d today\n", info.PDFUploadsToday, info.PDFUploadsPerDay)
	a.printf("Images:      %d of %d today\n", info.ImagesUploadedToday, info.ImagesPerDay)
}

func runServeMock(_ context.Context, a *app, _ []string) error {
	srv := devserver.New(devserver.Config{
		JWTSecret:      a.cfg.DevServer.JWTSecret,
		AllowedOrigins: a.cfg.DevServer.AllowedOrigins,
		MaxUploadBytes: a.cfg.Admin.MaxUploadBytes,
	}, a.logger)
	a.printf("Test user:  %s / %s\n", devserver.TestUserEmail, devserver.TestUserPassword)
	a.printf("Admin user: %s / %s\n", devserver.AdminUserEmail, devserver.AdminUserPassword)
	return srv.Run(a.cfg.DevServer.Addr)
}
