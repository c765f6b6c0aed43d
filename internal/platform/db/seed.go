package db

import (
	"context"

	"go.uber.org/zap"

	"hradmin/internal/domain/core"
)

var (
	defaultRoles         = []string{"Engineer", "Designer", "Manager", "Analyst", "HR"}
	defaultLevels        = []string{"L1", "L2", "L3", "L4", "L5"}
	defaultOrganisations = []core.Organisation{
		{Name: "Headquarters", Abbreviation: "HQ"},
		{Name: "Research and Development", Abbreviation: "R&D"},
	}
	defaultCurrencies = []core.Currency{
		{Code: "INR", Name: "Indian Rupee", Symbol: "₹"},
		{Code: "USD", Name: "US Dollar", Symbol: "$"},
		{Code: "EUR", Name: "Euro", Symbol: "€"},
	}
)

// Seed fills empty reference collections with defaults. Collections that
// already hold data are left untouched.
func Seed(ctx context.Context, svc *core.Service, logger *zap.Logger) error {
	if err := ensureRoles(ctx, svc); err != nil {
		return err
	}
	if err := ensureLevels(ctx, svc); err != nil {
		return err
	}
	if err := ensureOrganisations(ctx, svc); err != nil {
		return err
	}
	if err := ensureCurrencies(ctx, svc); err != nil {
		return err
	}
	logger.Info("reference data seeded")
	return nil
}

func ensureRoles(ctx context.Context, svc *core.Service) error {
	existing, err := svc.ListRoles(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, name := range defaultRoles {
		if _, err := svc.CreateRole(ctx, core.Role{RoleName: name}); err != nil {
			return err
		}
	}
	return nil
}

func ensureLevels(ctx context.Context, svc *core.Service) error {
	existing, err := svc.ListLevels(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, name := range defaultLevels {
		if _, err := svc.CreateLevel(ctx, core.Level{LevelName: name}); err != nil {
			return err
		}
	}
	return nil
}

func ensureOrganisations(ctx context.Context, svc *core.Service) error {
	existing, err := svc.ListOrganisations(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, org := range defaultOrganisations {
		if _, err := svc.CreateOrganisation(ctx, org); err != nil {
			return err
		}
	}
	return nil
}

func ensureCurrencies(ctx context.Context, svc *core.Service) error {
	existing, err := svc.ListCurrencies(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, cur := range defaultCurrencies {
		if _, err := svc.CreateCurrency(ctx, cur); err != nil {
			return err
		}
	}
	return nil
}
