package services

import (
	"fmt"
	"strings"

	"tellweb/internal/models"
)

// Pro tier terms. Purchases through hosted checkout are always Pro.
const (
	ProMonthlyPriceUSD = 299
	ProLicenseMonths   = 12
)

// ClassifyTier derives the pricing tier from the signup form. It is a pure
// function of (company_type, revenue_band): the classification must be
// re-derivable on every submission so a tampered or replayed request can
// never buy a cheaper tier than the band warrants. Client-claimed tiers or
// prices are never consulted.
//
// Non-business organizations (government, education, nonprofit) always go
// through manual contact regardless of revenue.
func ClassifyTier(companyType, revenueBand string) (models.Tier, error) {
	if strings.TrimSpace(companyType) != "business" {
		return models.TierEnterprise, nil
	}

	switch revenueBand {
	case models.RevenueUnder1M:
		return models.TierFree, nil
	case models.Revenue1MTo10M:
		return models.TierPro, nil
	case models.RevenueOver10M:
		return models.TierEnterprise, nil
	default:
		return "", fmt.Errorf("pricing: unknown revenue band %q", revenueBand)
	}
}
