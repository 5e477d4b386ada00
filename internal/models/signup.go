package models

// Tier is a pricing/entitlement bucket derived from an organization's
// revenue band. The authoritative value is always computed server-side;
// anything a client claims about its own tier is ignored.
type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Revenue bands accepted on the signup form.
const (
	RevenueUnder1M = "under_1m"
	Revenue1MTo10M = "1m_to_10m"
	RevenueOver10M = "over_10m"
)

// SignupSubmission is one signup form post. It lives for the duration of a
// single request; nothing is persisted at this layer.
type SignupSubmission struct {
	Email       string `json:"email"`
	CompanyName string `json:"company_name"`
	Role        string `json:"role"`
	CompanyType string `json:"company_type"`
	RevenueBand string `json:"revenue_band"`
}

// PaidStep tells the browser to go through hosted checkout.
type PaidStep struct {
	MonthlyPrice int    `json:"monthly_price"`
	ProductID    string `json:"product_id"`
}

// SignupResult is the signup handler response. NextStep is either the string
// "free", the string "contact", or a PaidStep object.
type SignupResult struct {
	NextStep   any    `json:"next_step"`
	CustomerID string `json:"customer_id,omitempty"`
}
