package domain

// Plan is a purchasable subscription offer. Prices are in the minor currency
// unit, same as Profile.WalletBalance. Purchasing itself is handled by the
// backend's billing integration; this service only lists plans.
type Plan struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	DisplayName    string           `json:"display_name"`
	Tier           SubscriptionTier `json:"tier"`
	PriceMonthly   int64            `json:"price_monthly"`
	PriceHalfYear  int64            `json:"price_6months"`
	PriceYearly    int64            `json:"price_yearly"`
	Features       []string         `json:"features,omitempty"`
	Active         bool             `json:"is_active"`
}
