package dto

type CheckoutRequest struct {
	PriceID  string `json:"price_id"`
	Quantity int64  `json:"quantity"`
	Mode     string `json:"mode"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

type CreditsResponse struct {
	Amount int64 `json:"amount"`
}

type UseCreditsRequest struct {
	Amount int64 `json:"amount"`
}

type SubscriptionResponse struct {
	Active             bool   `json:"active"`
	SubscriptionID     string `json:"subscription_id,omitempty"`
	Status             string `json:"status,omitempty"`
	PriceID            string `json:"price_id,omitempty"`
	CurrentPeriodEnd   string `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end,omitempty"`
	CurrentPeriodStart string `json:"current_period_start,omitempty"`
}
