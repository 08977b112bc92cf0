package model

import "encoding/json"

// ObjectRef is a stripe field that arrives either as a bare id string or as
// an expanded object carrying an "id". Either way we only need the id.
type ObjectRef string

func (r *ObjectRef) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var id string
		if err := json.Unmarshal(b, &id); err != nil {
			return err
		}
		*r = ObjectRef(id)
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = ObjectRef(obj.ID)
	return nil
}

func (r ObjectRef) ID() string {
	return string(r)
}

// CheckoutSession is the data.object payload of checkout.session.completed.
type CheckoutSession struct {
	ID            string    `json:"id"`
	Mode          string    `json:"mode"` // payment, subscription
	CustomerEmail string    `json:"customer_email"`
	Customer      ObjectRef `json:"customer"`
	AmountTotal   int64     `json:"amount_total"`
	Currency      string    `json:"currency"`
	Subscription  ObjectRef `json:"subscription"`
}

// Invoice is the data.object payload of invoice.payment_succeeded.
type Invoice struct {
	ID           string    `json:"id"`
	AmountPaid   int64     `json:"amount_paid"`
	Currency     string    `json:"currency"`
	Subscription ObjectRef `json:"subscription"`
}

// SubscriptionEvent is the data.object payload of the
// customer.subscription.* lifecycle events.
type SubscriptionEvent struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"` // unix seconds
}
