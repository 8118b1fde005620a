package models

// ChargeRequest asks the payment gateway to authorize an amount against a
// customer. Amounts are in major currency units.
type ChargeRequest struct {
	CustomerID  string
	Amount      float64
	Currency    string
	Description string
	Metadata    map[string]string
}

// ChargeResult is the gateway's answer; Reference is the opaque id the
// ledger stores.
type ChargeResult struct {
	Reference string
	Amount    float64
	Currency  string
	Status    string
}

// RefundResult reports a completed (or pending) refund at the gateway.
type RefundResult struct {
	Reference string
	Amount    float64
	Status    string
}
