package models

// PaymentMethod discriminates the checkout payment union. CreditCard
// carries the card fields; PayPal carries nothing extra.
type PaymentMethod int

const (
	PaymentCreditCard PaymentMethod = iota
	PaymentPayPal
)

// Payment is the payment half of a checkout submission. Card fields
// are only meaningful when Method == PaymentCreditCard; ExpiryDate is
// already converted to the ISO month-start form the upstream expects.
type Payment struct {
	Method     PaymentMethod `json:"method"`
	CardName   string        `json:"cardName,omitempty"`
	CardNumber string        `json:"cardNumber,omitempty"`
	ExpiryDate string        `json:"expiryDate,omitempty"` // YYYY-MM-01
	CVV        int           `json:"cvv,omitempty"`
}

// CheckoutRequest is the JSON body for POST /Order/Checkout.
type CheckoutRequest struct {
	Country string  `json:"country"`
	State   string  `json:"state"`
	Payment Payment `json:"payment"`
}

// Order is the upstream's order confirmation payload.
type Order struct {
	ID        int64   `json:"id"`
	Total     float64 `json:"total"`
	CreatedAt string  `json:"createdAt,omitempty"`
}
