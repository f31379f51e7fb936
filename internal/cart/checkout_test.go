package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byway-labs/byway-gateway/internal/models"
)

func validCardForm() CheckoutForm {
	return CheckoutForm{
		Country:       "Egypt",
		State:         "Cairo",
		PaymentMethod: models.PaymentCreditCard,
		CardName:      "Ada Lovelace",
		CardNumber:    "4111111111111111",
		Expiry:        "02/29",
		CVV:           "123",
	}
}

func TestCheckoutValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CheckoutForm)
		valid  bool
	}{
		{"valid card form", func(f *CheckoutForm) {}, true},
		{"month 13 rejected", func(f *CheckoutForm) { f.Expiry = "13/25" }, false},
		{"format-only: 02/29 accepted", func(f *CheckoutForm) { f.Expiry = "02/29" }, true},
		{"month 00 rejected", func(f *CheckoutForm) { f.Expiry = "00/25" }, false},
		{"cvv too short", func(f *CheckoutForm) { f.CVV = "12" }, false},
		{"cvv too long", func(f *CheckoutForm) { f.CVV = "12345" }, false},
		{"cvv four digits ok", func(f *CheckoutForm) { f.CVV = "1234" }, true},
		{"cvv non-numeric rejected", func(f *CheckoutForm) { f.CVV = "12a" }, false},
		{"missing card name", func(f *CheckoutForm) { f.CardName = "" }, false},
		{"missing country", func(f *CheckoutForm) { f.Country = "" }, false},
		{
			"paypal skips card validation",
			func(f *CheckoutForm) {
				f.PaymentMethod = models.PaymentPayPal
				f.CardName, f.CardNumber, f.Expiry, f.CVV = "", "", "", ""
			},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validCardForm()
			tt.mutate(&form)
			err := form.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			}
		})
	}
}

func TestBuildConvertsExpiry(t *testing.T) {
	form := validCardForm()
	form.Expiry = "02/29"

	req, err := form.Build()
	require.NoError(t, err)

	assert.Equal(t, "2029-02-01", req.Payment.ExpiryDate)
	assert.Equal(t, 123, req.Payment.CVV)
	assert.Equal(t, models.PaymentCreditCard, req.Payment.Method)
}

func TestBuildPayPalOmitsCardFields(t *testing.T) {
	form := CheckoutForm{
		Country:       "Egypt",
		State:         "Cairo",
		PaymentMethod: models.PaymentPayPal,
	}

	req, err := form.Build()
	require.NoError(t, err)

	assert.Empty(t, req.Payment.CardName)
	assert.Empty(t, req.Payment.ExpiryDate)
	assert.Zero(t, req.Payment.CVV)
}
