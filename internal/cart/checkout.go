package cart

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/byway-labs/byway-gateway/internal/models"
)

// expiryPattern validates MM/YY. Format-only: "02/29" passes even in
// a non-leap year; there is no calendar check.
var expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)

var cvvPattern = regexp.MustCompile(`^\d{3,4}$`)

// ValidationError collects the client-side form failures. It is
// resolved entirely on this side; a request carrying one is never
// sent.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "checkout validation failed: " + strings.Join(e.Problems, "; ")
}

// CheckoutForm is the user-entered checkout form, pre-validation.
// Expiry is the display form MM/YY; Build converts it for the wire.
type CheckoutForm struct {
	Country       string               `json:"country"`
	State         string               `json:"state"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
	CardName      string               `json:"cardName"`
	CardNumber    string               `json:"cardNumber"`
	Expiry        string               `json:"expiryDate"`
	CVV           string               `json:"cvv"`
}

// Validate applies the client-side rules. Card fields are only
// checked for the CreditCard method; PayPal carries none.
func (f CheckoutForm) Validate() error {
	var problems []string

	if f.Country == "" || f.State == "" {
		problems = append(problems, "country and state are required")
	}

	if f.PaymentMethod == models.PaymentCreditCard {
		if f.CardName == "" || f.CardNumber == "" || f.Expiry == "" || f.CVV == "" {
			problems = append(problems, "all credit card details are required")
		}
		if f.Expiry != "" && !expiryPattern.MatchString(f.Expiry) {
			problems = append(problems, "invalid expiry date format, use MM/YY")
		}
		if f.CVV != "" && !cvvPattern.MatchString(f.CVV) {
			problems = append(problems, "CVV must be 3 or 4 digits")
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Build validates the form and assembles the wire payload, converting
// the expiry to the ISO month-start date the upstream expects.
func (f CheckoutForm) Build() (models.CheckoutRequest, error) {
	if err := f.Validate(); err != nil {
		return models.CheckoutRequest{}, err
	}

	payment := models.Payment{Method: f.PaymentMethod}
	if f.PaymentMethod == models.PaymentCreditCard {
		payment.CardName = f.CardName
		payment.CardNumber = f.CardNumber
		payment.ExpiryDate = expiryToISO(f.Expiry)
		cvv, _ := strconv.Atoi(f.CVV) // already validated as digits
		payment.CVV = cvv
	}

	return models.CheckoutRequest{
		Country: f.Country,
		State:   f.State,
		Payment: payment,
	}, nil
}

// expiryToISO turns "MM/YY" into "20YY-MM-01".
func expiryToISO(expiry string) string {
	parts := strings.SplitN(expiry, "/", 2)
	month := parts[0]
	year, _ := strconv.Atoi(parts[1])
	return fmt.Sprintf("%d-%s-01", 2000+year, month)
}
