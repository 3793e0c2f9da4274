package domain

import "strings"

// PaymentMethod enumerates the checkout payment options.
type PaymentMethod string

const (
	PaymentMethodMpesa        PaymentMethod = "mpesa"
	PaymentMethodPayPal       PaymentMethod = "paypal"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// ParsePaymentMethod normalises a payment method from user input.
func ParsePaymentMethod(raw string) (PaymentMethod, bool) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case PaymentMethodMpesa:
		return PaymentMethodMpesa, true
	case PaymentMethodPayPal:
		return PaymentMethodPayPal, true
	case PaymentMethodCard:
		return PaymentMethodCard, true
	case PaymentMethodBankTransfer:
		return PaymentMethodBankTransfer, true
	default:
		return "", false
	}
}

// ShippingDetails captures the delivery address collected during checkout.
type ShippingDetails struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Apartment  string `json:"apartment,omitempty"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
	Notes      string `json:"notes,omitempty"`
}

// Valid reports whether every required shipping field carries a non-blank
// value. Optional fields (apartment, postal code, notes) are ignored.
func (s ShippingDetails) Valid() bool {
	required := []string{s.FirstName, s.LastName, s.Email, s.Phone, s.Address, s.City, s.Country}
	for _, field := range required {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}

// BankDetails are the manual transfer instructions shown for bank payments.
// Amount is expressed in the display currency so the customer can transfer
// exactly what the instructions say.
type BankDetails struct {
	BankName      string   `json:"bank_name"`
	PaybillNumber string   `json:"paybill_number"`
	AccountNumber string   `json:"account_number"`
	AccountName   string   `json:"account_name"`
	Amount        float64  `json:"amount"`
	Currency      Currency `json:"currency"`
	Reference     string   `json:"reference"`
}
