package payments

import (
	"context"
	"errors"
	"strings"

	"github.com/afripicx/nomads/internal/domain"
)

// BankTransferProviderConfig carries the static account details surfaced to
// customers paying by manual transfer.
type BankTransferProviderConfig struct {
	BankName      string
	PaybillNumber string
	AccountNumber string
	AccountName   string
}

// BankTransferProvider issues transfer instructions instead of moving money.
// Settlement happens off-platform and is verified by an operator.
type BankTransferProvider struct {
	details domain.BankDetails
}

// NewBankTransferProvider constructs a bank transfer Provider.
func NewBankTransferProvider(cfg BankTransferProviderConfig) (*BankTransferProvider, error) {
	details := domain.BankDetails{
		BankName:      strings.TrimSpace(cfg.BankName),
		PaybillNumber: strings.TrimSpace(cfg.PaybillNumber),
		AccountNumber: strings.TrimSpace(cfg.AccountNumber),
		AccountName:   strings.TrimSpace(cfg.AccountName),
	}
	if details.BankName == "" || details.PaybillNumber == "" || details.AccountNumber == "" || details.AccountName == "" {
		return nil, errors.New("bank: incomplete account details")
	}
	return &BankTransferProvider{details: details}, nil
}

// Charge returns the transfer instructions for the order. The payment stays in
// pending verification until an operator confirms receipt.
func (p *BankTransferProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if p == nil {
		return ChargeResult{}, errors.New("bank: provider is nil")
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return ChargeResult{}, errors.New("bank: order id is required")
	}

	currency := req.Currency
	if !currency.Valid() {
		currency = domain.CurrencyUSD
	}

	details := p.details
	details.Amount = domain.ConvertPrice(req.AmountUSD, currency)
	details.Currency = currency
	details.Reference = "ORDER-" + req.OrderID

	return ChargeResult{
		Provider:    "bank_transfer",
		Status:      StatusPendingVerification,
		BankDetails: &details,
	}, nil
}
