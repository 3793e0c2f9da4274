package payments

import (
	"context"
	"testing"

	"github.com/afripicx/nomads/internal/domain"
)

func TestBankTransferChargeReturnsInstructions(t *testing.T) {
	provider, err := NewBankTransferProvider(BankTransferProviderConfig{
		BankName:      "Equity Bank",
		PaybillNumber: "247247",
		AccountNumber: "0748261019",
		AccountName:   "Nomad Treasures",
	})
	if err != nil {
		t.Fatalf("NewBankTransferProvider: %v", err)
	}

	result, err := provider.Charge(context.Background(), ChargeRequest{
		OrderID:   "ord_42",
		AmountUSD: 111.12,
	})
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if result.Status != StatusPendingVerification {
		t.Fatalf("status = %q, want pending_verification", result.Status)
	}
	if result.BankDetails == nil {
		t.Fatal("expected bank details")
	}
	if result.BankDetails.Reference != "ORDER-ord_42" {
		t.Fatalf("reference = %q, want ORDER-ord_42", result.BankDetails.Reference)
	}
	if result.BankDetails.BankName != "Equity Bank" || result.BankDetails.PaybillNumber != "247247" {
		t.Fatalf("unexpected account details: %+v", result.BankDetails)
	}
	if result.BankDetails.Amount != 111.12 || result.BankDetails.Currency != domain.CurrencyUSD {
		t.Fatalf("amount = %v %s, want 111.12 USD", result.BankDetails.Amount, result.BankDetails.Currency)
	}
}

func TestBankTransferChargeConvertsAmountToKES(t *testing.T) {
	provider, err := NewBankTransferProvider(BankTransferProviderConfig{
		BankName:      "Equity Bank",
		PaybillNumber: "247247",
		AccountNumber: "0748261019",
		AccountName:   "Nomad Treasures",
	})
	if err != nil {
		t.Fatalf("NewBankTransferProvider: %v", err)
	}

	result, err := provider.Charge(context.Background(), ChargeRequest{
		OrderID:   "ord_42",
		AmountUSD: 100,
		Currency:  domain.CurrencyKES,
	})
	if err != nil {
		t.Fatalf("Charge: %v", err)
	}
	if result.BankDetails.Amount != 12900 || result.BankDetails.Currency != domain.CurrencyKES {
		t.Fatalf("amount = %v %s, want 12900 KES", result.BankDetails.Amount, result.BankDetails.Currency)
	}
}

func TestNewBankTransferProviderValidatesDetails(t *testing.T) {
	if _, err := NewBankTransferProvider(BankTransferProviderConfig{BankName: "Equity Bank"}); err == nil {
		t.Fatal("expected error for incomplete account details")
	}
}
