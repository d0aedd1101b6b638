package bank

import (
	"encoding/json"
	"testing"
)

func TestParseEnums(t *testing.T) {
	if got, err := ParseAccountType(" Fixed-Deposit "); err != nil || got != FixedDeposit {
		t.Errorf("ParseAccountType() = %v, %v", got, err)
	}
	if _, err := ParseAccountType("gold"); err == nil {
		t.Errorf("ParseAccountType(gold) succeeded")
	}
	if got, err := ParseTransactionType("emi-payment"); err != nil || got != EMIPayment || got.Direction() != Debit {
		t.Errorf("ParseTransactionType() = %v, %v", got, err)
	}
	if got, err := ParseAction("CHEQUE_BOUNCED"); err != nil || got != ChequeBounced {
		t.Errorf("ParseAction() = %v, %v", got, err)
	}
	if got := AccountStatus(42).String(); got != "unknown" {
		t.Errorf("String() of an out of range status = %q", got)
	}
}

func TestTransactionDirections(t *testing.T) {
	credits := map[TransactionType]bool{Deposit: true, TransferCredit: true, ChequeCredit: true, AccountOpening: true}
	for _, typ := range []TransactionType{Deposit, Withdrawal, TransferDebit, TransferCredit, ChequeDebit, ChequeCredit, EMIPayment, AccountOpening} {
		want := Debit
		if credits[typ] {
			want = Credit
		}
		if got := typ.Direction(); got != want {
			t.Errorf("%v.Direction() = %v, want %v", typ, got, want)
		}
	}
}

func TestChequeStatusJSON(t *testing.T) {
	chq := Cheque{Number: "CHQ000001", Status: Bounced, BounceReason: DrawerInsufficientFunds}
	b, err := json.Marshal(chq)
	if err != nil {
		t.Fatal(err)
	}
	var got Cheque
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got.Status != Bounced || got.BounceReason != DrawerInsufficientFunds {
		t.Errorf("decoded %+v from %s", got, b)
	}
	if !Bounced.Terminal() || Issued.Terminal() {
		t.Errorf("Terminal() is wrong")
	}
}
