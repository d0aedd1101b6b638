package renderer

import (
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/etnz/bank"
	"github.com/etnz/bank/date"
)

var day = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

// assertLines checks that every wanted line appears, as a whole line, in got.
func assertLines(t *testing.T, got string, want ...string) {
	t.Helper()
	if strings.Contains(got, "error ") {
		t.Fatalf("rendering failed:\n%s", got)
	}
	lines := make(map[string]bool)
	for _, l := range strings.Split(got, "\n") {
		lines[l] = true
	}
	for _, w := range want {
		if !lines[w] {
			t.Errorf("missing line %q in:\n%s", w, got)
		}
	}
}

func TestRenderStatement(t *testing.T) {
	s := &Statement{
		Account: bank.Account{
			ID:             "ACC1001",
			Customer:       "Asha",
			Type:           bank.Savings,
			Balance:        bank.INR(1000),
			MinimumBalance: bank.INR(1000),
			Status:         bank.Active,
			Opened:         date.New(2025, time.March, 10),
		},
		Transactions: []bank.Transaction{
			{ID: "TXN00001", Account: "ACC1001", Type: bank.AccountOpening, Amount: bank.INR(5000), Direction: bank.Credit, BalanceAfter: bank.INR(5000), Time: day, Remark: "Initial Deposit"},
			{ID: "TXN00002", Account: "ACC1001", Type: bank.Withdrawal, Amount: bank.INR(4000), Direction: bank.Debit, BalanceAfter: bank.INR(1000), Time: day, Remark: "Cash Withdrawal"},
		},
	}
	assertLines(t, RenderStatement(s),
		"# Statement of ACC1001",
		"| Asha | savings | active | 2025-03-10 | ₹1,000.00 | ₹1,000.00 |",
		"| 2025-03-10 | TXN00001 | account-opening | Initial Deposit |  | ₹5,000.00 | ₹5,000.00 |",
		"| 2025-03-10 | TXN00002 | withdrawal | Cash Withdrawal | ₹4,000.00 |  | ₹1,000.00 |",
	)

	s.Transactions = nil
	assertLines(t, RenderStatement(s), "No transactions.")
}

func TestRenderSchedule(t *testing.T) {
	s, err := NewAmortizationSchedule(bank.INR(1000), bank.R(0), 3)
	if err != nil {
		t.Fatal(err)
	}
	assertLines(t, RenderSchedule(s),
		"# Amortization Schedule",
		"Principal ₹1,000.00 at 0.00% over 3 months: EMI ₹333.33.",
		"| 1 | ₹333.33 | ₹333.33 | ₹0.00 | ₹666.67 |",
		"| 2 | ₹333.33 | ₹333.33 | ₹0.00 | ₹333.34 |",
		"| 3 | ₹333.34 | ₹333.34 | ₹0.00 | ₹0.00 |",
		"Total payment ₹1,000.00, of which interest ₹0.00.",
	)

	if _, err := NewAmortizationSchedule(bank.INR(1000), bank.R(12), 0); err == nil {
		t.Errorf("NewAmortizationSchedule() with no tenure succeeded")
	}
}

func TestRenderLoan(t *testing.T) {
	l := &LoanStatement{
		Loan: bank.Loan{
			ID: "LOAN001", Customer: "Asha", Category: bank.PersonalLoan, Principal: bank.INR(1000),
			Rate: bank.R(12), Tenure: 1, EMI: bank.INR(1010), Status: bank.LoanClosed,
			Start: date.New(2025, time.March, 10), LinkedAccount: "ACC1001",
		},
		Payments: []bank.LoanPayment{
			{ID: "PAY00001", Loan: "LOAN001", Date: date.New(2025, time.March, 10), Amount: bank.INR(1010), Principal: bank.INR(1000), Interest: bank.INR(10), Method: bank.AccountDebit, Account: "ACC1001"},
		},
	}
	assertLines(t, RenderLoan(l),
		"# Loan LOAN001",
		"| Asha | personal | ₹1,000.00 | 12.00% | 1 | ₹1,010.00 | ₹0.00 | closed |",
		"Linked account: ACC1001. Started 2025-03-10, matures 2025-04-10.",
		"| 2025-03-10 | PAY00001 | ₹1,010.00 | ₹1,000.00 | ₹10.00 | ₹0.00 | account-debit (ACC1001) |",
	)
}

func TestRenderAudit(t *testing.T) {
	entries := []bank.AuditEntry{
		{ID: "AUD00001", Actor: "system", Action: bank.AccountOpened, Detail: "Opened savings account ACC1001", Time: day, Status: bank.Success},
		{ID: "AUD00002", Actor: "teller", Action: bank.ChequeBounced, Detail: "Cheque CHQ000001 bounced", Time: day, Status: bank.Failed},
	}
	assertLines(t, RenderAudit(entries),
		"# Audit Trail",
		"| AUD00001 | 2025-03-10 09:30:00 | system | ACCOUNT_OPENED | success | Opened savings account ACC1001 |",
		"| AUD00002 | 2025-03-10 09:30:00 | teller | CHEQUE_BOUNCED | failed | Cheque CHQ000001 bounced |",
	)
}

func TestSummaryMarkdown(t *testing.T) {
	s := &bank.Summary{
		Date:          date.New(2025, time.March, 10),
		Customers:     2,
		Accounts:      map[bank.AccountStatus]int{bank.Active: 2},
		TotalDeposits: bank.INR(15000),
		NetLiquidity:  bank.INR(15000),
	}
	assertLines(t, SummaryMarkdown(s),
		"# Bank Summary on 2025-03-10",
		"Net liquidity: ₹15,000.00",
		"| Total deposits | ₹15,000.00 |",
		"| Active accounts | 2 |",
	)
}

func TestCustomersMarkdown(t *testing.T) {
	rows := []bank.CustomerBalance{
		{Customer: bank.Customer{ID: "CUST001", Name: "Asha Rao"}, Accounts: 2, Total: bank.MustParseMoney("24500.50")},
		{Customer: bank.Customer{ID: "CUST002", Name: "Ravi Kumar"}},
	}
	assertLines(t, CustomersMarkdown(rows),
		"# Customer Balances",
		"| Customer | Name | Accounts | Total balance |",
		"| CUST001 | Asha Rao | 2 | ₹24,500.50 |",
		"| CUST002 | Ravi Kumar | 0 | ₹0.00 |",
		"2 customers hold ₹24,500.50.",
	)
	assertLines(t, CustomersMarkdown(nil), "No customers.")
}

func TestTransaction(t *testing.T) {
	tx := bank.Transaction{Account: "ACC1001", Type: bank.Deposit, Amount: bank.INR(250), BalanceAfter: bank.INR(5250)}
	if got, want := Transaction(tx), "Deposited ₹250.00 into ACC1001, balance ₹5,250.00"; got != want {
		t.Errorf("Transaction() = %q, want %q", got, want)
	}
	c := bank.Cheque{Number: "CHQ000001", Amount: bank.INR(500), Status: bank.Bounced, Remark: "Insufficient funds"}
	if got, want := Cheque(c), "Cheque CHQ000001 of ₹500.00 bounced: Insufficient funds"; got != want {
		t.Errorf("Cheque() = %q, want %q", got, want)
	}
}

// Every embedded template is used by a renderer.
func TestTemplatesAreUsed(t *testing.T) {
	used := map[string]bool{
		"statement.md": true, "statement_title.md": true, "statement_transactions.md": true,
		"schedule.md": true, "loan.md": true, "loan_title.md": true, "loan_payments.md": true,
		"audit.md": true,
	}
	files, err := fs.Glob(templates, "templates/*.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if !used[strings.TrimPrefix(f, "templates/")] {
			t.Errorf("template %s is not rendered by any function", f)
		}
	}
}
