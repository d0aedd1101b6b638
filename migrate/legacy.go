package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/etnz/bank"
	"github.com/etnz/bank/date"
)

// The legacy database is a CSV file with two columns, Table and Data, where
// Data is one JSON encoded row. Rows written by different versions of the old
// tool do not agree on field names, each canonical field is read from the
// first of its candidate paths that holds a value.

// legacyReport counts what a conversion did, per legacy table.
type legacyReport struct {
	Converted map[string]int
	Skipped   map[string]int
}

// skippedTables are legacy tables outside the ledger.
var skippedTables = map[string]bool{"cards": true, "users": true}

// convertLegacy reads a legacy database and returns the equivalent snapshot.
func convertLegacy(r io.Reader) (*bank.Snapshot, *legacyReport, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("could not read header: %w", err)
	}
	if len(header) != 2 || header[0] != "Table" || header[1] != "Data" {
		return nil, nil, fmt.Errorf("unexpected header %q, want [Table Data]", header)
	}

	snap := bank.NewSnapshot()
	report := &legacyReport{Converted: map[string]int{}, Skipped: map[string]int{}}
	seen := map[string]bool{}
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}
		table := fields[0]
		if skippedTables[table] {
			report.Skipped[table]++
			continue
		}

		var row any
		if err := json.Unmarshal([]byte(fields[1]), &row); err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid %s row: %w", line, table, err)
		}
		rec, err := convertRow(table, row)
		if errors.Is(err, errSkip) {
			report.Skipped[table]++
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %s: %w", line, table, err)
		}
		key := rec.Table().String() + "/" + rec.Key()
		if seen[key] {
			return nil, nil, fmt.Errorf("line %d: duplicate %s %q", line, rec.Table(), rec.Key())
		}
		seen[key] = true
		snap.Records = append(snap.Records, rec)
		report.Converted[table]++
	}
	return snap, report, nil
}

// errSkip marks a legacy row with no canonical equivalent.
var errSkip = errors.New("skipped")

func convertRow(table string, row any) (bank.Record, error) {
	f := fields{row: row}
	var rec bank.Record
	switch table {
	case "customers":
		rec = f.customer()
	case "accounts":
		rec = f.account()
	case "transactions":
		rec = f.transaction()
	case "transfers":
		rec = f.transfer()
	case "cheques":
		rec = f.cheque()
	case "loans":
		rec = f.loan()
	case "loan_payments":
		rec = f.payment()
	case "audit":
		rec = f.audit()
	default:
		return nil, errors.New("unknown legacy table")
	}
	if f.err != nil {
		return nil, f.err
	}
	return rec, nil
}

// fields reads the values of a legacy row. The first failure is kept in err
// and makes every later read a no-op.
type fields struct {
	row any
	err error
}

// lookup returns the first non empty value found at one of paths.
func (f *fields) lookup(paths ...string) (any, bool) {
	for _, path := range paths {
		v, err := jsonpath.Get(path, f.row)
		if err != nil {
			continue
		}
		// jsonpath may answer a list of one value.
		if list, ok := v.([]any); ok && len(list) > 0 {
			v = list[0]
		}
		switch v := v.(type) {
		case nil:
			continue
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
		}
		return v, true
	}
	return nil, false
}

func (f *fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = fmt.Errorf(format, args...)
	}
}

// str returns the value at paths as a string, "" when there is none.
func (f *fields) str(paths ...string) string {
	v, ok := f.lookup(paths...)
	if !ok {
		return ""
	}
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}

// id returns a required identifier.
func (f *fields) id(paths ...string) string {
	s := f.str(paths...)
	if s == "" {
		f.fail("missing %s", paths[0])
	}
	return s
}

func (f *fields) money(paths ...string) bank.Money {
	v, ok := f.lookup(paths...)
	if !ok {
		return bank.Money{}
	}
	switch v := v.(type) {
	case float64:
		return bank.INR(v).Round()
	case string:
		m, err := bank.ParseMoney(strings.ReplaceAll(v, ",", ""))
		if err != nil {
			f.fail("%s: %w", paths[0], err)
		}
		return m.Round()
	default:
		f.fail("%s: %v is not an amount", paths[0], v)
		return bank.Money{}
	}
}

func (f *fields) integer(paths ...string) int {
	s := f.str(paths...)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.fail("%s: %w", paths[0], err)
	}
	return int(n)
}

func (f *fields) date(paths ...string) date.Date {
	s := f.str(paths...)
	if s == "" {
		return date.Date{}
	}
	// Timestamps keep their day.
	s, _, _ = strings.Cut(s, " ")
	d, err := date.Parse(s)
	if err != nil {
		f.fail("%s: %w", paths[0], err)
	}
	return d
}

// time reads a timestamp, or a date and an optional time of day.
func (f *fields) time(stamp []string, day []string, clock []string) time.Time {
	if s := f.str(stamp...); s != "" {
		t, err := time.Parse(time.DateTime, s)
		if err != nil {
			f.fail("%s: %w", stamp[0], err)
		}
		return t
	}
	d := f.str(day...)
	if d == "" {
		return time.Time{}
	}
	c := f.str(clock...)
	if c == "" {
		c = "00:00:00"
	}
	t, err := time.Parse(time.DateTime, d+" "+c)
	if err != nil {
		f.fail("%s: %w", day[0], err)
	}
	return t
}

// name normalizes a legacy label like "Fixed Deposit" into "fixed-deposit".
func name(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}

func (f *fields) status(paths ...string) bank.Status {
	switch name(f.str(paths...)) {
	case "", "success", "completed":
		return bank.Success
	default:
		return bank.Failed
	}
}

// customer converts a customer row. Identity documents and KYC state have no
// equivalent and are dropped.
func (f *fields) customer() bank.Customer {
	return bank.Customer{
		ID:         f.id("$.CustomerID"),
		Name:       f.id("$.Name", "$.CustomerName"),
		Phone:      f.str("$.Phone", "$.Mobile"),
		Email:      f.str("$.Email"),
		Registered: f.date("$.RegistrationDate", "$.JoinDate"),
	}
}

func (f *fields) account() bank.Account {
	a := bank.Account{
		ID:       f.id("$.AccountNumber"),
		Customer: f.id("$.CustomerID", "$.Customer", "$.Name"),
		Balance:  f.money("$.Balance"),
		Opened:   f.date("$.OpeningDate", "$.RegistrationDate", "$.OpenDate"),
	}
	typ, err := bank.ParseAccountType(name(f.str("$.AccountType")))
	if err != nil {
		f.fail("%w", err)
	}
	a.Type = typ
	a.InterestRate, a.MinimumBalance = typ.Terms()
	if _, ok := f.lookup("$.MinBalance", "$.MinimumBalance"); ok {
		a.MinimumBalance = f.money("$.MinBalance", "$.MinimumBalance")
	}
	if s := f.str("$.InterestRate"); s != "" {
		r, err := bank.ParseRate(s)
		if err != nil {
			f.fail("$.InterestRate: %w", err)
		}
		a.InterestRate = r
	}
	switch name(f.str("$.Status")) {
	case "", "active":
		a.Status = bank.Active
	case "frozen", "blocked", "suspended":
		a.Status = bank.Frozen
	case "closed", "inactive":
		a.Status = bank.Closed
	default:
		f.fail("unknown account status %q", f.str("$.Status"))
	}
	return a
}

func (f *fields) transaction() bank.Transaction {
	t := bank.Transaction{
		ID:           f.id("$.TransactionID"),
		Account:      f.id("$.AccountNumber"),
		Amount:       f.money("$.Amount"),
		BalanceAfter: f.money("$.Balance_After", "$.BalanceAfter"),
		Time:         f.time([]string{"$.Timestamp"}, []string{"$.Date"}, []string{"$.Time"}),
		Remark:       f.str("$.Remarks", "$.Description"),
		Status:       f.status("$.Status"),
	}
	typ, err := bank.ParseTransactionType(name(f.str("$.TransactionType")))
	if err != nil {
		f.fail("%w", err)
	}
	t.Type = typ
	t.Direction = typ.Direction()
	switch name(f.str("$.DebitCredit")) {
	case "credit":
		t.Direction = bank.Credit
	case "debit":
		t.Direction = bank.Debit
	}
	return t
}

func (f *fields) transfer() bank.Transfer {
	t := bank.Transfer{
		ID:        f.id("$.TransferID"),
		From:      f.id("$.FromAccount"),
		To:        f.id("$.ToAccount"),
		Amount:    f.money("$.Amount"),
		Kind:      bank.InterCustomer,
		Charges:   f.money("$.Charges", "$.TransferCharge"),
		Time:      f.time([]string{"$.Timestamp"}, []string{"$.Date"}, []string{"$.Time"}),
		Status:    f.status("$.Status"),
		Reference: f.str("$.Reference"),
	}
	if k := name(f.str("$.TransferType")); k == "internal" || k == "own-account" || k == "self" {
		t.Kind = bank.Internal
	}
	if t.Reference == "" {
		t.Reference = "LEGACY-" + t.ID
	}
	return t
}

func (f *fields) cheque() bank.Cheque {
	c := bank.Cheque{
		Number: f.id("$.ChequeNumber"),
		Drawer: f.id("$.AccountNumber", "$.Drawer"),
		Payee:  f.str("$.IssuedTo", "$.Payee"),
		Amount: f.money("$.Amount"),
		Issued: f.date("$.IssueDate"),
		Remark: f.str("$.Remarks"),
	}
	if !strings.HasPrefix(c.Number, "CHQ") {
		c.Number = "CHQ" + c.Number
	}
	status, err := bank.ParseChequeStatus(name(f.str("$.Status")))
	if err != nil {
		f.fail("%w", err)
	}
	c.Status = status
	switch status {
	case bank.Cleared:
		c.Cleared = f.date("$.ClearanceDate")
	case bank.Bounced:
		c.BounceReason = bank.DrawerInsufficientFunds
		if c.Remark == "" {
			c.Remark = c.BounceReason.Remark()
		}
	}
	return c
}

func (f *fields) loan() bank.Loan {
	l := bank.Loan{
		ID:            f.id("$.LoanID"),
		Customer:      f.id("$.CustomerID", "$.Customer"),
		Principal:     f.money("$.PrincipalAmount", "$.Principal"),
		Tenure:        f.integer("$.Tenure_Months", "$.Tenure"),
		EMI:           f.money("$.EMI"),
		Outstanding:   f.money("$.OutstandingAmount", "$.Outstanding"),
		Start:         f.date("$.StartDate", "$.DisbursementDate", "$.ApprovalDate"),
		LinkedAccount: f.str("$.LinkedAccount"),
	}
	category, err := bank.ParseLoanCategory(strings.TrimSuffix(name(f.str("$.LoanType")), "-loan"))
	if err != nil {
		f.fail("%w", err)
	}
	l.Category = category
	// Legacy loans keep the rate they were granted at.
	l.Rate = category.Rate()
	if s := f.str("$.InterestRate"); s != "" {
		r, err := bank.ParseRate(s)
		if err != nil {
			f.fail("$.InterestRate: %w", err)
		}
		l.Rate = r
	}
	status, err := bank.ParseLoanStatus(name(f.str("$.Status")))
	if err != nil {
		f.fail("%w", err)
	}
	l.Status = status
	return l
}

func (f *fields) payment() bank.LoanPayment {
	p := bank.LoanPayment{
		ID:               f.id("$.PaymentID"),
		Loan:             f.id("$.LoanID"),
		Date:             f.date("$.PaymentDate", "$.Date"),
		Amount:           f.money("$.AmountPaid", "$.Amount"),
		Principal:        f.money("$.PrincipalPart"),
		Interest:         f.money("$.InterestPart"),
		OutstandingAfter: f.money("$.OutstandingAfter"),
		Account:          f.str("$.AccountNumber"),
		Status:           f.status("$.Status"),
	}
	p.Method = bank.Administrative
	if strings.Contains(name(f.str("$.PaymentMethod")), "debit") && p.Account != "" {
		p.Method = bank.AccountDebit
	}
	return p
}

// audit converts an audit row. Actions about cards or users have no
// equivalent and are skipped.
func (f *fields) audit() bank.AuditEntry {
	e := bank.AuditEntry{
		ID:     f.id("$.LogID", "$.AuditID"),
		Actor:  f.str("$.UserID", "$.User"),
		Detail: f.str("$.Details"),
		Time:   f.time([]string{"$.Timestamp"}, []string{"$.Date"}, []string{"$.Time"}),
		Status: f.status("$.Status"),
	}
	if e.Actor == "" {
		e.Actor = "system"
	}
	action, err := bank.ParseAction(strings.ToUpper(f.str("$.Action", "$.Operation")))
	if err != nil && f.err == nil {
		f.err = errSkip
	}
	e.Action = action
	return e
}
