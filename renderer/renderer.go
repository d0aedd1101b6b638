// Package renderer turns bank records into markdown for the command line.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/bank"
)

//go:embed templates/*.md
var templates embed.FS

// Statement is an account with its transactions.
type Statement struct {
	Account      bank.Account
	Transactions []bank.Transaction
}

// AmortizationSchedule is the full schedule of a loan.
type AmortizationSchedule struct {
	Principal     bank.Money
	Rate          bank.Rate
	Tenure        int
	EMI           bank.Money
	Rows          []bank.Installment
	TotalPayment  bank.Money
	TotalInterest bank.Money
}

// NewAmortizationSchedule collects the schedule of a loan.
func NewAmortizationSchedule(principal bank.Money, rate bank.Rate, tenure int) (*AmortizationSchedule, error) {
	emi, err := bank.CalculateEMI(principal, rate, tenure)
	if err != nil {
		return nil, err
	}
	s := &AmortizationSchedule{Principal: principal, Rate: rate, Tenure: tenure, EMI: emi}
	for _, row := range bank.Schedule(principal, rate, tenure) {
		s.Rows = append(s.Rows, row)
		s.TotalPayment = s.TotalPayment.Add(row.Payment)
		s.TotalInterest = s.TotalInterest.Add(row.Interest)
	}
	return s, nil
}

// LoanStatement is a loan with its payments.
type LoanStatement struct {
	Loan     bank.Loan
	Payments []bank.LoanPayment
}

// RenderStatement renders an account statement.
func RenderStatement(s *Statement) string {
	partials := map[string]string{
		"statement_title":        "statement_title.md",
		"statement_transactions": "statement_transactions.md",
	}
	return renderTemplate("statement", "statement.md", partials, s)
}

// RenderSchedule renders an amortization schedule.
func RenderSchedule(s *AmortizationSchedule) string {
	return renderTemplate("schedule", "schedule.md", nil, s)
}

// RenderLoan renders a loan and the payments made on it.
func RenderLoan(l *LoanStatement) string {
	partials := map[string]string{
		"loan_title":    "loan_title.md",
		"loan_payments": "loan_payments.md",
	}
	return renderTemplate("loan", "loan.md", partials, l)
}

// RenderAudit renders audit entries, oldest first.
func RenderAudit(entries []bank.AuditEntry) string {
	return renderTemplate("audit", "audit.md", nil, entries)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
