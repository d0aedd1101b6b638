package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/bank"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the bank summary.
func SummaryMarkdown(s *bank.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("Bank Summary on %s", s.Date))
	doc.PlainText(fmt.Sprintf("Net liquidity: %s", s.NetLiquidity))

	doc.H2("Balances")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Item", "Amount"},
		Rows: [][]string{
			{"Total deposits", s.TotalDeposits.String()},
			{"Loans outstanding", s.LoansOutstanding.String()},
			{"Credit volume", s.CreditVolume.String()},
			{"Debit volume", s.DebitVolume.String()},
		},
	})

	doc.H2("Activity")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Item", "Count"},
		Rows: [][]string{
			{"Customers", fmt.Sprint(s.Customers)},
			{"Active accounts", fmt.Sprint(s.Accounts[bank.Active])},
			{"Frozen accounts", fmt.Sprint(s.Accounts[bank.Frozen])},
			{"Closed accounts", fmt.Sprint(s.Accounts[bank.Closed])},
			{"Transactions", fmt.Sprint(s.Transactions)},
			{"Large transactions", fmt.Sprint(s.LargeTransactions)},
			{"Active loans", fmt.Sprint(s.ActiveLoans)},
			{"Pending cheques", fmt.Sprint(s.PendingCheques)},
			{"Bounced cheques", fmt.Sprint(s.BouncedCheques)},
		},
	})

	return doc.String()
}

// CustomersMarkdown renders the balances of every customer.
func CustomersMarkdown(rows []bank.CustomerBalance) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Customer Balances")
	if len(rows) == 0 {
		doc.PlainText("No customers.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Customer", "Name", "Accounts", "Total balance"},
	}
	var total bank.Money
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{r.Customer.ID, r.Customer.Name, fmt.Sprint(r.Accounts), r.Total.String()})
		total = total.Add(r.Total)
	}
	doc.Table(table)
	doc.PlainText(fmt.Sprintf("%d customers hold %s.", len(rows), total))
	return doc.String()
}
