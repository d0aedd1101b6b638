package main

import (
	"fmt"

	"github.com/etnz/bank"
)

// checkSnapshot returns the consistency problems of snap, in record order.
// Transactions are expected in the order they were recorded.
func checkSnapshot(snap *bank.Snapshot) []string {
	customers := map[string]bool{}
	accounts := map[string]bank.Account{}
	loans := map[string]bank.Loan{}
	for _, rec := range snap.Records {
		switch r := rec.(type) {
		case bank.Customer:
			customers[r.ID] = true
		case bank.Account:
			accounts[r.ID] = r
		case bank.Loan:
			loans[r.ID] = r
		}
	}

	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	registered := func(what, ref, id string) {
		if !customers[id] {
			report("%s %s: unknown customer %q", what, ref, id)
		}
	}
	exists := func(what, ref, id string) {
		if _, ok := accounts[id]; !ok {
			report("%s %s: unknown account %q", what, ref, id)
		}
	}

	last := map[string]bank.Transaction{}
	for _, rec := range snap.Records {
		switch r := rec.(type) {
		case bank.Account:
			registered("account", r.ID, r.Customer)
			if r.Balance.IsNegative() {
				report("account %s: negative balance %s", r.ID, r.Balance)
			}
		case bank.Transaction:
			exists("transaction", r.ID, r.Account)
			if r.Status == bank.Success {
				last[r.Account] = r
			}
		case bank.Transfer:
			exists("transfer", r.ID, r.From)
			exists("transfer", r.ID, r.To)
		case bank.Cheque:
			exists("cheque", r.Number, r.Drawer)
		case bank.Loan:
			registered("loan", r.ID, r.Customer)
			if r.LinkedAccount != "" {
				exists("loan", r.ID, r.LinkedAccount)
			}
			if r.Outstanding.IsNegative() || r.Outstanding.GreaterThan(r.Principal) {
				report("loan %s: outstanding %s outside of [0, %s]", r.ID, r.Outstanding, r.Principal)
			}
		case bank.LoanPayment:
			if _, ok := loans[r.Loan]; !ok {
				report("payment %s: unknown loan %q", r.ID, r.Loan)
			}
			if r.Method == bank.AccountDebit {
				exists("payment", r.ID, r.Account)
			}
		}
	}

	for _, rec := range snap.Records {
		acc, ok := rec.(bank.Account)
		if !ok {
			continue
		}
		tx, ok := last[acc.ID]
		if ok && !tx.BalanceAfter.Equal(acc.Balance) {
			report("account %s: balance %s but last transaction %s leaves %s", acc.ID, acc.Balance, tx.ID, tx.BalanceAfter)
		}
	}
	return problems
}
