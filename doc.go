// Package bank implements the ledger engine of a retail bank: customer
// accounts with a minimum balance, cash movements, transfers between accounts,
// cheques, amortizing loans and an audit trail.
//
// The core pieces are:
//   - Money: exact rupee amounts, rounded to paise whenever they are stored.
//   - Account ledger: opening, deposit, withdrawal and the account lifecycle
//     (Active, Frozen, Closed). A debit never takes an Active account below its
//     minimum balance.
//   - Transaction recorder: every balance change leaves an immutable
//     Transaction carrying the balance after it.
//   - Transfers: both legs, the transfer record and its audit entry are
//     committed together or not at all.
//   - Cheques: Issued cheques are cleared, bounced or cancelled exactly once.
//   - Loans: EMI computation, lazy amortization schedules and EMI payments.
//   - Audit trail: one entry per logical operation, attributed to the actor
//     carried by the context (see WithActor).
//
// A Bank works over a Repository. Every operation locks the accounts, cheques
// or loans it touches in a fixed order, validates on local copies and commits
// all its records with a single Repository.Upsert. Snapshots of a repository
// are persisted by a Store, in the JSONL format of EncodeSnapshot.
//
// This package serves as the foundational logic for the `bankctl` command-line
// tool.
package bank
