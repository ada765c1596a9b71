// Package models defines the core domain models for Colocash.
//
// # Models
//
//   - User: a registered account, identified by id; referenced as a member
//     of colocations and as payer/participant on expenses.
//   - Colocation: a household grouping of member ids.
//   - Expense: a shared cost paid by one member, split across participants.
//   - ExpenseParticipant: one member's share of an expense with its two-sided
//     payment confirmation state.
//
// # Design Principles
//
//  1. Expense exclusively owns its participant rows; participants hold member
//     ids as plain lookup keys, never back-pointers, so there are no cycles.
//  2. Money is shopspring/decimal with two-decimal fixed-point semantics;
//     float64 is never used for amounts.
//  3. Derived state (Expense.Settled) is recomputed from participant flags by
//     the aggregate itself; nothing outside this package mutates the flags.
//  4. Timestamps are Unix seconds; zero means unset.
package models
