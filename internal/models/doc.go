// Package models defines the core domain records for the debt/payment
// reconciliation backend.
//
// # Records
//
//   - Debt: an obligation owed by one person within a project, priced as a
//     set of line items
//   - Transaction: a recorded payment moving an amount from one person to
//     another within a project
//   - Allocation: a link recording how much of a transaction has been applied
//     against a specific debt
//   - Person, Project, Item, Unit: master data the core resolves references
//     against
//   - Document: attachment metadata for debts and transactions
//   - User: an API account (authorization gate only)
//
// # Design Principles
//
//  1. Plain structs, no behavior beyond small derivations (display names,
//     code titles)
//  2. References between records are IDs, never pointers, to avoid circular
//     object graphs
//  3. All quantities and monetary amounts are decimal.Decimal; monetary
//     amounts carry 0 fractional digits, line quantities up to 3
package models
