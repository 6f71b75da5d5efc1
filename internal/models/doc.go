// Package models defines the core domain models for tripledger.
//
// # Models
//
//   - Trip: a shared trip with an ordered member list and an optional budget
//   - Member: a person on the trip, identified by name within the trip
//   - Expense: an amount fronted by one member and shared by some or all members
//   - Settlement: a payment already made from one member to another
//
// Members are identified by name strings. Expenses and settlements reference
// members by name, so removing a member from a trip never rewrites history:
// their expenses stay in the ledger and still count toward balances.
//
// # Validation
//
// Write paths call Validate on incoming models. The struct tags are read by
// go-playground/validator; the calculator itself never rejects input and
// simply skips expenses it cannot use.
package models
