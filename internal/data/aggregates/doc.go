// Package aggregates owns the transaction boundaries for quest assignment and
// quest completion.
//
// Implementations compose table-level repos from internal/data/repos. Every
// write that must hold together (status flip, XP award, audit event) runs
// inside one TxRunner call.
package aggregates
