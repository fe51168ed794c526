// Package models contains GORM persistence models for the returns database.
// Domain types stay free of ORM tags; each model carries its table mapping
// and converts to and from the domain with ToDomain / FromDomain.
//
// Structure:
//   - base.go: shared identity, timestamp and version columns
//   - returns.go: return records with their inspection and audit history
//   - attachment.go: inspection evidence metadata
//   - sequence.go: per-year return number counters
package models
