// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities so repositories own the table layout
// while the domain keeps its own invariants.
//
// Structure:
// - base.go: base persistence models (BaseModel, AggregateModel, CustomerAggregateModel)
// - customer.go: customers
// - catalog.go: services and report types
// - contract.go: contracts and contract lines
// - billing.go: payments
// - identity.go: users and customer memberships
// - report.go: reports and scanner findings
// - engagement.go: support engagements and time entries
//
// Scanner signatures carry their own table mapping and are persisted as is.
package models
