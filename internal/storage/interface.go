// Package storage provides the audit trail for driver-licence lookups.
//
// Every lookup handled by the front door is recorded: when it happened,
// how it ended, and how long it took. Queried person data is never
// stored in the clear: the record carries a SHA-256 digest of the
// document series number and nothing else identifying.
//
// The mongodb sub-package provides the production implementation; Noop
// serves deployments that run without a database. Auditing is strictly
// best effort and must never fail a lookup.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// LookupRecord is one audited lookup.
type LookupRecord struct {
	// Timestamp is when the lookup started.
	Timestamp time.Time `bson:"timestamp"`

	// DocumentDigest is the hex SHA-256 of the queried document series
	// number.
	DocumentDigest string `bson:"documentDigest"`

	// Outcome is the normalized result kind: "success" or one of the
	// client error kinds.
	Outcome string `bson:"outcome"`

	// FaultCode is set when the registry answered with a SOAP fault.
	FaultCode string `bson:"faultCode,omitempty"`

	Duration time.Duration `bson:"duration"`
}

// DigestDocument produces the stored form of a document series number.
func DigestDocument(documentSeriesNumber string) string {
	sum := sha256.Sum256([]byte(documentSeriesNumber))
	return hex.EncodeToString(sum[:])
}

// Store records lookup outcomes.
type Store interface {
	// RecordLookup persists one audit record.
	RecordLookup(ctx context.Context, record *LookupRecord) error

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// Close releases storage resources.
	Close(ctx context.Context) error
}

// Noop is the Store used when no database is configured.
type Noop struct{}

func (Noop) RecordLookup(ctx context.Context, record *LookupRecord) error { return nil }
func (Noop) Ping(ctx context.Context) error                               { return nil }
func (Noop) Close(ctx context.Context) error                              { return nil }
