// Package middleware wraps journal stores with encryption at rest and PII
// masking.
package middleware
