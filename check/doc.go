// Package check contains the verification stages: syntax validation,
// MX resolution and the SMTP probe.
// These types can be used directly, but the recommended approach is
// to use the fluent builder API from the root verifier package.
package check
