// Package adaptive is a server-side SDK for policy-driven authentication
// against a remote identity tenant. It evaluates an access policy for a
// session, walks the user through the factor verifications the policy
// demands (password, FIDO, TOTP, email/SMS/voice OTP, knowledge questions,
// push, QR login), and validates the resulting assertions, threading the
// multi-step flow through a transaction store keyed by opaque ids.
//
// All cryptographic verification happens on the tenant; this package only
// orchestrates the HTTP conversation and the transaction state.
//
// Concurrent flows on distinct transaction ids are fully independent.
// Concurrent operations on the same transaction id are not serialized:
// writes to the transaction are last-write-wins, so callers polling a
// push or QR verification from several goroutines at once may observe
// stale pending state.
package adaptive
