// Package signature authenticates inbound payment webhooks. One Verifier
// per provider keeps canonicalization details out of the reconciliation
// engine; adding a provider means adding a Verifier, nothing else.
package signature

// Verifier validates a webhook delivery against the provider's secret or
// key. A nil return means the payload is authentic. Verification fails
// closed: an unconfigured secret or key rejects every delivery.
type Verifier interface {
	Verify(rawPayload []byte, signature string) error
}
