package driven

// CredentialProvider supplies the single opaque authorization value the
// transport attaches to every request. The credential is loaded and
// validated before the engine is constructed; the engine never attempts to
// discover credentials itself, and never logs the value.
type CredentialProvider interface {
	// Configured reports whether a credential is available.
	Configured() bool

	// AuthHeader returns the Authorization header value.
	AuthHeader() (string, error)
}
