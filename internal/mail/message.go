package mail

// Message is a fully rendered email, ready for any transport. Both the
// primary and the fallback transport receive the identical message; only
// the delivery mechanism differs.
type Message struct {
	To        string
	FromName  string
	FromEmail string
	Subject   string
	HTML      string
	Text      string
}

// SenderIdentity is the From header pair of an outgoing message.
type SenderIdentity struct {
	Name  string
	Email string
}

const fallbackFromEmail = "no-reply@localhost"

// ResolveSender picks the sender identity through a single fallback chain:
// explicit config, then site defaults, then the administrative account's
// address, then a hard-coded last resort. Both issuance-adjacent paths call
// this one function.
func ResolveSender(cfg SenderIdentity, siteName, siteEmail, adminEmail string) SenderIdentity {
	return SenderIdentity{
		Name:  firstNonEmpty(cfg.Name, siteName),
		Email: firstNonEmpty(cfg.Email, siteEmail, adminEmail, fallbackFromEmail),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
