package handler

const (
	// msgNeutralConfirmation is the one and only answer the public
	// request-a-link path gives, whatever actually happened.
	msgNeutralConfirmation = "If the address is registered, a sign-in link is on its way."

	errLinkInvalid    = "This sign-in link is invalid or has expired"
	errAccountInvalid = "Invalid account"
	errInternalServer = "Internal server error"
)
