package verifier

// stopAfter decides whether the MX loop ends after a probe with the given
// outcome. An accepted recipient is final, and so is a refusal from a
// server that answered: only a server that could not be reached sends the
// loop on to the next exchanger, even when the dialogue broke off before
// RCPT TO.
func stopAfter(o Outcome) bool {
	switch o {
	case OutcomeDeliverable, OutcomeRejected:
		return true
	default:
		return false
	}
}
