package rules

// Free-tier limits observed by the entitlement gate. Premium accounts are
// unrestricted on all four axes.
const (
	FreeMessageCap     = 20
	FreeVisibleMatches = 2
)

// CanRecall reports whether the account may undo its most recent swipe.
func CanRecall(isPremium bool) bool {
	return isPremium
}

// CanSendMessage reports whether an account that has already sent sentCount
// outbound messages may send one more. The gate trips exactly when the free
// cap is reached and stays tripped as the count grows.
func CanSendMessage(isPremium bool, sentCount, cap int) bool {
	if isPremium {
		return true
	}
	if cap <= 0 {
		cap = FreeMessageCap
	}
	return sentCount < cap
}

// VisibleMatchLimit returns how many of total matches the account may see in
// full; the remainder are surfaced as locked placeholders.
func VisibleMatchLimit(isPremium bool, total, limit int) int {
	if isPremium {
		return total
	}
	if limit <= 0 {
		limit = FreeVisibleMatches
	}
	if total < limit {
		return total
	}
	return limit
}

// CanUseAI gates every generative-content operation before any outbound call
// is attempted.
func CanUseAI(isPremium bool) bool {
	return isPremium
}
