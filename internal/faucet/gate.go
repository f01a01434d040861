package faucet

import "time"

// RemainingWait returns how long an identity that last earned at lastGrant
// (unix seconds, 0 meaning "never") still has to wait at now. A result <= 0
// means eligible.
func RemainingWait(lastGrant, now int64, cooldown time.Duration) time.Duration {
	return time.Duration(lastGrant-now)*time.Second + cooldown
}

// BindingWait reconciles the two independent last-grant sources (the
// caller's sealed cookie and the stored earn record) into one decision: the
// larger remaining wait wins, so discarding either signal alone does not
// shorten the cooldown.
func BindingWait(cookieGrant, storedGrant, now int64, cooldown time.Duration) time.Duration {
	cookieWait := RemainingWait(cookieGrant, now, cooldown)
	storedWait := RemainingWait(storedGrant, now, cooldown)
	if cookieWait > storedWait {
		return cookieWait
	}
	return storedWait
}
