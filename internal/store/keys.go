package store

import "fmt"

// Key formats for the shared store. The identity is embedded verbatim.
const (
	earnTimeKeyFormat = "faucet:%s:earn_time"
	balanceKeyFormat  = "faucet:%s:balance"
)

// EarnTimeKey returns "faucet:{identity}:earn_time"
func EarnTimeKey(identity string) string {
	return fmt.Sprintf(earnTimeKeyFormat, identity)
}

// BalanceKey returns "faucet:{identity}:balance"
func BalanceKey(identity string) string {
	return fmt.Sprintf(balanceKeyFormat, identity)
}
