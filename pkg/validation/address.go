package validation

import (
	"fmt"
	"strings"
)

// ValidateWalletAddress checks that a destination wallet address is usable
// as a payout destination. The address format itself is the payment
// processor's concern; the faucet only rejects empty values.
func ValidateWalletAddress(addr string) error {
	if strings.TrimSpace(addr) == "" {
		return fmt.Errorf("wallet address cannot be empty")
	}
	return nil
}
