package models

import "fmt"

// PayoutNotice describes a payout attempt for operator reconciliation.
type PayoutNotice struct {
	Identity      string
	AmountUnits   int64
	TransactionID string
	Success       bool
}

func (n *PayoutNotice) String() string {
	if n.Success {
		return fmt.Sprintf("Paid out %d units to %s (transaction %s)", n.AmountUnits, n.Identity, n.TransactionID)
	}
	return fmt.Sprintf("Payout of %d units to %s FAILED, credit kept for the next attempt", n.AmountUnits, n.Identity)
}

// NotificationService alerts the operator about payout outcomes.
type NotificationService interface {
	NotifyPayout(notice *PayoutNotice)
}
