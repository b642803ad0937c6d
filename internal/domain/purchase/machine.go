package purchase

import "github.com/ocordel/chantier-api/internal/domain/faults"

type Trigger string

const (
	TriggerApprove Trigger = "approve"
	TriggerReject  Trigger = "reject"
	TriggerOrder   Trigger = "order"
	TriggerDeliver Trigger = "deliver"
	TriggerInvoice Trigger = "invoice"
)

// The whole lifecycle:
//
//	requested → approved → ordered → delivered → invoiced
//	requested → rejected
//
// Every other (status, trigger) pair is an invalid transition.
var transitions = map[Trigger]struct{ From, To Status }{
	TriggerApprove: {StatusRequested, StatusApproved},
	TriggerReject:  {StatusRequested, StatusRejected},
	TriggerOrder:   {StatusApproved, StatusOrdered},
	TriggerDeliver: {StatusOrdered, StatusDelivered},
	TriggerInvoice: {StatusDelivered, StatusInvoiced},
}

// Next returns the target status for trigger applied to current, or an
// InvalidTransition error carrying the observed source status.
func Next(current Status, trigger Trigger) (Status, error) {
	tr, ok := transitions[trigger]
	if !ok || tr.From != current {
		return "", faults.InvalidTransition(string(current), string(trigger))
	}
	return tr.To, nil
}
