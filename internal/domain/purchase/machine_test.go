package purchase

import (
	"errors"
	"testing"

	"github.com/ocordel/chantier-api/internal/domain/faults"
)

func TestNextLegalTransitions(t *testing.T) {
	legal := []struct {
		from    Status
		trigger Trigger
		to      Status
	}{
		{StatusRequested, TriggerApprove, StatusApproved},
		{StatusRequested, TriggerReject, StatusRejected},
		{StatusApproved, TriggerOrder, StatusOrdered},
		{StatusOrdered, TriggerDeliver, StatusDelivered},
		{StatusDelivered, TriggerInvoice, StatusInvoiced},
	}
	for _, tc := range legal {
		got, err := Next(tc.from, tc.trigger)
		if err != nil {
			t.Fatalf("Next(%s, %s) returned error %v, want %s", tc.from, tc.trigger, err, tc.to)
		}
		if got != tc.to {
			t.Fatalf("Next(%s, %s) = %s, want %s", tc.from, tc.trigger, got, tc.to)
		}
	}
}

// Everything outside the five legal pairs must fail and report the
// observed source status.
func TestNextRejectsEveryOtherPair(t *testing.T) {
	statuses := []Status{StatusRequested, StatusApproved, StatusOrdered, StatusDelivered, StatusInvoiced, StatusRejected}
	triggers := []Trigger{TriggerApprove, TriggerReject, TriggerOrder, TriggerDeliver, TriggerInvoice}

	isLegal := func(s Status, trg Trigger) bool {
		tr := transitions[trg]
		return tr.From == s
	}

	invalid := 0
	for _, s := range statuses {
		for _, trg := range triggers {
			if isLegal(s, trg) {
				continue
			}
			invalid++
			_, err := Next(s, trg)
			var it *faults.InvalidTransitionError
			if !errors.As(err, &it) {
				t.Fatalf("Next(%s, %s) = %v, want InvalidTransition", s, trg, err)
			}
			if it.From != string(s) || it.Attempted != string(trg) {
				t.Fatalf("Next(%s, %s) reported {from: %s, attempted: %s}", s, trg, it.From, it.Attempted)
			}
		}
	}
	if invalid != 25 {
		t.Fatalf("checked %d invalid pairs, want 25", invalid)
	}
}

func TestStatusAggregateMembership(t *testing.T) {
	for _, s := range []Status{StatusRequested, StatusRejected} {
		if s.Engaged() {
			t.Fatalf("%s must not count as engaged", s)
		}
	}
	for _, s := range []Status{StatusApproved, StatusOrdered, StatusDelivered, StatusInvoiced} {
		if !s.Engaged() {
			t.Fatalf("%s must count as engaged", s)
		}
	}
	for _, s := range []Status{StatusDelivered, StatusInvoiced} {
		if !s.Realized() {
			t.Fatalf("%s must count as realized", s)
		}
	}
	for _, s := range []Status{StatusRequested, StatusApproved, StatusOrdered, StatusRejected} {
		if s.Realized() {
			t.Fatalf("%s must not count as realized", s)
		}
	}
}
