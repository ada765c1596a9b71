// Package split implements the money math for dividing a shared expense
// evenly across colocation members.
//
// All amounts are two-decimal fixed-point decimals. The division never leaks
// money: the sum of the returned shares always equals the total exactly.
package split

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var cent = decimal.New(1, -2)

// Evenly divides total across memberIDs and returns each member's share.
// Member ids must be distinct; a duplicated id would collapse into a single
// map entry and drop its share.
//
// Every member receives the floored per-head amount; the leftover cents are
// handed out one per member in deterministic order, payer first (when the
// payer is one of the members), then the remaining ids lexicographically.
// This keeps sum(shares) == total for every input.
func Evenly(total decimal.Decimal, memberIDs []string, payerID string) (map[string]decimal.Decimal, error) {
	if len(memberIDs) == 0 {
		return nil, fmt.Errorf("must have at least one member")
	}
	if !total.IsPositive() {
		return nil, fmt.Errorf("total must be positive, got %s", total)
	}
	if !total.Equal(total.Round(2)) {
		return nil, fmt.Errorf("total %s has sub-cent precision", total)
	}
	seen := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("duplicate member id %s", id)
		}
		seen[id] = struct{}{}
	}

	order := rankMembers(memberIDs, payerID)
	n := decimal.NewFromInt(int64(len(order)))

	base := total.Div(n).RoundFloor(2)
	remainder := total.Sub(base.Mul(n))
	// remainder is a whole number of cents in [0, n).
	extraCents := remainder.Div(cent).IntPart()

	shares := make(map[string]decimal.Decimal, len(order))
	for i, id := range order {
		share := base
		if int64(i) < extraCents {
			share = share.Add(cent)
		}
		shares[id] = share
	}
	return shares, nil
}

// rankMembers returns memberIDs sorted lexicographically with payerID moved
// to the front when present. The order decides who absorbs leftover cents.
func rankMembers(memberIDs []string, payerID string) []string {
	ids := make([]string, len(memberIDs))
	copy(ids, memberIDs)
	sort.Strings(ids)
	for i, id := range ids {
		if id == payerID {
			copy(ids[1:i+1], ids[:i])
			ids[0] = id
			break
		}
	}
	return ids
}
