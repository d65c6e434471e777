package economy

// Ledger holds one player's resource balance. All mutation goes through
// Add, Deposit, TrySpend and Exchange so a failed spend never leaves a
// partially debited balance.
type Ledger struct {
	balance Bundle
}

// NewLedger creates a ledger seeded with an opening balance.
// Negative entries are clamped to zero.
func NewLedger(opening Bundle) Ledger {
	for r, n := range opening {
		if n < 0 {
			opening[r] = 0
		}
	}
	return Ledger{balance: opening}
}

// Balance returns a copy of the current balance.
func (l *Ledger) Balance() Bundle {
	return l.balance
}

// Count returns the balance of a single resource.
func (l *Ledger) Count(r ResourceType) int {
	if !r.Valid() {
		return 0
	}
	return l.balance[r]
}

// Add credits amount units of r. Non-positive amounts and unknown types are ignored.
func (l *Ledger) Add(r ResourceType, amount int) {
	if !r.Valid() || amount <= 0 {
		return
	}
	l.balance[r] += amount
}

// Deposit credits every positive entry of b.
func (l *Ledger) Deposit(b Bundle) {
	for r, n := range b {
		l.Add(ResourceType(r), n)
	}
}

// CanAfford reports whether the balance covers cost. No mutation.
func (l *Ledger) CanAfford(cost Bundle) bool {
	return l.balance.Covers(cost)
}

// MissingFor returns the total cross-resource shortfall against cost.
// A negotiation heuristic only; TrySpend does the enforcement.
func (l *Ledger) MissingFor(cost Bundle) int {
	return l.balance.Shortfall(cost)
}

// TrySpend debits cost if every entry is covered. On ErrInsufficientResources
// the balance is unchanged.
func (l *Ledger) TrySpend(cost Bundle) error {
	if !cost.Valid() {
		return ErrNegativeAmount
	}
	if !l.balance.Covers(cost) {
		return ErrInsufficientResources
	}
	l.balance = l.balance.Minus(cost)
	return nil
}

// Exchange swaps give from a to b and take from b to a. Both sides are
// checked before either ledger is touched.
func Exchange(a *Ledger, give Bundle, b *Ledger, take Bundle) error {
	if !give.Valid() || !take.Valid() {
		return ErrNegativeAmount
	}
	if !a.balance.Covers(give) || !b.balance.Covers(take) {
		return ErrInsufficientResources
	}
	a.balance = a.balance.Minus(give).Plus(take)
	b.balance = b.balance.Minus(take).Plus(give)
	return nil
}
