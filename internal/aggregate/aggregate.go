// Package aggregate derives dashboard numbers from confirmed donations.
package aggregate

import (
	"context"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
)

// AmountParsePolicy converts a stored amount string into money.
type AmountParsePolicy interface {
	Parse(amount string) decimal.Decimal
}

// TreatUnparseableAsZero counts malformed or negative amounts as 0. Amounts
// are stored as free text, so this is the only place they become numbers.
// Only plain decimals ("20", "5.50", ".5") are read; signs, exponents and
// grouping count as malformed.
type TreatUnparseableAsZero struct{}

// maxAmountLen bounds the digits accepted for one amount.
const maxAmountLen = 24

func (TreatUnparseableAsZero) Parse(amount string) decimal.Decimal {
	s := strings.TrimSpace(amount)
	if !plainDecimal(s) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func plainDecimal(s string) bool {
	if s == "" || len(s) > maxAmountLen {
		return false
	}
	digits, dot := 0, false
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			return false
		}
	}
	return digits > 0
}

var defaultPolicy AmountParsePolicy = TreatUnparseableAsZero{}

// TotalRaised sums confirmed amounts. Pending records are ignored.
func TotalRaised(records []domain.Donation) decimal.Decimal {
	return totalWith(defaultPolicy, records)
}

func totalWith(policy AmountParsePolicy, records []domain.Donation) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if !r.IsConfirmed() {
			continue
		}
		total = total.Add(policy.Parse(r.Amount))
	}
	return total
}

// DonationCount counts confirmed records.
func DonationCount(records []domain.Donation) int {
	n := 0
	for _, r := range records {
		if r.IsConfirmed() {
			n++
		}
	}
	return n
}

// Progress returns total/goal capped at 1.
func Progress(total, goal decimal.Decimal) (decimal.Decimal, error) {
	if !goal.IsPositive() {
		return decimal.Zero, domain.ErrInvalidGoal
	}
	p := total.Div(goal)
	one := decimal.NewFromInt(1)
	if p.GreaterThan(one) {
		return one, nil
	}
	return p, nil
}

// LatestDonor returns the confirmed record created most recently, or nil.
// Ties on CreatedAt go to the higher id.
func LatestDonor(records []domain.Donation) *domain.Donation {
	var latest *domain.Donation
	for i := range records {
		r := &records[i]
		if !r.IsConfirmed() {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) ||
			(r.CreatedAt.Equal(latest.CreatedAt) && r.ID > latest.ID) {
			latest = r
		}
	}
	if latest == nil {
		return nil
	}
	cp := *latest
	return &cp
}

// Summary is every dashboard number computed from one snapshot.
type Summary struct {
	Total       decimal.Decimal
	Count       int
	Goal        decimal.Decimal
	Progress    decimal.Decimal
	Remaining   decimal.Decimal
	GoalReached bool
	Latest      *domain.Donation
	Donations   []domain.Donation
}

// Summarize computes a Summary over records.
func Summarize(policy AmountParsePolicy, records []domain.Donation, goal decimal.Decimal) (Summary, error) {
	if policy == nil {
		policy = defaultPolicy
	}
	total := totalWith(policy, records)
	progress, err := Progress(total, goal)
	if err != nil {
		return Summary{}, err
	}
	remaining := goal.Sub(total)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return Summary{
		Total:       total,
		Count:       DonationCount(records),
		Goal:        goal,
		Progress:    progress,
		Remaining:   remaining,
		GoalReached: total.GreaterThanOrEqual(goal),
		Latest:      LatestDonor(records),
		Donations:   records,
	}, nil
}

// View reads confirmed donations from the store.
type View struct {
	store  domain.DonationRepository
	policy AmountParsePolicy
}

// NewView builds a view using the lenient amount policy.
func NewView(store domain.DonationRepository) *View {
	return &View{store: store, policy: defaultPolicy}
}

// Summary reads the confirmed records once, newest first, and derives every
// number from that snapshot.
func (v *View) Summary(ctx context.Context, goal float64) (Summary, error) {
	if math.IsNaN(goal) || math.IsInf(goal, 0) {
		return Summary{}, domain.ErrInvalidGoal
	}
	g := decimal.NewFromFloat(goal)
	if !g.IsPositive() {
		return Summary{}, domain.ErrInvalidGoal
	}
	records, err := v.store.ListConfirmed(ctx, domain.NewestFirst)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(v.policy, records, g)
}
