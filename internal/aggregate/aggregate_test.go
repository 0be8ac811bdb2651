package aggregate

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sindhuth/donation-ocr-app/internal/domain"
)

func confirmed(id int64, amount string, at time.Time) domain.Donation {
	return domain.Donation{ID: id, Name: "d", Amount: amount, Status: domain.DonationConfirmed, CreatedAt: at}
}

func TestTotalRaisedTreatsUnparseableAsZero(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	records := []domain.Donation{
		confirmed(1, "10", t0),
		confirmed(2, "abc", t0),
		confirmed(3, "5.50", t0),
		confirmed(4, "-3", t0),
		confirmed(5, "", t0),
		{ID: 6, Amount: "100", Status: domain.DonationPending, CreatedAt: t0},
		confirmed(7, "1e900000000", t0),
		confirmed(8, "2E3", t0),
		confirmed(9, "+4", t0),
		confirmed(10, "1.2.3", t0),
		confirmed(11, ".", t0),
		confirmed(12, "1234567890123456789012345", t0),
	}

	done := make(chan decimal.Decimal, 1)
	go func() { done <- TotalRaised(records) }()
	select {
	case total := <-done:
		require.True(t, total.Equal(decimal.RequireFromString("15.50")), "total = %s", total)
	case <-time.After(5 * time.Second):
		t.Fatal("TotalRaised did not return")
	}
	require.Equal(t, 11, DonationCount(records))
}

func TestTreatUnparseableAsZeroReadsPlainDecimals(t *testing.T) {
	var p TreatUnparseableAsZero
	for in, want := range map[string]string{
		"20":      "20",
		" 5.50 ":  "5.5",
		".5":      "0.5",
		"7.":      "7",
		"1,234":   "0",
		"$20":     "0",
		"1e3":     "0",
		"-0":      "0",
		"0012.30": "12.3",
	} {
		require.True(t, p.Parse(in).Equal(decimal.RequireFromString(want)), "Parse(%q) = %s", in, p.Parse(in))
	}
}

func TestProgress(t *testing.T) {
	p, err := Progress(decimal.NewFromInt(150), decimal.NewFromInt(100))
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.NewFromInt(1)))

	p, err = Progress(decimal.NewFromInt(50), decimal.NewFromInt(200))
	require.NoError(t, err)
	require.True(t, p.Equal(decimal.RequireFromString("0.25")))

	_, err = Progress(decimal.NewFromInt(10), decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidGoal)
	_, err = Progress(decimal.NewFromInt(10), decimal.NewFromInt(-5))
	require.ErrorIs(t, err, domain.ErrInvalidGoal)
}

func TestLatestDonor(t *testing.T) {
	require.Nil(t, LatestDonor(nil))

	t0 := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	records := []domain.Donation{
		confirmed(1, "1", t0.Add(time.Minute)),
		confirmed(2, "1", t0),
		{ID: 3, Amount: "1", Status: domain.DonationPending, CreatedAt: t0.Add(time.Hour)},
		confirmed(4, "1", t0.Add(time.Minute)),
	}
	latest := LatestDonor(records)
	require.NotNil(t, latest)
	require.Equal(t, int64(4), latest.ID)
}

type listStub struct {
	records []domain.Donation
	err     error
	calls   int
	domain.DonationRepository
}

func (s *listStub) ListConfirmed(context.Context, domain.ConfirmedOrder) ([]domain.Donation, error) {
	s.calls++
	return s.records, s.err
}

func TestViewSummary(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 19, 0, 0, 0, time.UTC)
	stub := &listStub{records: []domain.Donation{
		confirmed(2, "1500", t0.Add(time.Minute)),
		confirmed(1, "700.25", t0),
	}}
	view := NewView(stub)

	s, err := view.Summary(context.Background(), 2000)
	require.NoError(t, err)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, 2, s.Count)
	require.True(t, s.Total.Equal(decimal.RequireFromString("2200.25")))
	require.True(t, s.Progress.Equal(decimal.NewFromInt(1)))
	require.True(t, s.Remaining.IsZero())
	require.True(t, s.GoalReached)
	require.Equal(t, int64(2), s.Latest.ID)
}

func TestViewSummaryErrors(t *testing.T) {
	stub := &listStub{}
	_, err := NewView(stub).Summary(context.Background(), 0)
	require.ErrorIs(t, err, domain.ErrInvalidGoal)
	require.Zero(t, stub.calls, "invalid goal is rejected before reading")
	for _, goal := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err = NewView(stub).Summary(context.Background(), goal)
		require.ErrorIs(t, err, domain.ErrInvalidGoal)
	}
	require.Zero(t, stub.calls)

	boom := errors.New("down")
	_, err = NewView(&listStub{err: boom}).Summary(context.Background(), 100)
	require.ErrorIs(t, err, boom)
}

func TestMoneyFormat(t *testing.T) {
	m := NewMoney("$", "en")
	require.Equal(t, "$1,234.50", m.Format(decimal.RequireFromString("1234.5")))
	require.Equal(t, "$0.00", m.Format(decimal.Zero))
	require.Equal(t, "75%", m.Percent(decimal.RequireFromString("0.75")))

	fallback := NewMoney("€", "not a locale!!")
	require.Equal(t, "€20.00", fallback.Format(decimal.NewFromInt(20)))
}
