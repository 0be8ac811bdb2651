package main

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/sindhuth/donation-ocr-app/internal/aggregate"
	"github.com/sindhuth/donation-ocr-app/internal/domain"
)

func TestPrintRoles(t *testing.T) {
	admin := "sess-a"
	var buf bytes.Buffer
	printRoles(&buf, domain.RoleAssignment{AdminSessionID: &admin})
	require.Equal(t, "admin    sess-a\neditor   (open)\n", buf.String())
}

func TestPrintSummary(t *testing.T) {
	records := []domain.Donation{
		{ID: 1, Name: "Jane", Amount: "50", Status: domain.DonationConfirmed},
		{ID: 2, Name: "Anon", Amount: "25.5", Status: domain.DonationConfirmed},
	}
	sum, err := aggregate.Summarize(nil, records, decimal.NewFromInt(100))
	require.NoError(t, err)

	var buf bytes.Buffer
	printSummary(&buf, "Gala", aggregate.NewMoney("$", "en"), sum)
	out := buf.String()
	require.Contains(t, out, "raised    $75.50 of $100.00")
	require.Contains(t, out, "donations 2")
	require.Contains(t, out, "remaining $24.50")
	require.Contains(t, out, "latest    Anon 25.5")
}

func TestResetFlagsAreExclusive(t *testing.T) {
	rootCmd.SetArgs([]string{"reset", "--roles-only", "--donations-only"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		resetRolesOnly, resetDonationsOnly = false, false
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "none of the others can be")
}
