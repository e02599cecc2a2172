package billing

import (
	"fmt"
	"strings"
)

// FormatStatement renders a statement as the plain-text message sent to
// the tenant after a charge is applied. newBalance is the tenant's
// balance after the charge.
func FormatStatement(stmt *Statement, newBalance float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Monthly statement %04d-%02d\n", stmt.Year, int(stmt.Month))
	fmt.Fprintf(&b, "Tenant: %s\n\n", stmt.TenantName)
	fmt.Fprintf(&b, "Base rent: %.2f\n", stmt.BaseRent)

	for _, charge := range stmt.Services {
		fmt.Fprintf(&b, "%s: %.2f", charge.Service.Label(), charge.Cost)
		if charge.Detail != "" {
			fmt.Fprintf(&b, " (%s)", charge.Detail)
		}
		b.WriteByte('\n')
	}

	if len(stmt.Services) > 0 {
		fmt.Fprintf(&b, "Services total: %.2f\n", stmt.ServicesTotal)
	}

	fmt.Fprintf(&b, "\nTotal charged: %.2f\n", stmt.Total)
	fmt.Fprintf(&b, "Balance due: %.2f\n", newBalance)

	return b.String()
}

// FormatEstimate renders a statement as a preview, without applying or
// referencing any balance change.
func FormatEstimate(stmt *Statement) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Estimated charge %04d-%02d\n", stmt.Year, int(stmt.Month))
	fmt.Fprintf(&b, "Base rent: %.2f\n", stmt.BaseRent)

	for _, charge := range stmt.Services {
		fmt.Fprintf(&b, "%s: %.2f", charge.Service.Label(), charge.Cost)
		if charge.Detail != "" {
			fmt.Fprintf(&b, " (%s)", charge.Detail)
		}
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "Estimated total: %.2f\n", stmt.Total)

	return b.String()
}

// FormatPaymentConfirmed renders the message sent to a tenant when an
// admin confirms their payment.
func FormatPaymentConfirmed(amount, newBalance float64) string {
	return fmt.Sprintf("Payment of %.2f confirmed. Balance due: %.2f", amount, newBalance)
}

// FormatComplaint renders the admin notification for a new complaint.
func FormatComplaint(tenantName string, chatID int64, text string) string {
	return fmt.Sprintf("Complaint from %s (%d):\n%s", tenantName, chatID, text)
}

// FormatRegistration renders the admin notification for a freshly
// registered tenant awaiting onboarding.
func FormatRegistration(tenantName string, chatID int64, nationalID string) string {
	return fmt.Sprintf("New tenant registered: %s (%d), ID %s. Onboarding pending.",
		tenantName, chatID, nationalID)
}

// FormatWelcome renders the message sent to a tenant when onboarding
// completes, including the property's Wi-Fi credentials when set.
func FormatWelcome(tenantName, wifiSSID, wifiPassword string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Welcome, %s! Your onboarding is complete. You will receive your monthly statement here.", tenantName)

	if wifiSSID != "" {
		fmt.Fprintf(&b, "\nWi-Fi network: %s", wifiSSID)
	}
	if wifiPassword != "" {
		fmt.Fprintf(&b, "\nWi-Fi password: %s", wifiPassword)
	}

	return b.String()
}

// FormatPaymentSubmitted renders the admin notification for a new
// payment awaiting confirmation.
func FormatPaymentSubmitted(tenantName string, chatID int64, amount float64, proof string) string {
	msg := fmt.Sprintf("Payment submitted by %s (%d): %.2f", tenantName, chatID, amount)
	if proof != "" {
		msg += "\nProof: " + proof
	}
	return msg
}
