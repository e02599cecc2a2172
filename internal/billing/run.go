package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RunResult reports the outcome of a billing run.
type RunResult struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	// Eligible is the number of onboarded tenants in scope.
	Eligible int `json:"eligible"`
	// Charged counts tenants whose balance update succeeded.
	Charged int `json:"charged"`
	// Notified counts tenants whose statement was delivered.
	Notified int `json:"notified"`
}

// DeliveryFailed reports a systemic delivery problem: eligible tenants
// existed but not a single statement went out. Charges were still
// applied; billing correctness does not depend on message delivery.
func (r *RunResult) DeliveryFailed() bool {
	return r.Eligible > 0 && r.Notified == 0
}

// Runner executes billing passes over a tenant population. It is
// stateless per invocation; scope selection and confirmation happen
// before Run is called.
type Runner struct {
	ledger   Ledger
	engine   *Engine
	notifier Notifier
}

// NewRunner creates a billing runner.
func NewRunner(ledger Ledger, engine *Engine, notifier Notifier) *Runner {
	return &Runner{ledger: ledger, engine: engine, notifier: notifier}
}

// Run charges every onboarded tenant in scope for the given month.
// propertyID nil means all tenants. Tenants are processed sequentially
// and each balance update commits on its own: a failure on one tenant
// is logged and does not roll back or block the others. Balances
// accumulate — running the same month twice applies the charge twice.
func (r *Runner) Run(ctx context.Context, propertyID *uuid.UUID, year int, month time.Month) (*RunResult, error) {
	tenants, err := r.ledger.ListBillableTenants(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	result := &RunResult{Year: year, Month: month, Eligible: len(tenants)}

	for _, tenant := range tenants {
		stmt, err := r.engine.Statement(ctx, tenant, year, month)
		if err != nil {
			log.Error().Err(err).
				Int64("chat_id", tenant.ChatID).
				Msg("Failed to compute statement")
			continue
		}

		balance, err := r.ledger.AdjustTenantBalance(ctx, tenant.ChatID, stmt.Total)
		if err != nil {
			log.Error().Err(err).
				Int64("chat_id", tenant.ChatID).
				Msg("Failed to apply charge")
			continue
		}
		result.Charged++

		log.Info().
			Int64("chat_id", tenant.ChatID).
			Float64("charged", stmt.Total).
			Float64("balance", balance).
			Msg("Monthly charge applied")

		// The charge is already durable; a failed delivery is
		// logged and counted, nothing is rolled back.
		if err := r.notifier.SendToTenant(ctx, tenant.ChatID, FormatStatement(stmt, balance)); err != nil {
			log.Warn().Err(err).
				Int64("chat_id", tenant.ChatID).
				Msg("Failed to deliver statement")
			continue
		}
		result.Notified++
	}

	return result, nil
}
