package bootstrap

import (
	"context"
	"fmt"
	"strconv"

	"github.com/oak-disperser/oakboot/pkg/gcp"
	"github.com/oak-disperser/oakboot/pkg/logger"
)

// SelectBillingAccount resolves at most one billing account for the run.
// Billing linkage is best-effort: listing failures and an empty account
// list produce a warning and an empty ID, never an error. A forced ID is
// returned as-is without validation. With multiple candidates the operator
// picks from a 1-based list; a blank answer skips billing, anything else
// invalid re-prompts.
func SelectBillingAccount(
	ctx context.Context,
	client gcp.GCPClienter,
	prompter Prompter,
	forcedID string,
) (string, error) {
	l := logger.Get()

	if forcedID != "" {
		return forcedID, nil
	}

	l.Info("Retrieving billing accounts")
	accounts, err := client.ListBillingAccounts(ctx)
	if err != nil {
		l.Warnf("Unable to list billing accounts (%v)", err)
		return "", nil
	}
	if len(accounts) == 0 {
		l.Warn("No billing accounts available")
		return "", nil
	}

	open := make([]gcp.BillingAccount, 0, len(accounts))
	for _, account := range accounts {
		if account.Open {
			open = append(open, account)
		}
	}
	// A stale or missing open flag should not rule out every account.
	if len(open) == 0 {
		open = accounts
	}

	if len(open) == 1 {
		l.Infof("Using billing account %s (%s)", open[0].DisplayName, open[0].ID)
		return open[0].ID, nil
	}

	return promptForBillingAccount(prompter, open)
}

func promptForBillingAccount(prompter Prompter, accounts []gcp.BillingAccount) (string, error) {
	l := logger.Get()

	label := "Select a billing account:\n"
	for idx, account := range accounts {
		label += fmt.Sprintf("[%d] %s (%s)\n", idx+1, account.DisplayName, account.ID)
	}
	label += "Enter a number or press Enter to skip: "

	for {
		choice, err := prompter.Prompt(label)
		if err != nil {
			return "", fmt.Errorf("read billing selection: %w", err)
		}
		if choice == "" {
			l.Info("Skipping billing linkage")
			return "", nil
		}
		if index, err := strconv.Atoi(choice); err == nil && index >= 1 && index <= len(accounts) {
			return accounts[index-1].ID, nil
		}
		label = "Invalid selection; please try again: "
	}
}
