package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Apurer/dealership-sync/internal/app/api"
	ecworkflows "github.com/Apurer/dealership-sync/internal/domains/easycars/adapters/workflows"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	ecports "github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
)

var (
	dealershipID int64
	leadID       int64
	leadNumber   string
	useTemporal  bool
)

// errSyncFailed makes the process exit non-zero after the result has been printed.
var errSyncFailed = errors.New("sync failed")

func newStockCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stock",
		Short: "Pull advertised stock from EasyCars into local inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), globalComponents.Service.SyncStock(cmd.Context(), dealershipID))
		},
	}
	cmd.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")
	return cmd
}

func newLeadStatusesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lead-statuses",
		Short: "Reconcile local lead statuses with EasyCars",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), globalComponents.Service.SyncLeadStatuses(cmd.Context(), dealershipID))
		},
	}
	cmd.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")
	return cmd
}

func newDealershipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dealership",
		Short: "Run stock sync followed by lead status sync",
		Long: `Run the full dealership pass: stock first, then lead statuses.
With --temporal the pass is started as a durable workflow and the command waits for it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			orchestrator, cleanup, err := newOrchestrator()
			if err != nil {
				return err
			}
			defer cleanup()
			out, err := orchestrator.SyncDealership(cmd.Context(), dealershipID)
			if err != nil {
				return err
			}
			if out.WorkflowID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Workflow: %s\n", out.WorkflowID)
			}
			stockErr := reportResult(cmd.OutOrStdout(), out.Stock)
			statusErr := reportResult(cmd.OutOrStdout(), out.LeadStatus)
			return errors.Join(stockErr, statusErr)
		},
	}
	cmd.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")
	cmd.Flags().BoolVar(&useTemporal, "temporal", false, "run through the Temporal worker instead of inline")
	return cmd
}

func newPushLeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "push-lead",
		Short: "Create or update one local lead in EasyCars",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("lead", leadID); err != nil {
				return err
			}
			orchestrator, cleanup, err := newOrchestrator()
			if err != nil {
				return err
			}
			defer cleanup()
			result, err := orchestrator.PushLead(cmd.Context(), leadID)
			if err != nil {
				return err
			}
			return reportResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&leadID, "lead", 0, "local lead id")
	cmd.Flags().BoolVar(&useTemporal, "temporal", false, "run through the Temporal worker instead of inline")
	return cmd
}

func newImportLeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-lead",
		Short: "Fetch one EasyCars lead by number and store it locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			if strings.TrimSpace(leadNumber) == "" {
				return errors.New("--lead-number is required")
			}
			lead, result := globalComponents.Service.ImportLead(cmd.Context(), dealershipID, leadNumber)
			if lead != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Lead %d (%s) status %s\n", lead.ID, leadNumber, lead.Status)
			}
			return reportResult(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")
	cmd.Flags().StringVar(&leadNumber, "lead-number", "", "EasyCars lead number")
	return cmd
}

func newOrchestrator() (ecports.WorkflowOrchestrator, func(), error) {
	if !useTemporal {
		return ecworkflows.NewInlineSyncWorkflows(globalComponents.Service), func() {}, nil
	}
	temporalClient, err := api.ConnectTemporalClient(globalCfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to temporal: %w", err)
	}
	return ecworkflows.NewTemporalSyncWorkflows(temporalClient), temporalClient.Close, nil
}

func requirePositive(flag string, value int64) error {
	if value <= 0 {
		return fmt.Errorf("--%s must be a positive id", flag)
	}
	return nil
}

// reportResult prints a summary table and returns errSyncFailed for failed runs.
func reportResult(w io.Writer, result *domain.SyncResult) error {
	if result == nil {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Sync:\t%s\n", result.SyncType)
	fmt.Fprintf(tw, "Dealership:\t%d\n", result.DealershipID)
	fmt.Fprintf(tw, "Status:\t%s\n", result.Status)
	fmt.Fprintf(tw, "Items:\t%d processed, %d succeeded, %d failed\n", result.ItemsProcessed, result.ItemsSucceeded, result.ItemsFailed)
	switch result.SyncType {
	case domain.SyncTypeStock:
		fmt.Fprintf(tw, "Vehicles:\t%d created, %d updated, %d skipped\n", result.VehiclesCreated, result.VehiclesUpdated, result.VehiclesSkipped)
		fmt.Fprintf(tw, "Images:\t%d imported, %d failed\n", result.ImagesImported, result.ImagesFailed)
	case domain.SyncTypeLeadStatus:
		fmt.Fprintf(tw, "Statuses:\t%d updated, %d conflicts\n", result.StatusesUpdated, result.ConflictsCreated)
	case domain.SyncTypeLead:
		if result.LeadNumber != "" {
			fmt.Fprintf(tw, "Lead number:\t%s\n", result.LeadNumber)
		}
	}
	fmt.Fprintf(tw, "Duration:\t%s\n", result.Duration)
	for _, msg := range result.Errors {
		fmt.Fprintf(tw, "Error:\t%s\n", msg)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if result.Status == domain.SyncStatusFailed {
		return errSyncFailed
	}
	return nil
}
