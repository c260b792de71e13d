package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	leads "github.com/Apurer/dealership-sync/internal/domains/leads/domain"
)

var (
	logsLimit  int
	conflictID string
	resolution string

	credClientID      string
	credClientSecret  string
	credAccountNumber string
	credAccountSecret string
	credEnvironment   string
	credYardCode      string
	credInactive      bool
)

func newLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent sync runs for a dealership, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			logs, err := globalComponents.Service.ListSyncLogs(cmd.Context(), dealershipID, logsLimit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SYNCED AT\tTYPE\tSTATUS\tPROCESSED\tFAILED\tDURATION")
			for _, entry := range logs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					entry.SyncedAt.Format(time.RFC3339), entry.SyncType, entry.Status,
					entry.ItemsProcessed, entry.ItemsFailed, entry.Duration)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")
	cmd.Flags().IntVar(&logsLimit, "limit", 20, "maximum number of runs to show")
	return cmd
}

func newConflictsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Inspect and resolve lead status conflicts",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List unresolved conflicts for a dealership",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			conflicts, err := globalComponents.Service.ListOpenConflicts(cmd.Context(), dealershipID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLEAD\tLOCAL\tREMOTE\tREASON\tDETECTED")
			for _, c := range conflicts {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
					c.ID, c.LeadID, c.LocalStatus, c.RemoteStatus, c.Reason, c.DetectedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	list.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")

	resolve := &cobra.Command{
		Use:     "resolve",
		Short:   "Close a conflict by keeping the local or the remote status",
		Example: `  easycars-sync conflicts resolve --id 3f9c... --resolution accept_remote`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(conflictID) == "" {
				return errors.New("--id is required")
			}
			conflict, err := globalComponents.Service.ResolveConflict(cmd.Context(), conflictID, leads.Resolution(resolution))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conflict %s resolved with %s\n", conflict.ID, conflict.Resolution)
			return nil
		},
	}
	resolve.Flags().StringVar(&conflictID, "id", "", "conflict id")
	resolve.Flags().StringVar(&resolution, "resolution", "", "accept_local or accept_remote")

	cmd.AddCommand(list, resolve)
	return cmd
}

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage encrypted EasyCars credentials",
	}
	set := &cobra.Command{
		Use:   "set",
		Short: "Encrypt and store the EasyCars account for a dealership",
		Long: `Encrypt the four secret fields with EASYCARS_ENCRYPTION_KEY under one fresh IV
and store them, replacing any existing credential for the dealership.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePositive("dealership", dealershipID); err != nil {
				return err
			}
			cred, err := encryptCredential()
			if err != nil {
				return err
			}
			saved, err := globalComponents.Credentials.Save(cmd.Context(), cred)
			if err != nil {
				return fmt.Errorf("store credential: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Credential %d stored for dealership %d (%s)\n", saved.ID, saved.DealershipID, saved.Environment)
			return nil
		},
	}
	set.Flags().Int64Var(&dealershipID, "dealership", 0, "dealership id")
	set.Flags().StringVar(&credClientID, "client-id", "", "EasyCars public id")
	set.Flags().StringVar(&credClientSecret, "client-secret", "", "EasyCars secret key")
	set.Flags().StringVar(&credAccountNumber, "account-number", "", "EasyCars account number")
	set.Flags().StringVar(&credAccountSecret, "account-secret", "", "EasyCars account secret")
	set.Flags().StringVar(&credEnvironment, "environment", string(domain.EnvironmentTest), "Test or Production")
	set.Flags().StringVar(&credYardCode, "yard", "", "optional yard code filter")
	set.Flags().BoolVar(&credInactive, "inactive", false, "store the credential as inactive")
	for _, name := range []string{"client-id", "client-secret", "account-number", "account-secret"} {
		_ = set.MarkFlagRequired(name)
	}
	cmd.AddCommand(set)
	return cmd
}

func encryptCredential() (domain.Credential, error) {
	enc := globalComponents.Encryptor
	clientID, iv, err := enc.Encrypt(credClientID, "")
	if err != nil {
		return domain.Credential{}, err
	}
	cred := domain.Credential{
		DealershipID: dealershipID,
		ClientIDEnc:  clientID,
		IV:           iv,
		Environment:  domain.ParseEnvironment(credEnvironment),
		YardCode:     strings.TrimSpace(credYardCode),
		Active:       !credInactive,
	}
	targets := map[*string]string{
		&cred.ClientSecretEnc:  credClientSecret,
		&cred.AccountNumberEnc: credAccountNumber,
		&cred.AccountSecretEnc: credAccountSecret,
	}
	for target, plain := range targets {
		if *target, _, err = enc.Encrypt(plain, iv); err != nil {
			return domain.Credential{}, err
		}
	}
	return cred, nil
}
