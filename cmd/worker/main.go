package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/dealership-sync/internal/app/api"
	easycarsactivities "github.com/Apurer/dealership-sync/internal/durable/temporal/activities/easycars"
	easycarsworkflows "github.com/Apurer/dealership-sync/internal/durable/temporal/workflows/easycars"
	platformobservability "github.com/Apurer/dealership-sync/internal/platform/observability"
)

func main() {
	ctx := context.Background()
	const serviceName = "dealership-sync-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	components, cleanup, err := api.BuildComponents(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build easycars components", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()
	activities := easycarsactivities.NewActivities(components.Service)

	cfg.TemporalDisabled = false
	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, easycarsworkflows.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(easycarsworkflows.DealershipSyncWorkflow, workflow.RegisterOptions{Name: easycarsworkflows.DealershipSyncWorkflowName})
	w.RegisterWorkflowWithOptions(easycarsworkflows.LeadPushWorkflow, workflow.RegisterOptions{Name: easycarsworkflows.LeadPushWorkflowName})
	w.RegisterActivityWithOptions(activities.SyncStock, activity.RegisterOptions{Name: easycarsactivities.SyncStockActivityName})
	w.RegisterActivityWithOptions(activities.SyncLeadStatuses, activity.RegisterOptions{Name: easycarsactivities.SyncLeadStatusesActivityName})
	w.RegisterActivityWithOptions(activities.PushLead, activity.RegisterOptions{Name: easycarsactivities.PushLeadActivityName})

	logger.Info("worker listening", slog.String("taskQueue", easycarsworkflows.TaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
