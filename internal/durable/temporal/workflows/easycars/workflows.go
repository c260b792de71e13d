package easycars

import (
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	easycarsactivities "github.com/Apurer/dealership-sync/internal/durable/temporal/activities/easycars"
	"github.com/Apurer/dealership-sync/internal/durable/temporal/sequences"
)

const (
	// DealershipSyncWorkflowName is the public identifier for registering the full sync workflow.
	DealershipSyncWorkflowName = "easycars.workflows.DealershipSync"
	// LeadPushWorkflowName is the public identifier for registering the lead push workflow.
	LeadPushWorkflowName = "easycars.workflows.LeadPush"
	// TaskQueue is consumed by the worker processing EasyCars workflows.
	TaskQueue = "EASYCARS_SYNC"
)

type DealershipSyncWorkflowInput struct {
	DealershipID int64
	TraceID      string
}

// DealershipSyncWorkflowOutput carries both step results.
type DealershipSyncWorkflowOutput struct {
	Stock      *domain.SyncResult
	LeadStatus *domain.SyncResult
}

type LeadPushWorkflowInput struct {
	LeadID  int64
	TraceID string
}

// DealershipSyncWorkflow runs stock sync followed by lead-status sync for one dealership.
func DealershipSyncWorkflow(ctx workflow.Context, input DealershipSyncWorkflowInput) (*DealershipSyncWorkflowOutput, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("DealershipSyncWorkflow started", withTraceID(input.TraceID, "dealershipId", input.DealershipID)...)
	stock, leadStatus := sequences.RunDealershipSyncSequence(ctx, input.DealershipID)
	logger.Info("DealershipSyncWorkflow completed", withTraceID(input.TraceID,
		"dealershipId", input.DealershipID,
		"stockStatus", stock.Status,
		"leadStatus", leadStatus.Status,
	)...)
	return &DealershipSyncWorkflowOutput{Stock: stock, LeadStatus: leadStatus}, nil
}

// LeadPushWorkflow pushes a lead. Temporary failures are retried by the activity retry policy;
// any other failed run ends the workflow with a non-retryable error carrying the result.
func LeadPushWorkflow(ctx workflow.Context, input LeadPushWorkflowInput) (*domain.SyncResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("LeadPushWorkflow started", withTraceID(input.TraceID, "leadId", input.LeadID)...)
	result, err := sequences.RunLeadPushSequence(ctx, input.LeadID)
	if err != nil {
		logger.Error("LeadPushWorkflow failed", withTraceID(input.TraceID, "leadId", input.LeadID, "error", err)...)
		return nil, err
	}
	if result.Status == domain.SyncStatusFailed {
		logger.Error("LeadPushWorkflow failed", withTraceID(input.TraceID, "leadId", input.LeadID, "errors", result.Errors)...)
		return nil, temporal.NewNonRetryableApplicationError(easycarsactivities.Summary(result), easycarsactivities.ErrTypeSyncFailed, nil, result)
	}
	logger.Info("LeadPushWorkflow completed", withTraceID(input.TraceID, "leadId", input.LeadID, "leadNumber", result.LeadNumber)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
