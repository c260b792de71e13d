package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	"github.com/Apurer/dealership-sync/internal/domains/easycars/ports"
	"github.com/Apurer/dealership-sync/internal/durable/temporal/sequences"
	easycarsworkflows "github.com/Apurer/dealership-sync/internal/durable/temporal/workflows/easycars"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalSyncWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineSyncWorkflows)(nil)
)

// TemporalSyncWorkflows starts EasyCars workflows on a Temporal cluster.
type TemporalSyncWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSyncWorkflows wires a Temporal client into the orchestrator.
func NewTemporalSyncWorkflows(c client.Client) *TemporalSyncWorkflows {
	return &TemporalSyncWorkflows{client: c, taskQueue: easycarsworkflows.TaskQueue}
}

// SyncDealership starts the full sync workflow and waits for both steps.
func (o *TemporalSyncWorkflows) SyncDealership(ctx context.Context, dealershipID int64) (*ports.DealershipSyncResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal sync workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	options := client.StartWorkflowOptions{
		ID:        fmt.Sprintf("easycars-dealership-sync-%d-%s", dealershipID, traceComponent),
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, easycarsworkflows.DealershipSyncWorkflow,
		easycarsworkflows.DealershipSyncWorkflowInput{DealershipID: dealershipID, TraceID: traceComponent})
	if err != nil {
		return nil, err
	}
	var out easycarsworkflows.DealershipSyncWorkflowOutput
	if err := run.Get(ctx, &out); err != nil {
		return nil, err
	}
	return &ports.DealershipSyncResult{Stock: out.Stock, LeadStatus: out.LeadStatus, WorkflowID: run.GetID()}, nil
}

// PushLead starts the lead push workflow. Concurrent pushes of one lead join the running workflow.
// A failed run is returned as a result rather than an error when the workflow carried it.
func (o *TemporalSyncWorkflows) PushLead(ctx context.Context, leadID int64) (*domain.SyncResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal sync workflows not configured")
	}
	workflowID := fmt.Sprintf("easycars-lead-push-%d", leadID)
	options := client.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                o.taskQueue,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}
	run, err := o.client.ExecuteWorkflow(ctx, options, easycarsworkflows.LeadPushWorkflow,
		easycarsworkflows.LeadPushWorkflowInput{LeadID: leadID, TraceID: workflowTraceID(ctx)})
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return nil, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result domain.SyncResult
	if err := run.Get(ctx, &result); err != nil {
		if carried, ok := sequences.ResultFromError(err); ok {
			return carried, nil
		}
		return nil, err
	}
	return &result, nil
}

// InlineSyncWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineSyncWorkflows struct {
	service ports.Service
}

// NewInlineSyncWorkflows wraps the sync service for synchronous execution.
func NewInlineSyncWorkflows(service ports.Service) *InlineSyncWorkflows {
	return &InlineSyncWorkflows{service: service}
}

// SyncDealership runs stock then lead-status sync in the caller's goroutine.
func (o *InlineSyncWorkflows) SyncDealership(ctx context.Context, dealershipID int64) (*ports.DealershipSyncResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline sync workflows not configured")
	}
	stock := o.service.SyncStock(ctx, dealershipID)
	leadStatus := o.service.SyncLeadStatuses(ctx, dealershipID)
	return &ports.DealershipSyncResult{Stock: stock, LeadStatus: leadStatus}, nil
}

// PushLead delegates to the service once, without retries.
func (o *InlineSyncWorkflows) PushLead(ctx context.Context, leadID int64) (*domain.SyncResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline sync workflows not configured")
	}
	return o.service.PushLead(ctx, leadID), nil
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
