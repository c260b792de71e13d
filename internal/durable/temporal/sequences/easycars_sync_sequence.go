package sequences

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/dealership-sync/internal/domains/easycars/domain"
	easycarsactivities "github.com/Apurer/dealership-sync/internal/durable/temporal/activities/easycars"
)

func syncActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        4,
			NonRetryableErrorTypes: []string{easycarsactivities.ErrTypeSyncFailed},
		},
	}
}

func pushActivityOptions() workflow.ActivityOptions {
	return workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{easycarsactivities.ErrTypeSyncFailed},
		},
	}
}

// RunDealershipSyncSequence pulls stock and then reconciles lead statuses.
// A stock failure does not stop the lead-status step.
func RunDealershipSyncSequence(ctx workflow.Context, dealershipID int64) (stock, leadStatus *domain.SyncResult) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, syncActivityOptions())
	input := easycarsactivities.DealershipInput{DealershipID: dealershipID}

	stock = executeSync(ctx, easycarsactivities.SyncStockActivityName, input, dealershipID, domain.SyncTypeStock)
	logger.Info("dealership sync stock step finished", "dealershipId", dealershipID, "status", stock.Status)

	leadStatus = executeSync(ctx, easycarsactivities.SyncLeadStatusesActivityName, input, dealershipID, domain.SyncTypeLeadStatus)
	logger.Info("dealership sync lead status step finished", "dealershipId", dealershipID, "status", leadStatus.Status)
	return stock, leadStatus
}

// RunLeadPushSequence pushes one lead, retrying while EasyCars reports temporary failures.
func RunLeadPushSequence(ctx workflow.Context, leadID int64) (*domain.SyncResult, error) {
	logger := workflow.GetLogger(ctx)
	ctx = workflow.WithActivityOptions(ctx, pushActivityOptions())

	var result domain.SyncResult
	err := workflow.ExecuteActivity(ctx, easycarsactivities.PushLeadActivityName, easycarsactivities.LeadInput{LeadID: leadID}).Get(ctx, &result)
	if err != nil {
		logger.Error("lead push sequence failed", "leadId", leadID, "error", err)
		if last, ok := ResultFromError(err); ok {
			return last, err
		}
		return nil, err
	}
	logger.Info("lead push sequence finished", "leadId", leadID, "status", result.Status)
	return &result, nil
}

func executeSync(ctx workflow.Context, activityName string, input easycarsactivities.DealershipInput, dealershipID int64, syncType domain.SyncType) *domain.SyncResult {
	var result domain.SyncResult
	err := workflow.ExecuteActivity(ctx, activityName, input).Get(ctx, &result)
	if err == nil {
		return &result
	}
	workflow.GetLogger(ctx).Error("sync activity failed", "activity", activityName, "dealershipId", dealershipID, "error", err)
	if last, ok := ResultFromError(err); ok {
		return last
	}
	failed := domain.NewSyncResult(dealershipID, syncType)
	failed.Fail(err.Error())
	return failed
}

// ResultFromError recovers the SyncResult carried as application error details.
func ResultFromError(err error) (*domain.SyncResult, bool) {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || !appErr.HasDetails() {
		return nil, false
	}
	var result domain.SyncResult
	if detailsErr := appErr.Details(&result); detailsErr != nil {
		return nil, false
	}
	return &result, true
}
