package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/arcadialabs/landgrid-backend/pkg/db/models"
	"github.com/arcadialabs/landgrid-backend/pkg/logger"
)

type campaignCloseRepo interface {
	ListExpiredActiveCampaigns(ctx context.Context, now time.Time) ([]models.ExpansionCampaign, error)
}

type campaignCloser interface {
	CloseCampaign(ctx context.Context, campaignID uuid.UUID) (*models.ExpansionCampaign, error)
}

type CampaignCloseJobParams struct {
	Logger     *logger.Logger
	Repository campaignCloseRepo
	Closer     campaignCloser
}

// NewCampaignCloseJob builds the job that retires expansion campaigns whose
// sale window has ended. Closing goes through the regions service so the
// region flips out of minting and the campaign.closed event is emitted.
func NewCampaignCloseJob(params CampaignCloseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("campaign repository required")
	}
	if params.Closer == nil {
		return nil, fmt.Errorf("campaign closer required")
	}
	return &campaignCloseJob{
		logg:   params.Logger,
		repo:   params.Repository,
		closer: params.Closer,
		now:    time.Now,
	}, nil
}

type campaignCloseJob struct {
	logg   *logger.Logger
	repo   campaignCloseRepo
	closer campaignCloser
	now    func() time.Time
}

func (j *campaignCloseJob) Name() string { return "campaign-close" }

func (j *campaignCloseJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	expired, err := j.repo.ListExpiredActiveCampaigns(ctx, now)
	if err != nil {
		return fmt.Errorf("list expired campaigns: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	var closed int
	var failures error
	for _, campaign := range expired {
		if _, closeErr := j.closer.CloseCampaign(ctx, campaign.ID); closeErr != nil {
			failures = multierr.Append(failures, fmt.Errorf("close campaign %s: %w", campaign.ID, closeErr))
			continue
		}
		closed++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"expired": len(expired),
		"closed":  closed,
	})
	j.logg.Info(logCtx, "expired campaign sweep complete")
	return failures
}
