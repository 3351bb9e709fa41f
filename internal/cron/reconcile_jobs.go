package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

const (
	ShopEarningsJobName   = "shop-earnings-reconcile"
	ProductRatingsJobName = "product-ratings-reconcile"
	ShopRatingsJobName    = "shop-ratings-reconcile"
)

type shopReconciler interface {
	ReconcileEarnings(ctx context.Context) (int64, error)
	ReconcileRatings(ctx context.Context) (int64, error)
}

type productReconciler interface {
	ReconcileRatings(ctx context.Context) (int64, error)
}

// reconcileJob rebuilds one denormalized aggregate from its source rows.
type reconcileJob struct {
	name string
	logg *logger.Logger
	run  func(ctx context.Context) (int64, error)
}

func (j *reconcileJob) Name() string { return j.name }

func (j *reconcileJob) Run(ctx context.Context) error {
	rows, err := j.run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", j.name, err)
	}
	j.logg.Info(j.logg.WithField(ctx, "rows_updated", rows), "reconcile complete")
	return nil
}

// ReconcileJobsParams names the repositories the reconcile jobs write through.
type ReconcileJobsParams struct {
	Logger   *logger.Logger
	Shops    shopReconciler
	Products productReconciler
}

// NewReconcileJobs returns the earnings and rating reconcile jobs in run order.
// Product ratings run before shop ratings so shop averages see fresh data.
func NewReconcileJobs(params ReconcileJobsParams) ([]Job, error) {
	if params.Shops == nil {
		return nil, fmt.Errorf("shops repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return []Job{
		&reconcileJob{name: ShopEarningsJobName, logg: logg, run: params.Shops.ReconcileEarnings},
		&reconcileJob{name: ProductRatingsJobName, logg: logg, run: params.Products.ReconcileRatings},
		&reconcileJob{name: ShopRatingsJobName, logg: logg, run: params.Shops.ReconcileRatings},
	}, nil
}
