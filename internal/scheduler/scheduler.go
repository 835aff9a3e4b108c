package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// AccrualRunner runs one daily reward cycle.
type AccrualRunner interface {
	RunDailyAccrual(ctx context.Context) (int, error)
}

// Settler pushes approved redemptions onto the chain.
type Settler interface {
	SettleApproved(ctx context.Context) (int, error)
}

// Scheduler owns the two background jobs: the daily accrual and the
// settlement sweep. Job panics are logged and do not kill the process.
type Scheduler struct {
	cron        *cron.Cron
	rewards     AccrualRunner
	redemptions Settler

	accrualSpec    string
	settlementSpec string
}

func New(rewards AccrualRunner, redemptions Settler, accrualSpec, settlementSpec string) *Scheduler {
	if accrualSpec == "" {
		accrualSpec = "0 0 * * *"
	}
	if settlementSpec == "" {
		settlementSpec = "@every 10m"
	}

	return &Scheduler{
		cron:           cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
		rewards:        rewards,
		redemptions:    redemptions,
		accrualSpec:    accrualSpec,
		settlementSpec: settlementSpec,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.accrualSpec, s.runAccrual); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc(s.settlementSpec, s.runSettlement); err != nil {
		return err
	}

	s.cron.Start()

	zap.L().Info("scheduler started",
		zap.String("accrual", s.accrualSpec),
		zap.String("settlement", s.settlementSpec))

	return nil
}

// Stop halts scheduling and returns a context that closes when running jobs
// have finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runAccrual() {
	credited, err := s.rewards.RunDailyAccrual(context.Background())
	if err != nil {
		zap.L().Error("daily accrual failed", zap.Error(err))

		return
	}

	zap.L().Info("daily accrual finished", zap.Int("users_credited", credited))
}

func (s *Scheduler) runSettlement() {
	settled, err := s.redemptions.SettleApproved(context.Background())
	if err != nil {
		zap.L().Error("settlement sweep failed", zap.Error(err))

		return
	}

	if settled > 0 {
		zap.L().Info("settlement sweep finished", zap.Int("settled", settled))
	}
}
