package app

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zaivio/nodes-api/internal/api"
	"github.com/zaivio/nodes-api/internal/blockchain"
	"github.com/zaivio/nodes-api/internal/config"
	"github.com/zaivio/nodes-api/internal/db"
	"github.com/zaivio/nodes-api/internal/logger"
	"github.com/zaivio/nodes-api/internal/mail"
	"github.com/zaivio/nodes-api/internal/scheduler"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	var mailer mail.Mailer = mail.NoopMailer{}
	if conf.Mail.Host != "" {
		mailer = mail.NewSMTPMailer(conf.Mail)
	}

	var rail blockchain.TransferRail = unconfiguredRail{}
	if conf.Chain.RPCURL != "" {
		rail, err = blockchain.NewERC20Rail(conf.Chain)
		if err != nil {
			return fmt.Errorf("failed to initialize transfer rail -> %w", err)
		}
	} else {
		zap.L().Warn("no chain RPC configured, settlement will retry until one is")
	}

	s := api.NewServer(conf, postgresDB, rail, mailer)

	jobs := scheduler.New(s.Rewards, s.Redemptions, conf.Rewards.AccrualCron, conf.Rewards.SettlementEvery)
	if err = jobs.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler -> %w", err)
	}
	defer jobs.Stop()

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// unconfiguredRail keeps approved transactions pending until a chain RPC is
// configured.
type unconfiguredRail struct{}

func (unconfiguredRail) Transfer(context.Context, string, int) (blockchain.TransferResult, error) {
	return blockchain.TransferResult{}, fmt.Errorf("no chain RPC configured")
}
