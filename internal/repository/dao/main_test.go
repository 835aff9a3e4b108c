package dao

import (
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB is a throwaway postgres spun up per test run. Tests skip when no
// docker daemon is reachable.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker unavailable, dao tests will be skipped: %v", err)
		os.Exit(m.Run())
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=nodes_test",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	_ = resource.Expire(180)

	pool.MaxWait = 2 * time.Minute
	if err := pool.Retry(func() error {
		dsn := fmt.Sprintf(
			"host=localhost port=%s user=test password=test dbname=nodes_test sslmode=disable",
			resource.GetPort("5432/tcp"),
		)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return err
		}

		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Ping(); err != nil {
			return err
		}

		testDB = db
		return nil
	}); err != nil {
		log.Fatalf("could not connect to postgres: %v", err)
	}

	if err := InitTables(testDB); err != nil {
		log.Fatalf("could not migrate tables: %v", err)
	}

	code := m.Run()

	if err := pool.Purge(resource); err != nil {
		log.Printf("could not purge postgres container: %v", err)
	}

	os.Exit(code)
}

func resetTables(t *testing.T) {
	t.Helper()

	if testDB == nil {
		t.Skip("docker is not available")
	}

	err := testDB.Exec(
		"TRUNCATE nodes, user_nodes, user_points, user_reward_activity, transactions RESTART IDENTITY",
	).Error
	require.NoError(t, err)
}

func seedPools(t *testing.T, active, reserved, inactive int, dailyReward *int) {
	t.Helper()

	for _, pool := range []NodePool{
		{Status: "active", TotalNodes: active, DailyReward: dailyReward},
		{Status: "reserved", TotalNodes: reserved},
		{Status: "inactive", TotalNodes: inactive},
	} {
		require.NoError(t, testDB.Create(&pool).Error)
	}
}

func poolTotals(t *testing.T) map[string]int {
	t.Helper()

	var pools []NodePool
	require.NoError(t, testDB.Order("node_id").Find(&pools).Error)

	totals := make(map[string]int, len(pools))
	for _, p := range pools {
		totals[p.Status] = p.TotalNodes
	}

	return totals
}
