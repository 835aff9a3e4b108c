package api

import (
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/zaivio/nodes-api/docs"
	v1 "github.com/zaivio/nodes-api/internal/api/handler/v1"
	"github.com/zaivio/nodes-api/internal/api/middleware"
	"github.com/zaivio/nodes-api/internal/blockchain"
	"github.com/zaivio/nodes-api/internal/config"
	"github.com/zaivio/nodes-api/internal/mail"
	"github.com/zaivio/nodes-api/internal/repository"
	"github.com/zaivio/nodes-api/internal/repository/dao"
	"github.com/zaivio/nodes-api/internal/service"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	Rewards     *service.RewardService
	Redemptions *service.RedemptionService
}

func NewServer(conf *config.AppConfig, db *gorm.DB, rail blockchain.TransferRail, mailer mail.Mailer) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config: conf,
		Router: engine,
	}

	s.MountMiddlewares()

	userRepo := repository.NewUserRepository(dao.NewUserDAO(db))
	nodeRepo := repository.NewNodeRepository(dao.NewNodeDAO(db))
	pointsRepo := repository.NewPointsRepository(dao.NewPointsDAO(db), dao.NewActivityDAO(db))
	txnRepo := repository.NewTransactionRepository(dao.NewTransactionDAO(db))
	walletRepo := repository.NewWalletRepository(dao.NewWalletDAO(db))

	userSvc := service.NewUserService(userRepo, nodeRepo, mailer, conf.API.BaseURL, conf.Rewards.SystemTotalNodes)
	authSvc := service.NewAuthService(userRepo, mailer, conf.API.BaseURL)
	nodeSvc := service.NewNodeService(nodeRepo, conf.Rewards.SystemTotalNodes)
	rewardSvc := service.NewRewardService(pointsRepo, nodeRepo, userRepo)
	redemptionSvc := service.NewRedemptionService(
		pointsRepo, txnRepo, walletRepo, userRepo, rail, mailer,
		conf.Rewards.PointsPerToken, conf.Rewards.RefundOnFailure,
	)
	walletSvc := service.NewWalletService(walletRepo)

	s.Rewards = rewardSvc
	s.Redemptions = redemptionSvc

	s.MountHandlers(
		v1.NewAuthHandler(conf.API, authSvc),
		v1.NewUserHandler(userSvc),
		v1.NewNodeHandler(nodeSvc, userSvc),
		v1.NewPointsHandler(rewardSvc, userSvc),
		v1.NewTransactionHandler(redemptionSvc, userSvc),
		v1.NewWalletHandler(walletSvc),
		v1.NewHealthcheckHandler(db),
	)

	return s
}

func (s *Server) MountMiddlewares() {
	// Logger and Recovery are needed unless we use gin.Default().
	s.Router.Use(gin.Logger())
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(
	authHandler *v1.AuthHandler,
	userHandler *v1.UserHandler,
	nodeHandler *v1.NodeHandler,
	pointsHandler *v1.PointsHandler,
	transactionHandler *v1.TransactionHandler,
	walletHandler *v1.WalletHandler,
	healthcheckHandler *v1.HealthcheckHandler,
) {
	const basePath = "/api/v1"

	auth := s.Router.Group(basePath)
	{
		auth.POST("/auth/login", authHandler.HandleLogin)
		auth.POST("/auth/forgot-password", authHandler.HandleForgotPassword)
		auth.POST("/auth/reset-password", authHandler.HandleResetPassword)
	}

	authenticated := s.Router.Group(basePath, middleware.NewAuthenticator(s.Config.API.JWTSigningKey).VerifyJWT())
	{
		authenticated.POST("/auth/change-password", authHandler.HandleChangePassword)

		authenticated.GET("/users", userHandler.HandleListUsers)
		authenticated.POST("/users", userHandler.HandleCreateUser)
		authenticated.POST("/users/bulk", userHandler.HandleBulkCreateUsers)
		authenticated.GET("/users/:userID", userHandler.HandleGetUser)
		authenticated.PATCH("/users/:userID", userHandler.HandleUpdateUser)
		authenticated.PUT("/users/:userID/status", userHandler.HandleSetUserStatus)

		authenticated.GET("/nodes", nodeHandler.HandleGetPools)
		authenticated.POST("/nodes", nodeHandler.HandleCreatePool)
		authenticated.POST("/nodes/reserved/adjust", nodeHandler.HandleAdjustReserved)
		authenticated.GET("/nodes/allocation", nodeHandler.HandleGetMyAllocation)
		authenticated.GET("/nodes/allocations", nodeHandler.HandleGetAllocations)
		authenticated.PUT("/nodes/allocations/:userID", nodeHandler.HandleSetAllocation)
		authenticated.DELETE("/nodes/allocations/:userID", nodeHandler.HandleDeleteAllocation)
		authenticated.PATCH("/nodes/:nodeID", nodeHandler.HandleUpdatePool)
		authenticated.DELETE("/nodes/:nodeID", nodeHandler.HandleDeletePool)

		authenticated.GET("/points", pointsHandler.HandleGetMyPoints)
		authenticated.GET("/points/all", pointsHandler.HandleListAllPoints)
		authenticated.GET("/points/activity", pointsHandler.HandleGetMyActivity)
		authenticated.POST("/points/accrual/run", pointsHandler.HandleRunAccrual)
		authenticated.GET("/points/:userID", pointsHandler.HandleGetUserPoints)
		authenticated.GET("/points/:userID/activity", pointsHandler.HandleGetUserActivity)
		authenticated.POST("/points/:userID/credit", pointsHandler.HandleCreditPoints)

		authenticated.POST("/transactions/redeem", transactionHandler.HandleRedeem)
		authenticated.GET("/transactions", transactionHandler.HandleListMyTransactions)
		authenticated.GET("/transactions/all", transactionHandler.HandleListAllTransactions)
		authenticated.POST("/transactions/approve", transactionHandler.HandleApproveTransactions)
		authenticated.POST("/transactions/settle", transactionHandler.HandleSettleApproved)

		authenticated.GET("/wallets", walletHandler.HandleGetMyWallet)
		authenticated.PUT("/wallets", walletHandler.HandleSaveWallet)
		authenticated.DELETE("/wallets", walletHandler.HandleDeleteWallet)
	}

	s.Router.GET("/", healthcheckHandler.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	docs.SwaggerInfo.Title = "Node Rewards API"
	docs.SwaggerInfo.Description = "Node subscription rewards and token redemption API."
	docs.SwaggerInfo.Version = "1.0"
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
