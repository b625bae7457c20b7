package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/base/log"
	bValidator "github.com/neonmarket/goapi/base/validator"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/event"
	"github.com/neonmarket/goapi/domain/payment"
	"github.com/neonmarket/goapi/domain/registry"
	mmiddleware "github.com/neonmarket/goapi/middleware"
	"github.com/neonmarket/goapi/service/chain"
	"github.com/neonmarket/goapi/service/chain/contract"
	"github.com/neonmarket/goapi/service/payment/mempayment"
	"github.com/neonmarket/goapi/service/registry/memregistry"
	auction_delivery "github.com/neonmarket/goapi/stores/auction/delivery/http"
	auction_usecase "github.com/neonmarket/goapi/stores/auction/usecase"
	event_delivery "github.com/neonmarket/goapi/stores/event/delivery/http"
	event_repository "github.com/neonmarket/goapi/stores/event/repository"
	ledger_delivery "github.com/neonmarket/goapi/stores/ledger/delivery/http"
	ledger_usecase "github.com/neonmarket/goapi/stores/ledger/usecase"
	market_delivery "github.com/neonmarket/goapi/stores/market/delivery/http"
	market_repository "github.com/neonmarket/goapi/stores/market/repository"
	market_usecase "github.com/neonmarket/goapi/stores/market/usecase"
)

func init() {
	viper.SetConfigType("yaml")
	viper.SetConfigFile(`infra/configs/config.yaml`)
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func main() {
	context := ctx.Background()

	e := echo.New()
	e.Use(middleware.RequestID())
	e.Validator = bValidator.NewCustomValidator(validator.New())

	middL := mmiddleware.InitMiddleware()
	e.Use(middL.CORS)
	e.Use(middL.AddContext())
	e.Use(middL.ResponseLogger())

	clk := clock.New()
	store := market_repository.NewStateStore()

	var recorder event.Recorder = event_repository.NewMemoryRecorder()
	var mongoRecorder *event_repository.MongoRecorder
	if uri := viper.GetString("mongo.uri"); uri != "" {
		connectCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
		defer cancel()
		mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
		if err != nil {
			log.Log().WithField("err", err).Panic("failed to connect mongo")
		}
		if err := mongoClient.Ping(connectCtx, nil); err != nil {
			log.Log().WithField("err", err).Panic("failed to ping mongo")
		}
		mongoRecorder = event_repository.NewMongoRecorder(mongoClient.Database(viper.GetString("mongo.database")))
		recorder = mongoRecorder
	}

	var (
		reg    registry.Registry
		sender payment.Sender
		self   domain.Address
	)
	if rpcUrl := viper.GetString("chain.rpcUrl"); rpcUrl != "" {
		chainClient, err := chain.NewClient(context, &chain.ClientCfg{
			RpcUrl:     rpcUrl,
			ChainId:    viper.GetInt64("chain.chainId"),
			PrivateKey: viper.GetString("chain.privateKey"),
		})
		if err != nil {
			log.Log().WithField("err", err).Panic("failed to create chain client")
		}
		reg = contract.NewErc721(chainClient)
		sender = chain.NewNativeSender(chainClient)
		self = domain.Address(chainClient.Self().String()).ToLower()
	} else {
		// local development mode with in-process doubles
		reg = memregistry.New()
		sender = mempayment.New()
		self = domain.Address(viper.GetString("marketplace.address")).ToLower()
	}

	auctionUC := auction_usecase.New(&auction_usecase.AuctionUseCaseCfg{
		Store:    store,
		Registry: reg,
		Events:   recorder,
		Clock:    clk,
		Self:     self,
	})
	ledgerUC := ledger_usecase.New(&ledger_usecase.LedgerUseCaseCfg{
		Store:  store,
		Sender: sender,
		Events: recorder,
		Clock:  clk,
	})
	configUC := market_usecase.New(&market_usecase.ConfigUseCaseCfg{
		Store:  store,
		Events: recorder,
		Clock:  clk,
	})

	// the in-memory ledger starts empty on every boot, so bootstrap the
	// platform owner and fee from config
	if owner := viper.GetString("marketplace.owner"); owner != "" {
		feeBps := viper.GetUint64("marketplace.initialFeeBps")
		if err := configUC.Initialize(context, domain.Address(owner), feeBps); err != nil {
			log.Log().WithField("err", err).Panic("failed to initialize marketplace")
		}
	}

	market_delivery.New(e, configUC)
	auction_delivery.New(e, auctionUC)
	ledger_delivery.New(e, ledgerUC)
	if mongoRecorder != nil {
		event_delivery.New(e, mongoRecorder)
	}

	e.GET("/check", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok"})
	})

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	// Use a buffered channel to avoid missing signals as recommended for signal.Notify
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	shutdownCtx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
