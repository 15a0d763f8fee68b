package main

import (
	"context"
	"log"
	"time"

	"github.com/agusmuss/Ecom-Next/config"
	"github.com/agusmuss/Ecom-Next/controllers"
	"github.com/agusmuss/Ecom-Next/database"
	"github.com/agusmuss/Ecom-Next/kafka"
	aws_pkg "github.com/agusmuss/Ecom-Next/pkg/aws"
	"github.com/agusmuss/Ecom-Next/repository"
	"github.com/agusmuss/Ecom-Next/routes"
	"github.com/agusmuss/Ecom-Next/services"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	var logger *zap.Logger
	if cfg.Env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	mongoClient, db, err := database.ConnectMongo(cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.DisconnectMongo(mongoClient); err != nil {
			logger.Warn("Mongo disconnect failed", zap.Error(err))
		}
	}()

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	store := repository.NewMongoStore(mongoClient, db)
	if err := store.EnsureIndexes(context.Background()); err != nil {
		logger.Warn("Failed to ensure indexes", zap.Error(err))
	}

	var awsCfg sdkaws.Config
	if cfg.S3Bucket != "" || cfg.EventBus == "sns" {
		awsCfg, err = aws_pkg.LoadAWSConfig(context.Background())
		if err != nil {
			logger.Fatal("Failed to load AWS config", zap.Error(err))
		}
	}

	var publisher services.Publisher
	switch cfg.EventBus {
	case "kafka":
		producer := kafka.NewOrderEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer producer.Close()
		publisher = producer
	default:
		publisher = services.NewSNSPublisher(aws_pkg.NewSNSClient(awsCfg), cfg.OrderTopicARN)
	}

	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	cartRepo := database.NewCartRepository(redisClient, time.Duration(cfg.CartTTLHours)*time.Hour)

	productSvc := services.NewProductService(store, stripeSvc, awsCfg, cfg.S3Bucket, logger)
	checkoutSvc := services.NewCheckoutService(cartRepo, store, stripeSvc, cfg.AppURL, logger)
	reconciler := services.NewOrderReconciler(store, logger)

	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Controllers{
		Products: &controllers.ProductController{Service: productSvc, Logger: logger},
		Cart:     &controllers.CartController{Repo: cartRepo, Logger: logger},
		Checkout: &controllers.CheckoutController{Service: checkoutSvc, Logger: logger},
		Orders:   &controllers.OrderController{Repo: store, Logger: logger},
		Webhook: &controllers.WebhookController{
			Stripe:     stripeSvc,
			Reconciler: reconciler,
			Publisher:  publisher,
			Logger:     logger,
		},
	}, cfg.JWTSecret)

	logger.Info("Storefront backend running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
