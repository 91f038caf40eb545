package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/handlers"
	"go.uber.org/zap"

	"github.com/brickvest/brickvest/internal/audit"
	"github.com/brickvest/brickvest/internal/auth"
	"github.com/brickvest/brickvest/internal/config"
	"github.com/brickvest/brickvest/internal/httpapi"
	"github.com/brickvest/brickvest/internal/invest"
	"github.com/brickvest/brickvest/internal/ledger"
	"github.com/brickvest/brickvest/internal/photos"
	"github.com/brickvest/brickvest/internal/property"
	"github.com/brickvest/brickvest/pkg/store/dynamodb"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	ctx := context.Background()

	db, err := dynamodb.NewDynamoDBStore(dynamodb.DynamoDBConfig{
		Region:    cfg.Region,
		TableName: cfg.TableName,
		Endpoint:  cfg.Endpoint,
	})
	if err != nil {
		logger.Fatal("failed to create store", zap.Error(err))
	}
	if err := db.Initialize(ctx); err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer db.Close()

	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		immu := audit.NewImmuRecorder(audit.ImmuConfig{
			Address:  cfg.Audit.Address,
			Port:     cfg.Audit.Port,
			Username: cfg.Audit.Username,
			Password: cfg.Audit.Password,
			Database: cfg.Audit.Database,
		})
		if err := immu.Open(ctx); err != nil {
			logger.Warn("audit trail unavailable, continuing without it", zap.Error(err))
		} else {
			recorder = immu
			defer immu.Close(ctx)
		}
	}

	objects, err := photos.NewS3Store(ctx, cfg.Region, cfg.PhotoBucket, cfg.PhotoBaseURL)
	if err != nil {
		logger.Fatal("failed to create object store", zap.Error(err))
	}

	properties := property.NewRepository(db)
	engine := property.NewEngine(properties, logger)
	investments := ledger.NewInvestments(db, logger)
	transactions := ledger.NewTransactions(db, logger)
	investSvc := invest.NewService(db, properties, investments, transactions, recorder, int32(cfg.PortfolioPageSize), logger)
	photoSvc := photos.NewService(objects, properties, objects.BaseURL(), logger)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	server := httpapi.NewServer(engine, investSvc, photoSvc, verifier, logger)

	handler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(server.Router())
	handler = handlers.ProxyHeaders(handler)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("starting server", zap.String("addr", addr), zap.String("table", cfg.TableName))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
