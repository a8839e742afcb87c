package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/foliohq/nft-gateway/internal/adapter"
	"github.com/foliohq/nft-gateway/internal/aggregator"
	"github.com/foliohq/nft-gateway/internal/api/rest"
	"github.com/foliohq/nft-gateway/internal/api/server"
	"github.com/foliohq/nft-gateway/internal/cache"
	"github.com/foliohq/nft-gateway/internal/config"
	"github.com/foliohq/nft-gateway/internal/logger"
	"github.com/foliohq/nft-gateway/internal/mediaproxy"
	"github.com/foliohq/nft-gateway/internal/providers/alchemy"
	"github.com/foliohq/nft-gateway/internal/providers/neynar"
	"github.com/foliohq/nft-gateway/internal/providers/zapper"
)

const serviceName = "nft-gateway"

func main() {
	var (
		configFile = flag.String("config", "", "path to config file")
		envPath    = flag.String("env", ".", "directory containing the .env file")
		port       = flag.Int("port", 0, "override the listen port")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile, *envPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		if cfg.StrictConfig {
			fmt.Fprintf(os.Stderr, "missing required configuration: %v\n", missing)
			os.Exit(2)
		}
	}

	if err := logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags:      map[string]string{"service": serviceName},
	}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Flush(2 * time.Second)

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logger.Warn("starting with missing upstream secrets; affected routes answer config_error",
			zap.Strings("missing", missing))
	}

	httpClient := adapter.NewHTTPClient(10*time.Second, 3)
	mediaHTTPClient := adapter.NewHTTPClient(cfg.Media.AttemptTimeout, 1)
	jsonAdapter := adapter.NewJSON()
	responseCache := cache.New()

	nftClient := alchemy.NewClient(httpClient, jsonAdapter, cfg.NFTProvider.APIKey)
	socialClient := neynar.NewClient(httpClient, jsonAdapter,
		cfg.SocialGraph.BaseURL, cfg.SocialGraph.APIKey,
		cfg.SocialGraph.AuthHeader, cfg.SocialGraph.AltHeader)
	portfolioClient := zapper.NewClient(httpClient, jsonAdapter,
		cfg.Portfolio.Endpoints, cfg.Portfolio.APIKey, cfg.Portfolio.AuthHeader)

	owners := aggregator.NewOwners(nftClient, responseCache, aggregator.OwnersConfig{
		Concurrency:  cfg.Fanout.Concurrency,
		Pause:        cfg.Fanout.Pause,
		CacheEnabled: cfg.Cache.OwnerNFTsEnabled,
		CacheTTL:     cfg.Cache.OwnerNFTsTTL,
	})
	friends := aggregator.NewFriends(nftClient, socialClient)
	profiles := aggregator.NewProfiles(socialClient, portfolioClient, responseCache, cfg.Cache.ProfileTTL)

	rewriter := mediaproxy.NewRewriter(cfg.Media.IPFSGateways, cfg.Media.ArweaveGateways)
	media := mediaproxy.New(mediaHTTPClient, rewriter, mediaproxy.Config{
		AttemptTimeout: cfg.Media.AttemptTimeout,
		MaxAttempts:    cfg.Media.MaxAttempts,
		MaxBodyBytes:   cfg.Media.MaxBodyBytes,
	})

	handler := rest.NewHandler(owners, friends, profiles, media, portfolioClient, httpClient,
		rest.HandlerOptions{
			ServiceName:         serviceName,
			RPCURL:              cfg.RPC.OptimismURL,
			StrictChains:        cfg.StrictChains,
			DefaultPageSize:     cfg.NFTProvider.DefaultPageSize,
			MaxPageSize:         cfg.NFTProvider.MaxPageSize,
			NFTKeyMissing:       cfg.NFTProvider.APIKey == "",
			SocialKeyMissing:    cfg.SocialGraph.APIKey == "",
			PortfolioKeyMissing: cfg.Portfolio.APIKey == "",
		})

	srv := server.New(cfg.Server, cfg.Debug, handler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error(err, zap.String("stage", "serve"))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error(err, zap.String("stage", "shutdown"))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
