// README: Entry point; loads config, wires services, starts HTTP server and background loops.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"velo/internal/ai"
	"velo/internal/config"
	"velo/internal/geo"
	httptransport "velo/internal/http"
	"velo/internal/infra"
	"velo/internal/maps"
	"velo/internal/modules/demand"
	"velo/internal/modules/pricing"
	"velo/internal/modules/supply"
	"velo/internal/modules/surge"
	"velo/internal/telemetry"
	"velo/internal/types"
)

// defaultZones are the market zones the background refresher publishes surge
// for. Static for now; zone management belongs to a backoffice that does not
// exist yet.
var defaultZones = []surge.Zone{
	{ID: "downtown", Name: "Downtown", Center: types.Point{Lat: 25.0340, Lng: 121.5645}, RadiusM: 3000},
	{ID: "station", Name: "Main Station", Center: types.Point{Lat: 25.0478, Lng: 121.5170}, RadiusM: 2000},
	{ID: "airport", Name: "Airport", Center: types.Point{Lat: 25.0797, Lng: 121.2342}, RadiusM: 5000},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	recorder := telemetry.NewRedisRecorder(redisClient)

	// Supply: sharded in-memory registry with a Redis GEO mirror and a
	// directory warm-up so the first quotes after a restart see real supply.
	registry := supply.NewRegistry()
	supplyStore := supply.NewStore(dbPool, redisClient)
	supplySvc := supply.NewService(registry, supplyStore, supply.Config{
		SweepInterval: time.Duration(cfg.Supply.SweepIntervalSec) * time.Second,
		EvictAfter:    time.Duration(cfg.Supply.EvictAfterSec) * time.Second,
		QueryMaxAge:   time.Duration(cfg.Supply.QueryMaxAgeSec) * time.Second,
	})
	if err := supplySvc.WarmFromDirectory(ctx); err != nil {
		log.Printf("supply warm-up failed, starting cold: %v", err)
	}

	demandSvc := demand.NewService(demand.NewStore(dbPool))

	surgeCfg := surge.DefaultConfig()
	surgeCfg.MinMultiplier = cfg.Surge.MinMultiplier
	surgeCfg.MaxMultiplier = cfg.Surge.MaxMultiplier
	if err := surgeCfg.Validate(); err != nil {
		log.Fatalf("surge config: %v", err)
	}
	zoneStore := surge.NewZoneStore(redisClient)
	surgeSvc := surge.NewService(surge.ServiceDeps{
		Supply:   supplySvc,
		Demand:   demandSvc,
		Zones:    zoneStore,
		Recorder: recorder,
	}, surgeCfg, cfg.Surge.ZoneMaxMultiplier, cfg.Surge.RadiusKm*1000, time.Duration(cfg.Surge.WindowMinutes)*time.Minute)

	var estimator maps.TravelEstimator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("maps init: %v", err)
		}
		estimator = routeSvc
	} else {
		log.Printf("VELO_MAPS_API_KEY not set, using haversine travel estimates")
		estimator = maps.StaticEstimator{Distance: geo.DistanceMeters}
	}

	rates, err := pricing.NewStore(dbPool).LoadRates(ctx)
	if err != nil {
		log.Printf("rates table unavailable, using compiled-in schedule: %v", err)
		rates = pricing.DefaultRates()
	}
	pricingSvc := pricing.NewService(estimator, surgeSvc, rates, pricing.Config{
		MinFareCents:    cfg.Pricing.MinFareCents,
		ServiceFeeCents: cfg.Pricing.ServiceFeeCents,
		Currency:        cfg.Pricing.Currency,
		RoutingTimeout:  time.Duration(cfg.Pricing.RoutingTimeoutMS) * time.Millisecond,
	})

	forecaster := surge.NewForecaster(surgeCfg)

	var insights ai.InsightProvider
	if cfg.AI.GeminiKey != "" {
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
		if err != nil {
			log.Printf("gemini init failed, market summaries disabled: %v", err)
		} else {
			defer provider.Close()
			insights = provider
		}
	}

	go supplySvc.RunSweeper(ctx)
	go surgeSvc.RunZoneRefresher(ctx, 2*time.Minute, defaultZones)
	if cfg.AMQP.URL != "" {
		go supply.NewIngress(cfg.AMQP.URL, supplySvc).Run(ctx)
	}

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:     pricingSvc,
		Surge:       surgeSvc,
		Supply:      supplySvc,
		Zones:       zoneStore,
		Forecaster:  forecaster,
		Insights:    insights,
		DefaultArea: defaultZones[0].Center,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("velo-api listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
