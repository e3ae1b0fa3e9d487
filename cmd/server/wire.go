package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"

	"regionx/internal/chain"
	"regionx/internal/currency"
	currencyhandler "regionx/internal/currency/handler"
	"regionx/internal/currency/store/account"
	"regionx/internal/ismp"
	ismphandler "regionx/internal/ismp/handler"
	ismpkafka "regionx/internal/ismp/kafka"
	jwttoken "regionx/internal/jwt_token"
	"regionx/internal/keeper"
	markethandler "regionx/internal/market/handler"
	marketmetrics "regionx/internal/market/metrics"
	marketservice "regionx/internal/market/service"
	"regionx/internal/market/store/listing"
	ordershandler "regionx/internal/orders/handler"
	ordermetrics "regionx/internal/orders/metrics"
	orderservice "regionx/internal/orders/service"
	"regionx/internal/orders/store/contribution"
	"regionx/internal/orders/store/order"
	"regionx/internal/platform/config"
	platformkafka "regionx/internal/platform/kafka"
	"regionx/internal/platform/kafka/consumer"
	"regionx/internal/platform/kafka/producer"
	"regionx/internal/platform/metrics"
	"regionx/internal/platform/postgres"
	platformredis "regionx/internal/platform/redis"
	"regionx/internal/processor/assigner"
	processorhandler "regionx/internal/processor/handler"
	processormetrics "regionx/internal/processor/metrics"
	processorservice "regionx/internal/processor/service"
	"regionx/internal/processor/store/assignment"
	ratelimitmetrics "regionx/internal/ratelimit/metrics"
	ratelimit "regionx/internal/ratelimit/middleware"
	ratelimitmodels "regionx/internal/ratelimit/models"
	"regionx/internal/ratelimit/store/bucket"
	regionhandler "regionx/internal/regions/handler"
	"regionx/internal/regions/ismpmodule"
	regionmetrics "regionx/internal/regions/metrics"
	regionservice "regionx/internal/regions/service"
	"regionx/internal/regions/store/region"
	httptransport "regionx/internal/transport/http"
	"regionx/pkg/domain"
	"regionx/pkg/platform/events"
	eventstore "regionx/pkg/platform/events/store/postgres"
	"regionx/pkg/platform/events/worker"
	"regionx/pkg/platform/tx"
)

type job func(ctx context.Context) error

type app struct {
	router  http.Handler
	jobs    map[string]job
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type storage struct {
	regions       regionservice.Store
	listings      marketservice.Store
	orders        orderservice.OrderStore
	contributions orderservice.ContributionStore
	assignments   processorservice.Store
	accounts      currency.Store
	runner        tx.Runner
	db            *sql.DB
}

func openStorage(ctx context.Context, cfg config.Storage, log *slog.Logger) (*storage, error) {
	if cfg.Driver == "memory" {
		return &storage{
			regions:       region.NewInMemory(),
			listings:      listing.NewInMemory(),
			orders:        order.NewInMemory(),
			contributions: contribution.NewInMemory(),
			assignments:   assignment.NewInMemory(),
			accounts:      account.NewInMemory(),
			runner:        tx.NewMemoryRunner(),
		}, nil
	}
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("database migrated")
	}
	return &storage{
		regions:       region.NewPostgres(db),
		listings:      listing.NewPostgres(db),
		orders:        order.NewPostgres(db),
		contributions: contribution.NewPostgres(db),
		assignments:   assignment.NewPostgres(db),
		accounts:      account.NewPostgres(db),
		runner:        tx.NewSQLRunner(db),
		db:            db,
	}, nil
}

// transport is the cross-chain side: how record requests leave, where
// heights come from and how assignment calls are sent.
type transport struct {
	dispatcher ismp.Dispatcher
	heights    ismp.HeightProvider
	setter     ismphandler.HeightSetter
	sender     assigner.RemoteSender
	producer   *producer.Producer
	kafka      *ismpkafka.Heights
	host       *ismp.Host
}

func openTransport(ctx context.Context, cfg config.Config, source ismp.StateMachine, rdb *platformredis.Client) (*transport, error) {
	if !cfg.Kafka.Enabled() {
		host := ismp.NewHost(source)
		return &transport{dispatcher: host, heights: host, setter: host, sender: assigner.NewRecorder(), host: host}, nil
	}
	k := cfg.Kafka
	p, err := producer.New(producer.Config{Brokers: k.Brokers, ClientID: k.ClientID, Timeout: k.ProduceTimeout})
	if err != nil {
		return nil, err
	}
	if err := platformkafka.EnsureTopics(ctx, p.Client(), k.Partitions, k.Replication,
		k.RequestTopic, k.ResponseTopic, k.TimeoutTopic, k.HeightTopic, k.CallTopic, k.EventTopic,
	); err != nil {
		p.Close()
		return nil, err
	}
	var nonces ismpkafka.NonceSource = &ismpkafka.MemoryNonces{}
	if rdb != nil {
		nonces = ismpkafka.NewRedisNonces(rdb.Client, "")
	}
	dispatcher, err := ismpkafka.NewDispatcher(p, nonces, source, k.RequestTopic)
	if err != nil {
		p.Close()
		return nil, err
	}
	sender, err := assigner.NewKafkaSender(p, k.CallTopic)
	if err != nil {
		p.Close()
		return nil, err
	}
	heights := ismpkafka.NewHeights()
	return &transport{dispatcher: dispatcher, heights: heights, setter: heights, sender: sender, producer: p, kafka: heights}, nil
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{jobs: make(map[string]job)}
	ok := false
	defer func() {
		if !ok {
			a.close()
		}
	}()
	health := map[string]httptransport.HealthCheck{}
	reg := metrics.New()

	source, err := ismp.ParseStateMachine(cfg.ISMP.Source)
	if err != nil {
		return nil, fmt.Errorf("REGIONX_ISMP_SOURCE: %w", err)
	}
	coretime, err := ismp.ParseStateMachine(cfg.ISMP.CoretimeChain)
	if err != nil {
		return nil, fmt.Errorf("REGIONX_ISMP_CORETIME_CHAIN: %w", err)
	}
	treasury, err := domain.ParseAccountID(cfg.Orders.Treasury)
	if err != nil {
		return nil, fmt.Errorf("REGIONX_TREASURY_ACCOUNT: %w", err)
	}
	payer := treasury
	if cfg.Keeper.Payer != "" {
		if payer, err = domain.ParseAccountID(cfg.Keeper.Payer); err != nil {
			return nil, fmt.Errorf("REGIONX_KEEPER_PAYER: %w", err)
		}
	}

	st, err := openStorage(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	if st.db != nil {
		a.closers = append(a.closers, func() { st.db.Close() })
		health["postgres"] = st.db.PingContext
	}

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		a.closers = append(a.closers, func() { rdb.Close() })
		health["redis"] = rdb.Health
	}

	// Relay chain clock.
	var cache chain.BlockCache = chain.NewMemoryCache()
	if rdb != nil {
		cache = chain.NewRedisCache(rdb.Client)
	}
	if cfg.Chain.GenesisBlock > 0 {
		if err := cache.Advance(ctx, cfg.Chain.GenesisBlock); err != nil {
			return nil, err
		}
	}
	if cfg.Chain.RPCURL != "" {
		poller := chain.NewPoller(chain.NewRPCClient(cfg.Chain.RPCURL, cfg.Chain.RPCTimeout), cache, log)
		a.jobs["relay-poller"] = func(ctx context.Context) error { return poller.Run(ctx, cfg.Chain.PollSchedule) }
	}
	clock, err := chain.NewClock(chain.NewCachedBlocks(cache), cfg.Chain.TimeslicePeriod)
	if err != nil {
		return nil, err
	}

	tr, err := openTransport(ctx, cfg, source, rdb)
	if err != nil {
		return nil, err
	}
	if tr.producer != nil {
		a.closers = append(a.closers, tr.producer.Close)
		health["kafka"] = tr.producer.Ping
	}

	var publisher events.Publisher = events.Nop{}
	if st.db != nil && tr.producer != nil {
		outbox := eventstore.New(st.db)
		publisher = outbox
		relay := worker.NewWorker(outbox, producer.NewTopicSink(tr.producer, cfg.Kafka.EventTopic), cfg.Kafka.OutboxInterval, log)
		a.jobs["outbox-relay"] = relay.Run
	}

	ledger := currency.NewLedger(domain.Balance(cfg.Orders.ExistentialDeposit), currency.WithStore(st.accounts))

	regions, err := regionservice.New(st.regions, st.runner, tr.dispatcher, tr.heights, clock,
		regionservice.Config{CoretimeChain: coretime, Timeout: cfg.ISMP.Timeout, ModuleID: []byte(cfg.ISMP.ModuleID)},
		regionservice.WithLogger(log),
		regionservice.WithPublisher(publisher),
		regionservice.WithMetrics(regionmetrics.New(reg)),
	)
	if err != nil {
		return nil, err
	}
	module, err := ismpmodule.New(regions, st.runner,
		ismpmodule.WithLogger(log),
		ismpmodule.WithTracer(otel.Tracer("regionx/regions/ismpmodule")),
	)
	if err != nil {
		return nil, err
	}
	var relayer ismp.Relayer = ismp.DirectRelay{Module: module}
	if tr.host != nil {
		tr.host.Register(module)
		relayer = tr.host
	} else {
		router := consumer.NewRouter(log)
		ismpkafka.Register(router, ismpkafka.Topics{
			Requests:  cfg.Kafka.RequestTopic,
			Responses: cfg.Kafka.ResponseTopic,
			Timeouts:  cfg.Kafka.TimeoutTopic,
			Heights:   cfg.Kafka.HeightTopic,
		}, module, tr.kafka)
		c, err := consumer.New(consumer.Config{Brokers: cfg.Kafka.Brokers, GroupID: cfg.Kafka.GroupID, Topics: router.Topics()}, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, c.Close)
		a.jobs["ismp-consumer"] = func(ctx context.Context) error { return c.Run(ctx, router) }
	}

	market, err := marketservice.New(st.listings, regions, ledger, clock, st.runner,
		marketservice.WithLogger(log),
		marketservice.WithPublisher(publisher),
		marketservice.WithMetrics(marketmetrics.New(reg)),
	)
	if err != nil {
		return nil, err
	}
	if err := market.SyncMetrics(ctx); err != nil {
		log.Warn("failed to sync market metrics", "error", err)
	}

	fees, err := orderservice.NewTreasuryFeeHandler(ledger, treasury)
	if err != nil {
		return nil, err
	}
	orders, err := orderservice.New(st.orders, st.contributions, ledger, fees, clock, st.runner,
		orderservice.Config{
			CreationCost:        domain.Balance(cfg.Orders.CreationCost),
			MinimumContribution: domain.Balance(cfg.Orders.MinimumContribution),
		},
		orderservice.WithLogger(log),
		orderservice.WithPublisher(publisher),
		orderservice.WithMetrics(ordermetrics.New(reg)),
	)
	if err != nil {
		return nil, err
	}

	assign, err := assigner.New(tr.sender, assigner.Config{
		CoretimeParaID: domain.ParaID(cfg.Processor.CoretimeParaID),
		WeightToFee:    assigner.WeightToFee{Numerator: cfg.Processor.FeeNumerator, Denominator: cfg.Processor.FeeDenominator},
		FeeBuffer:      domain.Balance(cfg.Processor.FeeBuffer),
	})
	if err != nil {
		return nil, err
	}
	processor, err := processorservice.New(regions, orders, ledger, assign, st.assignments, st.runner,
		processorservice.WithLogger(log),
		processorservice.WithPublisher(publisher),
		processorservice.WithMetrics(processormetrics.New(reg)),
		processorservice.WithTracer(otel.Tracer("regionx/processor")),
	)
	if err != nil {
		return nil, err
	}

	keeperOpts := []keeper.Option{keeper.WithLogger(log)}
	if rdb != nil {
		keeperOpts = append(keeperOpts, keeper.WithLease(keeper.NewRedisLease(rdb.Client, ""), cfg.Keeper.LeaseTTL))
	}
	k, err := keeper.New(processor, regions, payer, keeperOpts...)
	if err != nil {
		return nil, err
	}
	a.jobs["keeper"] = func(ctx context.Context) error { return k.Run(ctx, cfg.Keeper.Schedule) }

	var buckets ratelimit.BucketStore
	if rdb != nil {
		buckets = bucket.NewRedis(rdb.Client)
	}
	limiter := ratelimit.New(buckets,
		ratelimitmodels.Limit{Requests: cfg.RateLimit.ReadsPerMinute, Window: time.Minute},
		ratelimitmodels.Limit{Requests: cfg.RateLimit.WritesPerMinute, Window: time.Minute},
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimitmetrics.New(reg)),
	)

	jwt := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer))
	a.router = httptransport.NewRouter(httptransport.Options{
		Logger:         log,
		Metrics:        reg,
		RequestTimeout: cfg.Server.RequestTimeout,
		Health:         health,
		RateLimit:      limiter.Handler,
	},
		regionhandler.New(regions, log, jwt, cfg.Server.AdminToken),
		markethandler.New(market, log, jwt),
		ordershandler.New(orders, log, jwt),
		processorhandler.New(processor, log, jwt),
		currencyhandler.New(ledger, st.runner, log, cfg.Server.AdminToken),
		ismphandler.New(relayer, tr.setter, log, cfg.Server.AdminToken),
	)
	if cfg.Server.AdminToken == "" {
		log.Warn("REGIONX_ADMIN_TOKEN is empty; operator and relayer routes reject every request")
	}
	ok = true
	return a, nil
}
