package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the whole service configuration, read from the environment.
type Config struct {
	Server    Server
	Storage   Storage
	Redis     Redis
	Kafka     Kafka
	Chain     Chain
	ISMP      ISMP
	Orders    Orders
	Processor Processor
	Keeper    Keeper
	RateLimit RateLimit
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string `env:"REGIONX_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"REGIONX_JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"REGIONX_JWT_ISSUER" envDefault:"regionx"`
	// AdminToken guards operator and relayer routes. Empty disables them.
	AdminToken      string        `env:"REGIONX_ADMIN_TOKEN"`
	RequestTimeout  time.Duration `env:"REGIONX_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"REGIONX_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	LogLevel        string        `env:"REGIONX_LOG_LEVEL" envDefault:"info"`
}

// Storage selects the persistence driver. "memory" keeps all state in process.
type Storage struct {
	Driver      string `env:"REGIONX_STORAGE_DRIVER" envDefault:"memory"`
	DatabaseURL string `env:"REGIONX_DATABASE_URL"`
	Migrate     bool   `env:"REGIONX_DATABASE_MIGRATE" envDefault:"true"`
}

// Redis is optional; an empty URL disables it.
type Redis struct {
	URL          string        `env:"REGIONX_REDIS_URL"`
	PoolSize     int           `env:"REGIONX_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REGIONX_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REGIONX_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REGIONX_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REGIONX_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka is optional; without brokers the in-process ISMP host and call
// recorder are used.
type Kafka struct {
	Brokers        []string      `env:"REGIONX_KAFKA_BROKERS" envSeparator:","`
	ClientID       string        `env:"REGIONX_KAFKA_CLIENT_ID" envDefault:"regionx"`
	GroupID        string        `env:"REGIONX_KAFKA_GROUP_ID" envDefault:"regionx"`
	RequestTopic   string        `env:"REGIONX_KAFKA_ISMP_REQUESTS" envDefault:"ismp.requests"`
	ResponseTopic  string        `env:"REGIONX_KAFKA_ISMP_RESPONSES" envDefault:"ismp.responses"`
	TimeoutTopic   string        `env:"REGIONX_KAFKA_ISMP_TIMEOUTS" envDefault:"ismp.timeouts"`
	HeightTopic    string        `env:"REGIONX_KAFKA_ISMP_HEIGHTS" envDefault:"ismp.heights"`
	CallTopic      string        `env:"REGIONX_KAFKA_REMOTE_CALLS" envDefault:"xcm.calls"`
	EventTopic     string        `env:"REGIONX_KAFKA_EVENTS" envDefault:"regionx.events"`
	Partitions     int32         `env:"REGIONX_KAFKA_PARTITIONS" envDefault:"3"`
	Replication    int16         `env:"REGIONX_KAFKA_REPLICATION" envDefault:"1"`
	ProduceTimeout time.Duration `env:"REGIONX_KAFKA_PRODUCE_TIMEOUT" envDefault:"10s"`
	OutboxInterval time.Duration `env:"REGIONX_OUTBOX_INTERVAL" envDefault:"2s"`
}

// Enabled reports whether brokers are configured.
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

// Chain configures the relay chain block source.
type Chain struct {
	RPCURL          string        `env:"REGIONX_RELAY_RPC_URL"`
	RPCTimeout      time.Duration `env:"REGIONX_RELAY_RPC_TIMEOUT" envDefault:"5s"`
	PollSchedule    string        `env:"REGIONX_RELAY_POLL_SCHEDULE" envDefault:"@every 6s"`
	TimeslicePeriod uint64        `env:"REGIONX_TIMESLICE_PERIOD" envDefault:"80"`
	// GenesisBlock seeds the block cache when no RPC endpoint is configured.
	GenesisBlock uint64 `env:"REGIONX_RELAY_GENESIS_BLOCK" envDefault:"0"`
}

// ISMP names the local and coretime state machines.
type ISMP struct {
	Source        string `env:"REGIONX_ISMP_SOURCE" envDefault:"KUSAMA-2000"`
	CoretimeChain string `env:"REGIONX_ISMP_CORETIME_CHAIN" envDefault:"KUSAMA-1005"`
	Timeout       uint64 `env:"REGIONX_ISMP_TIMEOUT_SECONDS" envDefault:"300"`
	ModuleID      string `env:"REGIONX_ISMP_MODULE_ID" envDefault:"regionx-regions"`
}

type Orders struct {
	CreationCost        uint64 `env:"REGIONX_ORDER_CREATION_COST" envDefault:"100"`
	MinimumContribution uint64 `env:"REGIONX_MINIMUM_CONTRIBUTION" envDefault:"10"`
	Treasury            string `env:"REGIONX_TREASURY_ACCOUNT" envDefault:"0x6d6f646c70792f74727372790000000000000000000000000000000000000000"`
	ExistentialDeposit  uint64 `env:"REGIONX_EXISTENTIAL_DEPOSIT" envDefault:"1"`
}

type Processor struct {
	CoretimeParaID uint32 `env:"REGIONX_CORETIME_PARA_ID" envDefault:"1005"`
	FeeNumerator   uint64 `env:"REGIONX_WEIGHT_FEE_NUMERATOR" envDefault:"100000000"`
	FeeDenominator uint64 `env:"REGIONX_WEIGHT_FEE_DENOMINATOR" envDefault:"12500000000"`
	FeeBuffer      uint64 `env:"REGIONX_ASSIGNMENT_FEE_BUFFER" envDefault:"0"`
}

// Keeper drives background retries.
type Keeper struct {
	Schedule string        `env:"REGIONX_KEEPER_SCHEDULE" envDefault:"@every 30s"`
	LeaseTTL time.Duration `env:"REGIONX_KEEPER_LEASE_TTL" envDefault:"25s"`
	// Payer is charged for retried extrinsics. Defaults to the treasury.
	Payer string `env:"REGIONX_KEEPER_PAYER"`
}

// RateLimit bounds requests per client address and minute. Zero disables a class.
type RateLimit struct {
	ReadsPerMinute  int `env:"REGIONX_RATELIMIT_READS_PER_MINUTE" envDefault:"300"`
	WritesPerMinute int `env:"REGIONX_RATELIMIT_WRITES_PER_MINUTE" envDefault:"60"`
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Storage.Driver != "memory" && cfg.Storage.Driver != "postgres" {
		return Config{}, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "postgres" && cfg.Storage.DatabaseURL == "" {
		return Config{}, fmt.Errorf("REGIONX_DATABASE_URL is required for the postgres driver")
	}
	if cfg.Chain.TimeslicePeriod == 0 {
		return Config{}, fmt.Errorf("REGIONX_TIMESLICE_PERIOD must be positive")
	}
	return cfg, nil
}
