package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names, shared with tests.
const (
	EnvAppEnv           = "CROSSBEG_APP_ENV"
	EnvPort             = "CROSSBEG_APP_PORT"
	EnvRPCURL           = "CROSSBEG_LEDGER_RPC_URL"
	EnvChainID          = "CROSSBEG_LEDGER_CHAIN_ID"
	EnvContractAddress  = "CROSSBEG_LEDGER_CONTRACT_ADDRESS"
	EnvProcessorBaseURL = "CROSSBEG_PROCESSOR_BASE_URL"
	EnvProcessorAddress = "CROSSBEG_PROCESSOR_ADDRESS"
	EnvRedisURL         = "CROSSBEG_REDIS_URL"
)

type Config struct {
	App       AppConfig
	Ledger    LedgerConfig
	Processor ProcessorConfig
	Redis     RedisConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Ledger.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CROSSBEG_APP_ENV" required:"true"`
	Port         string `envconfig:"CROSSBEG_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CROSSBEG_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CROSSBEG_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// LedgerConfig points the repository client at the request contract.
type LedgerConfig struct {
	RPCURL          string        `envconfig:"CROSSBEG_LEDGER_RPC_URL" required:"true"`
	ChainID         uint64        `envconfig:"CROSSBEG_LEDGER_CHAIN_ID" default:"84532"`
	ContractAddress string        `envconfig:"CROSSBEG_LEDGER_CONTRACT_ADDRESS" required:"true"`
	ReadTimeout     time.Duration `envconfig:"CROSSBEG_LEDGER_READ_TIMEOUT" default:"10s"`
	ReadRetries     uint64        `envconfig:"CROSSBEG_LEDGER_READ_RETRIES" default:"3"`
}

func (l LedgerConfig) validate() error {
	if !looksLikeAddress(l.ContractAddress) {
		return fmt.Errorf("ledger contract address %q is not a 0x-prefixed 40-hex-digit address", l.ContractAddress)
	}
	if l.ChainID == 0 {
		return fmt.Errorf("ledger chain id must be non-zero")
	}
	return nil
}

// ProcessorConfig points the payment engine at the external processor API.
// Poll knobs are configuration so tests can shrink them.
type ProcessorConfig struct {
	BaseURL        string        `envconfig:"CROSSBEG_PROCESSOR_BASE_URL" required:"true"`
	GoodsRecipient string        `envconfig:"CROSSBEG_PROCESSOR_ADDRESS" default:"0xeD6c9f2573343043DD443bc633f9071ABDF688Fd"`
	Testnet        bool          `envconfig:"CROSSBEG_PROCESSOR_TESTNET" default:"true"`
	PollInterval   time.Duration `envconfig:"CROSSBEG_PROCESSOR_POLL_INTERVAL" default:"2s"`
	PollTimeout    time.Duration `envconfig:"CROSSBEG_PROCESSOR_POLL_TIMEOUT" default:"60s"`
	RequestTimeout time.Duration `envconfig:"CROSSBEG_PROCESSOR_REQUEST_TIMEOUT" default:"15s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CROSSBEG_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CROSSBEG_REDIS_ADDR"`
	Password     string        `envconfig:"CROSSBEG_REDIS_PASSWORD"`
	DB           int           `envconfig:"CROSSBEG_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CROSSBEG_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CROSSBEG_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CROSSBEG_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CROSSBEG_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CROSSBEG_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func looksLikeAddress(value string) bool {
	if len(value) != 42 || !strings.HasPrefix(value, "0x") {
		return false
	}
	for _, c := range value[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
