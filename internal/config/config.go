package config

import (
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/fsnotify/fsnotify"
	viper "github.com/spf13/viper"
)

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀寫, 需要使用讀寫鎖
*/
var configSingleton *ConfigSingleton
var muonce sync.Once

type ConfigSingleton struct {
	Config *Config
	mu     sync.RWMutex
}

type Config struct {
	ServiceName            string        `mapstructure:"SERVICE_NAME"`
	Env                    string        `mapstructure:"ENV"`
	ServerPort             string        `mapstructure:"SERVER_PORT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	StorageDriver          string        `mapstructure:"STORAGE_DRIVER"`
	DbName                 string        `mapstructure:"POSTGRES_DB"`
	DbHost                 string        `mapstructure:"POSTGRES_HOST"`
	DbPort                 string        `mapstructure:"POSTGRES_PORT"`
	DbUser                 string        `mapstructure:"POSTGRES_USER"`
	DbPas                  string        `mapstructure:"POSTGRES_PASSWORD"`
	MigrationURL           string        `mapstructure:"MIGRATION_URL"`
	RedisAddr              string        `mapstructure:"REDIS_ADDR"`
	RedisPassword          string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB                int           `mapstructure:"REDIS_DB"`
	CatalogCacheTTL        time.Duration `mapstructure:"CATALOG_CACHE_TTL"`
	KafkaBrokers           string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic             string        `mapstructure:"KAFKA_TOPIC"`
	AuthTokenKey           string        `mapstructure:"AUTH_TOKEN_KEY"`
	TicketSigningKey       string        `mapstructure:"TICKET_SIGNING_KEY"`
	TicketWorkers          int           `mapstructure:"TICKET_WORKERS"`
	TicketQueueSize        int           `mapstructure:"TICKET_QUEUE_SIZE"`
	TicketMaxAttempts      int           `mapstructure:"TICKET_MAX_ATTEMPTS"`
	TicketRecoveryInterval time.Duration `mapstructure:"TICKET_RECOVERY_INTERVAL"`
	CheckoutTimeout        time.Duration `mapstructure:"CHECKOUT_TIMEOUT"`
	RequestTimeout         time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	RateLimitCapacity      int           `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitPerSecond     float64       `mapstructure:"RATE_LIMIT_PER_SECOND"`
}

// KafkaBrokerList 逗號分隔, 空字串代表不發布事件
func (c *Config) KafkaBrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		configSingleton = &ConfigSingleton{}
		cf, err := loadConfig(viper.GetViper(), configFilePath())
		if err != nil {
			log.Fatalf("error read config: %v", err)
		}
		configSingleton.setConfig(cf)

		viper.WatchConfig()
		viper.OnConfigChange(func(e fsnotify.Event) {
			cf, err := loadConfig(viper.GetViper(), e.Name)
			if err != nil {
				log.Printf("failed to reload config file %s: %v", e.Name, err)
				return
			}
			configSingleton.setConfig(cf)
		})
	})
}

func (s *ConfigSingleton) setConfig(cf *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Config = cf
}

func configFilePath() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return "./.env"
}

/*
單純回傳錯誤, 由外部決定要不要Fatal
.env 不存在時只用環境變數
*/
func loadConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, err
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, err
	}
	return cf, nil
}

// AutomaticEnv 只對已知 key 生效, 所以每個 key 都要設預設值
func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "bar-checkout")
	v.SetDefault("ENV", string(constants.Dev))
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", string(constants.StoragePostgres))
	v.SetDefault("POSTGRES_DB", "bar")
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("MIGRATION_URL", "file://internal/infra/repository/db/migrations")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CATALOG_CACHE_TTL", constants.DefaultCatalogCacheTTL)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "bar.orders")
	v.SetDefault("AUTH_TOKEN_KEY", "")
	v.SetDefault("TICKET_SIGNING_KEY", "")
	v.SetDefault("TICKET_WORKERS", constants.DefaultTicketWorkers)
	v.SetDefault("TICKET_QUEUE_SIZE", constants.DefaultTicketQueueSize)
	v.SetDefault("TICKET_MAX_ATTEMPTS", constants.DefaultTicketMaxAttempts)
	v.SetDefault("TICKET_RECOVERY_INTERVAL", constants.DefaultTicketRecoveryInterval)
	v.SetDefault("CHECKOUT_TIMEOUT", constants.DefaultCheckoutTimeout)
	v.SetDefault("REQUEST_TIMEOUT", constants.DefaultRequestTimeout)
	// capacity 0 代表不限流
	v.SetDefault("RATE_LIMIT_CAPACITY", 0)
	v.SetDefault("RATE_LIMIT_PER_SECOND", 5.0)
}
