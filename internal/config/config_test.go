package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "SERVER_PORT=9090\nSTORAGE_DRIVER=memory\nCHECKOUT_TIMEOUT=3s\nRATE_LIMIT_CAPACITY=20\nKAFKA_BROKERS=a:9092, b:9092\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cf, err := loadConfig(viper.New(), path)
	require.NoError(t, err)
	require.Equal(t, "9090", cf.ServerPort)
	require.Equal(t, "memory", cf.StorageDriver)
	require.Equal(t, 3*time.Second, cf.CheckoutTimeout)
	require.Equal(t, []string{"a:9092", "b:9092"}, cf.KafkaBrokerList())
	// 沒設定的 key 取預設值
	require.Equal(t, 4, cf.TicketWorkers)
	require.Equal(t, time.Minute, cf.TicketRecoveryInterval)
	require.Equal(t, 20, cf.RateLimitCapacity)
	require.Equal(t, 5.0, cf.RateLimitPerSecond)
}

func TestLoadConfigWithoutFile(t *testing.T) {
	cf, err := loadConfig(viper.New(), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.NotEmpty(t, cf.ServiceName)
	require.Empty(t, cf.KafkaBrokerList())
}
