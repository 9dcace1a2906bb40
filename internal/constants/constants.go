package constants

import "time"

// for api auth
type ContextKey string

const (
	AuthorizationHeaderKey  ContextKey = "authorization"
	AuthorizationTypeBearer ContextKey = "bearer"
	AuthorizationPayloadKey ContextKey = "authorization_payload"
)

type RequestID string

const (
	RequestIDKey RequestID = "request_id"
)

// 身分服務簽發的角色
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

// 預設值, 設定檔沒給時使用
const (
	DefaultCheckoutTimeout        = 5 * time.Second
	DefaultRequestTimeout         = 15 * time.Second
	DefaultCatalogCacheTTL        = 5 * time.Minute
	DefaultTicketWorkers          = 4
	DefaultTicketQueueSize        = 256
	DefaultTicketMaxAttempts      = 5
	DefaultTicketRecoveryInterval = time.Minute
	DefaultShutdownTimeout        = 30 * time.Second
)
