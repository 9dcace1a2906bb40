package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/barcheckout/internal/constants"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/metrics"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/producer"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/ticket"
	"github.com/RoyceAzure/lab/barcheckout/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TicketGenerator 單次產生, 重試由 TicketService 負責
type TicketGenerator interface {
	Generate(p ticket.Payload) (*ticket.Ticket, error)
	Verify(token string, p ticket.Payload) (*ticket.Claims, error)
}

type TicketPoolConfig struct {
	Workers          int
	QueueSize        int
	MaxAttempts      int
	BaseBackoff      time.Duration
	RecoveryInterval time.Duration
	RecoveryBatch    int
}

func (c TicketPoolConfig) withDefaults() TicketPoolConfig {
	if c.Workers <= 0 {
		c.Workers = constants.DefaultTicketWorkers
	}
	if c.QueueSize <= 0 {
		c.QueueSize = constants.DefaultTicketQueueSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = constants.DefaultTicketMaxAttempts
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 200 * time.Millisecond
	}
	if c.RecoveryInterval <= 0 {
		c.RecoveryInterval = constants.DefaultTicketRecoveryInterval
	}
	if c.RecoveryBatch <= 0 {
		c.RecoveryBatch = 100
	}
	return c
}

/*
TicketService 取貨憑證的背景產生
與結帳的 request context 無關, 失敗只記 log 與 metrics
同一張訂單同時只會有一個 job, 重新產生會覆蓋舊的憑證
*/
type TicketService struct {
	store     repository.Store
	generator TicketGenerator
	events    producer.IOrderEventProducer
	metrics   *metrics.Metrics
	logger    *zerolog.Logger
	cfg       TicketPoolConfig

	jobs     chan string
	mu       sync.Mutex
	inflight map[string]struct{}
	stopped  bool
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewTicketService(
	store repository.Store,
	generator TicketGenerator,
	events producer.IOrderEventProducer,
	m *metrics.Metrics,
	logger *zerolog.Logger,
	cfg TicketPoolConfig,
) *TicketService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if events == nil {
		events = producer.NewNopOrderEventProducer(logger)
	}
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	return &TicketService{
		store:     store,
		generator: generator,
		events:    events,
		metrics:   m,
		logger:    logger,
		cfg:       cfg,
		jobs:      make(chan string, cfg.QueueSize),
		inflight:  map[string]struct{}{},
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *TicketService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true
	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}
	s.logger.Info().Int("workers", s.cfg.Workers).Msg("ticket workers started")
}

// Enqueue 不阻塞, 佇列已滿或已停止回傳 false
// 已在處理中的訂單視為成功排入
func (s *TicketService) Enqueue(orderID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	if _, ok := s.inflight[orderID]; ok {
		return true
	}
	select {
	case s.jobs <- orderID:
		s.inflight[orderID] = struct{}{}
		return true
	default:
		return false
	}
}

func (s *TicketService) worker() {
	defer s.wg.Done()
	for orderID := range s.jobs {
		s.process(orderID)
		s.mu.Lock()
		delete(s.inflight, orderID)
		s.mu.Unlock()
	}
}

func (s *TicketService) process(orderID string) {
	backoff := s.cfg.BaseBackoff
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		err := s.GenerateForOrder(s.ctx, orderID)
		if err == nil {
			s.metrics.IncTicket(metrics.ResultSuccess)
			return
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			s.metrics.IncTicket(metrics.ResultError)
			s.logger.Error().Err(err).Str("order_id", orderID).Msg("ticket generation skipped, order missing")
			return
		}
		s.logger.Warn().Err(err).Str("order_id", orderID).Int("attempt", attempt).Msg("ticket generation failed")
		if attempt == s.cfg.MaxAttempts {
			break
		}
		s.metrics.IncTicket(metrics.ResultRetry)

		select {
		case <-s.ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	// 訂單維持 pending 且沒有憑證, 之後由 recovery poller 重新排入
	s.metrics.IncTicket(metrics.ResultError)
	s.logger.Error().Str("order_id", orderID).Int("attempts", s.cfg.MaxAttempts).Msg("ticket generation gave up")
}

// GenerateForOrder 單次產生並寫回訂單, 憑證內容只取自訂單明細快照
func (s *TicketService) GenerateForOrder(ctx context.Context, orderID string) error {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	userName := ""
	if user, err := s.store.GetUserByID(ctx, order.UserID); err == nil {
		userName = user.Name
	}

	tk, err := s.generator.Generate(ticket.PayloadFromOrder(order, userName))
	if err != nil {
		return fmt.Errorf("generate ticket: %w", err)
	}
	if err := s.store.UpdateOrderTicket(ctx, orderID, tk.Image); err != nil {
		return fmt.Errorf("save ticket: %w", err)
	}

	event := model.OrderEvent{
		EventID:    uuid.NewString(),
		EventType:  model.OrderTicketReadyEventName,
		OrderID:    order.OrderID,
		UserID:     order.UserID,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", orderID).Msg("publish ticket ready event failed")
	}
	return nil
}

// RecoverPending 把待取貨但沒有憑證的訂單重新排入
func (s *TicketService) RecoverPending(ctx context.Context) (int, error) {
	orders, err := s.store.ListOrdersAwaitingTicket(ctx, s.cfg.RecoveryBatch)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, o := range orders {
		if s.Enqueue(o.OrderID) {
			queued++
		}
	}
	return queued, nil
}

// RunRecovery 定期執行 RecoverPending, ctx 結束時返回
func (s *TicketService) RunRecovery(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.RecoveryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.RecoverPending(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("ticket recovery failed")
				continue
			}
			if n > 0 {
				s.logger.Info().Int("orders", n).Msg("ticket recovery requeued orders")
			}
		}
	}
}

// Stop 停止接收新 job, 等待佇列清空; ctx 逾時則中斷重試中的 job
func (s *TicketService) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.jobs)
	started := s.started
	s.mu.Unlock()

	if !started {
		s.cancel()
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return fmt.Errorf("ticket pool stop: %w", ctx.Err())
	}
}
