package outbox

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"feastiq/internal/domain"
	"feastiq/internal/model"

	"go.uber.org/zap"
)

// RetryPolicy задает расписание повторов: InitialDelay * 2^(attempt-1), не больше MaxDelay.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:  8,
		InitialDelay: 30 * time.Second,
		MaxDelay:     time.Hour,
	}
}

// Backoff возвращает задержку перед следующей попыткой после attempt неудачных.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.InitialDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		return p.MaxDelay
	}
	return delay
}

type Config struct {
	Interval  time.Duration
	BatchSize int
	Retry     RetryPolicy
}

// Dispatcher разбирает исходящую очередь: в фоне по таймеру и сразу по сигналу Notify.
type Dispatcher struct {
	logger    *zap.Logger
	repo      domain.DeliveryRepo
	notifiers map[string]domain.Notifier
	cfg       Config
	now       func() time.Time

	forceUpdateCh chan struct{}
	stopCh        chan struct{}
	doneCh        chan struct{}
	mu            sync.Mutex

	stateMu sync.Mutex
	started bool
	stopped bool
}

func NewDispatcher(repo domain.DeliveryRepo, logger *zap.Logger, cfg Config, notifiers ...domain.Notifier) *Dispatcher {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}

	byChannel := make(map[string]domain.Notifier, len(notifiers))
	for _, n := range notifiers {
		byChannel[n.Channel()] = n
	}

	return &Dispatcher{
		logger:        logger,
		repo:          repo,
		notifiers:     byChannel,
		cfg:           cfg,
		now:           func() time.Time { return time.Now().UTC() },
		forceUpdateCh: make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Channels - каналы, для которых настроен отправитель. Для них создаются доставки.
func (d *Dispatcher) Channels() []string {
	channels := make([]string, 0, len(d.notifiers))
	for ch := range d.notifiers {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

// Start запускает фоновую обработку очереди. После Stop не действует.
func (d *Dispatcher) Start() {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true
	go d.backgroundSync()
}

// Stop останавливает фоновую обработку и ждет завершения текущего прохода.
// Повторные вызовы безопасны.
func (d *Dispatcher) Stop() {
	d.stateMu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.stopCh)
	}
	started := d.started
	d.stateMu.Unlock()

	if started {
		<-d.doneCh
	}
}

// Running сообщает, работает ли фоновый цикл.
func (d *Dispatcher) Running() bool {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()
	if !d.started {
		return false
	}
	select {
	case <-d.doneCh:
		return false
	default:
		return true
	}
}

// Notify немедленно запускает обработку, не блокируя вызывающего.
func (d *Dispatcher) Notify() {
	select {
	case d.forceUpdateCh <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) backgroundSync() {
	defer close(d.doneCh)

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-d.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Доставки, оставшиеся с прошлого запуска
	d.sync(ctx)
	for {
		select {
		case <-ticker.C:
			d.sync(ctx)
		case <-d.forceUpdateCh:
			d.sync(ctx)
		case <-d.stopCh:
			return
		}
	}
}

func (d *Dispatcher) sync(ctx context.Context) {
	if _, err := d.Flush(ctx); err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Error("error processing outbox", zap.Error(err))
	}
}

// Flush обрабатывает все доставки, срок которых наступил, и возвращает число успешных.
func (d *Dispatcher) Flush(ctx context.Context) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	sent := 0
	// Курсор по id: каждая доставка рассматривается за проход не больше одного раза,
	// даже если ее состояние не удалось записать
	var afterID uint
	for {
		deliveries, err := d.repo.DueDeliveries(ctx, d.now(), afterID, d.cfg.BatchSize)
		if err != nil {
			return sent, err
		}
		for _, delivery := range deliveries {
			if err := ctx.Err(); err != nil {
				return sent, err
			}
			afterID = delivery.ID
			if d.attempt(ctx, delivery) == nil {
				sent++
			}
		}
		if len(deliveries) < d.cfg.BatchSize {
			return sent, nil
		}
	}
}

// DeliverNow отправляет доставку брони по каналу прямо сейчас и возвращает ошибку отправителя.
// Исход записывается в очередь так же, как при фоновой обработке.
func (d *Dispatcher) DeliverNow(ctx context.Context, reservationID uint, channel string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delivery, err := d.repo.FindDelivery(ctx, reservationID, channel)
	if err != nil {
		return err
	}
	if delivery.Status != model.DeliveryPending {
		return nil
	}
	return d.attempt(ctx, *delivery)
}

func (d *Dispatcher) attempt(ctx context.Context, delivery model.Delivery) error {
	log := d.logger.With(
		zap.Uint("delivery_id", delivery.ID),
		zap.Uint("reservation_id", delivery.ReservationID),
		zap.String("channel", delivery.Channel),
	)
	attempts := delivery.Attempts + 1

	notifier, ok := d.notifiers[delivery.Channel]
	if !ok {
		err := fmt.Errorf("channel %q is not configured", delivery.Channel)
		d.record(ctx, log, delivery, attempts, model.DeliveryFailed, err)
		return err
	}

	sendErr := notifier.Notify(ctx, delivery.Reservation)
	if sendErr == nil {
		if err := d.repo.MarkDeliverySent(ctx, delivery.ID, attempts, d.now()); err != nil {
			log.Error("error marking delivery sent", zap.Error(err))
		} else {
			log.Info("delivery sent", zap.Int("attempts", attempts))
		}
		return nil
	}

	status := model.DeliveryPending
	if attempts >= d.cfg.Retry.MaxAttempts {
		status = model.DeliveryFailed
	}
	d.record(ctx, log, delivery, attempts, status, sendErr)
	return sendErr
}

func (d *Dispatcher) record(ctx context.Context, log *zap.Logger, delivery model.Delivery, attempts int, status model.DeliveryStatus, sendErr error) {
	next := d.now().Add(d.cfg.Retry.Backoff(attempts))
	if err := d.repo.MarkDeliveryFailed(ctx, delivery.ID, attempts, status, next, sendErr.Error()); err != nil {
		log.Error("error recording delivery failure", zap.Error(err))
		return
	}
	if status == model.DeliveryFailed {
		log.Error("delivery failed permanently", zap.Int("attempts", attempts), zap.Error(sendErr))
		return
	}
	log.Warn("delivery failed, will retry", zap.Int("attempts", attempts), zap.Time("next_attempt_at", next), zap.Error(sendErr))
}
