package history

import (
	"context"
	"sync"
	"time"

	"wager_service/internal/domain"
	"wager_service/internal/logger"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	outcomesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_outcomes_dropped_total",
		Help: "Outcomes dropped because the dispatch buffer was full",
	})
	deliveryFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "history_delivery_failures_total",
		Help: "Outcomes the sink rejected after all retries",
	})
)

func init() {
	prometheus.MustRegister(outcomesDropped)
	prometheus.MustRegister(deliveryFailures)
}

// Sink receives terminal-session outcomes for stats and bonus
// processing. Implementations own retention; the core keeps nothing.
type Sink interface {
	RecordOutcome(ctx context.Context, o *domain.Outcome) error
}

const (
	deliverRetries = 3
	deliverBackoff = 200 * time.Millisecond
	deliverTimeout = 5 * time.Second
)

// Dispatcher decouples outcome delivery from game resolution: Publish
// never blocks, delivery retries with backoff, and failures surface as
// metrics instead of game errors. Subscribers (bonus, stats) get their
// own fan-out channels.
type Dispatcher struct {
	sink Sink
	ch   chan *domain.Outcome
	quit chan struct{}
	wg   sync.WaitGroup

	subMu sync.RWMutex
	subs  []chan domain.Outcome
}

func NewDispatcher(sink Sink, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		sink: sink,
		ch:   make(chan *domain.Outcome, buffer),
		quit: make(chan struct{}),
	}
}

func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop drains buffered outcomes and waits for delivery to finish.
func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()
}

// Publish queues an outcome. If the buffer is full the outcome is
// dropped and counted; game resolution is never blocked.
func (d *Dispatcher) Publish(o *domain.Outcome) {
	select {
	case d.ch <- o:
	default:
		outcomesDropped.Inc()
		logger.Error("outcome buffer full, dropping", "token", o.Token, "player_id", o.PlayerID)
	}
}

// Subscribe returns a channel receiving every dispatched outcome. Slow
// subscribers miss events rather than stall delivery.
func (d *Dispatcher) Subscribe() <-chan domain.Outcome {
	ch := make(chan domain.Outcome, 64)
	d.subMu.Lock()
	d.subs = append(d.subs, ch)
	d.subMu.Unlock()
	return ch
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case o := <-d.ch:
			d.deliver(o)
		case <-d.quit:
			for {
				select {
				case o := <-d.ch:
					d.deliver(o)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(o *domain.Outcome) {
	var err error
	for attempt := 0; attempt <= deliverRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * deliverBackoff)
		}
		ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
		err = d.sink.RecordOutcome(ctx, o)
		cancel()
		if err == nil {
			break
		}
	}
	if err != nil {
		deliveryFailures.Inc()
		logger.Error("outcome delivery failed", "token", o.Token, "error", err)
	}

	d.subMu.RLock()
	for _, sub := range d.subs {
		select {
		case sub <- *o:
		default:
		}
	}
	d.subMu.RUnlock()
}
