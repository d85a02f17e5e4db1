package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/threadline/storefront/app/models"
	"github.com/twmb/franz-go/pkg/kgo"
)

type OrderCreatedEvent struct {
	OrderID       string             `json:"order_id"`
	UserID        string             `json:"user_id"`
	TotalAmount   decimal.Decimal    `json:"total_amount"`
	PaymentMethod string             `json:"payment_method"`
	PaymentStatus string             `json:"payment_status"`
	OrderStatus   models.OrderStatus `json:"order_status"`
	CreatedAt     time.Time          `json:"date"`
}

func NewOrderCreatedEvent(order models.Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		TotalAmount:   order.TotalAmount,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		OrderStatus:   order.OrderStatus,
		CreatedAt:     order.CreatedAt,
	}
}

// OrderPublisher is told about every newly recorded order. Publishing is best effort: the
// order already exists when it is called and an error never undoes it.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, order models.Order) error
}

type MultiPublisher []OrderPublisher

func (m MultiPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	var firstErr error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.PublishOrderCreated(ctx, order); err != nil {
			log.Printf("OrderPublisher: failed to publish order %s: %v", order.ID, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// OrderEventHub fans new-order events out to in-process subscribers such as the admin stream.
// Delivery is at most once: a subscriber whose buffer is full misses the event.
type OrderEventHub struct {
	mu          sync.RWMutex
	subscribers map[chan OrderCreatedEvent]struct{}
}

func NewOrderEventHub() *OrderEventHub {
	return &OrderEventHub{subscribers: make(map[chan OrderCreatedEvent]struct{})}
}

func (h *OrderEventHub) Subscribe(buffer int) (<-chan OrderCreatedEvent, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan OrderCreatedEvent, buffer)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *OrderEventHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *OrderEventHub) PublishOrderCreated(ctx context.Context, order models.Order) error {
	event := NewOrderCreatedEvent(order)

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("OrderEventHub: subscriber too slow, dropping event for order %s", order.ID)
		}
	}
	return nil
}

// KafkaOrderPublisher produces order-created events keyed by order id.
type KafkaOrderPublisher struct {
	client *kgo.Client
	topic  string
}

func NewKafkaOrderPublisher(brokers []string, topic string) (*KafkaOrderPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	log.Printf("✅ Kafka order publisher ready (topic %s).", topic)
	return &KafkaOrderPublisher{client: client, topic: topic}, nil
}

func (k *KafkaOrderPublisher) PublishOrderCreated(ctx context.Context, order models.Order) error {
	payload, err := json.Marshal(NewOrderCreatedEvent(order))
	if err != nil {
		return fmt.Errorf("failed to encode order event: %w", err)
	}

	record := &kgo.Record{Topic: k.topic, Key: []byte(order.ID), Value: payload}
	k.client.Produce(context.WithoutCancel(ctx), record, func(r *kgo.Record, err error) {
		if err != nil {
			log.Printf("❌ KafkaOrderPublisher: failed to deliver event for order %s: %v", order.ID, err)
		}
	})
	return nil
}

func (k *KafkaOrderPublisher) Close() {
	if err := k.client.Flush(context.Background()); err != nil {
		log.Printf("KafkaOrderPublisher: flush on close failed: %v", err)
	}
	k.client.Close()
}
