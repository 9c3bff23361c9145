// README: AMQP ingress feeding provider location/status events into the registry.
package supply

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	locationQueue = "provider.location"
	statusQueue   = "provider.status"

	redialInterval = 3 * time.Second
)

// Ingress consumes provider events from RabbitMQ. Delivery is at-least-once
// and may be out of order; the registry's LWW rule makes replays harmless, so
// malformed messages are dropped rather than requeued.
type Ingress struct {
	url string
	svc *Service
}

func NewIngress(url string, svc *Service) *Ingress {
	return &Ingress{url: url, svc: svc}
}

// Run consumes until ctx is cancelled, redialing on connection loss.
func (in *Ingress) Run(ctx context.Context) {
	for {
		if err := in.consume(ctx); err != nil {
			log.Printf("supply ingress: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(redialInterval):
		}
	}
}

func (in *Ingress) consume(ctx context.Context) error {
	conn, err := amqp.Dial(in.url)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	for _, q := range []string{locationQueue, statusQueue} {
		if _, err := ch.QueueDeclare(q, true, false, false, false, nil); err != nil {
			return err
		}
	}

	locations, err := ch.Consume(locationQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}
	statuses, err := ch.Consume(statusQueue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	closed := conn.NotifyClose(make(chan *amqp.Error, 1))
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-closed:
			return err
		case d, ok := <-locations:
			if !ok {
				return nil
			}
			in.handleLocation(ctx, d)
		case d, ok := <-statuses:
			if !ok {
				return nil
			}
			in.handleStatus(ctx, d)
		}
	}
}

func (in *Ingress) handleLocation(ctx context.Context, d amqp.Delivery) {
	var ev LocationEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Printf("supply ingress: bad location payload: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if err := in.svc.ApplyLocation(ctx, ev); err != nil {
		log.Printf("supply ingress: location event rejected: %v", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (in *Ingress) handleStatus(ctx context.Context, d amqp.Delivery) {
	var ev StatusEvent
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		log.Printf("supply ingress: bad status payload: %v", err)
		_ = d.Nack(false, false)
		return
	}
	if err := in.svc.ApplyStatus(ctx, ev); err != nil {
		log.Printf("supply ingress: status event rejected: %v", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}
