package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "net"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/hotel-booking-api/internal/config"
    "github.com/iliyamo/hotel-booking-api/internal/observability"
)

// Publisher hands events to the broker.
type Publisher interface {
    Publish(ctx context.Context, ev Event) error
    Close() error
}

// NopPublisher drops every event.  It is used when AMQP_ENABLED=false.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// AMQPPublisher keeps one connection and channel to the broker and
// publishes persistent JSON messages to a durable topic exchange keyed by
// Event.Type.  The connection is opened on first use and reopened on the
// next publish after any failure.
//
// Every step of Publish, including waiting for another publish and dialing,
// is bounded by the caller's context.
type AMQPPublisher struct {
    url      string
    exchange string
    log      zerolog.Logger

    sem  chan struct{} // holds the connection; capacity 1
    conn *amqp.Connection
    ch   *amqp.Channel
}

func NewAMQPPublisher(cfg config.AMQPConfig, log zerolog.Logger) *AMQPPublisher {
    return &AMQPPublisher{url: cfg.URL, exchange: cfg.Exchange, log: log, sem: make(chan struct{}, 1)}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev Event) error {
    err := p.publish(ctx, ev)
    observability.ObserveEvent(ev.Type, err)
    return err
}

func (p *AMQPPublisher) lock(ctx context.Context) error {
    select {
    case p.sem <- struct{}{}:
        return nil
    case <-ctx.Done():
        return fmt.Errorf("wait for publisher: %w", ctx.Err())
    }
}

func (p *AMQPPublisher) unlock() { <-p.sem }

func (p *AMQPPublisher) publish(ctx context.Context, ev Event) error {
    body, err := json.Marshal(ev)
    if err != nil {
        return fmt.Errorf("marshal event: %w", err)
    }

    if err := p.lock(ctx); err != nil {
        return err
    }
    defer p.unlock()

    ch, err := p.channel(ctx)
    if err != nil {
        return err
    }
    err = ch.PublishWithContext(ctx, p.exchange, ev.Type, false, false, amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    ev.ID,
        Timestamp:    ev.OccurredAt,
        Type:         ev.Type,
        Body:         body,
    })
    if err != nil {
        p.reset()
        return fmt.Errorf("publish %s: %w", ev.Type, err)
    }
    return nil
}

// channel returns the open channel, connecting when needed.  Callers hold
// the semaphore.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
    if p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed() {
        return p.ch, nil
    }
    p.reset()

    type opened struct {
        conn *amqp.Connection
        ch   *amqp.Channel
        err  error
    }
    // Channel and ExchangeDeclare take no context, so the whole open runs
    // aside and is abandoned when ctx ends first.
    done := make(chan opened, 1)
    go func() {
        conn, ch, err := openChannel(ctx, p.url, p.exchange)
        done <- opened{conn, ch, err}
    }()

    select {
    case o := <-done:
        if o.err != nil {
            return nil, o.err
        }
        p.conn, p.ch = o.conn, o.ch
        p.log.Info().Str("exchange", p.exchange).Msg("event publisher connected")
        return o.ch, nil
    case <-ctx.Done():
        go func() {
            if o := <-done; o.err == nil {
                _ = o.ch.Close()
                _ = o.conn.Close()
            }
        }()
        return nil, fmt.Errorf("connect broker: %w", ctx.Err())
    }
}

func openChannel(ctx context.Context, url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
    conn, err := dial(ctx, url)
    if err != nil {
        return nil, nil, fmt.Errorf("dial broker: %w", err)
    }
    ch, err := conn.Channel()
    if err != nil {
        _ = conn.Close()
        return nil, nil, fmt.Errorf("open channel: %w", err)
    }
    if err := declareExchange(ch, exchange); err != nil {
        _ = ch.Close()
        _ = conn.Close()
        return nil, nil, err
    }
    return conn, ch, nil
}

// handshakeTimeout bounds the AMQP handshake when ctx has no deadline.
const handshakeTimeout = 10 * time.Second

// dial opens an AMQP connection whose TCP connect follows ctx and whose
// handshake ends at ctx's deadline.
func dial(ctx context.Context, url string) (*amqp.Connection, error) {
    return amqp.DialConfig(url, amqp.Config{
        Locale: "en_US",
        Dial: func(network, addr string) (net.Conn, error) {
            var d net.Dialer
            conn, err := d.DialContext(ctx, network, addr)
            if err != nil {
                return nil, err
            }
            deadline, ok := ctx.Deadline()
            if !ok {
                deadline = time.Now().Add(handshakeTimeout)
            }
            if err := conn.SetDeadline(deadline); err != nil {
                _ = conn.Close()
                return nil, err
            }
            return conn, nil
        },
    })
}

func (p *AMQPPublisher) reset() {
    if p.ch != nil {
        _ = p.ch.Close()
    }
    if p.conn != nil {
        _ = p.conn.Close()
    }
    p.ch, p.conn = nil, nil
}

func (p *AMQPPublisher) Close() error {
    p.sem <- struct{}{}
    defer p.unlock()
    var errs []error
    if p.ch != nil && !p.ch.IsClosed() {
        errs = append(errs, p.ch.Close())
    }
    if p.conn != nil && !p.conn.IsClosed() {
        errs = append(errs, p.conn.Close())
    }
    p.ch, p.conn = nil, nil
    return errors.Join(errs...)
}

func declareExchange(ch *amqp.Channel, name string) error {
    if err := ch.ExchangeDeclare(name, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
        return fmt.Errorf("declare exchange %s: %w", name, err)
    }
    return nil
}
