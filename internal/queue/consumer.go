package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "strings"
    "sync"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"

    "github.com/iliyamo/hotel-booking-api/internal/config"
)

const maxBackoff = 30 * time.Second

// Consumer binds a durable queue to every routing key of the exchange and
// appends one line per event to a log file.
type Consumer struct {
    cfg config.AMQPConfig
    log zerolog.Logger
    mu  sync.Mutex // serialises writes to the event log
}

func NewConsumer(cfg config.AMQPConfig, log zerolog.Logger) *Consumer {
    return &Consumer{cfg: cfg, log: log.With().Str("component", "event-consumer").Logger()}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff capped at 30s.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := dial(ctx, c.cfg.URL)
        if err == nil {
            backoff = time.Second
            err = c.consume(ctx, conn)
            _ = conn.Close()
        }
        if ctx.Err() != nil {
            return nil
        }
        c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("consumer disconnected")

        select {
        case <-ctx.Done():
            return nil
        case <-time.After(backoff):
        }
        backoff = min(backoff*2, maxBackoff)
    }
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        return fmt.Errorf("set qos: %w", err)
    }
    if err := declareExchange(ch, c.cfg.Exchange); err != nil {
        return err
    }
    if _, err := ch.QueueDeclare(c.cfg.ConsumerQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    if err := ch.QueueBind(c.cfg.ConsumerQueue, "#", c.cfg.Exchange, false, nil); err != nil {
        return fmt.Errorf("queue bind: %w", err)
    }
    msgs, err := ch.ConsumeWithContext(ctx, c.cfg.ConsumerQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }
    c.log.Info().Str("queue", c.cfg.ConsumerQueue).Msg("consuming events")

    for d := range msgs {
        if err := c.handle(d.Body); err != nil {
            c.log.Error().Err(err).Str("routing_key", d.RoutingKey).Msg("drop event")
            _ = d.Nack(false, false) // requeueing a bad payload would loop forever
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
    var ev Event
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.Type == "" || (ev.Booking == nil && ev.Payment == nil) {
        return errors.New("event without type or payload")
    }
    return c.appendLine(formatLine(ev))
}

func (c *Consumer) appendLine(line string) error {
    c.mu.Lock()
    defer c.mu.Unlock()

    if err := os.MkdirAll(filepath.Dir(c.cfg.EventLogPath), 0o755); err != nil {
        return fmt.Errorf("mkdir: %w", err)
    }
    f, err := os.OpenFile(c.cfg.EventLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open event log: %w", err)
    }
    defer f.Close()
    _, err = f.WriteString(line)
    return err
}

// formatLine renders an event as a single human readable line.
func formatLine(ev Event) string {
    var b strings.Builder
    fmt.Fprintf(&b, "[%s] %s | event_id=%s", ev.OccurredAt.Format(time.RFC3339), ev.Type, ev.ID)
    if bk := ev.Booking; bk != nil {
        fmt.Fprintf(&b, " | booking_id=%d | user_id=%d | hotel=%q | room_type=%q | status=%s",
            bk.BookingID, bk.UserID, bk.HotelName, bk.RoomType, bk.Status)
        if bk.CheckIn != "" {
            fmt.Fprintf(&b, " | stay=%s..%s | nights=%d | total=%.2f", bk.CheckIn, bk.CheckOut, bk.Nights, bk.TotalAmount)
        }
    }
    if p := ev.Payment; p != nil {
        fmt.Fprintf(&b, " | payment_id=%d | booking_id=%d | amount=%.2f | status=%s", p.PaymentID, p.BookingID, p.Amount, p.Status)
        if p.Method != "" {
            fmt.Fprintf(&b, " | method=%s", p.Method)
        }
        if p.TransactionRef != "" {
            fmt.Fprintf(&b, " | txn=%s", p.TransactionRef)
        }
        if p.Reason != "" {
            fmt.Fprintf(&b, " | reason=%q", p.Reason)
        }
    }
    b.WriteByte('\n')
    return b.String()
}
