package resultlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ruslano69/gridcompare/pkg/report"
	"github.com/ruslano69/gridcompare/pkg/retry"
)

// Config - параметры публикации результата в Redis
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Name     string `yaml:"name"` // суффикс ключей: gridcompare:run:<name>
	TTL      int    `yaml:"ttl"`  // секунды; 0 - без срока жизни

	// Retry - повторы SET/PUBLISH при недоступном Redis
	Retry retry.Config `yaml:"retry"`
}

// Source описывает один из сравниваемых источников
type Source struct {
	Location    string `json:"location"`
	Table       string `json:"table"`
	Rows        int    `json:"rows"`
	Fingerprint string `json:"fingerprint"`
}

// RunResult представляет итог сравнения, публикуемый в Redis
// после завершения (успешного или с ошибкой).
//
// Redis-ключи:
//
//	SET  gridcompare:run:<name>:state  <JSON>  EX <ttl>  → для GET-запросов
//	PUB  gridcompare:run:<name>                          → для подписчиков
type RunResult struct {
	Name        string         `json:"name"`
	Status      string         `json:"status"` // "success" | "failed"
	Original    Source         `json:"original"`
	Export      Source         `json:"export"`
	KeyField    string         `json:"key_field"`
	Fields      []string       `json:"fields"`
	Rows        int            `json:"rows"`
	ErrorCounts map[string]int `json:"error_counts,omitempty"`
	TotalErrors int            `json:"total_errors"`
	Output      string         `json:"output,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	DurationMs  int64          `json:"duration_ms"`
	Error       *string        `json:"error,omitempty"`
}

// NewRunResult собирает RunResult; r может быть nil, если отчет не построен
func NewRunResult(name, originalLoc, exportLoc string, r *report.Report, output string,
	started time.Time, runErr error) RunResult {
	finished := time.Now().UTC()
	res := RunResult{
		Name:       name,
		Original:   Source{Location: originalLoc},
		Export:     Source{Location: exportLoc},
		Output:     output,
		StartedAt:  started.UTC(),
		FinishedAt: finished,
		DurationMs: finished.Sub(started).Milliseconds(),
	}

	if r != nil {
		res.Original.Table, res.Original.Rows, res.Original.Fingerprint = r.Original.Name(), r.Original.Len(), r.Original.Fingerprint()
		res.Export.Table, res.Export.Rows, res.Export.Fingerprint = r.Export.Name(), r.Export.Len(), r.Export.Fingerprint()
		res.KeyField = r.KeyField
		res.Fields = r.Fields()
		res.Rows = r.Layout.Addr.Rows()
		res.ErrorCounts = make(map[string]int, len(res.Fields))
		for i, f := range res.Fields {
			res.ErrorCounts[f] = r.Preview.ErrorCounts[i]
		}
		res.TotalErrors = r.Preview.TotalErrors()
	}

	if runErr != nil {
		res.Status = "failed"
		errStr := runErr.Error()
		res.Error = &errStr
	} else {
		res.Status = "success"
	}
	return res
}

// RedisPublisher публикует результат сравнения в Redis
type RedisPublisher struct {
	client  *redis.Client
	config  Config
	retryer *retry.Retryer
	log     zerolog.Logger
}

// NewRedisPublisher создает новый Redis publisher на основе конфигурации
func NewRedisPublisher(config Config, log zerolog.Logger) (*RedisPublisher, error) {
	rc := config.Retry
	if rc.OnRetry == nil {
		rc.OnRetry = func(attempt int, err error, delay time.Duration) {
			log.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("redis publish failed, retrying")
		}
	}
	retryer, err := retry.New(rc)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Address,
		Password: config.Password,
		DB:       config.DB,
	})
	return &RedisPublisher{client: client, config: config, retryer: retryer, log: log}, nil
}

// StateKey - ключ последнего состояния
func (p *RedisPublisher) StateKey() string {
	return fmt.Sprintf("gridcompare:run:%s:state", p.config.Name)
}

// Channel - канал событий
func (p *RedisPublisher) Channel() string {
	return fmt.Sprintf("gridcompare:run:%s", p.config.Name)
}

// Publish публикует результат:
//   - SET gridcompare:run:<name>:state <JSON> EX <ttl>  → для опроса (polling)
//   - PUBLISH gridcompare:run:<name> <JSON>              → для подписки (pub/sub)
func (p *RedisPublisher) Publish(ctx context.Context, result RunResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	ttl := time.Duration(p.config.TTL) * time.Second

	err = p.retryer.Do(ctx, func(ctx context.Context) error {
		if err := p.client.Set(ctx, p.StateKey(), payload, ttl).Err(); err != nil {
			return fmt.Errorf("redis SET failed: %w", err)
		}
		if err := p.client.Publish(ctx, p.Channel(), payload).Err(); err != nil {
			return fmt.Errorf("redis PUBLISH failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	p.log.Debug().
		Str("key", p.StateKey()).
		Str("status", result.Status).
		Int("errors", result.TotalErrors).
		Msg("run result published")
	return nil
}

// Close закрывает соединение с Redis
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
