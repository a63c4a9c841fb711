package logkafka

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultBatchSize    = 100
	DefaultBatchTimeout = 5 * time.Second
)

// MessageReader is the part of *kafka.Reader the indexer needs.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// BulkIndexer stores a batch of JSON documents.
type BulkIndexer interface {
	Bulk(ctx context.Context, docs []json.RawMessage) error
}

// Indexer drains the log topic into a search index in batches of BatchSize
// or every BatchTimeout, whichever comes first.
type Indexer struct {
	r            MessageReader
	idx          BulkIndexer
	log          zerolog.Logger
	BatchSize    int
	BatchTimeout time.Duration
}

func NewIndexer(r MessageReader, idx BulkIndexer, log zerolog.Logger) *Indexer {
	return &Indexer{
		r:            r,
		idx:          idx,
		log:          log.With().Str("module", "log-indexer").Logger(),
		BatchSize:    DefaultBatchSize,
		BatchTimeout: DefaultBatchTimeout,
	}
}

// NewKafkaReader returns a consumer-group reader for the log topic.
func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: groupID,
	})
}

// Run blocks until ctx is done, flushing what it holds before returning.
func (ix *Indexer) Run(ctx context.Context) error {
	msgs := make(chan kafka.Message)
	readErr := make(chan error, 1)
	go func() {
		defer close(msgs)
		for {
			m, err := ix.r.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, io.EOF) {
					readErr <- err
				}
				return
			}
			// Run drains msgs until it is closed
			msgs <- m
		}
	}()

	ix.log.Info().Int("batch_size", ix.BatchSize).Dur("batch_timeout", ix.BatchTimeout).Msg("starting kafka to elasticsearch indexer")

	batch := make([]json.RawMessage, 0, ix.BatchSize)
	ticker := time.NewTicker(ix.BatchTimeout)
	defer ticker.Stop()

	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		if err := ix.idx.Bulk(ctx, batch); err != nil {
			ix.log.Error().Err(err).Int("docs", len(batch)).Msg("bulk index failed")
		} else {
			ix.log.Debug().Int("docs", len(batch)).Msg("batch indexed")
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-ticker.C:
			flush(ctx)
		case m, ok := <-msgs:
			if !ok {
				// ctx may already be done; give the last batch its own deadline
				fctx, cancel := context.WithTimeout(context.Background(), ix.BatchTimeout)
				flush(fctx)
				cancel()
				select {
				case err := <-readErr:
					return fmt.Errorf("read log topic: %w", err)
				default:
					return nil
				}
			}
			doc, err := normalize(m)
			if err != nil {
				ix.log.Warn().Err(err).Int64("offset", m.Offset).Msg("skipping undecodable log line")
				continue
			}
			batch = append(batch, doc)
			if len(batch) >= ix.BatchSize {
				flush(ctx)
				ticker.Reset(ix.BatchTimeout)
			}
		}
	}
}

// normalize checks the line is a JSON object and fills a missing time from
// the message timestamp.
func normalize(m kafka.Message) (json.RawMessage, error) {
	var doc map[string]any
	if err := json.Unmarshal(m.Value, &doc); err != nil {
		return nil, err
	}
	if _, ok := doc["time"]; !ok {
		at := m.Time
		if at.IsZero() {
			at = time.Now()
		}
		doc["time"] = at.UTC().Format(time.RFC3339Nano)
	}
	return json.Marshal(doc)
}

// ESBulk indexes documents with the Elasticsearch bulk API.
type ESBulk struct {
	es    *elasticsearch.Client
	index string
}

func NewESBulk(url, index string) (*ESBulk, error) {
	cfg := elasticsearch.Config{}
	if url != "" {
		cfg.Addresses = []string{url}
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &ESBulk{es: es, index: index}, nil
}

func (b *ESBulk) Bulk(ctx context.Context, docs []json.RawMessage) error {
	var buf bytes.Buffer
	for _, doc := range docs {
		buf.WriteString("{\"index\":{}}\n")
		buf.Write(doc)
		buf.WriteString("\n")
	}
	res, err := b.es.Bulk(bytes.NewReader(buf.Bytes()),
		b.es.Bulk.WithIndex(b.index),
		b.es.Bulk.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("bulk index: %s", res.Status())
	}
	return nil
}
