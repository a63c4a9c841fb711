package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go_trial/cravewave/models"
	"go_trial/cravewave/orders"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix matches the key the log was kept under in the browser.
const DefaultRedisPrefix = "crave_orders"

var _ orders.Store = (*Redis)(nil)

// Redis keeps the immutable order documents, the mutable statuses and the
// append order in three keys so a status swap never rewrites the order.
//
//	<prefix>:data   hash  id -> order JSON
//	<prefix>:status hash  id -> status
//	<prefix>:log    list  ids in append order
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) dataKey() string   { return r.prefix + ":data" }
func (r *Redis) statusKey() string { return r.prefix + ":status" }
func (r *Redis) logKey() string    { return r.prefix + ":log" }

const appendScript = `
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
    return 0
end
redis.call('HSET', KEYS[2], ARGV[1], ARGV[3])
redis.call('RPUSH', KEYS[3], ARGV[1])
return 1
`

const swapScript = `
local current = redis.call('HGET', KEYS[1], ARGV[1])
if not current then
    return -1
end
if current ~= ARGV[2] then
    return 0
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[3])
return 1
`

func (r *Redis) LoadOrders(ctx context.Context) ([]models.Order, error) {
	ids, err := r.client.LRange(ctx, r.logKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read order log: %w", err)
	}
	if len(ids) == 0 {
		return []models.Order{}, nil
	}

	pipe := r.client.Pipeline()
	data := pipe.HMGet(ctx, r.dataKey(), ids...)
	statuses := pipe.HMGet(ctx, r.statusKey(), ids...)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read orders: %w", err)
	}

	docs, states := data.Val(), statuses.Val()
	out := make([]models.Order, 0, len(ids))
	for i, id := range ids {
		order, err := decodeOrder(id, docs[i], states[i])
		if err != nil {
			return nil, err
		}
		out = append(out, order)
	}
	return out, nil
}

func (r *Redis) GetOrder(ctx context.Context, id string) (models.Order, error) {
	pipe := r.client.Pipeline()
	data := pipe.HGet(ctx, r.dataKey(), id)
	status := pipe.HGet(ctx, r.statusKey(), id)
	_, err := pipe.Exec(ctx)
	if errors.Is(err, redis.Nil) {
		return models.Order{}, models.NotFound("store.Redis.GetOrder", "order %s not found", id)
	}
	if err != nil {
		return models.Order{}, fmt.Errorf("read order %s: %w", id, err)
	}
	return decodeOrder(id, data.Val(), status.Val())
}

func (r *Redis) AppendOrder(ctx context.Context, order models.Order) error {
	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order %s: %w", order.ID, err)
	}
	keys := []string{r.dataKey(), r.statusKey(), r.logKey()}
	res, err := r.client.Eval(ctx, appendScript, keys, order.ID, doc, string(order.Status)).Int()
	if err != nil {
		return fmt.Errorf("append order %s: %w", order.ID, err)
	}
	if res == 0 {
		return models.Validation("store.Redis.AppendOrder", "order %s already exists", order.ID)
	}
	return nil
}

func (r *Redis) CompareAndSwapStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res, err := r.client.Eval(ctx, swapScript, []string{r.statusKey()}, id, string(from), string(to)).Int()
	if err != nil {
		return fmt.Errorf("swap order %s status: %w", id, err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return orders.ErrStatusConflict
	default:
		return models.NotFound("store.Redis.CompareAndSwapStatus", "order %s not found", id)
	}
}

// decodeOrder rebuilds an order from its document and current status. HMGET
// yields nil for missing fields and HGET yields strings.
func decodeOrder(id string, doc, status any) (models.Order, error) {
	raw, ok := doc.(string)
	if !ok {
		return models.Order{}, fmt.Errorf("order %s: document missing", id)
	}
	var order models.Order
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return models.Order{}, fmt.Errorf("decode order %s: %w", id, err)
	}
	if s, ok := status.(string); ok && s != "" {
		order.Status = models.OrderStatus(s)
	}
	return order, nil
}
