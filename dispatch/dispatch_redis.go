package dispatch

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Queue backed by a redis list. Deep-analysis workers consume with BRPOP;
// this side only pushes.
type RedisQueue struct {
	Client *redis.Client
	Key    string
}

var _ Queue = (*RedisQueue)(nil)

func NewRedisQueue(redisURL, key string) (*RedisQueue, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.Background()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisQueue{
		Client: rdb,
		Key:    key,
	}, nil
}

func (q *RedisQueue) Enqueue(ctx context.Context, task *Task) error {
	raw, err := json.Marshal(task)
	if err != nil {
		return err
	}
	if err := q.Client.LPush(ctx, q.Key, raw).Err(); err != nil {
		tasksDropped.Inc()
		return err
	}
	tasksEnqueued.Inc()
	return nil
}
