package gamestate

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	ddotel "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/opentelemetry"
	ddtracer "gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

var _ PrimitiveStorage[string] = &RedisStorage{}

type RedisStorage struct {
	currentClient redis.Cmdable
	tracer        trace.Tracer
}

func NewRedisPrimitiveStorage(client redis.Cmdable) PrimitiveStorage[string] {
	return &RedisStorage{
		currentClient: client,
		tracer:        otel.Tracer("redis"),
	}
}

func (r *RedisStorage) GetUInt64(ctx context.Context, key string) (uint64, error) {
	res, err := r.currentClient.Get(ctx, key).Uint64()
	if err != nil {
		return 0, eris.Wrap(err, "")
	}
	return res, nil
}

func (r *RedisStorage) GetBytes(ctx context.Context, key string) ([]byte, error) {
	bz, err := r.currentClient.Get(ctx, key).Bytes()
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}

func (r *RedisStorage) Set(ctx context.Context, key string, value any) error {
	return eris.Wrap(r.currentClient.Set(ctx, key, value, 0).Err(), "")
}

func (r *RedisStorage) Incr(ctx context.Context, key string) (uint64, error) {
	res, err := r.currentClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, eris.Wrap(err, "")
	}
	return uint64(res), nil
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return eris.Wrap(r.currentClient.Del(ctx, key).Err(), "")
}

func (r *RedisStorage) Keys(ctx context.Context) ([]string, error) {
	res, err := r.currentClient.Keys(ctx, "*").Result()
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return res, nil
}

func (r *RedisStorage) Close(ctx context.Context) error {
	return eris.Wrap(r.currentClient.Shutdown(ctx).Err(), "")
}

func (r *RedisStorage) StartTransaction(_ context.Context) (Transaction[string], error) {
	pipeline := r.currentClient.TxPipeline()
	return NewRedisPrimitiveStorage(pipeline), nil
}

func (r *RedisStorage) EndTransaction(ctx context.Context) error {
	ctx, span := r.tracer.Start(ddotel.ContextWithStartOptions(ctx, ddtracer.Measured()), "redis.transaction.end")
	defer span.End()

	pipeline, ok := r.currentClient.(redis.Pipeliner)
	if !ok {
		err := eris.New("current redis storage is not a pipeline/transaction")
		span.SetStatus(codes.Error, eris.ToString(err, true))
		span.RecordError(err)
		return err
	}

	if _, err := pipeline.Exec(ctx); err != nil {
		span.SetStatus(codes.Error, eris.ToString(err, true))
		span.RecordError(err)
		return eris.Wrap(err, "")
	}

	return nil
}
