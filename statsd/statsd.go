// Package statsd is a helper package that wraps some common statsd methods.
// It hides the datadog dependency so a future migration away from datadog only
// needs to edit this single file.
package statsd

import (
	"time"

	ddstatsd "github.com/DataDog/datadog-go/v5/statsd"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var client ddstatsd.ClientInterface = &ddstatsd.NoOpClient{}

func Client() ddstatsd.ClientInterface {
	return client
}

// EmitApplyStat reports how long applying one wire message took.
func EmitApplyStat(start time.Time, stage string) {
	duration := time.Since(start)
	if err := Client().Timing("apply", duration, []string{stage}, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit apply stat: %v", err)
	}
}

// EmitEncodeStat reports how long encoding one wire message took.
func EmitEncodeStat(start time.Time) {
	duration := time.Since(start)
	if err := Client().Timing("encode", duration, nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit encode stat: %v", err)
	}
}

// EmitViolationCount reports ownership violations observed in one message.
func EmitViolationCount(count int) {
	if count == 0 {
		return
	}
	if err := Client().Count("sync.wrong_owner", int64(count), nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit violation count: %v", err)
	}
}

// EmitStaleCount reports stale updates silently dropped in one message.
func EmitStaleCount(count int) {
	if count == 0 {
		return
	}
	if err := Client().Count("sync.stale", int64(count), nil, 1); err != nil {
		log.Logger.Warn().Msgf("failed to emit stale count: %v", err)
	}
}

// Init replaces the no-op client with a real statsd client.
func Init(address string, tags []string) error {
	if address == "" {
		return eris.New("address must not be empty")
	}
	opts := []ddstatsd.Option{
		// The statsd namespace is the prefix of all metrics
		ddstatsd.WithNamespace("netsync"),
	}
	if len(tags) > 0 {
		opts = append(opts, ddstatsd.WithTags(tags))
	}

	newClient, err := ddstatsd.New(address, opts...)
	if err != nil {
		return eris.Wrap(err, "")
	}
	// Success! replace the global client
	client = newClient
	return nil
}
