package log_test

import (
	"testing"

	"github.com/pagesift/pagesift/pkg/log"
	"github.com/pagesift/pagesift/pkg/security"
	"github.com/pagesift/pagesift/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events []*log.LogEvent
}

func (s *captureSink) Write(event *log.LogEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close() error { return nil }

func TestRouter_ParsesZerologOutput(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)

	zl := zerolog.New(router).With().Timestamp().Logger()
	zl.Warn().Str("url", "https://example.com").Int("status_code", 503).Msg("Received non-success HTTP response")

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, types.WarnLevel, evt.Level)
	assert.Equal(t, "Received non-success HTTP response", evt.Message)
	assert.Equal(t, "https://example.com", evt.Fields["url"])
	assert.False(t, evt.Timestamp.IsZero())
}

func TestRouter_RedactsSecrets(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)
	router.Redactor = &security.Redactor{Secrets: []string{"sk-verysecret"}}

	zl := zerolog.New(router)
	zl.Info().Str("api_key", "sk-verysecret").Msg("using key sk-verysecret")

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, "using key ********", evt.Message)
	assert.Equal(t, "********", evt.Fields["api_key"])
}

func TestRouter_FansOutToEverySink(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	router := log.NewRouter(first)
	router.AddSink(second)

	zl := zerolog.New(router)
	zl.Info().Msg("fan out")

	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
}

func TestConvertZerologLevel(t *testing.T) {
	assert.Equal(t, types.DebugLevel, log.ConvertZerologLevel(zerolog.DebugLevel))
	assert.Equal(t, types.InfoLevel, log.ConvertZerologLevel(zerolog.InfoLevel))
	assert.Equal(t, types.WarnLevel, log.ConvertZerologLevel(zerolog.WarnLevel))
	assert.Equal(t, types.ErrorLevel, log.ConvertZerologLevel(zerolog.ErrorLevel))
	assert.Equal(t, types.FatalLevel, log.ConvertZerologLevel(zerolog.FatalLevel))
	assert.Equal(t, types.InfoLevel, log.ConvertZerologLevel(zerolog.TraceLevel))
}
