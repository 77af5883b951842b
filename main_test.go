package main

import (
	"context"
	"database/sql/driver"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/drk-nordrhein/selbstauskunft/schema"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var router *httprouter.Router
var resp *httptest.ResponseRecorder

var fakeUnleash *fakeUnleashServer

// Matching functions for sqlmock
type AnyUUID struct{}

func (a AnyUUID) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

type AnyTime struct{}

func (a AnyTime) Match(v driver.Value) bool {
	_, ok := v.(time.Time)
	return ok
}

func TestMain(m *testing.M) {
	setDefaults()
	fakeUnleash = newFakeUnleash()
	viper.Set("unleash_path", fakeUnleash.url())

	code := m.Run()

	fakeUnleash.srv.Close()
	os.Exit(code)
}

func setup() {
	setDefaults()
	logger = zap.NewNop()
	questions = schema.Default()
	location = time.UTC
	now = func() time.Time { return time.Date(2026, time.March, 7, 15, 4, 5, 0, time.UTC) }
	router = httprouter.New()
	resp = httptest.NewRecorder()

	addRoutes(router)
}

// toggleFeature flips a flag on the fake Unleash server and waits until a new
// client has picked it up.
func toggleFeature(feature string, enabled bool) {
	fakeUnleash.setEnabled(feature, enabled)

	l := newReadyListener()
	if err := initUnleash(l); err != nil {
		panic(err)
	}
	l.wait(2 * time.Second)
}

func TestNewServer(t *testing.T) {
	setup()
	viper.Set("listen_port", "9191")
	defer viper.Set("listen_port", "8080")

	srv := newServer(router)
	assert.Equal(t, ":9191", srv.Addr)
	assert.Equal(t, router, srv.Handler)
}

func TestRunStopsWhenContextIsCancelled(t *testing.T) {
	setup()
	viper.Set("listen_port", "0")
	defer viper.Set("listen_port", "8080")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, newServer(router)) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestConfigureLoadsSchemaAndTimezone(t *testing.T) {
	setup()
	dir := t.TempDir()
	path := dir + "/schema.yaml"
	require.NoError(t, os.WriteFile(path, []byte(`
version: "test-1"
sections:
  - id: s
    title: S
    questions:
      - id: q
        text: Q
        type: confirmation
`), 0o600))

	viper.Set("schema_path", path)
	viper.Set("unleash_enabled", false)
	defer func() {
		viper.Set("schema_path", "")
		viper.Set("unleash_enabled", true)
		questions = schema.Default()
	}()

	require.NoError(t, configure())
	assert.Equal(t, "test-1", questions.Version)
	assert.Equal(t, "Europe/Berlin", location.String())
}

func TestConfigureRejectsUnknownTimezone(t *testing.T) {
	setup()
	viper.Set("timezone", "Mars/Olympus")
	viper.Set("unleash_enabled", false)
	defer func() {
		viper.Set("timezone", "Europe/Berlin")
		viper.Set("unleash_enabled", true)
	}()

	assert.Error(t, configure())
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		l, err := newLogger("debug", format, "drk-selbstauskunft")
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(zap.DebugLevel))
	}

	l, err := newLogger("nonsense", "json", "")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.DebugLevel))
	assert.True(t, l.Core().Enabled(zap.InfoLevel))
}
