package loader

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(app fiber.Router) error {
	if s.err != nil {
		return s.err
	}
	s.loaded = true
	app.Get("/"+s.name, func(c *fiber.Ctx) error { return c.SendString(s.name) })
	return nil
}

func TestManager_LoadAll(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewManager(zap.New(core))

	on := &stubFeature{name: "schedule", enabled: true}
	off := &stubFeature{name: "legacy"}
	m.Register(on)
	m.Register(off)
	assert.Len(t, m.Features(), 2)

	app := fiber.New()
	require.NoError(t, m.LoadAll(app))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
	assert.Equal(t, 1, logs.FilterMessage("Feature disabled").Len())

	resp, err := app.Test(httptest.NewRequest("GET", "/schedule", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/legacy", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestManager_LoadAllError(t *testing.T) {
	m := NewManager(nil)
	m.Register(&stubFeature{name: "broken", enabled: true, err: errors.New("boom")})
	m.Register(&stubFeature{name: "after", enabled: true})

	err := m.LoadAll(fiber.New())
	assert.EqualError(t, err, "load feature broken: boom")
	assert.False(t, m.Features()[1].(*stubFeature).loaded)
}
