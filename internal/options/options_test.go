package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Value    int
	Name     string
	Enabled  bool
	LastCall string
}

func (tc *testConfig) SetValue(v int) error {
	if v < 0 {
		return errors.New("value cannot be negative")
	}
	tc.Value = v
	tc.LastCall = "SetValue"

	return nil
}

func (tc *testConfig) SetName(name string) {
	tc.Name = name
	tc.LastCall = "SetName"
}

func (tc *testConfig) SetEnabled(enabled bool) {
	tc.Enabled = enabled
	tc.LastCall = "SetEnabled"
}

func TestOptionNew(t *testing.T) {
	config := &testConfig{}

	t.Run("creates option that can return error", func(t *testing.T) {
		opt := New(func(c *testConfig) error { return c.SetValue(42) })

		require.NoError(t, opt.apply(config))
		require.Equal(t, 42, config.Value)
		require.Equal(t, "SetValue", config.LastCall)
	})

	t.Run("propagates errors from option function", func(t *testing.T) {
		opt := New(func(c *testConfig) error { return c.SetValue(-1) })

		err := opt.apply(config)
		require.Error(t, err)
		require.Contains(t, err.Error(), "value cannot be negative")
	})
}

func TestOptionNoError(t *testing.T) {
	config := &testConfig{}

	opt := NoError(func(c *testConfig) { c.SetName("test") })
	require.NoError(t, opt.apply(config))
	require.Equal(t, "test", config.Name)
}

func TestApply(t *testing.T) {
	t.Run("applies multiple options in order", func(t *testing.T) {
		config := &testConfig{}
		opts := []Option[*testConfig]{
			New(func(c *testConfig) error { return c.SetValue(10) }),
			NoError(func(c *testConfig) { c.SetName("test") }),
			NoError(func(c *testConfig) { c.SetEnabled(true) }),
		}

		require.NoError(t, Apply(config, opts...))
		require.Equal(t, 10, config.Value)
		require.Equal(t, "test", config.Name)
		require.True(t, config.Enabled)
	})

	t.Run("stops at first error and annotates its position", func(t *testing.T) {
		config := &testConfig{}
		opts := []Option[*testConfig]{
			New(func(c *testConfig) error { return c.SetValue(5) }),
			New(func(c *testConfig) error { return c.SetValue(-1) }),
			NoError(func(c *testConfig) { c.SetName("should not be set") }),
		}

		err := Apply(config, opts...)
		require.Error(t, err)
		require.Contains(t, err.Error(), "option 1")
		require.Equal(t, 5, config.Value)
		require.Equal(t, "", config.Name)
	})

	t.Run("works with empty options slice", func(t *testing.T) {
		config := &testConfig{}
		require.NoError(t, Apply(config))
	})
}
