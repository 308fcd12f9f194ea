package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"testing/fstest"

	"github.com/CristiGvl/cpurun/internal/cpu"
	"github.com/go-logr/logr"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer() *Server {
	return testServerWithSys("/nonexistent/sys")
}

func testServerWithSys(sysMount string) *Server {
	fsys := fstest.MapFS{
		"cpu0/cpufreq/cpuinfo_max_freq":              {Data: []byte("2016000\n")},
		"cpu0/cpufreq/cpuinfo_min_freq":              {Data: []byte("300000\n")},
		"cpu0/cpufreq/scaling_available_frequencies": {Data: []byte("300000 1017600 2016000\n")},
		"cpu0/cpufreq/scaling_governor":              {Data: []byte("schedutil\n")},
		"cpu0/cpufreq/scaling_available_governors":   {Data: []byte("schedutil performance\n")},
		"cpu0/cpufreq/scaling_cur_freq":              {Data: []byte("1017600\n")},
		"cpu1/cpufreq/related_cpus":                  {Data: []byte("0-1\n")},
		"cpu2/cpufreq/scaling_cur_freq":              {Data: []byte("2016000\n")},
		"cpuidle/current_driver":                     {Data: []byte("psci_idle\n")},
	}
	reader := cpu.NewReader(
		cpu.WithFS(fsys),
		cpu.WithArchProbes(func() bool { return true }),
	)
	return NewServer(reader, sysMount, cpu.DefaultCurFreqFormat, logr.Discard())
}

func get(t *testing.T, s *Server, target string) (int, map[string]json.RawMessage) {
	t.Helper()

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields), string(body))
	return resp.StatusCode, fields
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestGetCores(t *testing.T) {
	status, body := get(t, testServer(), "/api/cpu/cores")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, 3, decode[int](t, body["cores"]))
	assert.True(t, decode[bool](t, body["known"]))
	assert.True(t, decode[bool](t, body["is_64_bit"]))
}

func TestGetFrequency(t *testing.T) {
	status, body := get(t, testServer(), "/api/cpu/frequency")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, cpu.Reading[int64]{Value: 2016000, Known: true}, decode[cpu.Reading[int64]](t, body["max_khz"]))
	assert.Equal(t, cpu.Reading[int64]{Value: 300000, Known: true}, decode[cpu.Reading[int64]](t, body["min_khz"]))
	assert.Equal(t, []int64{300000, 1017600, 2016000}, decode[cpu.Reading[[]int64]](t, body["available_khz"]).Value)
	assert.Equal(t, "300000 1017600 2016000", decode[cpu.Reading[string]](t, body["available_raw"]).Value)
}

func TestGetGovernor(t *testing.T) {
	status, body := get(t, testServer(), "/api/cpu/governor")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "schedutil", decode[cpu.Reading[string]](t, body["governor"]).Value)
	assert.Equal(t, []string{"schedutil", "performance"}, decode[cpu.Reading[[]string]](t, body["available"]).Value)
}

func TestGetCurrentFrequencies(t *testing.T) {
	s := testServer()

	t.Run("defaults", func(t *testing.T) {
		status, body := get(t, s, "/api/cpu/current")
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, 3, decode[int](t, body["cores"]))
		assert.Equal(t, []string{"cpu0: 1017600 kHz", "cpu2: 2016000 kHz"}, decode[[]string](t, body["formatted"]))
		assert.Equal(t, []cpu.CoreFrequency{{Index: 0, Raw: "1017600"}, {Index: 2, Raw: "2016000"}},
			decode[[]cpu.CoreFrequency](t, body["entries"]))
	})

	t.Run("query overrides", func(t *testing.T) {
		status, body := get(t, s, "/api/cpu/current?cores=1&format=%23%25d%3D%25s")
		require.Equal(t, http.StatusOK, status)

		assert.Equal(t, []string{"#0=1017600"}, decode[[]string](t, body["formatted"]))
	})

	t.Run("invalid core count", func(t *testing.T) {
		for _, cores := range []string{"-1", "abc", strconv.Itoa(cpu.MaxCores + 1), "9223372036854775807"} {
			status, body := get(t, s, "/api/cpu/current?cores="+cores)
			assert.Equal(t, http.StatusBadRequest, status, cores)
			assert.Equal(t, "invalid core count", decode[string](t, body["error"]), cores)
		}
	})

	t.Run("largest core count", func(t *testing.T) {
		status, body := get(t, s, "/api/cpu/current?cores="+strconv.Itoa(cpu.MaxCores))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, cpu.MaxCores, decode[int](t, body["cores"]))
		assert.Len(t, decode[[]cpu.CoreFrequency](t, body["entries"]), 2)
	})
}

func TestGetPolicies_Unavailable(t *testing.T) {
	status, body := get(t, testServer(), "/api/cpu/policies")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "cpufreq policies unavailable", decode[string](t, body["error"]))
}

func TestHandlerPanicRecovered(t *testing.T) {
	s := testServer()
	s.app.Get("/api/boom", func(c *fiber.Ctx) error {
		panic("boom")
	})

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/api/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	status, _ := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, status, "server keeps serving after a panic")
}

func TestGetCPU(t *testing.T) {
	status, body := get(t, testServer(), "/api/cpu")
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, cpu.Reading[int]{Value: 3, Known: true}, decode[cpu.Reading[int]](t, body["cores"]))
	assert.Equal(t, "schedutil", decode[cpu.Reading[string]](t, body["governor"]).Value)
	assert.Len(t, decode[[]cpu.CoreFrequency](t, body["current_frequencies"]), 2)
	assert.Contains(t, body, "collected_at")
}

func TestGetCPU_CancelledRequest(t *testing.T) {
	s := testServer()
	s.app.Get("/api/cpu-cancelled", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithCancel(c.UserContext())
		cancel()
		c.SetUserContext(ctx)
		return s.getCPU(c)
	})

	status, body := get(t, s, "/api/cpu-cancelled")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, cpu.Reading[int]{Value: 3, Known: true}, decode[cpu.Reading[int]](t, body["cores"]))
	assert.Contains(t, body, "collected_at")
}

func TestHealthCheck(t *testing.T) {
	status, body := get(t, testServer(), "/api/health")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode[string](t, body["status"]))
}
