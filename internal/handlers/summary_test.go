package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendtrack/vendtrack-api/internal/models"
	"github.com/vendtrack/vendtrack-api/internal/services"
)

// MockSummaryService is a function-field mock of SummaryService.
type MockSummaryService struct {
	DailyTotalsFunc   func(from, to string) ([]models.DailyTotal, error)
	TopMachinesFunc   func(limit int, from, to string) ([]models.TopMachine, error)
	MachineTotalsFunc func(from, to string) ([]models.MachineTotal, error)
}

func (m *MockSummaryService) DailyTotals(_ context.Context, from, to string) ([]models.DailyTotal, error) {
	if m.DailyTotalsFunc != nil {
		return m.DailyTotalsFunc(from, to)
	}
	return nil, nil
}

func (m *MockSummaryService) TopMachines(_ context.Context, limit int, from, to string) ([]models.TopMachine, error) {
	if m.TopMachinesFunc != nil {
		return m.TopMachinesFunc(limit, from, to)
	}
	return nil, nil
}

func (m *MockSummaryService) MachineTotals(_ context.Context, from, to string) ([]models.MachineTotal, error) {
	if m.MachineTotalsFunc != nil {
		return m.MachineTotalsFunc(from, to)
	}
	return nil, nil
}

func newSummaryApp(svc SummaryService) *fiber.App {
	handler := NewSummaryHandler(svc)

	app := fiber.New()
	app.Get("/v1/summary/daily", handler.Daily)
	app.Get("/v1/summary/top-machines", handler.TopMachines)
	app.Get("/v1/summary/machines", handler.Machines)

	return app
}

func TestSummaryDaily_Success(t *testing.T) {
	svc := &MockSummaryService{
		DailyTotalsFunc: func(from, to string) ([]models.DailyTotal, error) {
			return []models.DailyTotal{
				{Day: "2025-01-01", CashTotal: 4500, CardTotal: 6200, Total: 10700, OrderCount: 71},
				{Day: "2025-01-02", CashTotal: 3900, CardTotal: 5800, Total: 9700, OrderCount: 64},
			}, nil
		},
	}
	app := newSummaryApp(svc)

	req := httptest.NewRequest("GET", "/v1/summary/daily", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)

	data := result["data"].([]interface{})
	require.Len(t, data, 2)

	first := data[0].(map[string]interface{})
	assert.Equal(t, "2025-01-01", first["day"])
	assert.Equal(t, float64(10700), first["total"])
}

func TestSummaryDaily_EmptyIsNotNull(t *testing.T) {
	app := newSummaryApp(&MockSummaryService{})

	req := httptest.NewRequest("GET", "/v1/summary/daily", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var result map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)

	data, ok := result["data"].([]interface{})
	require.True(t, ok, "data must be a JSON array, not null")
	assert.Empty(t, data)
}

func TestSummaryDaily_InvalidDate(t *testing.T) {
	svc := &MockSummaryService{
		DailyTotalsFunc: func(string, string) ([]models.DailyTotal, error) {
			return nil, fmt.Errorf("parsing from: %w", services.ErrInvalidDate)
		},
	}
	app := newSummaryApp(svc)

	req := httptest.NewRequest("GET", "/v1/summary/daily?from=garbage", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSummaryTopMachines_DefaultLimit(t *testing.T) {
	var gotLimit int

	svc := &MockSummaryService{
		TopMachinesFunc: func(limit int, from, to string) ([]models.TopMachine, error) {
			gotLimit = limit
			return []models.TopMachine{{MachineCode: "A01", Total: 52000, OrderCount: 340}}, nil
		},
	}
	app := newSummaryApp(svc)

	req := httptest.NewRequest("GET", "/v1/summary/top-machines", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 10, gotLimit)
}

func TestSummaryTopMachines_ExplicitLimit(t *testing.T) {
	var gotLimit int

	svc := &MockSummaryService{
		TopMachinesFunc: func(limit int, from, to string) ([]models.TopMachine, error) {
			gotLimit = limit
			return nil, nil
		},
	}
	app := newSummaryApp(svc)

	req := httptest.NewRequest("GET", "/v1/summary/top-machines?limit=3", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 3, gotLimit)
}

func TestSummaryTopMachines_BadLimit(t *testing.T) {
	app := newSummaryApp(&MockSummaryService{})

	for _, limit := range []string{"abc", "-5"} {
		req := httptest.NewRequest("GET", "/v1/summary/top-machines?limit="+limit, nil)

		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
}

func TestSummaryMachines_Success(t *testing.T) {
	svc := &MockSummaryService{
		MachineTotalsFunc: func(from, to string) ([]models.MachineTotal, error) {
			return []models.MachineTotal{
				{MachineCode: "A01", CashTotal: 45000, CardTotal: 38000, RefundedTotal: 500, OrderCount: 612},
			}, nil
		},
	}
	app := newSummaryApp(svc)

	req := httptest.NewRequest("GET", "/v1/summary/machines", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&result)
	require.NoError(t, err)

	data := result["data"].([]interface{})
	require.Len(t, data, 1)

	row := data[0].(map[string]interface{})
	assert.Equal(t, "A01", row["machine_code"])
	assert.Equal(t, float64(500), row["refunded_total"])
}

func TestSummaryMachines_StoreFailure(t *testing.T) {
	svc := &MockSummaryService{
		MachineTotalsFunc: func(string, string) ([]models.MachineTotal, error) {
			return nil, fmt.Errorf("timeout")
		},
	}
	app := newSummaryApp(svc)

	req := httptest.NewRequest("GET", "/v1/summary/machines", nil)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
