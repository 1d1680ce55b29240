package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "healthy"},
		{StatusDegraded, "degraded"},
		{StatusUnhealthy, "unhealthy"},
		{StatusCritical, "critical"},
		{Status(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.status.String(); got != tt.want {
				t.Errorf("Status.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_HTTPStatus(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusHealthy, 200},
		{StatusDegraded, 200},
		{StatusUnhealthy, 503},
		{StatusCritical, 503},
	}

	for _, tt := range tests {
		if got := tt.status.HTTPStatus(); got != tt.want {
			t.Errorf("%v.HTTPStatus() = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestStatus_MarshalJSON(t *testing.T) {
	data, err := StatusCritical.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(data) != `"critical"` {
		t.Errorf("MarshalJSON() = %s, want \"critical\"", data)
	}
}

func TestWorst(t *testing.T) {
	if got := worst(StatusHealthy, StatusDegraded); got != StatusDegraded {
		t.Errorf("worst(healthy, degraded) = %v, want degraded", got)
	}
	if got := worst(StatusCritical, StatusUnhealthy); got != StatusCritical {
		t.Errorf("worst(critical, unhealthy) = %v, want critical", got)
	}
}

func TestHealthy(t *testing.T) {
	result := Healthy("test message")

	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
	if result.Message != "test message" {
		t.Errorf("Message = %v, want 'test message'", result.Message)
	}
	if result.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
}

func TestDegraded(t *testing.T) {
	result := Degraded("degraded message")

	if result.Status != StatusDegraded {
		t.Errorf("Status = %v, want StatusDegraded", result.Status)
	}
}

func TestUnhealthy(t *testing.T) {
	checkErr := errors.New("connection refused")
	result := Unhealthy("check failed", checkErr)

	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want StatusUnhealthy", result.Status)
	}
	if !errors.Is(result.Error, checkErr) {
		t.Errorf("Error = %v, want the check error", result.Error)
	}
}

func TestResult_WithDetails(t *testing.T) {
	result := Healthy("ok").WithDetails(map[string]any{"connections": 5})

	if result.Details["connections"] != 5 {
		t.Errorf("Details = %v, want connections=5", result.Details)
	}
}

func TestCheckerFunc(t *testing.T) {
	checker := NewCheckerFunc("database", func(ctx context.Context) Result {
		return Healthy("connected")
	})

	if checker.Name() != "database" {
		t.Errorf("Name() = %v, want database", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy {
		t.Errorf("Status = %v, want StatusHealthy", result.Status)
	}
}
