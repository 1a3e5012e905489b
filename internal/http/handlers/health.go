package handlers

import (
	"context"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// --- Health Check ---

// HealthInput is the input for health check endpoints.
type HealthInput struct{}

// HealthOutput is the output for health check endpoints.
type HealthOutput struct {
	Body struct {
		Status string `json:"status" doc:"Service health status"`
	}
}

// HealthCheck returns the service health status.
// This is a public endpoint (no auth required).
func HealthCheck(_ context.Context, _ *HealthInput) (*HealthOutput, error) {
	out := &HealthOutput{}
	out.Body.Status = "ok"
	return out, nil
}

// --- Version ---

// VersionInput is the input for the version endpoint.
type VersionInput struct{}

// VersionOutput is the output for the version endpoint.
type VersionOutput struct {
	Body struct {
		Version string `json:"version" doc:"Agent version"`
		Commit  string `json:"commit" doc:"Git commit"`
		Date    string `json:"date" doc:"Build date"`
	}
}

// Version returns a handler reporting the given build information.
func Version(version, commit, date string) func(context.Context, *VersionInput) (*VersionOutput, error) {
	return func(_ context.Context, _ *VersionInput) (*VersionOutput, error) {
		out := &VersionOutput{}
		out.Body.Version = version
		out.Body.Commit = commit
		out.Body.Date = date
		return out, nil
	}
}

// --- Backend health ---

// BackendHealthInput is the input for probing the SunMind backend.
type BackendHealthInput struct{}

// BackendHealthOutput is the output for probing the SunMind backend.
type BackendHealthOutput struct {
	Body struct {
		Status  string `json:"status" doc:"Status reported by the backend"`
		Latency string `json:"latency" doc:"Round trip time"`
	}
}

// BackendProbe reports the backend's health.
type BackendProbe interface {
	Health(ctx context.Context) (string, error)
}

// BackendHealth returns a handler that probes the backend.
func BackendHealth(probe BackendProbe) func(context.Context, *BackendHealthInput) (*BackendHealthOutput, error) {
	return func(ctx context.Context, _ *BackendHealthInput) (*BackendHealthOutput, error) {
		start := time.Now()
		status, err := probe.Health(ctx)
		if err != nil {
			return nil, huma.Error502BadGateway("backend unreachable: " + err.Error())
		}
		out := &BackendHealthOutput{}
		out.Body.Status = status
		out.Body.Latency = time.Since(start).Round(time.Millisecond).String()
		return out, nil
	}
}
