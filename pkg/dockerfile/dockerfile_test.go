package dockerfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dockgrade/dockgrade/pkg/types"
)

func writeDockerfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Dockerfile")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDetectFeatures(t *testing.T) {
	tests := []struct {
		name       string
		dockerfile string
		want       types.Features
	}{
		{
			name: "multi stage with all practices",
			dockerfile: `FROM golang:1.25 AS builder
WORKDIR /src
RUN go build -o /app ./...

FROM debian:bookworm-slim
RUN apt-get update && apt-get install -y ca-certificates && apt-get clean
COPY --from=builder /app /app
USER appuser
HEALTHCHECK CMD ["/app", "healthz"]
CMD ["/app"]
`,
			want: types.Features{MultiStage: true, NonRootUser: true, HealthCheck: true, CacheCleanup: true},
		},
		{
			name: "single stage no practices",
			dockerfile: `FROM ubuntu:24.04
RUN apt-get update && apt-get install -y curl
CMD ["bash"]
`,
			want: types.Features{},
		},
		{
			name: "stage alias counts even with one stage",
			dockerfile: `FROM alpine AS base
CMD ["sh"]
`,
			want: types.Features{MultiStage: true},
		},
		{
			name: "root user does not count",
			dockerfile: `FROM alpine
USER root
CMD ["sh"]
`,
			want: types.Features{},
		},
		{
			name: "numeric uid with group counts",
			dockerfile: `FROM alpine
USER 1000:1000
CMD ["sh"]
`,
			want: types.Features{NonRootUser: true},
		},
		{
			name: "healthcheck none does not count",
			dockerfile: `FROM alpine
HEALTHCHECK NONE
CMD ["sh"]
`,
			want: types.Features{},
		},
		{
			name: "apk no-cache counts as cleanup",
			dockerfile: `FROM alpine
RUN apk add --no-cache curl
CMD ["sh"]
`,
			want: types.Features{CacheCleanup: true},
		},
		{
			name: "pip no-cache-dir counts as cleanup",
			dockerfile: `FROM python:3.12-slim
RUN pip install --no-cache-dir requests
CMD ["python"]
`,
			want: types.Features{CacheCleanup: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDockerfile(t, tt.dockerfile)
			got, err := DetectFeatures(path)
			if err != nil {
				t.Fatalf("DetectFeatures() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFeatures() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDetectFeatures_MissingFile(t *testing.T) {
	if _, err := DetectFeatures(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing Dockerfile")
	}
}
