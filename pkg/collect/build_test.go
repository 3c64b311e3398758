package collect

import "testing"

const classicBuildFixture = `Sending build context to Docker daemon  3.072kB
Step 1/4 : FROM debian:bookworm-slim
 ---> 1f2c3d4e5f6a
Step 2/4 : RUN apt-get update && apt-get clean
 ---> Using cache
 ---> 2a3b4c5d6e7f
Step 3/4 : COPY app /app
 ---> Using cache
 ---> 3b4c5d6e7f8a
Step 4/4 : CMD ["/app"]
 ---> 4c5d6e7f8a9b
Successfully built 4c5d6e7f8a9b
`

const buildkitBuildFixture = `#1 [internal] load build definition from Dockerfile
#1 DONE 0.0s
#4 [1/3] FROM docker.io/library/debian:bookworm-slim
#4 DONE 0.1s
#5 [2/3] RUN apt-get update && apt-get clean
#5 CACHED
#6 [3/3] COPY app /app
#6 DONE 0.3s
#7 exporting to image
#7 DONE 0.1s
`

func TestParseBuildOutput(t *testing.T) {
	tests := []struct {
		name      string
		output    string
		wantHits  int
		wantSteps int
	}{
		{"classic builder", classicBuildFixture, 2, 4},
		{"buildkit", buildkitBuildFixture, 1, 3},
		{"empty output", "", 0, 0},
		{"no cache markers", "Step 1/1 : FROM alpine\nSuccessfully built abc\n", 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hits, steps := parseBuildOutput([]byte(tt.output))
			if hits != tt.wantHits {
				t.Errorf("cache hits = %d, want %d", hits, tt.wantHits)
			}
			if steps != tt.wantSteps {
				t.Errorf("total steps = %d, want %d", steps, tt.wantSteps)
			}
		})
	}
}
