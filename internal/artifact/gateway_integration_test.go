package artifact_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"photolabel/internal/artifact"
	"photolabel/internal/vision"
)

type fileModel struct {
	labels []string
}

func (m *fileModel) Labels() []string                          { return m.labels }
func (m *fileModel) Infer(*vision.Canonical) ([]float32, error) { return []float32{1}, nil }
func (m *fileModel) Close() error                              { return nil }

func newLoader(acq *artifact.Acquirer, dest string, constructs *atomic.Int32) vision.Loader {
	return func(ctx context.Context) (vision.Model, error) {
		if _, err := acq.Ensure(ctx, "model-123", dest); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(dest)
		if err != nil {
			return nil, err
		}
		constructs.Add(1)
		return &fileModel{labels: []string{string(data)}}, nil
	}
}

func TestGatewayFetchesAndConstructsOnce(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.WriteString(w, "only-label")
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "model.onnx")
	acq := artifact.NewAcquirer(artifact.NewHTTPFetcher(srv.URL+"/uc?id=%s", 0), nil)

	var constructs atomic.Int32
	g := vision.NewGateway(newLoader(acq, dest, &constructs))

	const n = 16
	var wg sync.WaitGroup
	handles := make(chan vision.Model, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, err := g.EnsureLoaded(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			handles <- m
		}()
	}
	wg.Wait()
	close(handles)

	var first vision.Model
	for m := range handles {
		if first == nil {
			first = m
		}
		if m != first {
			t.Fatal("callers received different handles")
		}
	}
	if hits.Load() != 1 || constructs.Load() != 1 {
		t.Fatalf("fetches = %d, constructs = %d, want 1 and 1", hits.Load(), constructs.Load())
	}

	// A fresh process with the artifact already on disk does not touch the network.
	restarted := vision.NewGateway(newLoader(acq, dest, &constructs))
	if _, err := restarted.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("fetches after restart = %d, want 1", hits.Load())
	}
}
