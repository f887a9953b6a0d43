package vision

import (
	"context"
	"errors"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeModel struct {
	labels []string
	probs  []float32
	err    error
	closed atomic.Bool
}

func (m *fakeModel) Labels() []string { return m.labels }

func (m *fakeModel) Infer(*Canonical) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.probs, nil
}

func (m *fakeModel) Close() error {
	m.closed.Store(true)
	return nil
}

func testImage() *Canonical {
	return &Canonical{Image: image.NewNRGBA(image.Rect(0, 0, 2, 2)), Format: "png"}
}

func TestEnsureLoadedConcurrentCallersShareOneLoad(t *testing.T) {
	var loads atomic.Int32
	model := &fakeModel{labels: []string{"cat", "dog"}, probs: []float32{0.4, 0.6}}
	g := NewGateway(func(context.Context) (Model, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return model, nil
	})

	const n = 32
	var wg sync.WaitGroup
	handles := make([]Model, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = g.EnsureLoaded(context.Background())
		}(i)
	}
	wg.Wait()

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d error = %v", i, errs[i])
		}
		if handles[i] != Model(model) {
			t.Fatalf("caller %d got a different handle", i)
		}
	}
	if !g.Loaded() {
		t.Error("Loaded() = false after successful load")
	}
}

func TestEnsureLoadedMemoisesFailure(t *testing.T) {
	var loads atomic.Int32
	boom := errors.New("fetch failed")
	g := NewGateway(func(context.Context) (Model, error) {
		loads.Add(1)
		return nil, boom
	})

	for i := 0; i < 3; i++ {
		_, err := g.EnsureLoaded(context.Background())
		if !errors.Is(err, ErrModelUnavailable) || !errors.Is(err, boom) {
			t.Fatalf("EnsureLoaded() error = %v", err)
		}
	}
	if got := loads.Load(); got != 1 {
		t.Errorf("loader ran %d times, want 1", got)
	}
	if g.Loaded() {
		t.Error("Loaded() = true after failure")
	}
	if _, err := g.Predict(context.Background(), testImage()); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Predict() error = %v, want ErrModelUnavailable", err)
	}
}

func TestEnsureLoadedRejectsEmptyVocabulary(t *testing.T) {
	model := &fakeModel{}
	g := NewGateway(func(context.Context) (Model, error) { return model, nil })

	if _, err := g.EnsureLoaded(context.Background()); !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("EnsureLoaded() error = %v", err)
	}
	if !model.closed.Load() {
		t.Error("rejected model was not closed")
	}
}

func TestPredict(t *testing.T) {
	g := NewGateway(func(context.Context) (Model, error) {
		return &fakeModel{labels: []string{"A", "B", "C"}, probs: []float32{0.1, 0.7, 0.2}}, nil
	})

	p, err := g.Predict(context.Background(), testImage())
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if p.Label != "B" {
		t.Errorf("Label = %s, want B", p.Label)
	}
	if len(p.Probabilities) != 3 || p.Probabilities[2].Label != "C" {
		t.Errorf("Probabilities = %+v", p.Probabilities)
	}
	if labels := g.Labels(); len(labels) != 3 {
		t.Errorf("Labels() = %v", labels)
	}
}

func TestPredictSurfacesInferenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeModel
	}{
		{"model error", &fakeModel{labels: []string{"a"}, err: errors.New("bad tensor")}},
		{"score count mismatch", &fakeModel{labels: []string{"a", "b"}, probs: []float32{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGateway(func(context.Context) (Model, error) { return tt.model, nil })
			if _, err := g.Predict(context.Background(), testImage()); !errors.Is(err, ErrInference) {
				t.Fatalf("Predict() error = %v, want ErrInference", err)
			}
		})
	}
}

func TestCloseReleasesModel(t *testing.T) {
	model := &fakeModel{labels: []string{"a"}, probs: []float32{1}}
	g := NewGateway(func(context.Context) (Model, error) { return model, nil })
	if _, err := g.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	if !model.closed.Load() {
		t.Error("model not closed")
	}
}

func TestClosedGatewayReportsUnavailable(t *testing.T) {
	model := &fakeModel{labels: []string{"a"}, probs: []float32{1}}
	g := NewGateway(func(context.Context) (Model, error) { return model, nil })
	ctx := context.Background()
	if _, err := g.EnsureLoaded(ctx); err != nil {
		t.Fatal(err)
	}
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}

	m, err := g.EnsureLoaded(ctx)
	if m != nil || !errors.Is(err, ErrModelUnavailable) {
		t.Fatalf("EnsureLoaded() after Close = (%v, %v), want ErrModelUnavailable", m, err)
	}
	if _, err := g.Predict(ctx, testImage()); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("Predict() after Close error = %v, want ErrModelUnavailable", err)
	}
	if g.Loaded() {
		t.Error("Loaded() = true after Close")
	}
}

func TestCloseBeforeLoad(t *testing.T) {
	var loads atomic.Int32
	g := NewGateway(func(context.Context) (Model, error) {
		loads.Add(1)
		return &fakeModel{labels: []string{"a"}}, nil
	})
	if err := g.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := g.EnsureLoaded(context.Background()); !errors.Is(err, ErrModelUnavailable) {
		t.Errorf("EnsureLoaded() error = %v, want ErrModelUnavailable", err)
	}
	if loads.Load() != 0 {
		t.Error("loader ran after Close")
	}
}
