package vision

import (
	"context"
	"fmt"
	"sync"
)

// Model is a loaded classifier. Infer returns one probability per label, in Labels order.
type Model interface {
	Labels() []string
	Infer(img *Canonical) ([]float32, error)
	Close() error
}

// Loader acquires the model artifact and constructs the classifier from it.
type Loader func(ctx context.Context) (Model, error)

// Gateway owns the process-wide classifier. The first EnsureLoaded call runs the
// loader; every later call, concurrent or not, sees the same model or the same error.
type Gateway struct {
	mu   sync.Mutex
	load Loader

	done  bool
	model Model
	err   error
}

func NewGateway(load Loader) *Gateway {
	return &Gateway{load: load}
}

func (g *Gateway) EnsureLoaded(ctx context.Context) (Model, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done {
		return g.model, g.err
	}

	m, err := g.load(ctx)
	g.done = true
	if err != nil {
		g.err = fmt.Errorf("%w: %w", ErrModelUnavailable, err)
		return nil, g.err
	}
	if len(m.Labels()) == 0 {
		_ = m.Close()
		g.err = fmt.Errorf("%w: model has an empty label vocabulary", ErrModelUnavailable)
		return nil, g.err
	}
	g.model = m
	return g.model, nil
}

// Loaded reports whether a model is ready without triggering a load.
func (g *Gateway) Loaded() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done && g.err == nil
}

// Labels returns the vocabulary, or nil before a successful load.
func (g *Gateway) Labels() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.model == nil {
		return nil
	}
	return append([]string{}, g.model.Labels()...)
}

// Predict classifies img with the shared model.
func (g *Gateway) Predict(ctx context.Context, img *Canonical) (*Prediction, error) {
	m, err := g.EnsureLoaded(ctx)
	if err != nil {
		return nil, err
	}

	probs, err := m.Infer(img)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	labels := m.Labels()
	if len(probs) != len(labels) {
		return nil, fmt.Errorf("%w: got %d scores for %d labels", ErrInference, len(probs), len(labels))
	}
	return NewPrediction(labels, probs), nil
}

// Close releases the model. Later calls report ErrModelUnavailable.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.done = true
	if g.err == nil {
		g.err = fmt.Errorf("%w: classifier closed", ErrModelUnavailable)
	}
	if g.model == nil {
		return nil
	}
	err := g.model.Close()
	g.model = nil
	return err
}
