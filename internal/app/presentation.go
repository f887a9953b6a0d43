package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"photolabel/internal/catalog"
	"photolabel/internal/session"
	"photolabel/internal/video"
	"photolabel/internal/vision"
)

var (
	ErrNoImage      = errors.New("no image submitted yet")
	ErrNoPrediction = errors.New("no prediction yet, submit an image first")
	ErrUnknownLabel = errors.New("label is not in the classifier vocabulary")
	ErrSessionStore = errors.New("session store failure")
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseImageReady Phase = "image_ready"
	PhasePredicted  Phase = "predicted"
)

const (
	SourceUpload = "upload"
	SourceCamera = "camera"
)

// Classifier is the part of the classifier gateway the page needs.
type Classifier interface {
	Predict(ctx context.Context, img *vision.Canonical) (*vision.Prediction, error)
	Labels() []string
}

type Normalizer func(data []byte) (*vision.Canonical, error)

type SubmitInput struct {
	SessionID string
	Image     []byte
	Source    string
}

// Panel is the content shown for the selected label.
type Panel struct {
	Label  string       `json:"label"`
	Texts  []string     `json:"texts"`
	Images []string     `json:"images"`
	Videos []video.Link `json:"videos"`
	Empty  bool         `json:"empty"`
}

// View is everything the page renders for one session.
type View struct {
	Phase          Phase                `json:"phase"`
	Labels         []string             `json:"labels"`
	PredictedLabel string               `json:"predicted_label,omitempty"`
	Ranking        []vision.RankedLabel `json:"ranking,omitempty"`
	SelectedLabel  string               `json:"selected_label,omitempty"`
	Panel          *Panel               `json:"panel,omitempty"`
	ImageFormat    string               `json:"image_format,omitempty"`
	ImageSource    string               `json:"image_source,omitempty"`
	UpdatedAt      *time.Time           `json:"updated_at,omitempty"`
}

// Presentation drives the submit → predict → select cycle for a session.
// Session state is written only after a submission fully succeeds.
type Presentation struct {
	store      session.Store
	classifier Classifier
	catalog    *catalog.Catalog
	normalize  Normalizer
	logger     *slog.Logger
	now        func() time.Time
}

func NewPresentation(store session.Store, classifier Classifier, cat *catalog.Catalog, logger *slog.Logger) *Presentation {
	if logger == nil {
		logger = slog.Default()
	}
	return &Presentation{
		store:      store,
		classifier: classifier,
		catalog:    cat,
		normalize:  vision.Normalize,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit classifies a new image and makes it the session's current one.
// On a decode or inference error the session keeps its previous image and prediction.
func (p *Presentation) Submit(ctx context.Context, input SubmitInput) (*View, error) {
	source := normalizeSource(input.Source)

	img, err := p.normalize(input.Image)
	if err != nil {
		p.logger.Info("image rejected", "session", input.SessionID, "source", source, "error", err)
		return nil, err
	}

	pred, err := p.classifier.Predict(ctx, img)
	if err != nil {
		p.logger.Error("prediction failed", "session", input.SessionID, "error", err)
		return nil, err
	}

	state := session.State{
		Image:         input.Image,
		ImageFormat:   img.Format,
		ImageSource:   source,
		Prediction:    pred,
		SelectedLabel: pred.Label,
		UpdatedAt:     p.now(),
	}
	if err := p.store.Save(ctx, input.SessionID, state); err != nil {
		return nil, fmt.Errorf("%w: save: %w", ErrSessionStore, err)
	}

	p.logger.Info("image classified",
		"session", input.SessionID,
		"source", source,
		"format", img.Format,
		"width", img.Width(),
		"height", img.Height(),
		"label", pred.Label,
	)
	return p.render(state), nil
}

// Select changes which label's content is displayed. It never re-runs prediction.
func (p *Presentation) Select(ctx context.Context, sessionID, label string) (*View, error) {
	state, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Prediction == nil {
		return nil, ErrNoPrediction
	}
	if !slices.Contains(p.classifier.Labels(), label) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
	}

	state.SelectedLabel = label
	state.UpdatedAt = p.now()
	if err := p.store.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("%w: save: %w", ErrSessionStore, err)
	}
	return p.render(state), nil
}

// View renders the session's current state.
func (p *Presentation) View(ctx context.Context, sessionID string) (*View, error) {
	state, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return p.render(state), nil
}

// Preview returns the session's image as an upright JPEG suitable for a browser.
func (p *Presentation) Preview(ctx context.Context, sessionID string) ([]byte, error) {
	state, err := p.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(state.Image) == 0 {
		return nil, ErrNoImage
	}
	img, err := p.normalize(state.Image)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img.Image, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode preview failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Lookup returns the content bundle for any label.
func (p *Presentation) Lookup(label string) catalog.Bundle {
	return p.catalog.Lookup(label)
}

func (p *Presentation) Labels() []string {
	return p.classifier.Labels()
}

func (p *Presentation) load(ctx context.Context, sessionID string) (session.State, error) {
	state, _, err := p.store.Get(ctx, sessionID)
	if err != nil {
		return session.State{}, fmt.Errorf("%w: load: %w", ErrSessionStore, err)
	}
	return state, nil
}

func (p *Presentation) render(state session.State) *View {
	labels := p.classifier.Labels()
	view := &View{
		Phase:  phaseOf(state),
		Labels: labels,
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt
		view.UpdatedAt = &updated
	}
	if view.Phase == PhaseIdle {
		return view
	}
	view.ImageFormat = state.ImageFormat
	view.ImageSource = state.ImageSource
	if state.Prediction == nil {
		return view
	}

	view.PredictedLabel = state.Prediction.Label
	view.Ranking = vision.Rank(state.Prediction)
	view.SelectedLabel = selectedLabel(state, labels)
	view.Panel = p.panel(view.SelectedLabel)
	return view
}

func (p *Presentation) panel(label string) *Panel {
	b := p.catalog.Lookup(label)
	return &Panel{
		Label:  label,
		Texts:  b.Texts,
		Images: b.Images,
		Videos: video.ResolveAll(b.Videos),
		Empty:  b.Empty(),
	}
}

func phaseOf(state session.State) Phase {
	switch {
	case len(state.Image) == 0:
		return PhaseIdle
	case state.Prediction == nil:
		return PhaseImageReady
	default:
		return PhasePredicted
	}
}

// selectedLabel falls back to the predicted label, then to the first label of the vocabulary.
func selectedLabel(state session.State, labels []string) string {
	if slices.Contains(labels, state.SelectedLabel) {
		return state.SelectedLabel
	}
	if slices.Contains(labels, state.Prediction.Label) {
		return state.Prediction.Label
	}
	if len(labels) > 0 {
		return labels[0]
	}
	return state.Prediction.Label
}

func normalizeSource(source string) string {
	if strings.EqualFold(strings.TrimSpace(source), SourceCamera) {
		return SourceCamera
	}
	return SourceUpload
}
