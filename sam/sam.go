// Package sam defines the narrow "mask predictor" capability the
// SAM-assisted segmentation tool consumes. The model itself (embedding
// computation, inference) lives behind this contract in the host
// application; this package only sequences embedding reloads against
// image changes so a stale load never clobbers current state.
package sam

import "errors"

// ErrNotReady is returned by Predict before the first embedding has
// loaded successfully.
var ErrNotReady = errors.New("sam: predictor not ready")

// ErrStaleEmbedding is returned by CompleteReload when a newer reload
// has already superseded the one completing, so its result must be
// discarded rather than applied out of order.
var ErrStaleEmbedding = errors.New("sam: embedding generation is stale")

// Point is an image-pixel coordinate fed to the predictor as a prompt.
type Point struct {
	X, Y float64
}

// Polygon is the predicted mask boundary, in image pixels.
type Polygon struct {
	Points []Point
}

// MaskPredictor is the external capability contract: load an image
// embedding, then predict a mask polygon from point prompts against it.
// An implementation typically wraps a native or networked inference
// runtime; this package only defines the seam.
type MaskPredictor interface {
	SetEmbedding(tensor []float32, imageW, imageH int) error
	Predict(points []Point, imageW, imageH int) (Polygon, error)
}

// Session sequences MaskPredictor against image changes using a
// generation counter, so a slow embedding reload that completes after a
// newer one has already started never clobbers current state: on every
// image change the embedding must be reloaded and tensor dimensions
// updated before predictions resume.
type Session struct {
	predictor MaskPredictor

	generation int
	ready      bool
	imageW     int
	imageH     int
}

// NewSession wraps predictor in a Session, not ready until the first
// successful BeginReload/CompleteReload pair.
func NewSession(predictor MaskPredictor) *Session {
	return &Session{predictor: predictor}
}

// BeginReload starts loading a new embedding for an image of the given
// dimensions, marking the session not-ready until CompleteReload
// succeeds for this generation. Returns the generation token the caller
// must pass back to CompleteReload.
func (s *Session) BeginReload(imageW, imageH int) int {
	s.generation++
	s.ready = false
	s.imageW, s.imageH = imageW, imageH
	return s.generation
}

// CompleteReload applies tensor as the embedding for the reload started
// by BeginReload under generation. If a later BeginReload has since
// superseded generation, the embedding is discarded and ErrStaleEmbedding
// is returned; the caller should drop the result rather than retry.
func (s *Session) CompleteReload(generation int, tensor []float32) error {
	if generation != s.generation {
		return ErrStaleEmbedding
	}
	if err := s.predictor.SetEmbedding(tensor, s.imageW, s.imageH); err != nil {
		return err
	}
	s.ready = true
	return nil
}

// Ready reports whether a predict-capable embedding is currently loaded.
func (s *Session) Ready() bool { return s.ready }

// Generation returns the current reload generation, for callers that
// need to tag in-flight async work for later staleness comparison.
func (s *Session) Generation() int { return s.generation }

// Predict runs inference against the current embedding. Returns
// ErrNotReady if no embedding has completed loading yet.
func (s *Session) Predict(points []Point) (Polygon, error) {
	if !s.ready {
		return Polygon{}, ErrNotReady
	}
	return s.predictor.Predict(points, s.imageW, s.imageH)
}
