package annotator

import (
	"github.com/annota/core/history"
	"github.com/annota/core/sam"
	"github.com/annota/core/store"
)

// Options configures a newly constructed Annotator.
type Options struct {
	History HistoryOptions

	// DefaultProperties seeds new annotations' Properties, per the
	// `tool.annotationProperties` option.
	DefaultProperties map[string]any
	// DefaultStyle seeds new annotations' Style, per `tool.annotationStyle`.
	DefaultStyle *store.Style

	Push PushOptions
	Curve CurveOptions
	SAM   SAMOptions
}

// HistoryOptions mirrors `historyOptions.*`. EnableMerging defaults to
// off (history.Options' own zero value) unless explicitly set.
type HistoryOptions struct {
	MaxHistorySize int
	EnableMerging  bool
}

func (o HistoryOptions) toHistoryOptions() history.Options {
	return history.Options{MaxSize: o.MaxHistorySize, EnableMerging: o.EnableMerging}
}

// PushOptions mirrors `push.pushRadius/pushStrength/showCursor`.
type PushOptions struct {
	Radius     float64
	Strength   float64
	ShowCursor bool
}

// CurveOptions mirrors `curve.smoothingTolerance`.
type CurveOptions struct {
	SmoothingTolerance float64
}

// SAMOptions mirrors `SAM decoderModelUrl/embedding/imageWidth/Height/
// showHoverPreview/previewOpacity`. Predictor must be supplied by the
// caller (it wraps whatever native/networked inference runtime backs
// decoderModelUrl; model loading is out of this module's scope).
type SAMOptions struct {
	Predictor        sam.MaskPredictor
	ShowHoverPreview bool
	PreviewOpacity   float64
}
