package tool

import (
	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/sam"
	"github.com/annota/core/store"
)

// SAMID is the registry id for the SAM-assisted segmentation tool.
const SAMID = "sam"

// defaultPreviewOpacity is the ghost-overlay opacity used when a caller
// leaves SAMTool.PreviewOpacity at zero.
const defaultPreviewOpacity = 0.5

// SAMTool drives a sam.Session from pointer hover/click events:
// throttled ghost preview on hover, commit on click.
// The tool stays disabled (Enabled() false) until the session reports
// ready, even once activated; callers also toggle the flag with
// SetEnabled around their async embedding loads.
type SAMTool struct {
	baseTool
	ctx *Context

	Session *sam.Session

	// ShowHoverPreview turns on the throttled hover-to-ghost-polygon
	// prediction; when false, only Click predicts and commits.
	ShowHoverPreview bool
	// PreviewOpacity is the ghost overlay's alpha; zero uses
	// defaultPreviewOpacity.
	PreviewOpacity float64

	// Preview is the current ghost polygon in image pixels, or nil if
	// none is live. The caller's rendering layer reads this directly.
	Preview *sam.Polygon

	// loading suppresses preview prediction while an embedding reload is
	// in flight.
	loading bool
}

// NewSAMTool wraps session in a tool. The tool starts disabled; it reports
// enabled only once it is switched on (by activation or SetEnabled) and
// the session's first embedding load has completed.
func NewSAMTool(session *sam.Session) *SAMTool {
	return &SAMTool{Session: session, PreviewOpacity: defaultPreviewOpacity}
}

func (t *SAMTool) ID() string        { return SAMID }
func (t *SAMTool) Init(ctx *Context) { t.ctx = ctx }

// Enabled reports whether the tool is switched on and its session has a
// ready embedding.
func (t *SAMTool) Enabled() bool {
	return t.baseTool.Enabled() && t.Session != nil && t.Session.Ready()
}

// Destroy clears any live ghost preview so re-activating another tool
// never leaves a stale overlay behind.
func (t *SAMTool) Destroy() {
	t.Preview = nil
}

// BeginImageReload marks the tool not-ready and suppresses preview while
// the caller reloads the embedding for a new image
// ("when the underlying image changes, the embedding must be reloaded...
// before predictions resume").
func (t *SAMTool) BeginImageReload() {
	t.loading = true
	t.Preview = nil
}

// EndImageReload clears the loading flag once the caller's reload
// completes (successfully or not; a failed reload simply leaves the
// session not-ready, so Predict calls keep returning sam.ErrNotReady).
func (t *SAMTool) EndImageReload() {
	t.loading = false
}

// OnMove runs a throttled prediction at the cursor and stores the result
// as a ghost preview. The caller is responsible for any additional
// throttling cadence (e.g. only calling this every N milliseconds); this
// method itself runs at most one inference per call.
func (t *SAMTool) OnMove(ev Event) bool {
	if !t.ShowHoverPreview || t.loading || t.Session == nil {
		return false
	}
	poly, err := t.Session.Predict([]sam.Point{{X: ev.ImageX, Y: ev.ImageY}})
	if err != nil {
		t.Preview = nil
		return false
	}
	t.Preview = &poly
	return false
}

// OnClick commits the current predicted polygon (re-predicting at the
// click location if no preview is live, e.g. hover preview is off) as a
// real annotation.
func (t *SAMTool) OnClick(ev Event) bool {
	if t.Session == nil {
		return false
	}
	poly := t.Preview
	if poly == nil {
		predicted, err := t.Session.Predict([]sam.Point{{X: ev.ImageX, Y: ev.ImageY}})
		if err != nil {
			return false
		}
		poly = &predicted
	}
	t.Preview = nil
	if len(poly.Points) < 3 {
		return false
	}

	pts := make([]geometry.Point, len(poly.Points))
	for i, p := range poly.Points {
		pts[i] = geometry.Point{X: p.X, Y: p.Y}
	}
	shape, err := geometry.NewPolygon(pts)
	if err != nil {
		return false
	}
	ann := store.Annotation{
		Shape:      shape,
		Properties: t.ctx.mergedProperties(map[string]any{store.PropertySource: "sam"}),
		Style:      t.ctx.DefaultStyle,
	}
	t.ctx.History.Execute(history.NewCreate(t.ctx.Store, ann))
	return true
}
