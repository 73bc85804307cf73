package annotator

import "github.com/annota/core/sam"

// sessionFor wraps a caller-supplied MaskPredictor (the decoderModelUrl-
// backed inference runtime) in a sam.Session, so the
// registered SAMTool gets the generation-counter staleness guard for
// free.
func sessionFor(predictor sam.MaskPredictor) *sam.Session {
	return sam.NewSession(predictor)
}

// ReloadSAMEmbedding reloads the SAM tool's embedding for a new image,
// the "the embedding must be reloaded and tensor dimensions
// updated before predictions resume" on every image change. The caller
// (typically a handler on the viewer's "open" event) supplies a loader
// that fetches/decodes the tensor; ReloadSAMEmbedding sequences it
// against the session's generation counter and toggles the tool's
// enabled state to match. Returns false if no SAM tool was registered
// (Options.SAM.Predictor was nil at New).
func (a *Annotator) ReloadSAMEmbedding(imageW, imageH int, loader func() ([]float32, error)) (bool, error) {
	if a.samTool == nil {
		return false, nil
	}
	t := a.samTool
	t.SetEnabled(false)
	t.BeginImageReload()
	generation := t.Session.BeginReload(imageW, imageH)
	defer t.EndImageReload()

	tensor, err := loader()
	if err != nil {
		return true, err
	}
	if err := t.Session.CompleteReload(generation, tensor); err != nil {
		return true, err
	}
	t.SetEnabled(true)
	return true, nil
}
