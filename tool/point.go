package tool

import (
	"github.com/annota/core/geometry"
	"github.com/annota/core/history"
	"github.com/annota/core/store"
)

// PointID is the registry id for the point tool.
const PointID = "point"

// PointTool creates a point annotation on every press
type PointTool struct {
	baseTool
	ctx *Context
}

// NewPointTool creates an unregistered point tool.
func NewPointTool() *PointTool { return &PointTool{} }

func (t *PointTool) ID() string        { return PointID }
func (t *PointTool) Init(ctx *Context) { t.ctx = ctx }
func (t *PointTool) Destroy()          {}

// OnPress creates a point annotation at the press location and records
// it as one undo step.
func (t *PointTool) OnPress(ev Event) bool {
	ann := store.Annotation{
		Shape:      geometry.NewPoint(ev.ImageX, ev.ImageY),
		Properties: t.ctx.mergedProperties(nil),
		Style:      t.ctx.DefaultStyle,
	}
	t.ctx.History.Execute(history.NewCreate(t.ctx.Store, ann))
	return true
}
