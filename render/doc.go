// Package render implements the GPU-backed annotation overlay stage:
// one node per visible annotation, grouped under per-layer containers,
// transformed by the external Viewer's pan/zoom/rotation every frame and
// submitted as batched DrawTriangles calls.
//
// # Quick start
//
//	stage := render.NewStage()
//	stage.SyncLayers(layerMgr)
//	stage.Upsert(ann, "cells")
//	stage.SetViewport(render.Viewport{ScaleX: zoom, ScaleY: zoom, PanX: panX, PanY: panY})
//	stage.Draw(screen, viewBounds)
//
// # Scene graph
//
// Every visual element is a [Node]. Nodes form a tree rooted at
// [Stage.Root]; layer-group containers sit directly under the root in
// composition order, and annotation shape nodes sit under their layer
// group. [Stage.SyncLayers] keeps the group set in sync with the
// [layer.Manager]; [Stage.Upsert] keeps one node per live annotation.
//
// # Transform
//
// [ComputeViewportTransform] builds the affine matrix the stage root
// uses from a [Viewport] snapshot. The editor overlay calls the same
// function so the two subsystems agree on screen-space coordinates to
// full float64 precision.
//
// # Tweens
//
// Hover/selection tint transitions are driven by [github.com/tanema/gween]
// through [Tween].
package render
