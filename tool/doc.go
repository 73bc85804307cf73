// Package tool implements the pointer-driven drawing tools: Point,
// Rectangle, Polygon, Freehand, Push (vertex sculpting), and SAM-assisted
// segmentation. A tool is a small state machine; at most one is active
// at a time, and activation attaches it to the external Viewer's pointer
// dispatch as the single consumer of pointer events while enabled.
package tool
