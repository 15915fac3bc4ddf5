// Package platemap draws plate layouts as Graphviz diagrams.
//
// Wells are pinned to their physical grid position and connected in fill
// order, so the path through the plate can be checked at a glance. Edges
// inside a replicate group are solid; the jump from one group to the next is
// dashed.
//
// [ToDOT] produces plain DOT text that any Graphviz installation can render.
// [RenderSVG] renders in-process using [github.com/goccy/go-graphviz] with
// the neato engine, which honors pinned node positions.
package platemap
