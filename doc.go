// Package arbor renders large hierarchical trees as interactive 2D
// visualizations on the GPU with [Ebitengine].
//
// A [Layout] turns a [Tree] and a [Palette] into an ordered list of
// [DrawCommand] values. A [Renderer] compiles those commands into vertex
// buffers on a [Device] and draws them every frame under a [Camera] that
// pans, zooms and rotates. [Pick] inverts the camera to find the topmost
// command under a screen point.
//
// # Quick start
//
// The simplest way to get started is [Run], which opens a window around a
// [View]:
//
//	root := &arbor.Node{ID: 0, Label: "root", Children: []*arbor.Node{
//		{ID: 1, Label: "a"},
//		{ID: 2, Label: "b"},
//	}}
//	tree, err := arbor.NewTree(root)
//	if err != nil {
//		log.Fatal(err)
//	}
//	view, err := arbor.NewView(tree, arbor.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	arbor.Run(view)
//
// # Drawing space
//
// Every layout targets a fixed logical space of [LogicalWidth] by
// [LogicalHeight] units centred on the origin with Y pointing up. The
// renderer maps it into the largest 16:9 rectangle that fits the canvas
// ([Letterbox]), so compiled buffers survive window resizes.
//
// # Layouts off the game loop
//
// Layouts are pure, so a [Worker] runs them on their own goroutine. Every
// request gets a sequence number and only the newest one is ever delivered;
// slower, superseded layouts are dropped when they finish.
//
// # Errors
//
// Shader compilation failures and a missing GPU context are fatal and are
// returned from [Renderer.Init] as an [*InitError]; a View then draws the
// message instead of the scene. Malformed trees fail with a [*LayoutError]
// and the view keeps showing its previous commands.
//
// [Ebitengine]: https://ebitengine.org
package arbor
