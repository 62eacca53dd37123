/*
Package desktop implements the window lifecycle manager behind the portfolio
desktop.

A Manager owns a fixed registry of windows built from a manifest, a stacking
counter, and at most one pointer drag session. Every operation is atomic under
the manager's lock, so one Manager per visitor behaves like the single UI event
thread it models. Operations on unknown windows, or on windows in the wrong
state, leave the registry untouched and return a sentinel error.

Example usage:

	mgr, err := desktop.NewManager(desktop.DefaultManifest(), desktop.Config{
		Viewport: desktop.Viewport{Width: 1920, Height: 1080},
	})
	if err != nil {
		// handle error
	}
	_ = mgr.Open("about")
	_ = mgr.DragStart("about", desktop.Point{X: 100, Y: 100})
	mgr.DragMove(desktop.Point{X: 5, Y: 50})
	_ = mgr.DragEnd(desktop.Point{X: 5, Y: 50}) // snapped to the left half
*/
package desktop
