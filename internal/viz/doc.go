// Package viz renders estimated value functions for people: terminal plots,
// PNG charts, a styled parameter table and a live progress view.
//
// Nothing here feeds back into estimation; every renderer consumes the grid
// and the value vector after (or while) the estimator produces them.
//
// # Live Progress
//
// [Progress] is a Bubble Tea model. [Forward] turns a running program into
// an estimator observer:
//
//	prog := tea.NewProgram(viz.NewProgress(grid, params, cancel))
//	est.AddObserver(viz.Forward(prog))
//
// Press q to cancel the estimation and quit.
package viz
