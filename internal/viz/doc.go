// Package viz renders closed-loop runs in the terminal.
//
// [Model] is a Bubble Tea program that steps a simulation session tick by
// tick and charts desired against commanded curvature. [Plot] renders a
// finished run for the CLI.
//
// # Key Bindings
//
//	Space - Pause/Resume (restarts a finished run)
//	R     - Reset the controller mid-run
//	+/-   - Double/halve cycles per frame
//	Q     - Quit
package viz
