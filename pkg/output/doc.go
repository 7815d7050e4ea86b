// Package output renders kegpack's terminal output: "==>" status lines,
// plan trees and the markdown explanation of the selection rules. Styling
// is dropped when the output is not a color terminal or NO_COLOR is set.
package output
