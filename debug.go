package aspen

import (
	"fmt"
	"os"
	"time"
)

// Warning thresholds for suspicious tree shapes.
const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// frameStats collects one frame's timing and draw-call numbers. Filled in
// only while debug mode is on.
type frameStats struct {
	traverse   time.Duration
	sort       time.Duration
	submit     time.Duration
	commands   int
	batches    int
	recomputes int
}

func (f frameStats) String() string {
	total := f.traverse + f.sort + f.submit
	return fmt.Sprintf(
		"[aspen] traverse: %v | sort: %v | submit: %v | total: %v\n"+
			"[aspen] commands: %d | batches: %d | geometry recomputes: %d",
		f.traverse, f.sort, f.submit, total, f.commands, f.batches, f.recomputes)
}

// logFrameStats prints the frame stats to stderr when debug mode is on.
func (s *Scene) logFrameStats(stats frameStats) {
	if s.debug {
		fmt.Fprintln(os.Stderr, stats)
	}
}

// assertNotDisposed panics when a retired node shows up in a tree
// operation. Callers gate on debugMode, so release builds never pay for
// the check.
func assertNotDisposed(n *Node, op string) {
	if !n.disposed {
		return
	}
	panic(fmt.Sprintf("aspen debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
}

// warnDeepTree complains when an insertion leaves n deeper than
// debugMaxTreeDepth. Runaway depth usually means a reparenting loop in
// user code.
func warnDeepTree(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth <= debugMaxTreeDepth {
		return
	}
	fmt.Fprintf(os.Stderr, "[aspen] warning: tree depth %d exceeds %d (node %q)\n",
		depth, debugMaxTreeDepth, n.Name)
}

// warnManyChildren complains when a node accumulates an implausible number
// of direct children.
func warnManyChildren(n *Node) {
	if c := len(n.children); c > debugMaxChildCount {
		fmt.Fprintf(os.Stderr, "[aspen] warning: node %q has %d children (threshold %d)\n",
			n.Name, c, debugMaxChildCount)
	}
}

// countBatches counts contiguous groups of commands sharing a batchKey.
// Each group is one DrawTriangles32 call, so this is also the draw-call
// count.
func countBatches(cmds []RenderCommand) int {
	n := 0
	var prev batchKey
	for i := range cmds {
		if key := commandBatchKey(&cmds[i]); i == 0 || key != prev {
			n++
			prev = key
		}
	}
	return n
}
