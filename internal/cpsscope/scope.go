// Package cpsscope implements the two-pass scope analyzer described in
// spec.md §4.3, a direct port of original_source/transform.py's
// find_locals/find_nonlocals: a first pass records which names each
// real (non-kfun) function assigns, and a second pass records which
// names each function — kfun or not — reads that some real function in
// its enclosing chain (its own frame included) assigns, so the Emitter
// knows which functions must declare a capture.
package cpsscope

import "github.com/cwbudde/cpst/internal/cpsir"

// frame is one entry of the enclosing-function environment, a cons
// list mirroring the Python tuple-pair (fun, lenv) chain.
type frame struct {
	fn   *cpsir.FunctionDef
	next *frame
}

// Analyze fills in every FunctionDef's Assigned and Captured sets
// reachable from root.
func Analyze(root cpsir.Node) {
	findLocals(root, nil)
	findNonlocals(root, nil)
}

// findLocals records, for each real user function, every name assigned
// anywhere in its lexical extent — including inside the kfuns
// synthesized from its own body, which are transparent to this pass.
func findLocals(root cpsir.Node, env *frame) {
	for _, node := range cpsir.Chain(root) {
		switch n := node.(type) {
		case *cpsir.FunctionDef:
			if !n.IsKFun {
				env = &frame{fn: n, next: env}
			}
		case *cpsir.Assign:
			if env != nil && len(n.Target) == 1 {
				env.fn.Assigned[n.Target[0]] = true
			}
		}
		for _, sub := range node.Subs() {
			findLocals(sub, env)
		}
	}
}

// findNonlocals records, for each function — kfun or not — every name
// it reads that some enclosing frame assigns. Unlike findLocals, every
// FunctionDef pushes its own frame here: a kfun that merely reads a
// variable its enclosing real function assigns needs its own capture
// entry even though the kfun itself never appears in that variable's
// Assigned set.
func findNonlocals(root cpsir.Node, env *frame) {
	for _, node := range cpsir.Chain(root) {
		switch n := node.(type) {
		case *cpsir.FunctionDef:
			env = &frame{fn: n, next: env}
		case *cpsir.Name:
			if env != nil && assignedSomewhereAbove(n.Id, env) {
				env.fn.Captured[n.Id] = true
			}
		}
		for _, sub := range node.Subs() {
			findNonlocals(sub, env)
		}
	}
}

func assignedSomewhereAbove(name string, env *frame) bool {
	for f := env; f != nil; f = f.next {
		if f.fn.Assigned[name] {
			return true
		}
	}
	return false
}
