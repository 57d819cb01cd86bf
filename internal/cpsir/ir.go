// Package cpsir defines the continuation-passing-style intermediate
// representation described in spec.md §3: Cont, the IR node kinds, and
// the two protocols ("emit" and "tree traversal") every node
// implements. IR nodes are built bottom-up by the Lowerer and are
// immutable afterward except for a FunctionDef's assigned/captured
// sets, which the Scope Analyzer fills in.
package cpsir

import (
	"github.com/cwbudde/cpst/internal/surfast"
	"github.com/cwbudde/cpst/internal/surfprint"
)

// Writer is the minimal surface the Emitter exposes to IR nodes so
// cpsir need not import the emitter package. cpsemit.Writer implements
// it.
type Writer interface {
	Line(format string, args ...any)
	Indent()
	Dedent()
}

// Cont represents "what to do with the value this expression produces"
// (spec.md §3.1). Name is empty for the null continuation, "_" for a
// dead continuation that discards its input, or a fresh vN/kfN/wkfN
// identifier for a live continuation. Exp is the IR subtree that runs
// next; it is nil only for the null continuation.
type Cont struct {
	Name string
	Exp  Node
}

// NullCont is the shared tail-position sentinel: no successor exists
// within the current function body.
var NullCont = &Cont{}

// IsNull reports whether c is the null (tail-position) continuation.
func (c *Cont) IsNull() bool { return c == nil || c.Name == "" }

// IsDead reports whether c discards the value fed to it.
func (c *Cont) IsDead() bool { return c != nil && c.Name == "_" }

// IsLive reports whether c binds its input to a fresh name a consumer
// can reference.
func (c *Cont) IsLive() bool { return c != nil && c.Name != "" && c.Name != "_" }

// Node is the interface every CPS IR node implements.
type Node interface {
	// Cont returns the node's own continuation (possibly NullCont).
	Cont() *Cont
	// Subs returns the node's owned child IR chains (e.g. a
	// FunctionDef's body, an If's two branches). Each entry is the head
	// of a straight-line chain, not a single node.
	Subs() []Node
	// Vars returns the node's ordered operand variable names. Every
	// entry matches [A-Za-z_][A-Za-z0-9_]* (spec.md §8 invariant 1).
	Vars() []string
	// EmitSelf writes exactly this node — never its continuation's
	// chain. Callers use EmitChain to walk k.exp.
	EmitSelf(w Writer)
}

// EmitChain writes n, then iteratively follows n.Cont().Exp until it
// reaches a node whose continuation is null (spec.md §3.3 invariant 3;
// §4.4 "the emitter walks the k.exp chain iteratively, never
// recursively").
func EmitChain(n Node, w Writer) {
	for n != nil {
		n.EmitSelf(w)
		c := n.Cont()
		if c.IsNull() {
			return
		}
		n = c.Exp
	}
}

// Chain collects every node along n's continuation chain, in order.
// This is the "tree traversal" protocol of spec.md §3.2(b); the Scope
// Analyzer uses it to walk each function body level before recursing
// into Subs.
func Chain(n Node) []Node {
	var out []Node
	for n != nil {
		out = append(out, n)
		c := n.Cont()
		if c.IsNull() {
			break
		}
		n = c.Exp
	}
	return out
}

// ---- container kinds ----

// Module is the root of a lowered program.
type Module struct {
	Body Node
	K    *Cont
}

func (m *Module) Cont() *Cont    { return m.K }
func (m *Module) Subs() []Node   { return []Node{m.Body} }
func (m *Module) Vars() []string { return nil }
func (m *Module) EmitSelf(w Writer) {
	EmitChain(m.Body, w)
}

// Expression wraps a single top-level expression (part of the IR's data
// model per spec.md §3.2, mirroring original_source/transform.py's
// Expression node; no lowering rule in this repository constructs one).
type Expression struct {
	Body Node
	K    *Cont
}

func (e *Expression) Cont() *Cont    { return e.K }
func (e *Expression) Subs() []Node   { return []Node{e.Body} }
func (e *Expression) Vars() []string { return nil }
func (e *Expression) EmitSelf(w Writer) {
	e.Body.EmitSelf(w)
}

// Sequence wraps a single dead-continuation-threaded expression chain.
// Named in spec.md §3.2's node-kind list; like the original
// implementation, no lowering rule currently constructs one — sequences
// of statements are threaded directly through dead continuations
// instead — but the kind is part of the IR's data model.
type Sequence struct {
	Exp Node
	K   *Cont
}

func (s *Sequence) Cont() *Cont      { return s.K }
func (s *Sequence) Subs() []Node     { return []Node{s.Exp} }
func (s *Sequence) Vars() []string   { return nil }
func (s *Sequence) EmitSelf(w Writer) { EmitChain(s.Exp, w) }

// FunctionDef is a (possibly synthesized) function: either a
// user-authored CPS function rewritten to take an explicit
// continuation parameter, or a kfun minted by the lowerer to reify the
// rest of a computation. Assigned/Captured start empty and are filled
// in by the two Scope Analyzer passes (spec.md §4.3); IsKFun marks
// continuation-generated functions as transparent to scope analysis's
// enclosing-function stack.
type FunctionDef struct {
	Name       string
	IsKFun     bool
	Formals    []string
	Decorators []string
	Body       Node
	K          *Cont

	Assigned map[string]bool
	Captured map[string]bool
}

func NewFunctionDef(name string, isKFun bool, formals, decorators []string, body Node, k *Cont) *FunctionDef {
	return &FunctionDef{
		Name: name, IsKFun: isKFun, Formals: formals, Decorators: decorators,
		Body: body, K: k,
		Assigned: map[string]bool{}, Captured: map[string]bool{},
	}
}

func (f *FunctionDef) Cont() *Cont { return f.K }
func (f *FunctionDef) Subs() []Node {
	if f.Body == nil {
		return nil
	}
	return []Node{f.Body}
}
func (f *FunctionDef) Vars() []string { return nil }
func (f *FunctionDef) EmitSelf(w Writer) {
	for _, d := range f.Decorators {
		w.Line("@%s", d)
	}
	w.Line("def %s(%s):", f.Name, joinComma(f.Formals))
	w.Indent()
	// only kfuns are genuinely separate closures in the emitted output;
	// a user function reading a variable it also assigns in its own
	// top-level chain needs no capture annotation.
	if f.IsKFun && len(f.Captured) > 0 {
		w.Line("captured %s", joinComma(sortedKeys(f.Captured)))
	}
	if f.Body == nil {
		// a kfun reifying the null (tail-position) continuation has
		// nothing left to run.
		w.Line("pass")
	} else {
		EmitChain(f.Body, w)
	}
	w.Dedent()
}

// If is a two-armed branch on a simple boolean variable. Its own
// continuation is always null: each arm's chain either reaches tail
// position directly or ends by invoking a synthesized kfun (spec.md
// §4.2's If lowering contract).
type If struct {
	TestVar string
	Body    Node // may be nil (empty body emits nothing but that never
	// happens in practice — every arm comes from lowering a real
	// statement list)
	Orelse Node // nil when there is no else clause
}

func NewIf(testVar string, body, orelse Node) *If {
	return &If{TestVar: testVar, Body: body, Orelse: orelse}
}

func (n *If) Cont() *Cont    { return NullCont }
func (n *If) Vars() []string { return []string{n.TestVar} }
func (n *If) Subs() []Node {
	subs := []Node{n.Body}
	if n.Orelse != nil {
		subs = append(subs, n.Orelse)
	}
	return subs
}
func (n *If) EmitSelf(w Writer) {
	w.Line("if %s:", n.TestVar)
	w.Indent()
	EmitChain(n.Body, w)
	w.Dedent()
	if n.Orelse != nil {
		w.Line("else:")
		w.Indent()
		EmitChain(n.Orelse, w)
		w.Dedent()
	}
}

// Return encodes `return var` as an invocation of the ambient
// continuation parameter (spec.md §4.2 t_Return), so by the time it
// reaches the IR it is already just a value-carrying leaf with a null
// continuation; the actual `k(var)` / `schedule(k, var)` call is built
// by the Lowerer as a Call node, not by Return itself. No lowering rule
// constructs a Return node; it is part of the IR's data model only
// (untransformed `return` statements travel inside Verbatim nodes as
// surface AST).
type Return struct {
	Var string
}

func NewReturn(v string) *Return { return &Return{Var: v} }

func (n *Return) Cont() *Cont    { return NullCont }
func (n *Return) Subs() []Node   { return nil }
func (n *Return) Vars() []string { return []string{n.Var} }
func (n *Return) EmitSelf(w Writer) {
	w.Line("return %s", n.Var)
}

// prefix renders "vN = " for a live continuation, "" otherwise —
// mirrors Node.prefix() in original_source/transform.py.
func prefix(k *Cont) string {
	if k.IsLive() {
		return k.Name + " = "
	}
	return ""
}

// BinOp is a binary operator expression over two simple names.
type BinOp struct {
	Vars_ []string // [left, right]
	Op    string
	K     *Cont
}

func NewBinOp(left, right, op string, k *Cont) *BinOp {
	return &BinOp{Vars_: []string{left, right}, Op: op, K: k}
}

func (n *BinOp) Cont() *Cont    { return n.K }
func (n *BinOp) Subs() []Node   { return nil }
func (n *BinOp) Vars() []string { return n.Vars_ }
func (n *BinOp) EmitSelf(w Writer) {
	w.Line("%s%s %s %s", prefix(n.K), n.Vars_[0], n.Op, n.Vars_[1])
}

// BoolOp is a chained `and`/`or` expression. Per spec.md §9, all
// operands are evaluated unconditionally before the operator is
// applied — short-circuit semantics are not preserved, a documented
// limitation carried over from the original.
type BoolOp struct {
	Vars_ []string
	Op    string
	K     *Cont
}

func NewBoolOp(vars []string, op string, k *Cont) *BoolOp {
	return &BoolOp{Vars_: vars, Op: op, K: k}
}

func (n *BoolOp) Cont() *Cont    { return n.K }
func (n *BoolOp) Subs() []Node   { return nil }
func (n *BoolOp) Vars() []string { return n.Vars_ }
func (n *BoolOp) EmitSelf(w Writer) {
	w.Line("%s%s", prefix(n.K), joinOp(n.Vars_, " "+n.Op+" "))
}

// Compare is a chained comparison `a < b <= c`.
type Compare struct {
	Vars_ []string
	Ops   []string
	K     *Cont
}

func NewCompare(vars, ops []string, k *Cont) *Compare {
	return &Compare{Vars_: vars, Ops: ops, K: k}
}

func (n *Compare) Cont() *Cont    { return n.K }
func (n *Compare) Subs() []Node   { return nil }
func (n *Compare) Vars() []string { return n.Vars_ }
func (n *Compare) EmitSelf(w Writer) {
	var parts []string
	for i := range n.Ops {
		parts = append(parts, n.Vars_[i], n.Ops[i])
	}
	parts = append(parts, n.Vars_[len(n.Vars_)-1])
	w.Line("%s%s", prefix(n.K), joinOp(parts, " "))
}

// Assign is `target = v`, where target is a flattened attribute path
// (len==1 for a simple name) rooted at a Name, per spec.md §4.2's
// requirement that attribute chains be flattened at emit time into
// `a.b.c = v`.
type Assign struct {
	Var    string
	Target []string
	K      *Cont
}

func NewAssign(v string, target []string, k *Cont) *Assign {
	return &Assign{Var: v, Target: target, K: k}
}

func (n *Assign) Cont() *Cont    { return n.K }
func (n *Assign) Subs() []Node   { return nil }
func (n *Assign) Vars() []string { return []string{n.Var} }
func (n *Assign) EmitSelf(w Writer) {
	w.Line("%s = %s", joinOp(n.Target, "."), n.Var)
}

// Call is `fun(args...)`, optionally bound to a live continuation.
type Call struct {
	Vars_ []string // [fun, arg0, arg1, ...]
	K     *Cont
}

func NewCall(fun string, args []string, k *Cont) *Call {
	return &Call{Vars_: append([]string{fun}, args...), K: k}
}

func (n *Call) Cont() *Cont    { return n.K }
func (n *Call) Subs() []Node   { return nil }
func (n *Call) Vars() []string { return n.Vars_ }
func (n *Call) EmitSelf(w Writer) {
	w.Line("%s%s(%s)", prefix(n.K), n.Vars_[0], joinOp(n.Vars_[1:], ", "))
}

// Attribute is `obj.name`.
type Attribute struct {
	Var  string
	Name string
	K    *Cont
}

func NewAttribute(v, name string, k *Cont) *Attribute {
	return &Attribute{Var: v, Name: name, K: k}
}

func (n *Attribute) Cont() *Cont    { return n.K }
func (n *Attribute) Subs() []Node   { return nil }
func (n *Attribute) Vars() []string { return []string{n.Var} }
func (n *Attribute) EmitSelf(w Writer) {
	w.Line("%s%s.%s", prefix(n.K), n.Var, n.Name)
}

// Name is a bare identifier reference.
type Name struct {
	Id string
	K  *Cont
}

func NewName(id string, k *Cont) *Name { return &Name{Id: id, K: k} }

func (n *Name) Cont() *Cont    { return n.K }
func (n *Name) Subs() []Node   { return nil }
func (n *Name) Vars() []string { return nil }
func (n *Name) EmitSelf(w Writer) {
	w.Line("%s%s", prefix(n.K), n.Id)
}

// Num is a numeric literal, stored as its exact source spelling.
type Num struct {
	Literal string
	K       *Cont
}

func NewNum(literal string, k *Cont) *Num { return &Num{Literal: literal, K: k} }

func (n *Num) Cont() *Cont    { return n.K }
func (n *Num) Subs() []Node   { return nil }
func (n *Num) Vars() []string { return nil }
func (n *Num) EmitSelf(w Writer) {
	w.Line("%s%s", prefix(n.K), n.Literal)
}

// Print is `print(args...)`.
type Print struct {
	Vars_ []string
	K     *Cont
}

func NewPrint(vars []string, k *Cont) *Print { return &Print{Vars_: vars, K: k} }

func (n *Print) Cont() *Cont    { return n.K }
func (n *Print) Subs() []Node   { return nil }
func (n *Print) Vars() []string { return n.Vars_ }
func (n *Print) EmitSelf(w Writer) {
	w.Line("print(%s)", joinOp(n.Vars_, ", "))
}

// Expr wraps an expression evaluated in statement context under a dead
// continuation. It emits literally `pass` — see
// original_source/transform.py's Expr.emit, and spec.md §4.2's
// "Expr (expression as statement)" contract.
type Expr struct {
	K *Cont
}

func NewExpr(k *Cont) *Expr { return &Expr{K: k} }

func (n *Expr) Cont() *Cont    { return n.K }
func (n *Expr) Subs() []Node   { return nil }
func (n *Expr) Vars() []string { return nil }
func (n *Expr) EmitSelf(w Writer) {
	w.Line("pass")
}

// Verbatim carries an unmodified fragment of the input AST — an import,
// a non-CPS function, a class body, a for/try/with statement, a
// destructuring assignment — for re-emission exactly as the surface
// unparser renders it (spec.md §4.1).
type Verbatim struct {
	Stmt surfast.Stmt
	K    *Cont
}

func NewVerbatim(s surfast.Stmt, k *Cont) *Verbatim { return &Verbatim{Stmt: s, K: k} }

func (n *Verbatim) Cont() *Cont    { return n.K }
func (n *Verbatim) Subs() []Node   { return nil }
func (n *Verbatim) Vars() []string { return nil }
func (n *Verbatim) EmitSelf(w Writer) {
	rendered := surfprint.New().PrintStmt(n.Stmt)
	for _, line := range splitLines(rendered) {
		w.Line("%s", line)
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func joinOp(parts []string, sep string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return out
}

func joinComma(parts []string) string { return joinOp(parts, ", ") }

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// simple insertion sort: captured sets are small (a handful of
	// locals), and this keeps the emitted `captured` line deterministic
	// without pulling in sort for one call site's worth of use.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
