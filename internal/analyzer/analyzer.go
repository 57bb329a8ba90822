// Package analyzer lowers an ast.Stmt tree into a flat []vm.Instruction
// list: the static pass between parsing and execution. It assigns
// abstract integer jump markers for if/loop control flow and tracks
// an explicit compile-time loop stack to resolve break/continue to
// the enclosing loop's markers, per spec.md §4.3. This is the one
// place identifiers stop being the lexer's interned integers and
// become the strings the interpreter's scopes key on.
package analyzer

import (
	"fmt"

	"github.com/hek-lang/hek/internal/ast"
	"github.com/hek-lang/hek/internal/vm"
)

// Analyzer holds the per-compilation state: the identifier intern
// table it resolves names through, a marker id counter, and the
// lexically nested loop stack break/continue resolve against.
type Analyzer struct {
	idents    []string
	strs      []string
	markerSeq int
	loops     []loopCtx
}

type loopCtx struct {
	label       int
	startMarker int
	endMarker   int
}

// New creates an Analyzer over the identifier and string-literal
// intern tables the lexer built while producing the program being
// lowered.
func New(idents, strs []string) *Analyzer {
	return &Analyzer{idents: idents, strs: strs}
}

// Lower is the package entry point: AST in, lowered instructions out.
func Lower(prog *ast.Stmt, idents, strs []string) ([]vm.Instruction, error) {
	a := New(idents, strs)
	return a.lowerStmt(prog)
}

func (a *Analyzer) name(id int) string {
	if id < 0 || id >= len(a.idents) {
		return ""
	}
	return a.idents[id]
}

func (a *Analyzer) str(id int) string {
	if id < 0 || id >= len(a.strs) {
		return ""
	}
	return a.strs[id]
}

func (a *Analyzer) newMarker() int {
	a.markerSeq++
	return a.markerSeq
}

func (a *Analyzer) findLoop(label int) (loopCtx, error) {
	if label == ast.NoLabel {
		if len(a.loops) == 0 {
			return loopCtx{}, fmt.Errorf("break/continue outside of a loop")
		}
		return a.loops[len(a.loops)-1], nil
	}
	for i := len(a.loops) - 1; i >= 0; i-- {
		if a.loops[i].label == label {
			return a.loops[i], nil
		}
	}
	return loopCtx{}, fmt.Errorf("no enclosing loop labeled %q", a.name(label))
}

func nilLiteral(line int) vm.Instruction {
	return vm.Instruction{Op: vm.OpLiteral, Line: line, Literal: vm.Nil()}
}

func (a *Analyzer) lowerStmt(s *ast.Stmt) ([]vm.Instruction, error) {
	if s == nil {
		return []vm.Instruction{nilLiteral(0)}, nil
	}

	switch s.Kind {
	case ast.StmtSeq:
		return a.lowerSeq(s)
	case ast.StmtBlock:
		return a.lowerBlock(s)
	case ast.StmtLet:
		return a.lowerLet(s)
	case ast.StmtExpr:
		return a.lowerExpr(s.Expression)
	case ast.StmtReturn:
		return a.lowerReturn(s)
	case ast.StmtIf:
		return a.lowerIf(s)
	case ast.StmtContinue:
		lc, err := a.findLoop(s.Label)
		if err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpJump, Line: s.Line, Marker: lc.startMarker}}, nil
	case ast.StmtBreak:
		lc, err := a.findLoop(s.Label)
		if err != nil {
			return nil, err
		}
		return []vm.Instruction{{Op: vm.OpJump, Line: s.Line, Marker: lc.endMarker}}, nil
	case ast.StmtLoop:
		return a.lowerLoop(s)
	case ast.StmtModule:
		return a.lowerModule(s)
	default:
		return nil, fmt.Errorf("analyzer: unhandled statement kind %v at line %d", s.Kind, s.Line)
	}
}

func (a *Analyzer) lowerSeq(s *ast.Stmt) ([]vm.Instruction, error) {
	first, err := a.lowerStmt(s.First)
	if err != nil {
		return nil, err
	}
	if s.Second == nil {
		return first, nil
	}
	second, err := a.lowerStmt(s.Second)
	if err != nil {
		return nil, err
	}
	out := append(first, vm.Instruction{Op: vm.OpDiscard, Line: s.Line})
	return append(out, second...), nil
}

func (a *Analyzer) lowerBlock(s *ast.Stmt) ([]vm.Instruction, error) {
	body, err := a.lowerStmt(s.Body)
	if err != nil {
		return nil, err
	}
	out := []vm.Instruction{{Op: vm.OpEnterScope, Line: s.Line}}
	out = append(out, body...)
	out = append(out, vm.Instruction{Op: vm.OpExitScope, Line: s.Line})
	return out, nil
}

func (a *Analyzer) lowerLet(s *ast.Stmt) ([]vm.Instruction, error) {
	val, err := a.lowerExpr(s.Value)
	if err != nil {
		return nil, err
	}
	return append(val, vm.Instruction{Op: vm.OpBind, Line: s.Line, Name: a.name(s.Name)}), nil
}

func (a *Analyzer) lowerReturn(s *ast.Stmt) ([]vm.Instruction, error) {
	if s.Expression == nil {
		return []vm.Instruction{{Op: vm.OpRet, Line: s.Line}}, nil
	}
	val, err := a.lowerExpr(s.Expression)
	if err != nil {
		return nil, err
	}
	return append(val, vm.Instruction{Op: vm.OpRet, Line: s.Line}), nil
}

func (a *Analyzer) lowerIf(s *ast.Stmt) ([]vm.Instruction, error) {
	cond, err := a.lowerExpr(s.Cond)
	if err != nil {
		return nil, err
	}
	thenInstrs, err := a.lowerStmt(s.Then)
	if err != nil {
		return nil, err
	}
	var elseInstrs []vm.Instruction
	if s.Else != nil {
		elseInstrs, err = a.lowerStmt(s.Else)
		if err != nil {
			return nil, err
		}
	} else {
		elseInstrs = []vm.Instruction{nilLiteral(s.Line)}
	}

	thenMarker, elseMarker, endMarker := a.newMarker(), a.newMarker(), a.newMarker()

	out := append([]vm.Instruction{}, cond...)
	out = append(out, vm.Instruction{Op: vm.OpIf, Line: s.Line, ThenMarker: thenMarker, ElseMarker: elseMarker})
	out = append(out, vm.Instruction{Op: vm.OpMarker, Line: s.Line, Marker: thenMarker})
	out = append(out, thenInstrs...)
	out = append(out, vm.Instruction{Op: vm.OpJump, Line: s.Line, Marker: endMarker})
	out = append(out, vm.Instruction{Op: vm.OpMarker, Line: s.Line, Marker: elseMarker})
	out = append(out, elseInstrs...)
	out = append(out, vm.Instruction{Op: vm.OpMarker, Line: s.Line, Marker: endMarker})
	return out, nil
}

// lowerLoop compiles an unconditional loop to a backward jump to its
// start marker; break/continue (resolved against the loop stack
// pushed here) are the only way out or around an iteration. The
// loop statement's own value is always nil, since nothing decides
// when to stop producing a final expression value.
func (a *Analyzer) lowerLoop(s *ast.Stmt) ([]vm.Instruction, error) {
	startMarker, endMarker := a.newMarker(), a.newMarker()
	a.loops = append(a.loops, loopCtx{label: s.LoopLabel, startMarker: startMarker, endMarker: endMarker})
	body, err := a.lowerStmt(s.LoopBody)
	a.loops = a.loops[:len(a.loops)-1]
	if err != nil {
		return nil, err
	}

	out := []vm.Instruction{{Op: vm.OpMarker, Line: s.Line, Marker: startMarker}}
	out = append(out, body...)
	out = append(out, vm.Instruction{Op: vm.OpDiscard, Line: s.Line})
	out = append(out, vm.Instruction{Op: vm.OpJump, Line: s.Line, Marker: startMarker})
	out = append(out, vm.Instruction{Op: vm.OpMarker, Line: s.Line, Marker: endMarker})
	out = append(out, nilLiteral(s.Line))
	return out, nil
}

// lowerModule handles both forms spec.md's "mod" statement allows: an
// inline body, lowered and published into the enclosing scope as a
// module, or a bare name, which defers to the running interpreter's
// ModuleLoader at OpLoadModule time. InnerImport is left false by the
// parser (see DESIGN.md); this pass does not yet generate it, it is
// reserved for a future synthetic-module wrapping of a loaded file's
// own top level.
func (a *Analyzer) lowerModule(s *ast.Stmt) ([]vm.Instruction, error) {
	name := a.name(s.ModuleName)
	if s.ModuleBody == nil {
		return []vm.Instruction{
			{Op: vm.OpLoadModule, Line: s.Line, ModuleName: name},
		}, nil
	}
	body, err := a.lowerStmt(s.ModuleBody)
	if err != nil {
		return nil, err
	}
	out := []vm.Instruction{{Op: vm.OpEnterScope, Line: s.Line}}
	out = append(out, body...)
	out = append(out, vm.Instruction{Op: vm.OpDiscard, Line: s.Line})
	out = append(out, vm.Instruction{Op: vm.OpExitAsModule, Line: s.Line, ModuleName: name})
	out = append(out, nilLiteral(s.Line))
	return out, nil
}
