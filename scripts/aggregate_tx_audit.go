package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Reports where the goal aggregates call repo write methods: inside an executeWrite
// transaction, inside a post-commit secondary step, or neither.

type writeCall struct {
	Repo   string `json:"repo"`
	Method string `json:"method"`
	Line   int    `json:"line"`
	Scope  string `json:"scope"`
}

type methodReport struct {
	Func   string      `json:"func"`
	File   string      `json:"file"`
	Writes []writeCall `json:"writes"`
}

type auditReport struct {
	PrimaryWrites   int            `json:"primary_writes"`
	SecondaryWrites int            `json:"secondary_writes"`
	UnguardedWrites int            `json:"unguarded_writes"`
	Methods         []methodReport `json:"methods"`
}

const (
	scopePrimary   = "primary"
	scopeSecondary = "secondary"
	scopeUnguarded = "unguarded"
)

var repoWriteMethods = map[string]bool{
	"Append":               true,
	"CompleteIncomplete":   true,
	"Create":               true,
	"DeleteByUser":         true,
	"DeleteByUserAndWeek":  true,
	"EnsureRow":            true,
	"IncrementClamped":     true,
	"RecomputeAllComplete": true,
	"SetCompletion":        true,
	"SetEnabled":           true,
	"Touch":                true,
	"Upsert":               true,
}

var scopeFuncs = map[string]string{
	"executeWrite": scopePrimary,
	"secondary":    scopeSecondary,
}

func main() {
	strict := flag.Bool("strict", false, "exit 1 when a repo write runs outside executeWrite or secondary")
	flag.Parse()
	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	dir := filepath.Join(root, "internal", "data", "aggregates")
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, dir, func(fi os.FileInfo) bool {
		return !strings.HasSuffix(fi.Name(), "_test.go")
	}, 0)
	if err != nil {
		exitf("parse dir: %v", err)
	}
	pkg, ok := pkgs["aggregates"]
	if !ok {
		exitf("aggregates package not found in %s", dir)
	}

	var report auditReport
	for path, f := range pkg.Files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		for _, decl := range f.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}
			writes := auditFunc(fset, fd.Body)
			if len(writes) == 0 {
				continue
			}
			for _, w := range writes {
				switch w.Scope {
				case scopePrimary:
					report.PrimaryWrites++
				case scopeSecondary:
					report.SecondaryWrites++
				default:
					report.UnguardedWrites++
				}
			}
			report.Methods = append(report.Methods, methodReport{
				Func:   funcName(fd),
				File:   filepath.ToSlash(rel),
				Writes: writes,
			})
		}
	}
	sort.Slice(report.Methods, func(i, j int) bool {
		if report.Methods[i].File == report.Methods[j].File {
			return report.Methods[i].Func < report.Methods[j].Func
		}
		return report.Methods[i].File < report.Methods[j].File
	})

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if *strict && report.UnguardedWrites > 0 {
		os.Exit(1)
	}
}

// auditFunc finds deps.<Repo>.<Write>(...) calls in body and labels each with the
// innermost executeWrite or secondary closure that contains it.
func auditFunc(fset *token.FileSet, body *ast.BlockStmt) []writeCall {
	type span struct {
		from, to token.Pos
		scope    string
	}
	var spans []span
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		id, ok := call.Fun.(*ast.Ident)
		if !ok {
			return true
		}
		scope, ok := scopeFuncs[id.Name]
		if !ok {
			return true
		}
		for _, arg := range call.Args {
			if lit, ok := arg.(*ast.FuncLit); ok {
				spans = append(spans, span{from: lit.Pos(), to: lit.End(), scope: scope})
			}
		}
		return true
	})

	var out []writeCall
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		repo, method, ok := depsWrite(call)
		if !ok {
			return true
		}
		scope, width := scopeUnguarded, token.Pos(-1)
		for _, s := range spans {
			if call.Pos() >= s.from && call.End() <= s.to && (width < 0 || s.to-s.from < width) {
				scope, width = s.scope, s.to-s.from
			}
		}
		out = append(out, writeCall{Repo: repo, Method: method, Line: fset.Position(call.Pos()).Line, Scope: scope})
		return true
	})
	return out
}

// depsWrite matches x.deps.Repo.Method(...) and events.Method(...) where Method is a write.
func depsWrite(call *ast.CallExpr) (string, string, bool) {
	fn, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || !repoWriteMethods[fn.Sel.Name] {
		return "", "", false
	}
	switch x := fn.X.(type) {
	case *ast.SelectorExpr:
		if inner, ok := x.X.(*ast.SelectorExpr); ok && inner.Sel.Name == "deps" {
			return x.Sel.Name, fn.Sel.Name, true
		}
	case *ast.Ident:
		if x.Name == "events" {
			return "Events", fn.Sel.Name, true
		}
	}
	return "", "", false
}

func funcName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return fd.Name.Name
	}
	switch t := fd.Recv.List[0].Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name + "." + fd.Name.Name
		}
	case *ast.Ident:
		return t.Name + "." + fd.Name.Name
	}
	return fd.Name.Name
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
