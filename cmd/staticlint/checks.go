package main

import (
	"go/ast"
	"go/token"
	"net/http"
	"strconv"

	"github.com/sol1corejz/llm-gateway/internal/requestid"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// ExitCheckAnalyzer запрещает прямой вызов os.Exit в функции main пакета main.
var ExitCheckAnalyzer = &analysis.Analyzer{
	Name:     "exitcheck",
	Doc:      "checks that os.Exit is not called directly in the main function",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runExitCheck,
}

// RequestIDHeaderAnalyzer требует использовать requestid.Header вместо строкового
// литерала с тем же именем заголовка в любом регистре. Сам пакет requestid проверку не проходит.
var RequestIDHeaderAnalyzer = &analysis.Analyzer{
	Name:     "requestidheader",
	Doc:      "checks that the X-Request-Id header name is taken from requestid.Header",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runRequestIDHeader,
}

var canonicalRequestIDHeader = http.CanonicalHeaderKey(requestid.Header)

func runExitCheck(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fn := n.(*ast.FuncDecl)
		if fn.Name.Name != "main" || fn.Recv != nil || fn.Body == nil {
			return
		}

		ast.Inspect(fn.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			sel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			if pkg, ok := sel.X.(*ast.Ident); ok && pkg.Name == "os" && sel.Sel.Name == "Exit" {
				pass.Reportf(call.Pos(), "direct call to os.Exit in main function")
			}
			return true
		})
	})

	return nil, nil
}

func runRequestIDHeader(pass *analysis.Pass) (interface{}, error) {
	if pass.Pkg.Name() == "requestid" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.BasicLit)(nil)}, func(n ast.Node) {
		lit := n.(*ast.BasicLit)
		if lit.Kind != token.STRING {
			return
		}
		s, err := strconv.Unquote(lit.Value)
		if err != nil {
			return
		}
		if http.CanonicalHeaderKey(s) == canonicalRequestIDHeader {
			pass.Reportf(lit.Pos(), "use requestid.Header instead of %s", lit.Value)
		}
	})

	return nil, nil
}
