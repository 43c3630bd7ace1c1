// Package scopedquery reports SQL string literals that read or write the
// addresses table without a user_id condition. Row counts used by the
// internal stats endpoint are exempt.
package scopedquery

import (
	"go/ast"
	"go/token"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "scopedquery",
	Doc:      "reports queries on the addresses table that are not filtered by user_id",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var (
	addressesTable = regexp.MustCompile(`(?i)\b(from|update|into)\s+addresses\b`)
	countOnly      = regexp.MustCompile(`(?i)^\s*select\s+count\(`)
)

func run(pass *analysis.Pass) (interface{}, error) {
	inspectResult := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	inspectResult.Preorder([]ast.Node{(*ast.BasicLit)(nil)}, func(node ast.Node) {
		literal := node.(*ast.BasicLit)
		if literal.Kind != token.STRING {
			return
		}
		if strings.HasSuffix(pass.Fset.File(literal.Pos()).Name(), "_test.go") {
			return
		}

		query, err := strconv.Unquote(literal.Value)
		if err != nil {
			return
		}
		if isUnscoped(query) {
			pass.Reportf(literal.Pos(), "query on addresses is not filtered by user_id")
		}
	})

	return nil, nil
}

func isUnscoped(query string) bool {
	if !addressesTable.MatchString(query) {
		return false
	}
	if countOnly.MatchString(query) {
		return false
	}

	return !strings.Contains(strings.ToLower(query), "user_id")
}
