package scopedquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), Analyzer, "queries")
}

func TestIsUnscoped(t *testing.T) {
	testCases := map[string]bool{
		`SELECT * FROM addresses WHERE id = $1 AND user_id = $2`: false,
		`select count(*) from addresses`:                          false,
		`SELECT * FROM addresses_archive`:                         false,
		`SELECT * FROM users`:                                     false,
		`SELECT * FROM addresses WHERE id = $1`:                   true,
		`  UPDATE  addresses SET name = $1`:                       true,
		`INSERT INTO addresses (name) VALUES ($1)`:                true,
	}

	for query, want := range testCases {
		assert.Equal(t, want, isUnscoped(query), query)
	}
}
