// Command staticlint bundles the Go toolchain analyzers, third-party analyzers
// and the favaddr project analyzers into a single multichecker binary.
//
// Staticcheck analyzers are opt-in: config.json, placed next to the binary or
// pointed to by STATICLINT_CONFIG, lists their names ("SA1000", "SA4006", ...).
//
// Usage:
//
//	go build -o bin/staticlint ./cmd/staticlint
//	cp cmd/staticlint/config.json bin/
//	bin/staticlint ./...
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/httpresponse"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/favaddr/cmd/staticlint/noexit"
	"github.com/patric-chuzhbe/favaddr/cmd/staticlint/scopedquery"
)

// Config is the default name of the configuration file.
const Config = `config.json`

// ConfigData describes the structure of the configuration file.
type ConfigData struct {
	Staticcheck []string
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	multichecker.Main(analyzers(cfg)...)
}

func loadConfig() (*ConfigData, error) {
	configPath := os.Getenv("STATICLINT_CONFIG")
	if configPath == "" {
		appfile, err := os.Executable()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(filepath.Dir(appfile), Config)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("in cmd/staticlint/main.go/loadConfig(): error while `os.ReadFile()` calling: %w", err)
	}

	var cfg ConfigData
	if err = json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("in cmd/staticlint/main.go/loadConfig(): error while `json.Unmarshal()` calling: %w", err)
	}

	return &cfg, nil
}

func analyzers(cfg *ConfigData) []*analysis.Analyzer {
	myChecks := []*analysis.Analyzer{
		copylock.Analyzer,     // Checks for copying of locks by value.
		httpresponse.Analyzer, // Checks for using HTTP responses before checking errors.
		loopclosure.Analyzer,  // Detects references to loop variables inside closures.
		lostcancel.Analyzer,   // Finds contexts that are not canceled.
		printf.Analyzer,       // Verifies format strings.
		structtag.Analyzer,    // Checks for incorrect struct field tags.
		unmarshal.Analyzer,    // Detects passing non-pointers to unmarshal.
		unreachable.Analyzer,  // Detects unreachable code.

		ineffassign.Analyzer, // Detects ineffective assignments.
		nilerr.Analyzer,      // Flags returning nil after an error was created.

		noexit.Analyzer,      // Forbids os.Exit and log.Fatal in main.main.
		scopedquery.Analyzer, // Address queries must be filtered by user_id.
	}

	checks := make(map[string]bool)
	for _, v := range cfg.Staticcheck {
		checks[v] = true
	}

	for _, v := range staticcheck.Analyzers {
		if checks[v.Analyzer.Name] {
			myChecks = append(myChecks, v.Analyzer)
		}
	}

	return myChecks
}
