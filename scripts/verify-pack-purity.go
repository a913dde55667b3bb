// SPDX-License-Identifier: MIT

// Command verify-pack-purity enforces that the selection engine stays pure:
// internal/pack must not import anything that can reach the network, the
// filesystem, or a database. The engine computes; the edges do I/O.
package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"
)

// forbiddenPrefixes lists import path prefixes internal/pack may never use.
var forbiddenPrefixes = []string{
	"net",
	"os",
	"io/fs",
	"syscall",
	"database/sql",
	"github.com/ManuGH/pendel/internal/catalog",
	"github.com/ManuGH/pendel/internal/history",
	"github.com/ManuGH/pendel/internal/cache",
	"github.com/ManuGH/pendel/internal/export",
	"github.com/ManuGH/pendel/internal/api",
	"github.com/ManuGH/pendel/internal/config",
	"github.com/dgraph-io/badger",
	"github.com/redis/go-redis",
	"modernc.org/sqlite",
}

func main() {
	pattern := "./internal/pack"
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	violations, err := Analyze(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "❌ pack purity violations found:")
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
}

// Analyze loads the package pattern and reports every forbidden import.
// Test files are exempt: they may spin up fixtures however they like.
func Analyze(pattern string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedImports,
		Dir:  ".",
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		for importPath := range pkg.Imports {
			if bad, prefix := isForbidden(importPath); bad {
				violations = append(violations,
					fmt.Sprintf("%s: forbidden import %q (matches %q)", pkg.PkgPath, importPath, prefix))
			}
		}
	}
	return violations, nil
}

func isForbidden(importPath string) (bool, string) {
	for _, prefix := range forbiddenPrefixes {
		if importPath == prefix || strings.HasPrefix(importPath, prefix+"/") {
			return true, prefix
		}
	}
	return false, ""
}
