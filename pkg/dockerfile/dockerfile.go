// Package dockerfile detects build practices by parsing a Dockerfile
// directly. Unlike the layer-history heuristics, this reads the actual
// instructions, so it is the authoritative source when a Dockerfile is
// available.
package dockerfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/moby/buildkit/frontend/dockerfile/parser"

	"github.com/dockgrade/dockgrade/pkg/types"
)

// DetectFeatures parses the Dockerfile at path and reports which build
// practices it uses.
func DetectFeatures(path string) (types.Features, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.Features{}, fmt.Errorf("failed to open Dockerfile: %w", err)
	}
	defer f.Close()

	result, err := parser.Parse(f)
	if err != nil {
		return types.Features{}, fmt.Errorf("failed to parse Dockerfile: %w", err)
	}
	return detect(result.AST), nil
}

func detect(ast *parser.Node) types.Features {
	var features types.Features
	fromCount := 0

	for _, node := range ast.Children {
		args := nodeArgs(node)
		switch strings.ToLower(node.Value) {
		case "from":
			fromCount++
			if fromCount > 1 || hasStageAlias(args) {
				features.MultiStage = true
			}
		case "user":
			if len(args) > 0 && isNonRoot(args[0]) {
				features.NonRootUser = true
			}
		case "healthcheck":
			if len(args) == 0 || !strings.EqualFold(args[0], "none") {
				features.HealthCheck = true
			}
		case "run":
			if hasCacheCleanup(strings.ToLower(node.Original)) {
				features.CacheCleanup = true
			}
		}
	}
	return features
}

// nodeArgs flattens an instruction's argument chain.
func nodeArgs(node *parser.Node) []string {
	var args []string
	for n := node.Next; n != nil; n = n.Next {
		args = append(args, n.Value)
	}
	return args
}

// hasStageAlias reports whether a FROM instruction names its stage
// ("FROM golang AS builder").
func hasStageAlias(args []string) bool {
	for _, a := range args {
		if strings.EqualFold(a, "as") {
			return true
		}
	}
	return false
}

func isNonRoot(user string) bool {
	if cut := strings.IndexByte(user, ':'); cut >= 0 {
		user = user[:cut]
	}
	return user != "" && user != "root" && user != "0"
}

func hasCacheCleanup(run string) bool {
	switch {
	case strings.Contains(run, "apt-get") && strings.Contains(run, "clean"):
		return true
	case strings.Contains(run, "rm") && strings.Contains(run, "apt/lists"):
		return true
	case strings.Contains(run, "apk") && strings.Contains(run, "--no-cache"):
		return true
	case strings.Contains(run, "pip") && strings.Contains(run, "--no-cache-dir"):
		return true
	}
	return false
}
