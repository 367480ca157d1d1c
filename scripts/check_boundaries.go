package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type violation struct {
	File   string
	Line   int
	Import string
	Rule   string
}

// layerRule lists the in-repo packages a layer may import, relative to its
// own service. Layers without a rule only get the cross-service check.
type layerRule struct {
	local      []string
	shared     []string
	thirdParty bool
}

var layerRules = map[string]layerRule{
	"domain": {
		local: []string{"domain"},
	},
	"ports": {
		local:  []string{"domain"},
		shared: []string{"docketdesk/contracts"},
	},
	"application": {
		local:  []string{"application", "domain", "ports"},
		shared: []string{"docketdesk/contracts"},
	},
	"transport": {
		local: []string{"transport", "domain"},
	},
}

func main() {
	violations := collectViolations("contexts")
	if len(violations) == 0 {
		fmt.Println("boundary checks passed")
		return
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].File == violations[j].File {
			if violations[i].Line == violations[j].Line {
				return violations[i].Import < violations[j].Import
			}
			return violations[i].Line < violations[j].Line
		}
		return violations[i].File < violations[j].File
	})

	fmt.Println("boundary violations found:")
	for _, v := range violations {
		fmt.Printf("- %s:%d imports %q (%s)\n", v.File, v.Line, v.Import, v.Rule)
	}
	os.Exit(1)
}

func collectViolations(root string) []violation {
	var violations []violation

	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}

		normalized := filepath.ToSlash(path)
		rel := strings.TrimPrefix(normalized, filepath.ToSlash(root)+"/")
		parts := strings.Split(rel, "/")
		if len(parts) < 3 {
			return nil
		}

		servicePrefix := fmt.Sprintf("docketdesk/contexts/%s/%s", parts[0], parts[1])
		layer := parts[2]
		isTest := strings.HasSuffix(path, "_test.go")

		violations = append(violations, validateFile(path, normalized, layer, servicePrefix, isTest)...)
		return nil
	})

	return violations
}

func validateFile(path string, normalizedPath string, layer string, servicePrefix string, isTest bool) []violation {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
	if err != nil {
		return []violation{{File: normalizedPath, Line: 1, Rule: "file must parse"}}
	}

	var violations []violation
	for _, imp := range file.Imports {
		importPath := strings.Trim(imp.Path.Value, "\"")
		line := fset.Position(imp.Pos()).Line
		add := func(rule string) {
			violations = append(violations, violation{File: normalizedPath, Line: line, Import: importPath, Rule: rule})
		}

		if strings.HasPrefix(importPath, "docketdesk/contexts/") && !hasPrefix(importPath, servicePrefix) {
			add("cross-service imports are forbidden; bridge ports in bootstrap")
			continue
		}
		if hasPrefix(importPath, "docketdesk/internal/app") {
			add("contexts must not import the composition root")
		}

		// Tests may use assertion libraries and fakes from any layer of
		// their own service.
		if isTest {
			continue
		}
		rule, ok := layerRules[layer]
		if !ok {
			continue
		}
		if hasPrefix(importPath, "docketdesk/internal") {
			add(layer + " must not import runtime infrastructure")
			continue
		}
		if strings.Contains(importPath, "/adapters") {
			add(layer + " must not import adapters")
			continue
		}
		if isStdlib(importPath) {
			continue
		}
		if !strings.HasPrefix(importPath, "docketdesk/") {
			if !rule.thirdParty {
				add(layer + " must not import third-party packages; wrap them in an adapter")
			}
			continue
		}
		allowed := append([]string{}, rule.shared...)
		for _, local := range rule.local {
			allowed = append(allowed, servicePrefix+"/"+local)
		}
		if !isAllowed(importPath, allowed) {
			add(layer + " import is outside explicit allowlist")
		}
	}

	return violations
}

func hasPrefix(path string, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func isAllowed(importPath string, allowedPrefixes []string) bool {
	for _, p := range allowedPrefixes {
		if hasPrefix(importPath, p) {
			return true
		}
	}
	return false
}

func isStdlib(importPath string) bool {
	if strings.HasPrefix(importPath, "docketdesk/") {
		return false
	}
	first := importPath
	if idx := strings.Index(first, "/"); idx != -1 {
		first = first[:idx]
	}
	return !strings.Contains(first, ".")
}
