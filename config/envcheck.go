package config

import (
	"bufio"
	"os"
	"strings"
)

// FindingLevel classifies a ValidateEnvironment finding.
type FindingLevel string

const (
	// LevelWarning marks a required variable that is absent.
	LevelWarning FindingLevel = "warning"
	// LevelInfo marks an informational finding (variable present, or an
	// optional variable absent).
	LevelInfo FindingLevel = "info"
)

// Finding is one ValidateEnvironment diagnostic. Validation is advisory:
// the caller decides whether a missing required variable is fatal.
type Finding struct {
	Name        string
	Level       FindingLevel
	Present     bool
	Optional    bool
	Description string
}

// DeclaredVar describes one environment variable declaration, either
// passed via options or parsed from a .env.example file.
type DeclaredVar struct {
	Name        string
	Description string
	Optional    bool
}

// ValidateEnvironment checks declared environment variables against the
// process environment and returns a report. Missing required variables
// become warning-level findings; everything else is informational. It
// never fails: configuration may be legitimately supplied by the file
// layer instead.
func (r *Resolver) ValidateEnvironment() []Finding {
	vars := r.declaredVars()
	findings := make([]Finding, 0, len(vars))

	for _, v := range vars {
		_, present := os.LookupEnv(v.Name)
		f := Finding{
			Name:        v.Name,
			Present:     present,
			Optional:    v.Optional,
			Description: v.Description,
			Level:       LevelInfo,
		}
		if !present && !v.Optional {
			f.Level = LevelWarning
		}
		findings = append(findings, f)
	}
	return findings
}

// declaredVars merges option-declared variables with those parsed from the
// .env.example file, options first. Duplicate names keep the first
// declaration.
func (r *Resolver) declaredVars() []DeclaredVar {
	var vars []DeclaredVar
	seen := make(map[string]bool)

	add := func(v DeclaredVar) {
		if v.Name == "" || seen[v.Name] {
			return
		}
		seen[v.Name] = true
		vars = append(vars, v)
	}

	for _, name := range r.opts.RequiredVars {
		add(DeclaredVar{Name: name})
	}
	for _, name := range r.opts.OptionalVars {
		add(DeclaredVar{Name: name, Optional: true})
	}

	examplePath := r.opts.EnvExample
	if examplePath == "" && r.opts.FileSystem.Exists(".env.example") {
		examplePath = ".env.example"
	}
	if examplePath != "" {
		parsed, err := ParseEnvExample(examplePath)
		if err == nil {
			for _, v := range parsed {
				add(v)
			}
		}
	}
	return vars
}

// ParseEnvExample extracts variable declarations from a .env.example file.
// A comment line immediately preceding a variable becomes its description;
// a bare "# OPTIONAL" marker flags the next variable as optional.
func ParseEnvExample(path string) ([]DeclaredVar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		vars        []DeclaredVar
		description string
		optional    bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			comment := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			if strings.EqualFold(comment, "optional") {
				optional = true
			} else if comment != "" {
				description = comment
			}
			continue
		}

		name, _, ok := strings.Cut(line, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		vars = append(vars, DeclaredVar{
			Name:        name,
			Description: description,
			Optional:    optional,
		})
		description = ""
		optional = false
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}
