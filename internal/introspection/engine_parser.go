package introspection

import (
	"fmt"
	"strings"
)

// Engine is the parsed form of a ClickHouse engine declaration.
type Engine struct {
	// Name is the concrete engine, e.g. "ReplicatedReplacingMergeTree".
	Name string
	// Family groups related engines: "MergeTree", "Distributed", "Log",
	// "Kafka", "View", "MaterializedView".
	Family string
	// Replicated is true for the Replicated* MergeTree variants.
	Replicated bool
	// Params holds the engine arguments from engine_full, unquoted.
	Params []string
}

// mergeTreeVariants are the supported MergeTree-family engines, longest
// name first so prefix matching picks the most specific variant.
var mergeTreeVariants = []string{
	"ReplicatedReplacingMergeTree",
	"ReplicatedCollapsingMergeTree",
	"ReplicatedAggregatingMergeTree",
	"ReplicatedSummingMergeTree",
	"ReplicatedMergeTree",
	"ReplacingMergeTree",
	"CollapsingMergeTree",
	"AggregatingMergeTree",
	"SummingMergeTree",
	"MergeTree",
}

// ParseEngine parses the engine columns of system.tables. The engine
// argument is the bare name ("ReplacingMergeTree"); engineFull carries the
// declaration with parameters and trailing clauses
// ("ReplacingMergeTree(version) ORDER BY id SETTINGS ...").
func ParseEngine(engine, engineFull string) (*Engine, error) {
	decl := extractDeclaration(engineFull)
	if decl == "" {
		decl = engine
	}

	for _, variant := range mergeTreeVariants {
		if engine == variant {
			return &Engine{
				Name:       variant,
				Family:     "MergeTree",
				Replicated: strings.HasPrefix(variant, "Replicated"),
				Params:     extractParameters(decl),
			}, nil
		}
	}

	switch engine {
	case "Distributed":
		params := extractParameters(decl)
		if len(params) < 3 {
			return nil, fmt.Errorf("Distributed requires at least 3 parameters (cluster, database, table), got %d", len(params))
		}
		return &Engine{Name: engine, Family: "Distributed", Params: params}, nil
	case "Log", "TinyLog", "StripeLog":
		return &Engine{Name: engine, Family: "Log"}, nil
	case "Kafka":
		return &Engine{Name: engine, Family: "Kafka", Params: extractParameters(decl)}, nil
	case "View":
		return &Engine{Name: engine, Family: "View"}, nil
	case "MaterializedView":
		return &Engine{Name: engine, Family: "MaterializedView"}, nil
	}

	return nil, fmt.Errorf("unsupported engine type: %s", engine)
}

// SupportedEngine reports whether the engine name parses.
func SupportedEngine(engine string) bool {
	_, err := ParseEngine(engine, "")
	return err == nil
}

// extractDeclaration trims trailing ORDER BY / PARTITION BY / SETTINGS
// clauses from engine_full, leaving just the engine call.
func extractDeclaration(engineFull string) string {
	keywords := []string{" ORDER BY", " PARTITION BY", " PRIMARY KEY", " SETTINGS", " TTL"}
	cut := len(engineFull)
	for _, kw := range keywords {
		if pos := strings.Index(engineFull, kw); pos != -1 && pos < cut {
			cut = pos
		}
	}
	return strings.TrimSpace(engineFull[:cut])
}

// extractParameters splits the parenthesized argument list of an engine
// declaration on commas, respecting quotes and nested parentheses
// (SummingMergeTree((col1, col2)) is a single argument), and strips
// outer quotes from each argument.
func extractParameters(decl string) []string {
	start := strings.Index(decl, "(")
	end := strings.LastIndex(decl, ")")
	if start == -1 || end == -1 || start >= end {
		return nil
	}

	content := strings.TrimSpace(decl[start+1 : end])
	if content == "" {
		return nil
	}

	var params []string
	var current strings.Builder
	depth := 0
	inQuote := false
	quoteChar := rune(0)

	for _, ch := range content {
		switch {
		case (ch == '\'' || ch == '"') && !inQuote:
			inQuote = true
			quoteChar = ch
		case ch == quoteChar && inQuote:
			inQuote = false
			quoteChar = 0
		case ch == '(' && !inQuote:
			depth++
		case ch == ')' && !inQuote:
			depth--
		case ch == ',' && !inQuote && depth == 0:
			params = append(params, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(ch)
	}
	if current.Len() > 0 {
		params = append(params, strings.TrimSpace(current.String()))
	}

	for i, p := range params {
		params[i] = strings.Trim(p, "'\"")
	}
	return params
}
