package scoring

// skillSynonyms maps a canonical skill phrase to its equivalent phrasings.
// The canonical phrase is implicitly part of its own group.
var skillSynonyms = map[string][]string{
	"project management":      {"pm", "programme management", "program management", "project manager", "project coordination"},
	"product management":      {"product manager", "product owner", "product strategy"},
	"javascript":              {"js", "ecmascript", "es6"},
	"typescript":              {"ts"},
	"python":                  {"py", "python3"},
	"node.js":                 {"nodejs", "node"},
	"react":                   {"reactjs", "react.js"},
	"machine learning":        {"ml", "machine-learning"},
	"artificial intelligence": {"ai"},
	"data analysis":           {"data analytics", "data analyst", "analytics"},
	"sql":                     {"mysql", "postgresql", "postgres", "t-sql", "database querying"},
	"user experience":         {"ux", "ui/ux", "user interface", "ui"},
	"customer service":        {"customer support", "client service", "customer care"},
	"communication":           {"communication skills", "verbal communication", "written communication"},
	"leadership":              {"team leadership", "team lead", "people management"},
	"microsoft excel":         {"excel", "ms excel", "spreadsheets"},
	"accounting":              {"bookkeeping", "financial reporting"},
	"digital marketing":       {"online marketing", "social media marketing", "seo", "sem"},
	"human resources":         {"hr", "talent acquisition", "recruitment"},
	"amazon web services":     {"aws"},
	"continuous integration":  {"ci/cd", "ci", "devops pipelines"},
	"agile":                   {"scrum", "kanban"},
	"mobile money":            {"momo"},
}

// synonymGroups is skillSynonyms flattened and normalized once at start up.
var synonymGroups = buildSynonymGroups(skillSynonyms)

func buildSynonymGroups(table map[string][]string) [][]string {
	groups := make([][]string, 0, len(table))
	for canonical, variants := range table {
		group := make([]string, 0, len(variants)+1)
		group = append(group, Normalize(canonical))
		for _, v := range variants {
			if n := Normalize(v); n != "" {
				group = append(group, n)
			}
		}
		groups = append(groups, group)
	}
	return groups
}
