package sqlfmt

// reserved lists the words whose case follows Style.KeywordCase.
var reserved = setOf(
	"add", "all", "alter", "and", "anti", "any", "as", "asc", "between", "by",
	"case", "cast", "cluster", "column", "columns", "create", "cross", "current",
	"database", "delete", "desc", "distinct", "distribute", "drop", "else", "end",
	"escape", "except", "exists", "false", "first", "following", "for", "from",
	"full", "group", "having", "if", "ilike", "in", "inner", "insert", "intersect",
	"interval", "into", "is", "join", "last", "lateral", "left", "like", "limit",
	"minus", "natural", "not", "null", "nulls", "offset", "on", "or", "order",
	"outer", "over", "overwrite", "partition", "pivot", "preceding", "qualify",
	"range", "replace", "right", "rlike", "row", "rows", "select", "semi", "set",
	"sort", "table", "tablesample", "temporary", "then", "true", "unbounded",
	"union", "unpivot", "update", "using", "values", "view", "when", "where",
	"window", "with",
)

// clauses maps the first word of a top-level clause to the words that may
// follow it as part of the same clause head.
var clauses = map[string][]string{
	"select":     {"distinct", "all"},
	"from":       nil,
	"where":      nil,
	"group":      {"by"},
	"having":     nil,
	"qualify":    nil,
	"window":     nil,
	"order":      {"by"},
	"cluster":    {"by"},
	"distribute": {"by"},
	"sort":       {"by"},
	"limit":      nil,
	"offset":     nil,
	"with":       nil,
	"values":     nil,
	"set":        nil,
	"update":     nil,
	"insert":     {"into", "overwrite", "table"},
	"delete":     {"from"},
	"union":      {"all", "distinct"},
	"intersect":  {"all", "distinct"},
	"except":     {"all", "distinct"},
	"minus":      {"all", "distinct"},
}

// clauseHeadRequires lists clauses that only count as a clause when followed
// by one of their continuation words.
var clauseHeadRequires = setOf("group", "order", "cluster", "distribute", "sort")

// setOperators separate whole queries rather than introducing a body.
var setOperators = setOf("union", "intersect", "except", "minus")

// conditionClauses break AND and OR onto their own lines.
var conditionClauses = setOf("where", "having", "qualify")

// joinWords may begin a join phrase.
var joinWords = setOf("join", "inner", "left", "right", "full", "cross", "natural", "anti", "semi", "outer", "lateral")

// spacedBeforeParen lists keywords that keep a space before an opening paren.
var spacedBeforeParen = setOf(
	"and", "as", "between", "by", "else", "exists", "from", "in", "is", "join",
	"not", "on", "or", "over", "select", "table", "then", "using", "values",
	"when", "where", "with", "into", "partition", "like",
)

func setOf(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}
