package query

// Operator is the closed set of filter operators understood by the compiler.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpMin
	OpMax
	OpLike
	OpILike
	OpIn
	OpNotIn
	OpDateMin
	OpDateMax
	OpDateEqual
	OpBetween
	OpNotBetween
)

var operatorTokens = map[string]Operator{
	"PEqual":      OpEqual,
	"PNotEqual":   OpNotEqual,
	"PMin":        OpMin,
	"PMax":        OpMax,
	"PLike":       OpLike,
	"PILike":      OpILike,
	"PIn":         OpIn,
	"PNotIn":      OpNotIn,
	"PDateMin":    OpDateMin,
	"PDateMax":    OpDateMax,
	"PDateEqual":  OpDateEqual,
	"PBetween":    OpBetween,
	"PNotBetween": OpNotBetween,
}

// ParseOperator maps a query-string token to its operator.
// Unknown tokens yield OpEqual and false.
func ParseOperator(token string) (Operator, bool) {
	op, ok := operatorTokens[token]
	if !ok {
		return OpEqual, false
	}
	return op, true
}

func (o Operator) String() string {
	for token, op := range operatorTokens {
		if op == o {
			return token
		}
	}
	return "PEqual"
}
