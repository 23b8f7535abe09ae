// Package registry holds the closed set of scoring operations and the
// static symbol tables bound to them. Read-only after package init.
package registry

// Op is a symbolic operation kind.
type Op int

// The closed operation set. Random and ReallyRandom are reply families
// drawn with low weight alongside ordinary increments.
const (
	OpIncrement Op = iota
	OpDecrement
	OpQuery
	OpSelfAttempt
	OpRandom
	OpReallyRandom
)

// opCount bounds the valid Op range.
const opCount = int(OpReallyRandom) + 1

var names = [...]string{
	OpIncrement:    "increment",
	OpDecrement:    "decrement",
	OpQuery:        "query",
	OpSelfAttempt:  "self-attempt",
	OpRandom:       "random",
	OpReallyRandom: "really-random",
}

// symbols maps command tokens to operations. Only user-addressable
// operations carry symbols; the rest are internal reply families.
var symbols = map[string]Op{
	"++":        OpIncrement,
	"inc":       OpIncrement,
	"increment": OpIncrement,
	"--":        OpDecrement,
	"dec":       OpDecrement,
	"decrement": OpDecrement,
	"==":        OpQuery,
	"score":     OpQuery,
	"query":     OpQuery,
}

// String returns the canonical human name. An out-of-range Op is a
// programmer error and panics.
func (o Op) String() string {
	if int(o) < 0 || int(o) >= opCount {
		panic("registry: unknown operation")
	}
	return names[o]
}

// Polarity returns the score delta sign for mutating operations, 0 otherwise.
func (o Op) Polarity() int64 {
	switch o {
	case OpIncrement:
		return 1
	case OpDecrement:
		return -1
	default:
		return 0
	}
}

// Lookup resolves a command symbol to its operation.
func Lookup(symbol string) (Op, bool) {
	op, ok := symbols[symbol]
	return op, ok
}

// Symbols returns the symbols bound to an operation, in no particular order.
func Symbols(op Op) []string {
	var out []string
	for s, o := range symbols {
		if o == op {
			out = append(out, s)
		}
	}
	return out
}

// All returns every operation kind.
func All() []Op {
	out := make([]Op, opCount)
	for i := range out {
		out[i] = Op(i)
	}
	return out
}
