// Package filter compiles the process search box into a predicate.
//
// The language is a whitespace-separated list of tokens, all of which must
// match:
//
//	pid:<int>      process ID
//	user:<text>    owner
//	cpu>N cpu<N    CPU percent, strict comparison
//	mem>N mem<N    resident memory in MB, strict comparison
//	threads>N      thread count, strict comparison (also threads<N)
//	<text>         anything else is matched against the process name
//
// pid, user and name tokens follow the global MatchMode; comparisons do
// not. A numeric token that does not parse makes the whole expression match
// nothing instead of raising an error, so a half-typed query simply empties
// the table.
package filter

import (
	"strconv"
	"strings"

	"github.com/rileyhilliard/resmon/internal/metrics"
	"golang.org/x/text/cases"
)

// Field is the process attribute a term inspects.
type Field int

const (
	FieldName Field = iota
	FieldPID
	FieldUser
	FieldCPU
	FieldMem
	FieldThreads
)

// String returns the field's name as used in the query syntax.
func (f Field) String() string {
	switch f {
	case FieldPID:
		return "pid"
	case FieldUser:
		return "user"
	case FieldCPU:
		return "cpu"
	case FieldMem:
		return "mem"
	case FieldThreads:
		return "threads"
	default:
		return "name"
	}
}

// Op is how a term compares its field against the literal.
type Op int

const (
	OpMatch Op = iota // equals or contains, depending on MatchMode
	OpGreater
	OpLess
)

// String returns the operator as written in queries.
func (o Op) String() string {
	switch o {
	case OpGreater:
		return ">"
	case OpLess:
		return "<"
	default:
		return ":"
	}
}

// Term is one parsed token.
type Term struct {
	Field Field
	Op    Op
	Value string // literal text after the prefix

	num   float64 // parsed literal for pid and comparisons
	valid bool
}

// Valid reports whether the literal parsed. Invalid terms never match.
func (t Term) Valid() bool {
	return t.valid
}

// String renders the term back into query syntax.
func (t Term) String() string {
	if t.Field == FieldName {
		return t.Value
	}
	return t.Field.String() + t.Op.String() + t.Value
}

type prefix struct {
	text  string
	field Field
	op    Op
}

// prefixes are checked in this order; the first match wins.
var prefixes = []prefix{
	{"pid:", FieldPID, OpMatch},
	{"user:", FieldUser, OpMatch},
	{"cpu>", FieldCPU, OpGreater},
	{"cpu<", FieldCPU, OpLess},
	{"mem>", FieldMem, OpGreater},
	{"mem<", FieldMem, OpLess},
	{"threads>", FieldThreads, OpGreater},
	{"threads<", FieldThreads, OpLess},
}

// Expression is a compiled query. The zero value matches everything.
type Expression struct {
	terms []Term
	mode  MatchMode
}

// Compile parses text into an Expression. It never fails: malformed
// numeric tokens compile into terms that match nothing.
//
// In MatchSubstring mode pid:42 also matches 142 and 420, because the PID's
// decimal text is searched like any other field. Callers that need pid:N to
// match only PID N must compile with MatchExact.
func Compile(text string, mode MatchMode) Expression {
	fields := strings.Fields(text)
	terms := make([]Term, 0, len(fields))
	for _, tok := range fields {
		terms = append(terms, parseToken(tok))
	}
	return Expression{terms: terms, mode: mode}
}

func parseToken(tok string) Term {
	for _, p := range prefixes {
		if !strings.HasPrefix(tok, p.text) {
			continue
		}
		t := Term{Field: p.field, Op: p.op, Value: tok[len(p.text):]}
		t.num, t.valid = parseLiteral(t.Field, t.Value)
		return t
	}
	return Term{Field: FieldName, Op: OpMatch, Value: tok, valid: true}
}

// parseLiteral converts the literal for fields that need a number.
func parseLiteral(f Field, value string) (float64, bool) {
	switch f {
	case FieldPID, FieldThreads:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	case FieldCPU, FieldMem:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, true
	}
}

// Terms returns the parsed terms in input order.
func (e Expression) Terms() []Term {
	out := make([]Term, len(e.terms))
	copy(out, e.terms)
	return out
}

// Mode returns the match mode the expression was compiled with.
func (e Expression) Mode() MatchMode {
	return e.mode
}

// Empty reports whether the expression has no terms and so admits every row.
func (e Expression) Empty() bool {
	return len(e.terms) == 0
}

// Valid reports whether every term parsed.
func (e Expression) Valid() bool {
	for _, t := range e.terms {
		if !t.valid {
			return false
		}
	}
	return true
}

// String renders the expression back into normalized query syntax.
func (e Expression) String() string {
	parts := make([]string, len(e.terms))
	for i, t := range e.terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Matches reports whether rec satisfies every term.
func (e Expression) Matches(rec metrics.ProcessRecord) bool {
	for _, t := range e.terms {
		if !e.matchTerm(t, rec) {
			return false
		}
	}
	return true
}

func (e Expression) matchTerm(t Term, rec metrics.ProcessRecord) bool {
	if !t.valid {
		return false
	}

	switch t.Field {
	case FieldPID:
		if e.mode == MatchExact {
			return float64(rec.PID) == t.num
		}
		return strings.Contains(strconv.FormatInt(int64(rec.PID), 10), t.Value)
	case FieldUser:
		return e.matchText(rec.User, t.Value)
	case FieldName:
		return e.matchText(rec.Name, t.Value)
	case FieldCPU:
		return compare(rec.CPUPercent, t.Op, t.num)
	case FieldMem:
		return compare(rec.ResidentMemoryMB, t.Op, t.num)
	case FieldThreads:
		return compare(float64(rec.Threads), t.Op, t.num)
	}
	return false
}

func (e Expression) matchText(field, literal string) bool {
	// Caser keeps state between calls, so each comparison gets its own.
	fold := cases.Fold()
	f := fold.String(field)
	l := fold.String(literal)
	if e.mode == MatchExact {
		return f == l
	}
	return strings.Contains(f, l)
}

func compare(v float64, op Op, literal float64) bool {
	switch op {
	case OpGreater:
		return v > literal
	case OpLess:
		return v < literal
	}
	return false
}

// Apply returns the records that match expr, preserving order.
func Apply(records []metrics.ProcessRecord, expr Expression) []metrics.ProcessRecord {
	if expr.Empty() {
		out := make([]metrics.ProcessRecord, len(records))
		copy(out, records)
		return out
	}
	out := make([]metrics.ProcessRecord, 0, len(records))
	for _, r := range records {
		if expr.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}
