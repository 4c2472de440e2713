package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-sinkform/pkg/visibility"
)

// Evaluator is a small, dependency-free rule evaluator.
//
// Supported forms:
// - boolean checks: `isEdit`, `!isNew`
// - comparisons: `row.fieldType == "DATE"`, `status != 110`
// - membership: `status in [110, 130]`, `row.fieldType in ['BIGINT', 'DATE']`
// - composition: `isEdit && status in [110, 130]`, `!isEdit || isNew`
//
// Identifiers resolve against visibility.Context.Values; the `row.` prefix
// resolves against visibility.Context.Row. Parsed rules are cached.
type Evaluator struct {
	mu       sync.RWMutex
	compiled map[string]node
}

func New() *Evaluator {
	return &Evaluator{compiled: make(map[string]node)}
}

func (e *Evaluator) Eval(rule string, ctx visibility.Context) (bool, error) {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return true, nil
	}
	n, err := e.compile(trimmed)
	if err != nil {
		return false, err
	}
	return n.eval(ctx), nil
}

// Check parses rule without evaluating it.
func (e *Evaluator) Check(rule string) error {
	trimmed := strings.TrimSpace(rule)
	if trimmed == "" {
		return nil
	}
	_, err := e.compile(trimmed)
	return err
}

func (e *Evaluator) compile(rule string) (node, error) {
	e.mu.RLock()
	cached, ok := e.compiled[rule]
	e.mu.RUnlock()
	if ok {
		return cached, nil
	}

	tokens, err := tokenize(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("visibility/expr: unexpected token %q", p.tokens[p.pos].raw)
	}

	e.mu.Lock()
	if e.compiled == nil {
		e.compiled = make(map[string]node)
	}
	e.compiled[rule] = n
	e.mu.Unlock()
	return n, nil
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenIn
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
	tokenComma
)

type token struct {
	kind tokenKind
	raw  string
}

func isDelimiter(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', ',', '!', '=', '&', '|':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(input); {
		c := input[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case c == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case c == '[':
			tokens = append(tokens, token{tokenLBracket, "["})
			i++
		case c == ']':
			tokens = append(tokens, token{tokenRBracket, "]"})
			i++
		case c == ',':
			tokens = append(tokens, token{tokenComma, ","})
			i++
		case c == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				tokens = append(tokens, token{tokenNeq, "!="})
				i += 2
				continue
			}
			tokens = append(tokens, token{tokenNot, "!"})
			i++
		case c == '=':
			if i+1 >= len(input) || input[i+1] != '=' {
				return nil, errors.New("visibility/expr: unexpected '='; use '=='")
			}
			tokens = append(tokens, token{tokenEq, "=="})
			i += 2
		case c == '&':
			if i+1 >= len(input) || input[i+1] != '&' {
				return nil, errors.New("visibility/expr: unexpected '&'; use '&&'")
			}
			tokens = append(tokens, token{tokenAnd, "&&"})
			i += 2
		case c == '|':
			if i+1 >= len(input) || input[i+1] != '|' {
				return nil, errors.New("visibility/expr: unexpected '|'; use '||'")
			}
			tokens = append(tokens, token{tokenOr, "||"})
			i += 2
		case c == '"' || c == '\'':
			end := i + 1
			for end < len(input) && input[end] != c {
				if input[end] == '\\' {
					end++
				}
				end++
			}
			if end >= len(input) {
				return nil, errors.New("visibility/expr: unterminated string literal")
			}
			body := input[i+1 : end]
			if c == '\'' {
				body = strings.ReplaceAll(body, `"`, `\"`)
				body = strings.ReplaceAll(body, `\'`, `'`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("visibility/expr: invalid string literal: %w", err)
			}
			tokens = append(tokens, token{tokenString, value})
			i = end + 1
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{tokenBool, strings.ToLower(raw)})
			case "null", "nil":
				tokens = append(tokens, token{tokenNull, "null"})
			case "in":
				tokens = append(tokens, token{tokenIn, "in"})
			default:
				if looksLikeNumber(raw) {
					tokens = append(tokens, token{tokenNumber, raw})
				} else {
					tokens = append(tokens, token{tokenIdent, raw})
				}
			}
		}
	}
	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	c := raw[0]
	return (c >= '0' && c <= '9') || c == '-' || c == '+'
}

type node interface {
	eval(ctx visibility.Context) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) || n.right.eval(ctx) }

type andNode struct{ left, right node }

func (n andNode) eval(ctx visibility.Context) bool { return n.left.eval(ctx) && n.right.eval(ctx) }

type notNode struct{ inner node }

func (n notNode) eval(ctx visibility.Context) bool { return !n.inner.eval(ctx) }

type truthyNode struct{ ident string }

func (n truthyNode) eval(ctx visibility.Context) bool {
	value, ok := lookup(ctx, n.ident)
	return ok && truthy(value)
}

type compareNode struct {
	ident  string
	negate bool
	want   literal
}

func (n compareNode) eval(ctx visibility.Context) bool {
	value, _ := lookup(ctx, n.ident)
	return n.want.matches(value) != n.negate
}

type inNode struct {
	ident string
	set   []literal
}

func (n inNode) eval(ctx visibility.Context) bool {
	value, ok := lookup(ctx, n.ident)
	if !ok {
		return false
	}
	for _, candidate := range n.set {
		if candidate.matches(value) {
			return true
		}
	}
	return false
}

type literal struct {
	kind tokenKind
	raw  string
	num  float64
}

func (l literal) matches(value any) bool {
	switch l.kind {
	case tokenNull:
		return value == nil
	case tokenBool:
		got, ok := coerceBool(value)
		return ok && got == (l.raw == "true")
	case tokenNumber:
		got, ok := coerceNumber(value)
		return ok && got == l.num
	default:
		return value != nil && coerceString(value) == l.raw
	}
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) match(kind tokenKind) bool {
	if p.pos < len(p.tokens) && p.tokens[p.pos].kind == kind {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokenOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokenAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.match(tokenNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.match(tokenLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokenRParen) {
			return nil, errors.New("visibility/expr: missing closing ')'")
		}
		return inner, nil
	}

	if p.pos >= len(p.tokens) {
		return nil, errors.New("visibility/expr: empty expression")
	}
	ident := p.tokens[p.pos]
	if ident.kind != tokenIdent {
		return nil, fmt.Errorf("visibility/expr: expected identifier, got %q", ident.raw)
	}
	p.pos++

	switch {
	case p.match(tokenEq):
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return compareNode{ident: ident.raw, want: lit}, nil
	case p.match(tokenNeq):
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return compareNode{ident: ident.raw, negate: true, want: lit}, nil
	case p.match(tokenIn):
		set, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return inNode{ident: ident.raw, set: set}, nil
	}
	return truthyNode{ident.raw}, nil
}

func (p *parser) parseList() ([]literal, error) {
	if !p.match(tokenLBracket) {
		return nil, errors.New("visibility/expr: expected '[' after in")
	}
	var set []literal
	if p.match(tokenRBracket) {
		return set, nil
	}
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		set = append(set, lit)
		if p.match(tokenRBracket) {
			return set, nil
		}
		if !p.match(tokenComma) {
			return nil, errors.New("visibility/expr: expected ',' or ']' in list")
		}
	}
}

func (p *parser) parseLiteral() (literal, error) {
	if p.pos >= len(p.tokens) {
		return literal{}, errors.New("visibility/expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokenString, tokenBool, tokenNull:
		return literal{kind: tok.kind, raw: tok.raw}, nil
	case tokenNumber:
		num, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return literal{}, fmt.Errorf("visibility/expr: invalid number literal %q", tok.raw)
		}
		return literal{kind: tokenNumber, raw: tok.raw, num: num}, nil
	case tokenIdent:
		// bare words compare as strings
		return literal{kind: tokenString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("visibility/expr: expected literal, got %q", tok.raw)
	}
}

func lookup(ctx visibility.Context, key string) (any, bool) {
	if path, ok := strings.CutPrefix(key, "row."); ok {
		return lookupMap(ctx.Row, path)
	}
	return lookupMap(ctx.Values, key)
}

func lookupMap(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}

	var current any = values
	for _, part := range strings.Split(path, ".") {
		typed, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := typed[part]
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		if n, ok := coerceNumber(v); ok {
			return n != 0
		}
		return true
	}
}

func coerceBool(value any) (bool, bool) {
	switch v := value.(type) {
	case nil:
		return false, false
	case bool:
		return v, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return parsed, err == nil
	default:
		return truthy(value), true
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case fmt.Stringer:
		f, err := strconv.ParseFloat(v.String(), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func coerceString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(value)
	}
}
