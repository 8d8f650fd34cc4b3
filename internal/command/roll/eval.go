package roll

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	maxDice  = 100
	maxSides = 1000
)

var (
	tokenRegex = regexp.MustCompile(`(?i)(\d*d\d+|\d+|[+\-*/])`)
	diceRegex  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
	validOps   = map[string]bool{"+": true, "-": true, "*": true, "/": true}
)

var errEmpty = errors.New("can't parse your formula, try something like `2d6+1d4*2-3`")

type term struct {
	value int
	desc  string
	op    string
	rolls []int
}

// Result is an evaluated dice formula.
type Result struct {
	Formula string
	Detail  string
	Total   int
	// Rolls holds every die rolled, highest first.
	Rolls []int
}

// Average is the mean of the individual die rolls, 0 without dice.
func (r *Result) Average() float64 {
	if len(r.Rolls) == 0 {
		return 0
	}
	sum := 0
	for _, v := range r.Rolls {
		sum += v
	}
	return float64(sum) / float64(len(r.Rolls))
}

// Evaluate rolls formula, e.g. "3d6+2" or "2d20+1d6*2-3". Multiplication and
// division bind tighter than addition and subtraction; division truncates.
func Evaluate(formula string, rng *rand.Rand) (*Result, error) {
	formula = strings.ToLower(strings.ReplaceAll(formula, " ", ""))
	tokens := tokenRegex.FindAllString(formula, -1)
	if len(tokens) == 0 || strings.Join(tokens, "") != formula {
		return nil, errEmpty
	}

	var terms []term
	currentOp := "+"
	expectOperand := true
	for _, token := range tokens {
		if validOps[token] {
			if expectOperand && len(terms) > 0 {
				return nil, fmt.Errorf("two operators in a row near `%s`", token)
			}
			currentOp = token
			expectOperand = true
			continue
		}
		t, err := evaluateToken(token, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate `%s`: %w", token, err)
		}
		t.op = currentOp
		terms = append(terms, t)
		expectOperand = false
	}
	if expectOperand {
		return nil, errors.New("formula ends with an operator")
	}

	var merged []term
	for _, t := range terms {
		if t.op != "*" && t.op != "/" {
			merged = append(merged, t)
			continue
		}
		if len(merged) == 0 {
			return nil, errors.New("can't multiply or divide by nothing")
		}
		prev := merged[len(merged)-1]
		switch t.op {
		case "*":
			prev.value *= t.value
		case "/":
			if t.value == 0 {
				return nil, errors.New("can't divide by zero")
			}
			prev.value /= t.value
		}
		prev.desc = fmt.Sprintf("%s %s %s", prev.desc, t.op, t.desc)
		prev.rolls = append(prev.rolls, t.rolls...)
		merged[len(merged)-1] = prev
	}

	res := &Result{Formula: formula}
	var details []string
	for i, t := range merged {
		if i > 0 {
			details = append(details, t.op)
		}
		details = append(details, t.desc)
		switch t.op {
		case "+":
			res.Total += t.value
		case "-":
			res.Total -= t.value
		}
		res.Rolls = append(res.Rolls, t.rolls...)
	}
	res.Detail = strings.Join(details, " ")
	sort.Sort(sort.Reverse(sort.IntSlice(res.Rolls)))
	return res, nil
}

func evaluateToken(token string, rng *rand.Rand) (term, error) {
	if m := diceRegex.FindStringSubmatch(token); m != nil {
		count := 1
		if m[1] != "" {
			n, err := strconv.Atoi(m[1])
			if err != nil || n < 1 {
				return term{}, errors.New("invalid dice count")
			}
			count = n
		}
		sides, err := strconv.Atoi(m[2])
		if err != nil || sides < 2 {
			return term{}, errors.New("invalid dice sides")
		}
		if count > maxDice || sides > maxSides {
			return term{}, fmt.Errorf("too big, max %d dice with %d sides", maxDice, maxSides)
		}

		t := term{rolls: make([]int, count)}
		strs := make([]string, count)
		for i := range t.rolls {
			r := rng.Intn(sides) + 1
			t.rolls[i] = r
			t.value += r
			strs[i] = strconv.Itoa(r)
		}
		t.desc = fmt.Sprintf("`%s` [%s]", token, strings.Join(strs, ", "))
		return t, nil
	}

	num, err := strconv.Atoi(token)
	if err != nil {
		return term{}, errors.New("not a number or dice")
	}
	return term{value: num, desc: fmt.Sprintf("`%d`", num)}, nil
}
