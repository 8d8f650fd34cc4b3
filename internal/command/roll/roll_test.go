package roll

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
)

func TestEvaluate_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tests := []struct {
		formula  string
		min, max int
		dice     int
	}{
		{"1d6", 1, 6, 1},
		{"3d6+2", 5, 20, 3},
		{"2d20-5", -3, 35, 2},
		{"d20", 1, 20, 1},
		{"2d6*2", 4, 24, 2},
		{"10", 10, 10, 0},
		{"7 - 2 * 3", 1, 1, 0},
		{"-3+1d4", -2, 1, 1},
		{"9/2", 4, 4, 0},
	}
	for _, tt := range tests {
		for i := 0; i < 50; i++ {
			res, err := Evaluate(tt.formula, rng)
			if err != nil {
				t.Fatalf("Evaluate(%q): %v", tt.formula, err)
			}
			if res.Total < tt.min || res.Total > tt.max {
				t.Fatalf("Evaluate(%q) total = %d, want in [%d, %d]", tt.formula, res.Total, tt.min, tt.max)
			}
			if len(res.Rolls) != tt.dice {
				t.Fatalf("Evaluate(%q) rolled %d dice, want %d", tt.formula, len(res.Rolls), tt.dice)
			}
		}
	}
}

func TestEvaluate_RollsSortedAndAverage(t *testing.T) {
	res, err := Evaluate("20d6", rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatal(err)
	}
	sum := 0
	for i, v := range res.Rolls {
		if i > 0 && v > res.Rolls[i-1] {
			t.Fatalf("rolls not sorted descending: %v", res.Rolls)
		}
		if v < 1 || v > 6 {
			t.Fatalf("roll %d out of range", v)
		}
		sum += v
	}
	if sum != res.Total {
		t.Errorf("total %d != sum of rolls %d", res.Total, sum)
	}
	if got, want := res.Average(), float64(sum)/20; got != want {
		t.Errorf("average = %v, want %v", got, want)
	}
}

func TestEvaluate_MaxSideReachable(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	seen := false
	for i := 0; i < 200 && !seen; i++ {
		res, _ := Evaluate("1d2", rng)
		seen = res.Total == 2
	}
	if !seen {
		t.Error("1d2 never rolled a 2")
	}
}

func TestEvaluate_Errors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, f := range []string{"", "abc", "2x6", "1d1", "101d6", "1d1001", "2d6+", "2d6++3", "4/0", "*3"} {
		if _, err := Evaluate(f, rng); err == nil {
			t.Errorf("Evaluate(%q) succeeded, want error", f)
		}
	}
}

func TestRollCommand_BadArguments(t *testing.T) {
	c := &RollCommand{}
	if err := c.Run(context.Background(), &command.Request{}); !errors.Is(err, errkind.BadArgument) {
		t.Errorf("no args: %v", err)
	}
	err := c.Run(context.Background(), &command.Request{Args: []string{"2d6", "nope"}})
	if !errors.Is(err, errkind.BadArgument) || !strings.Contains(errkind.Message(err), "nope") {
		t.Errorf("bad formula: %v", err)
	}
	err = c.Run(context.Background(), &command.Request{Args: []string{"1", "2", "3", "4", "5", "6"}})
	if !errors.Is(err, errkind.ArgumentOutOfRange) {
		t.Errorf("too many formulas: %v", err)
	}
}

func TestDescribe(t *testing.T) {
	out := describe([]*Result{{Formula: "2d6", Detail: "`2d6` [6, 3]", Total: 9, Rolls: []int{6, 3}}})
	for _, want := range []string{"**Result**:\t**9**", "**Rolls**:\t6, 3", "**Average roll**:\t4.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q:\n%s", want, out)
		}
	}
}
