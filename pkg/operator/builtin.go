package operator

import "math"

// Standard contains the calculator's builtin operators.
var Standard = []Def{
	// Additive operators (lowest precedence)
	{Symbol: "+", Arity: Binary, Precedence: PrecedenceAddition, Binary: add, Doc: "addition"},
	{Symbol: "−", Arity: Binary, Precedence: PrecedenceAddition, Binary: sub, Doc: "subtraction"},

	// Multiplicative operators
	{Symbol: "×", Arity: Binary, Precedence: PrecedenceMultiply, Binary: mul, Doc: "multiplication"},
	{Symbol: "÷", Arity: Binary, Precedence: PrecedenceMultiply, Binary: div, Doc: "division; NaN when dividing by zero"},

	// Functions
	{Symbol: "√", Arity: Unary, Precedence: PrecedenceAtom, Style: StylePrefix, Unary: math.Sqrt, Doc: "square root; NaN for negative operands"},
	{Symbol: "sin", Arity: Unary, Precedence: PrecedenceAtom, Style: StylePrefix, Unary: math.Sin, Doc: "sine (radians)"},
	{Symbol: "cos", Arity: Unary, Precedence: PrecedenceAtom, Style: StylePrefix, Unary: math.Cos, Doc: "cosine (radians)"},
	{Symbol: "±", Arity: Unary, Precedence: PrecedenceAtom, Style: StylePrefix, Unary: neg, Doc: "change sign"},

	// Constants
	{Symbol: "π", Arity: Constant, Precedence: PrecedenceAtom, Style: StylePrefix, Value: math.Pi, Doc: "pi"},
}

// StandardAliases maps ASCII spellings to builtin symbols.
var StandardAliases = map[string]string{
	"-":    "−",
	"*":    "×",
	"/":    "÷",
	"sqrt": "√",
	"+/-":  "±",
	"neg":  "±",
	"pi":   "π",
}

func add(a, b float64) float64 { return a + b }
func sub(a, b float64) float64 { return a - b }
func mul(a, b float64) float64 { return a * b }

func div(a, b float64) float64 {
	if b == 0 {
		return math.NaN()
	}
	return a / b
}

func neg(a float64) float64 { return -a }
