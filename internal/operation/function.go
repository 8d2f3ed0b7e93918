package operation

import "fmt"

// Function is a scalar function applicable to an attribute.
type Function string

const (
	ToLowerCase Function = "toLowerCase"
	Substring   Function = "substring"
	Abs         Function = "abs"
	Year        Function = "year"
	Month       Function = "month"
	DayOfMonth  Function = "dayOfMonth"
)

var functions = []Function{ToLowerCase, Substring, Abs, Year, Month, DayOfMonth}

// Functions returns every known function.
func Functions() []Function {
	out := make([]Function, len(functions))
	copy(out, functions)
	return out
}

// ParseFunction resolves a function name.
func ParseFunction(name string) (Function, bool) {
	for _, f := range functions {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// FunctionCall is an applied function. Start and End are the zero-based,
// end-exclusive bounds of Substring and are zero for other functions.
type FunctionCall struct {
	Function Function
	Start    int
	End      int
}

func (c FunctionCall) String() string {
	if c.Function == Substring {
		return fmt.Sprintf("substring(%d, %d)", c.Start, c.End)
	}
	return string(c.Function)
}
