package gridsheet

import (
	"fmt"
	"math"
)

// aggregateNames lists the only functions formulas may call
var aggregateNames = map[string]struct{}{
	"SUM":     {},
	"AVERAGE": {},
	"MIN":     {},
	"MAX":     {},
	"COUNT":   {},
}

func isAggregate(name string) bool {
	_, ok := aggregateNames[name]
	return ok
}

// callAggregate invokes an aggregate by name with evaluated arguments
func callAggregate(name string, args []Primitive) (Primitive, error) {
	nums, err := collectNumbers(args)
	if err != nil {
		return nil, err
	}

	switch name {
	case "SUM":
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum, nil
	case "AVERAGE":
		if len(nums) == 0 {
			return nil, NewEvaluationError(DivisionByZero, "AVERAGE of no numbers")
		}
		sum := 0.0
		for _, n := range nums {
			sum += n
		}
		return sum / float64(len(nums)), nil
	case "MIN":
		if len(nums) == 0 {
			return 0.0, nil
		}
		result := math.Inf(1)
		for _, n := range nums {
			result = math.Min(result, n)
		}
		return result, nil
	case "MAX":
		if len(nums) == 0 {
			return 0.0, nil
		}
		result := math.Inf(-1)
		for _, n := range nums {
			result = math.Max(result, n)
		}
		return result, nil
	case "COUNT":
		return float64(len(nums)), nil
	default:
		return nil, NewEvaluationError(SyntaxError, fmt.Sprintf("unknown function: %s", name))
	}
}

// collectNumbers flattens arguments. inside a range, text and empty cells
// are skipped; a scalar argument must coerce to a number.
func collectNumbers(args []Primitive) ([]float64, error) {
	var nums []float64
	for _, arg := range args {
		r, ok := arg.(*rangeValue)
		if !ok {
			n, err := toNumber(arg)
			if err != nil {
				return nil, err
			}
			nums = append(nums, n)
			continue
		}

		for value, err := range r.Values() {
			if err != nil {
				return nil, err
			}
			if n, ok := value.(float64); ok {
				nums = append(nums, n)
			}
		}
	}
	return nums, nil
}
