package batch

import (
	"fmt"

	ampacity "github.com/chedy028/amapcity/internal/calc/ampacity"
)

type Input struct {
	Items []ampacity.Input `json:"items"`
}

type Item struct {
	ampacity.Result
	Error string `json:"error,omitempty"`
}

type Result struct {
	Results []Item `json:"results"`
}

// Calculate solves every scenario in order. Validation errors abort the
// batch; infeasible or diverged scenarios stay in the output with their
// degraded result and error text.
func Calculate(in Input) (Result, error) {
	if len(in.Items) == 0 {
		return Result{}, fmt.Errorf("no items")
	}
	out := Result{Results: make([]Item, 0, len(in.Items))}
	for i, scenario := range in.Items {
		res, err := ampacity.Calculate(scenario)
		if err != nil && !ampacity.Degraded(err) {
			return Result{}, fmt.Errorf("item %d: %w", i, err)
		}
		item := Item{Result: res}
		if err != nil {
			item.Error = err.Error()
		}
		out.Results = append(out.Results, item)
	}
	return out, nil
}
