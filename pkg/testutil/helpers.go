// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/staffing-forecast/internal/sizing"
)

// FindRun finds a run by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindRun(results []sizing.RunResult, name string) *sizing.RunResult {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FindTask finds the load of a task by name in a simulation result.
// Returns a pointer to the load if found, nil otherwise.
func FindTask(result sizing.SimulationResult, task string) *sizing.TaskLoad {
	for i := range result.PerTask {
		if result.PerTask[i].Task == task {
			return &result.PerTask[i]
		}
	}
	return nil
}
