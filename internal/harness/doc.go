// Package harness provides conformance testing for the semantic metadata
// engine.
//
// The harness replays item graph mutations from a YAML scenario against a
// fresh engine, captures the emitted changes and log lines, and evaluates
// assertions over the final record set.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	steps:
//	  - register: {id: Pantry, parent: Room}
//	  - put: {name: group2, type: Group, members: [group1]}
//	  - add: {name: LivingRoom, type: Group, tags: [LivingRoom]}
//	  - update: {name: Door1, type: Contact, tags: [Window]}
//	  - remove: LivingRoom
//	assertions:
//	  - type: record
//	    item: Door1
//	    value: Equipment_Window
//	    configuration: {hasLocation: LivingRoom}
//	  - type: change_count
//	    kind: updated
//	    count: 1
//
// # Step Types
//
//   - add: store the item in the graph and notify the engine
//   - update: replace the item in the graph and notify the engine with the
//     previous and new snapshots
//   - remove: delete the named item and notify the engine
//   - put: store the item in the graph without notifying the engine
//   - register: add a managed tag to the registry
//
// # Assertion Types
//
//   - record: the item has a record with the given value and, when given,
//     exactly the given configuration
//   - no_record: the item has no record
//   - change_count: the trace holds exactly count changes (of kind, if set)
//   - log_contains: a log line (at level, if set) contains message
//   - no_logs: nothing was logged at level or above (default debug)
//
// # Deterministic Testing
//
// Every scenario runs with a deterministic clock, a fixed source and an
// in-memory journal, so the trace is identical across runs and can be
// compared against golden files.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/direct_cycle.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        log.Println(msg)
//	    }
//	}
package harness
