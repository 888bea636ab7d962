// Package harness runs conformance scenarios against rule files.
//
// A scenario sets up a board, places actors, loads rules, and lists the
// outcomes those rules must produce.
//
// # Scenario Format
//
//	name: move_basic
//	description: "Movement range, blocking and death"
//	rules:
//	  - ../rules
//	board:
//	  width: 8
//	  height: 8
//	  blocked: [[1, 1]]
//	actors:
//	  - { id: hero, team: red, pos: [0, 0], max_move: 5, hp: 100 }
//	checks:
//	  - { rule: can_move, actor: hero, cell: [3, 2], expect: true }
//	reach:
//	  - rule: can_move
//	    actor: hero
//	    expect: [[0, 0], [1, 0]]
//	assertions:
//	  - { type: trace_count, rule: can_move, result: false, count: 2 }
//	  - { type: trace_order, rules: [can_move, can_attack] }
//	  - { type: stored_count, actor: hero, count: 3 }
//
// # Assertion Types
//
//   - trace_count: exactly Count check evaluations match rule/actor/result
//   - trace_order: rules were first evaluated in the order listed
//   - stored_count: the evaluation log holds Count rows matching rule/actor/result
//
// # Deterministic Testing
//
// Every run records into a fresh in-memory SQLite store with a logical
// clock starting at 1, sequential evaluation ids (eval-0001, ...) and a
// fixed created_at, so identical scenarios produce identical traces and
// golden snapshots.
package harness
