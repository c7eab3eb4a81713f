// Package harness runs contact scenarios end to end against an in-memory
// provider and records what reached the transport.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	provider:
//	  max_ops: 3        # calls with more operations are rejected as too large
//	  max_bytes: 4096   # provider payload limit (0 keeps the default)
//	flow:
//	  - action: create
//	    contact: ada
//	    card: { name: { given: Ada } }
//	  - action: insert_row
//	    contact: ada
//	    row: { mimetype: vnd.android.cursor.item/group_membership, data1: 7 }
//	  - action: delete
//	    id: 42
//	    expect_error: not_found
//	assertions:
//	  - type: contact_equals
//	    contact: ada
//	    expect: { uid: uid-1, name: { given: Ada } }
//	  - type: row_count
//	    contact: ada
//	    mimetype: vnd.android.cursor.item/phone_v2
//	    count: 0
//
// Flow actions are create, update, delete, load and insert_row. A step names
// its contact by the binding a create step gave it, or addresses a raw
// contact id directly. insert_row writes a data row straight into the
// provider, the way a foreign sync agent would.
//
// # Assertion Types
//
//   - contact_equals: the contact loaded at the end equals expect
//   - row_count: number of data rows of a contact, optionally of one mimetype
//   - contact_count: number of live raw contacts
//   - call_count: number of transport calls made by one flow step
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory database, source ids uid-1, uid-2, ...
// and discards logs, so the trace is stable for golden comparison:
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/split_under_op_limit.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
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
