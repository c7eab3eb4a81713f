package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/update_keeps_foreign_rows.yaml")
	require.NoError(t, err)

	assert.Equal(t, "update_keeps_foreign_rows", scenario.Name)
	require.Len(t, scenario.Flow, 4)

	create := scenario.Flow[0]
	assert.Equal(t, ActionCreate, create.Action)
	assert.Equal(t, "ada", create.Contact)
	require.NotNil(t, create.Card)
	assert.Equal(t, "Lovelace", create.Card.Name.Family)
	require.Len(t, create.Card.Phones, 1)
	assert.Equal(t, "mobile", create.Card.Phones[0].Type)

	insert := scenario.Flow[1]
	assert.Equal(t, ActionInsertRow, insert.Action)
	assert.Equal(t, "vnd.android.cursor.item/group_membership", insert.Row["mimetype"])
	assert.Equal(t, 7, insert.Row["data1"])

	missing := scenario.Flow[3]
	assert.Equal(t, int64(99), missing.ID)
	assert.Equal(t, ErrorNotFound, missing.ExpectError)
}

func TestLoadScenario_ProviderLimits(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/split_under_op_limit.yaml")
	require.NoError(t, err)
	assert.Equal(t, Limits{MaxOps: 3}, scenario.Provider)

	scenario, err = LoadScenario("testdata/scenarios/row_too_large.yaml")
	require.NoError(t, err)
	assert.Equal(t, Limits{MaxBytes: 50}, scenario.Provider)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/does_not_exist.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: misspelled key
flow:
  - action: create
    contact: ada
    card: { note: hi }
assertion:
  - type: contact_count
    count: 1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownCardField(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: misspelled contact key
flow:
  - action: create
    contact: ada
    card: { nick_name: hi }
assertions:
  - type: contact_count
    count: 1
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nick_name")
}

func TestValidateScenario(t *testing.T) {
	base := func() string {
		return "name: s\ndescription: d\n"
	}
	create := "  - action: create\n    contact: ada\n    card: { note: hi }\n"
	count := "assertions:\n  - type: contact_count\n    count: 1\n"

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nflow:\n" + create + count,
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: s\nflow:\n" + create + count,
			wantErr: "description is required",
		},
		{
			name:    "empty flow",
			content: base() + count,
			wantErr: "flow list is required",
		},
		{
			name:    "empty assertions",
			content: base() + "flow:\n" + create,
			wantErr: "assertions list is required",
		},
		{
			name:    "negative limit",
			content: base() + "provider: { max_ops: -1 }\nflow:\n" + create + count,
			wantErr: "provider limits must be non-negative",
		},
		{
			name:    "missing action",
			content: base() + "flow:\n  - contact: ada\n" + count,
			wantErr: "flow[0]: action is required",
		},
		{
			name:    "unknown action",
			content: base() + "flow:\n  - action: merge\n    contact: ada\n" + count,
			wantErr: `flow[0]: unknown action "merge"`,
		},
		{
			name:    "create without card",
			content: base() + "flow:\n  - action: create\n    contact: ada\n" + count,
			wantErr: "card is required for create",
		},
		{
			name:    "create twice",
			content: base() + "flow:\n" + create + create + count,
			wantErr: `flow[1]: contact "ada" is already bound`,
		},
		{
			name:    "unbound contact",
			content: base() + "flow:\n  - action: delete\n    contact: bob\n" + count,
			wantErr: `contact "bob" is not created by an earlier step`,
		},
		{
			name:    "no target",
			content: base() + "flow:\n  - action: load\n" + count,
			wantErr: "contact or a positive id is required for load",
		},
		{
			name:    "contact and id",
			content: base() + "flow:\n" + create + "  - action: load\n    contact: ada\n    id: 1\n" + count,
			wantErr: "mutually exclusive",
		},
		{
			name:    "insert_row without mimetype",
			content: base() + "flow:\n" + create + "  - action: insert_row\n    contact: ada\n    row: { data1: x }\n" + count,
			wantErr: "row.mimetype is required",
		},
		{
			name:    "unknown expect_error",
			content: base() + "flow:\n  - action: delete\n    id: 1\n    expect_error: gone\n" + count,
			wantErr: `unknown expect_error "gone"`,
		},
		{
			name:    "unknown assertion",
			content: base() + "flow:\n" + create + "assertions:\n  - type: trace_contains\n",
			wantErr: `unknown assertion type "trace_contains"`,
		},
		{
			name:    "contact_equals without expect",
			content: base() + "flow:\n" + create + "assertions:\n  - type: contact_equals\n    contact: ada\n",
			wantErr: "expect is required for contact_equals",
		},
		{
			name:    "row_count on unknown contact",
			content: base() + "flow:\n" + create + "assertions:\n  - type: row_count\n    contact: bob\n",
			wantErr: `contact "bob" is not created by the flow`,
		},
		{
			name:    "call_count outside flow",
			content: base() + "flow:\n" + create + "assertions:\n  - type: call_count\n    step: 1\n",
			wantErr: "step 1 is outside the flow",
		},
		{
			name:    "negative count",
			content: base() + "flow:\n" + create + "assertions:\n  - type: contact_count\n    count: -2\n",
			wantErr: "count must be non-negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid scenario")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
