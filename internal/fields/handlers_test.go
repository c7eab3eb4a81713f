package fields

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/row"
)

func fullContact() *contact.Contact {
	return &contact.Contact{
		Name: contact.Name{
			Formatted:     "Dr. Ada King Lovelace",
			Prefix:        "Dr.",
			Given:         "Ada",
			Middle:        "King",
			Family:        "Lovelace",
			PhoneticGiven: "AY-duh",
		},
		Nickname: "Enchantress of Numbers",
		Organization: contact.Organization{
			Company:    "Analytical Society",
			Department: "Mathematics",
			Title:      "Analyst",
		},
		Phones: []contact.LabeledValue{
			{Value: "+44 20 7946 0000", Type: contact.PhoneMobile, Pref: true},
			{Value: "555-0100", Label: "Lab"},
			{Value: "555-0199", Type: contact.PhoneFaxWork},
		},
		Emails: []contact.LabeledValue{
			{Value: "ada@example.org", Type: contact.TypeWork},
			{Value: "ada@home.example", Type: "carrier-pigeon"},
		},
		Addresses: []contact.Address{
			{Street: "12 St James's Square", City: "London", PostalCode: "SW1Y 4JH", Country: "UK", Type: contact.TypeHome, Pref: true},
		},
		URLs:              []contact.LabeledValue{{Value: "https://example.org/ada", Type: contact.URLHomepage}},
		Events:            []contact.LabeledValue{{Value: "1815-12-10", Type: contact.EventBirthday}},
		Note:              "First published algorithm.",
		UnknownProperties: "X-ENGINE:analytical",
	}
}

// roundTrip writes c with the default registry and reads the rows back.
func roundTrip(t *testing.T, c *contact.Contact) *contact.Contact {
	t.Helper()
	r := Default()
	out := &contact.Contact{}
	for _, op := range r.BuildRows(c) {
		require.NoError(t, op.Validate())
		mt, ok := op.Values.String(row.ColMimeType)
		require.True(t, ok)
		require.True(t, r.ApplyRow(mt, op.Values, out), mt)
	}
	return out
}

func TestHandlers_RoundTrip(t *testing.T) {
	c := fullContact()

	got := roundTrip(t, c)

	want := fullContact()
	// a type outside the closed set comes back as a label
	want.Emails[1] = contact.LabeledValue{Value: "ada@home.example", Label: "carrier-pigeon"}
	assert.Equal(t, want, got)
}

func TestHandlers_LabelOverridesType(t *testing.T) {
	c := &contact.Contact{Phones: []contact.LabeledValue{{Value: "1", Type: contact.PhoneWork, Label: "Studio"}}}

	ops := Default().BuildRows(c)

	require.Len(t, ops, 1)
	code, _ := ops[0].Values.Int(colType)
	label, _ := ops[0].Values.String(colLabel)
	assert.Equal(t, typeCustom, code)
	assert.Equal(t, "Studio", label)

	got := roundTrip(t, c)
	assert.Equal(t, []contact.LabeledValue{{Value: "1", Label: "Studio"}}, got.Phones)
}

func TestHandlers_EmptyTypeUsesDefault(t *testing.T) {
	got := roundTrip(t, &contact.Contact{Phones: []contact.LabeledValue{{Value: "1"}}})

	assert.Equal(t, []contact.LabeledValue{{Value: "1", Type: contact.PhoneOther}}, got.Phones)
}

func TestHandlers_SkipEmptyValues(t *testing.T) {
	c := &contact.Contact{
		Phones:    []contact.LabeledValue{{Value: "", Type: contact.PhoneHome}},
		Addresses: []contact.Address{{Type: contact.TypeWork, Pref: true}},
	}

	assert.Empty(t, Default().BuildRows(c))
}

func TestPhotoReader_ReadsBlob(t *testing.T) {
	c := &contact.Contact{}
	ok := Default().ApplyRow(MimePhoto, row.NewValues(
		row.C(row.ColPhotoFileID, row.Int(3)),
		row.C(row.ColData15, row.Blob{0xff, 0xd8}),
	), c)

	assert.True(t, ok)
	assert.Equal(t, []byte{0xff, 0xd8}, c.Photo)
}

func TestPhotoWriter_EmitsNoRows(t *testing.T) {
	c := &contact.Contact{Photo: []byte{1, 2, 3}}

	assert.Empty(t, Default().BuildRows(c))
}

func TestBuildRows_Golden(t *testing.T) {
	c := &contact.Contact{
		Name: contact.Name{Given: "Ada", Family: "Lovelace"},
		Phones: []contact.LabeledValue{
			{Value: "+44 20 7946 0000", Type: contact.PhoneMobile, Pref: true},
			{Value: "555-0100", Label: "Lab"},
		},
		Emails: []contact.LabeledValue{{Value: "ada@example.org", Type: contact.TypeWork}},
		Note:   "Analytical engine",
	}

	var buf bytes.Buffer
	for _, op := range Default().BuildRows(c) {
		b, err := row.MarshalOperation(op)
		require.NoError(t, err)
		buf.Write(b)
		buf.WriteByte('\n')
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "ada_rows", buf.Bytes())
}
