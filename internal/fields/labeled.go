package fields

import (
	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/row"
)

// typeTable maps closed type names to their stored codes.
type typeTable struct {
	codes       map[string]int64
	defaultCode int64
}

// encode returns the type code and label to store.
//
// A label always wins and is stored with the custom code. A type outside
// the table is kept as a label so it survives the round trip. An empty type
// falls back to the table default.
func (t typeTable) encode(typ, label string) (int64, string) {
	if label != "" {
		return typeCustom, label
	}
	if typ == "" {
		return t.defaultCode, ""
	}
	if code, ok := t.codes[typ]; ok {
		return code, ""
	}
	return typeCustom, typ
}

// decode is the inverse of encode.
func (t typeTable) decode(values row.Values) (typ, label string) {
	code, ok := values.Int(colType)
	if !ok {
		code = t.defaultCode
	}
	if code == typeCustom {
		label, _ = values.String(colLabel)
		return "", label
	}
	for name, c := range t.codes {
		if c == code {
			return name, ""
		}
	}
	return "", ""
}

// labeledHandler reads and writes one kind of repeated labeled value.
type labeledHandler struct {
	rowType string
	types   typeTable
	get     func(*contact.Contact) []contact.LabeledValue
	add     func(*contact.Contact, contact.LabeledValue)
}

func (h labeledHandler) RowType() string { return h.rowType }

func (h labeledHandler) Build(c *contact.Contact) []row.Operation {
	ops := []row.Operation{}
	for _, lv := range h.get(c) {
		if lv.Value == "" {
			continue
		}
		code, label := h.types.encode(lv.Type, lv.Label)
		op := row.NewInsert(row.TableData).
			With(colValue, row.String(lv.Value)).
			With(colType, row.Int(code))
		if label != "" {
			op = op.With(colLabel, row.String(label))
		}
		if lv.Pref {
			op = op.With(row.ColIsPrimary, row.Int(1))
		}
		ops = append(ops, op)
	}
	return ops
}

func (h labeledHandler) Read(values row.Values, c *contact.Contact) {
	value, ok := values.String(colValue)
	if !ok {
		return
	}
	typ, label := h.types.decode(values)
	primary, _ := values.Int(row.ColIsPrimary)
	h.add(c, contact.LabeledValue{
		Value: value,
		Type:  typ,
		Label: label,
		Pref:  primary != 0,
	})
}

var phoneTypes = typeTable{
	codes: map[string]int64{
		contact.PhoneHome:    1,
		contact.PhoneMobile:  2,
		contact.PhoneWork:    3,
		contact.PhoneFaxWork: 4,
		contact.PhoneFaxHome: 5,
		contact.PhonePager:   6,
		contact.PhoneOther:   7,
		contact.PhoneMain:    12,
	},
	defaultCode: 7,
}

var emailTypes = typeTable{
	codes: map[string]int64{
		contact.TypeHome:    1,
		contact.TypeWork:    2,
		contact.TypeOther:   3,
		contact.PhoneMobile: 4,
	},
	defaultCode: 3,
}

var websiteTypes = typeTable{
	codes: map[string]int64{
		contact.URLHomepage: 1,
		contact.URLBlog:     2,
		contact.URLProfile:  3,
		contact.TypeHome:    4,
		contact.TypeWork:    5,
		contact.TypeOther:   7,
	},
	defaultCode: 7,
}

var eventTypes = typeTable{
	codes: map[string]int64{
		contact.EventAnniversary: 1,
		contact.EventOther:       2,
		contact.EventBirthday:    3,
	},
	defaultCode: 2,
}

var postalTypes = typeTable{
	codes: map[string]int64{
		contact.TypeHome:  1,
		contact.TypeWork:  2,
		contact.TypeOther: 3,
	},
	defaultCode: 3,
}

func newPhoneHandler() labeledHandler {
	return labeledHandler{
		rowType: MimePhone,
		types:   phoneTypes,
		get:     func(c *contact.Contact) []contact.LabeledValue { return c.Phones },
		add:     func(c *contact.Contact, lv contact.LabeledValue) { c.Phones = append(c.Phones, lv) },
	}
}

func newEmailHandler() labeledHandler {
	return labeledHandler{
		rowType: MimeEmail,
		types:   emailTypes,
		get:     func(c *contact.Contact) []contact.LabeledValue { return c.Emails },
		add:     func(c *contact.Contact, lv contact.LabeledValue) { c.Emails = append(c.Emails, lv) },
	}
}

func newWebsiteHandler() labeledHandler {
	return labeledHandler{
		rowType: MimeWebsite,
		types:   websiteTypes,
		get:     func(c *contact.Contact) []contact.LabeledValue { return c.URLs },
		add:     func(c *contact.Contact, lv contact.LabeledValue) { c.URLs = append(c.URLs, lv) },
	}
}

func newEventHandler() labeledHandler {
	return labeledHandler{
		rowType: MimeEvent,
		types:   eventTypes,
		get:     func(c *contact.Contact) []contact.LabeledValue { return c.Events },
		add:     func(c *contact.Contact, lv contact.LabeledValue) { c.Events = append(c.Events, lv) },
	}
}
