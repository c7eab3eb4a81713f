package fields

import (
	"github.com/roach88/contactsync/internal/contact"
	"github.com/roach88/contactsync/internal/row"
)

// single returns a one-element operation list, or an empty list when op has
// no column besides the mimetype.
func single(op row.Operation) []row.Operation {
	if op.Values.Len() == 0 {
		return []row.Operation{}
	}
	return []row.Operation{op}
}

// withText sets column only when s is not empty.
func withText(op row.Operation, column, s string) row.Operation {
	if s == "" {
		return op
	}
	return op.With(column, row.String(s))
}

func text(values row.Values, column string) string {
	s, _ := values.String(column)
	return s
}

// Structured name: data1 display name, data2 given, data3 family,
// data4 prefix, data5 middle, data6 suffix, data7..data9 phonetic
// given/middle/family.

func buildStructuredName(c *contact.Contact) []row.Operation {
	n := c.Name
	op := row.NewInsert(row.TableData)
	op = withText(op, "data1", n.Formatted)
	op = withText(op, "data2", n.Given)
	op = withText(op, "data3", n.Family)
	op = withText(op, "data4", n.Prefix)
	op = withText(op, "data5", n.Middle)
	op = withText(op, "data6", n.Suffix)
	op = withText(op, "data7", n.PhoneticGiven)
	op = withText(op, "data8", n.PhoneticMiddle)
	op = withText(op, "data9", n.PhoneticFamily)
	return single(op)
}

func readStructuredName(values row.Values, c *contact.Contact) {
	c.Name.Formatted = text(values, "data1")
	c.Name.Given = text(values, "data2")
	c.Name.Family = text(values, "data3")
	c.Name.Prefix = text(values, "data4")
	c.Name.Middle = text(values, "data5")
	c.Name.Suffix = text(values, "data6")
}

func readPhoneticName(values row.Values, c *contact.Contact) {
	c.Name.PhoneticGiven = text(values, "data7")
	c.Name.PhoneticMiddle = text(values, "data8")
	c.Name.PhoneticFamily = text(values, "data9")
}

// Nickname: data1 name, data2 type (1 = default).

func buildNickname(c *contact.Contact) []row.Operation {
	if c.Nickname == "" {
		return []row.Operation{}
	}
	return []row.Operation{row.NewInsert(row.TableData).
		With("data1", row.String(c.Nickname)).
		With("data2", row.Int(1))}
}

func readNickname(values row.Values, c *contact.Contact) {
	c.Nickname = text(values, "data1")
}

// Organization: data1 company, data4 title, data5 department.

func buildOrganization(c *contact.Contact) []row.Operation {
	o := c.Organization
	op := row.NewInsert(row.TableData)
	op = withText(op, "data1", o.Company)
	op = withText(op, "data4", o.Title)
	op = withText(op, "data5", o.Department)
	return single(op)
}

func readOrganization(values row.Values, c *contact.Contact) {
	c.Organization = contact.Organization{
		Company:    text(values, "data1"),
		Title:      text(values, "data4"),
		Department: text(values, "data5"),
	}
}

// Postal address: data1 formatted, data2 type, data3 label, data4 street,
// data5 PO box, data7 city, data8 region, data9 postal code, data10 country.

func buildStructuredPostal(c *contact.Contact) []row.Operation {
	ops := []row.Operation{}
	for _, a := range c.Addresses {
		if a.IsZero() {
			continue
		}
		code, label := postalTypes.encode(a.Type, a.Label)
		op := row.NewInsert(row.TableData)
		op = withText(op, "data1", a.Formatted)
		op = op.With(colType, row.Int(code))
		op = withText(op, colLabel, label)
		op = withText(op, "data4", a.Street)
		op = withText(op, "data5", a.POBox)
		op = withText(op, "data7", a.City)
		op = withText(op, "data8", a.Region)
		op = withText(op, "data9", a.PostalCode)
		op = withText(op, "data10", a.Country)
		if a.Pref {
			op = op.With(row.ColIsPrimary, row.Int(1))
		}
		ops = append(ops, op)
	}
	return ops
}

func readStructuredPostal(values row.Values, c *contact.Contact) {
	typ, label := postalTypes.decode(values)
	primary, _ := values.Int(row.ColIsPrimary)
	a := contact.Address{
		Formatted:  text(values, "data1"),
		Street:     text(values, "data4"),
		POBox:      text(values, "data5"),
		City:       text(values, "data7"),
		Region:     text(values, "data8"),
		PostalCode: text(values, "data9"),
		Country:    text(values, "data10"),
		Type:       typ,
		Label:      label,
		Pref:       primary != 0,
	}
	if a.IsZero() {
		return
	}
	c.Addresses = append(c.Addresses, a)
}

// Note: data1.

func buildNote(c *contact.Contact) []row.Operation {
	if c.Note == "" {
		return []row.Operation{}
	}
	return []row.Operation{row.NewInsert(row.TableData).With("data1", row.String(c.Note))}
}

func readNote(values row.Values, c *contact.Contact) {
	c.Note = text(values, "data1")
}

// Photo rows are produced by the provider after the photo asset has been
// processed. The writer only claims the row type so that updates remove a
// stale photo row; the bytes travel through the asset protocol.

func buildPhoto(*contact.Contact) []row.Operation {
	return []row.Operation{}
}

func readPhoto(values row.Values, c *contact.Contact) {
	if b, ok := values.Bytes(row.ColData15); ok && len(b) > 0 {
		c.Photo = b
	}
}

// Unknown properties: data1 holds serialized vCard properties.

func buildUnknownProperties(c *contact.Contact) []row.Operation {
	if c.UnknownProperties == "" {
		return []row.Operation{}
	}
	return []row.Operation{row.NewInsert(row.TableData).With("data1", row.String(c.UnknownProperties))}
}

func readUnknownProperties(values row.Values, c *contact.Contact) {
	c.UnknownProperties = text(values, "data1")
}
