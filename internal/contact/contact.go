// Package contact defines the in-memory contact the mapping layer reads
// into and writes from.
//
// A Contact is a plain aggregate owned by the caller. The write path never
// modifies it; the read path fills a fresh one.
package contact

// Contact is one person's card.
type Contact struct {
	// UID is the stable source id. Empty for contacts that were never stored.
	UID     string `yaml:"uid,omitempty" json:"uid,omitempty"`
	Starred bool   `yaml:"starred,omitempty" json:"starred,omitempty"`

	Name         Name         `yaml:"name,omitempty" json:"name,omitempty"`
	Nickname     string       `yaml:"nickname,omitempty" json:"nickname,omitempty"`
	Organization Organization `yaml:"organization,omitempty" json:"organization,omitempty"`

	Phones    []LabeledValue `yaml:"phones,omitempty" json:"phones,omitempty"`
	Emails    []LabeledValue `yaml:"emails,omitempty" json:"emails,omitempty"`
	Addresses []Address      `yaml:"addresses,omitempty" json:"addresses,omitempty"`
	URLs      []LabeledValue `yaml:"urls,omitempty" json:"urls,omitempty"`
	Events    []LabeledValue `yaml:"events,omitempty" json:"events,omitempty"`

	Note string `yaml:"note,omitempty" json:"note,omitempty"`

	// Photo holds encoded image bytes (JPEG, PNG or GIF).
	Photo []byte `yaml:"-" json:"photo,omitempty"`

	// UnknownProperties carries vCard properties the mapping layer does not
	// understand, serialized by the caller, so they survive a round trip.
	UnknownProperties string `yaml:"unknown_properties,omitempty" json:"unknown_properties,omitempty"`
}

// Name is the structured name. Phonetic parts share the same store row.
type Name struct {
	Formatted string `yaml:"formatted,omitempty" json:"formatted,omitempty"`
	Prefix    string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Given     string `yaml:"given,omitempty" json:"given,omitempty"`
	Middle    string `yaml:"middle,omitempty" json:"middle,omitempty"`
	Family    string `yaml:"family,omitempty" json:"family,omitempty"`
	Suffix    string `yaml:"suffix,omitempty" json:"suffix,omitempty"`

	PhoneticGiven  string `yaml:"phonetic_given,omitempty" json:"phonetic_given,omitempty"`
	PhoneticMiddle string `yaml:"phonetic_middle,omitempty" json:"phonetic_middle,omitempty"`
	PhoneticFamily string `yaml:"phonetic_family,omitempty" json:"phonetic_family,omitempty"`
}

// IsZero reports whether no name part is set.
func (n Name) IsZero() bool {
	return n == Name{}
}

// Organization is the company a contact works for.
type Organization struct {
	Company    string `yaml:"company,omitempty" json:"company,omitempty"`
	Department string `yaml:"department,omitempty" json:"department,omitempty"`
	Title      string `yaml:"title,omitempty" json:"title,omitempty"`
}

// IsZero reports whether no organization field is set.
func (o Organization) IsZero() bool {
	return o == Organization{}
}

// LabeledValue is a repeated property: a value classified either by one of a
// closed set of types or by a free-text label that overrides the type.
type LabeledValue struct {
	Value string `yaml:"value" json:"value"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Pref  bool   `yaml:"pref,omitempty" json:"pref,omitempty"`
}

// Address is a postal address with the same type/label rules as
// LabeledValue.
type Address struct {
	Street     string `yaml:"street,omitempty" json:"street,omitempty"`
	POBox      string `yaml:"po_box,omitempty" json:"po_box,omitempty"`
	City       string `yaml:"city,omitempty" json:"city,omitempty"`
	Region     string `yaml:"region,omitempty" json:"region,omitempty"`
	PostalCode string `yaml:"postal_code,omitempty" json:"postal_code,omitempty"`
	Country    string `yaml:"country,omitempty" json:"country,omitempty"`
	Formatted  string `yaml:"formatted,omitempty" json:"formatted,omitempty"`

	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Pref  bool   `yaml:"pref,omitempty" json:"pref,omitempty"`
}

// IsZero reports whether the address has no content. Type, label and
// preference alone do not count.
func (a Address) IsZero() bool {
	return a.Street == "" && a.POBox == "" && a.City == "" && a.Region == "" &&
		a.PostalCode == "" && a.Country == "" && a.Formatted == ""
}

// Phone types.
const (
	PhoneHome    = "home"
	PhoneWork    = "work"
	PhoneMobile  = "mobile"
	PhoneFaxHome = "fax_home"
	PhoneFaxWork = "fax_work"
	PhonePager   = "pager"
	PhoneMain    = "main"
	PhoneOther   = "other"
)

// Email, address and URL types.
const (
	TypeHome  = "home"
	TypeWork  = "work"
	TypeOther = "other"
)

// URL types beyond TypeHome/TypeWork/TypeOther.
const (
	URLHomepage = "homepage"
	URLBlog     = "blog"
	URLProfile  = "profile"
)

// Event types.
const (
	EventBirthday    = "birthday"
	EventAnniversary = "anniversary"
	EventOther       = "other"
)
