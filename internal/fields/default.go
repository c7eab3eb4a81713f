package fields

// Default returns a registry with all built-in handlers. Writer order
// determines the order of rows in a write.
func Default(opts ...Option) *Registry {
	r := NewRegistry(opts...)

	phones := newPhoneHandler()
	emails := newEmailHandler()
	websites := newWebsiteHandler()
	events := newEventHandler()

	writers := []Writer{
		NewWriter(MimeStructuredName, buildStructuredName),
		NewWriter(MimeNickname, buildNickname),
		NewWriter(MimeOrganization, buildOrganization),
		phones,
		emails,
		NewWriter(MimeStructuredPostal, buildStructuredPostal),
		websites,
		events,
		NewWriter(MimeNote, buildNote),
		NewWriter(MimePhoto, buildPhoto),
		NewWriter(MimeUnknownProperties, buildUnknownProperties),
	}
	for _, w := range writers {
		if err := r.RegisterWriter(w); err != nil {
			panic(err)
		}
	}

	r.RegisterReader(NewReader(MimeStructuredName, readStructuredName))
	r.RegisterReader(NewReader(MimeStructuredName, readPhoneticName))
	r.RegisterReader(NewReader(MimeNickname, readNickname))
	r.RegisterReader(NewReader(MimeOrganization, readOrganization))
	r.RegisterReader(phones)
	r.RegisterReader(emails)
	r.RegisterReader(NewReader(MimeStructuredPostal, readStructuredPostal))
	r.RegisterReader(websites)
	r.RegisterReader(events)
	r.RegisterReader(NewReader(MimeNote, readNote))
	r.RegisterReader(NewReader(MimePhoto, readPhoto))
	r.RegisterReader(NewReader(MimeUnknownProperties, readUnknownProperties))

	return r
}
