package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/contactsync/internal/contact"
)

// contactDocument is the YAML form of a contact. PhotoFile is read relative
// to the file the document came from.
type contactDocument struct {
	contact.Contact `yaml:",inline"`
	PhotoFile       string `yaml:"photo_file,omitempty"`
}

// contactListDocument is the YAML form of an import file.
type contactListDocument struct {
	Contacts []contactDocument `yaml:"contacts"`
}

// contactFileError is an unreadable or malformed contact file.
type contactFileError struct {
	Path string
	Err  error
}

func (e *contactFileError) Error() string {
	return fmt.Sprintf("contact file %s: %v", e.Path, e.Err)
}

func (e *contactFileError) Unwrap() error {
	return e.Err
}

// loadContactFile reads a single contact from a YAML file.
func loadContactFile(path string) (*contact.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contactFileError{Path: path, Err: err}
	}

	var doc contactDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &contactFileError{Path: path, Err: err}
	}
	return doc.resolve(path)
}

// loadContactList reads the contacts of an import file.
func loadContactList(path string) ([]*contact.Contact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &contactFileError{Path: path, Err: err}
	}

	var doc contactListDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &contactFileError{Path: path, Err: err}
	}

	out := make([]*contact.Contact, 0, len(doc.Contacts))
	for i, d := range doc.Contacts {
		c, err := d.resolve(path)
		if err != nil {
			return nil, &contactFileError{Path: path, Err: fmt.Errorf("contact %d: %w", i, err)}
		}
		out = append(out, c)
	}
	return out, nil
}

// resolve returns the contact with its photo loaded.
func (d contactDocument) resolve(source string) (*contact.Contact, error) {
	c := d.Contact
	if d.PhotoFile == "" {
		return &c, nil
	}

	photoPath := d.PhotoFile
	if !filepath.IsAbs(photoPath) {
		photoPath = filepath.Join(filepath.Dir(source), photoPath)
	}
	photo, err := os.ReadFile(photoPath)
	if err != nil {
		return nil, &contactFileError{Path: source, Err: fmt.Errorf("photo: %w", err)}
	}
	c.Photo = photo
	return &c, nil
}
