// Package docx loads .docx packages into a structural model and rewrites their formatting.
package docx

import "strings"

// CoreProperty names a Dublin Core element of docProps/core.xml.
type CoreProperty string

// Supported core properties
const (
	CoreTitle   CoreProperty = "title"
	CoreCreator CoreProperty = "creator"
)

// HasCoreProperties reports whether the package carries docProps/core.xml.
func (d *Document) HasCoreProperties() bool {
	return d.core != nil
}

func (d *Document) coreValue(prop CoreProperty) string {
	el := d.core.ns.child(d.core.root(), string(prop))
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// SetCoreProperty writes a core property and reports whether it changed.
func (d *Document) SetCoreProperty(prop CoreProperty, value string) (bool, error) {
	if d.core == nil {
		return false, &NotFoundError{Kind: "core properties part", Index: 0}
	}
	if d.coreValue(prop) == value {
		return false, nil
	}
	root := d.core.root()
	el := d.core.ns.child(root, string(prop))
	if el == nil {
		el = root.CreateElement(d.core.ns.q(string(prop)))
	}
	el.SetText(value)
	d.core.dirty = true
	return true, nil
}
