package raster

import "sort"

// Well-known metadata domains.
const (
	DefaultDomain        = ""
	ImageStructureDomain = "IMAGE_STRUCTURE"
	XMPDomain            = "xml:XMP"
)

// Metadata is a set of key/value items within one domain.
type Metadata map[string]string

// Keys returns the item names in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of m.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// MetadataDomains holds metadata keyed by domain.
type MetadataDomains map[string]Metadata

// Set stores an item, creating the domain as needed.
func (d MetadataDomains) Set(domain, key, value string) {
	md, ok := d[domain]
	if !ok {
		md = Metadata{}
		d[domain] = md
	}
	md[key] = value
}

// Domain returns the items of one domain, or nil.
func (d MetadataDomains) Domain(domain string) Metadata {
	return d[domain]
}

// Names returns the non-empty domain names in sorted order.
func (d MetadataDomains) Names() []string {
	names := make([]string, 0, len(d))
	for k, v := range d {
		if len(v) > 0 {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}
