package kjson

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// ViewTag is the struct tag listing the views a field belongs to.
const ViewTag = "view"

// viewExtension hides struct fields that are not part of the active view.
type viewExtension struct {
	jsoniter.DummyExtension
	active          string
	includeUntagged bool
}

func newViewExtension(active string, includeUntagged bool) *viewExtension {
	return &viewExtension{active: active, includeUntagged: includeUntagged}
}

func (v *viewExtension) UpdateStructDescriptor(sd *jsoniter.StructDescriptor) {
	for _, binding := range sd.Fields {
		if v.visible(binding.Field.Tag().Get(ViewTag)) {
			continue
		}
		binding.FromNames = []string{}
		binding.ToNames = []string{}
	}
}

func (v *viewExtension) visible(tag string) bool {
	if tag == "" {
		return v.includeUntagged
	}
	for _, name := range strings.Split(tag, ",") {
		if strings.TrimSpace(name) == v.active {
			return true
		}
	}
	return false
}
