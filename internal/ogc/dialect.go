// Package ogc classifies access-log records against OGC web service
// dialects (WMS, WFS, WCS, WPS, CSW). Each dialect is a declarative,
// table-driven description of one service type; the extraction logic
// itself never branches on service names.
package ogc

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dialect declares how requests for one OGC service type are recognized:
// the canonical SERVICE value, the accepted REQUEST operations, and which
// query parameters carry the resource identifier.
type Dialect struct {
	// Name is the canonical SERVICE value, e.g. "WMS".
	Name string `yaml:"name"`
	// Operations are the recognized REQUEST values, matched case-insensitively.
	Operations []string `yaml:"operations"`
	// ResourceParams are checked in order; the first present parameter
	// supplies the resource identifier(s).
	ResourceParams []string `yaml:"resource_params"`
	// Separator splits multi-valued resource parameters. Defaults to ",".
	Separator string `yaml:"separator"`
}

// builtins is the process-wide dialect table. It is populated once before
// any analysis begins and read-only afterwards, so it is safe to share
// across parallel pipeline instances.
var builtins = map[string]Dialect{
	"WMS": {
		Name:           "WMS",
		Operations:     []string{"GetCapabilities", "GetMap", "GetFeatureInfo", "GetLegendGraphic"},
		ResourceParams: []string{"layers", "layer"},
		Separator:      ",",
	},
	"WFS": {
		Name:           "WFS",
		Operations:     []string{"GetCapabilities", "DescribeFeatureType", "GetFeature", "GetPropertyValue", "Transaction"},
		ResourceParams: []string{"typenames", "typename"},
		Separator:      ",",
	},
	"WCS": {
		Name:           "WCS",
		Operations:     []string{"GetCapabilities", "DescribeCoverage", "GetCoverage"},
		ResourceParams: []string{"coverageid", "identifier"},
		Separator:      ",",
	},
	"WPS": {
		Name:           "WPS",
		Operations:     []string{"GetCapabilities", "DescribeProcess", "Execute"},
		ResourceParams: []string{"identifier"},
		Separator:      ",",
	},
	"CSW": {
		Name:           "CSW",
		Operations:     []string{"GetCapabilities", "DescribeRecord", "GetRecords", "GetRecordById"},
		ResourceParams: []string{"typenames", "id"},
		Separator:      ",",
	},
}

// Lookup returns the dialect for a service type identifier. Both bare
// names ("WMS") and prefixed forms ("OGC:WMS") are accepted,
// case-insensitively.
func Lookup(serviceType string) (Dialect, bool) {
	name := strings.ToUpper(strings.TrimSpace(serviceType))
	name = strings.TrimPrefix(name, "OGC:")
	d, ok := builtins[name]
	return d, ok
}

// Names returns the registered dialect names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// dialectFile is the YAML shape of a custom dialect definition file.
type dialectFile struct {
	Dialects []Dialect `yaml:"dialects"`
}

// RegisterFile merges dialects from a YAML file over the built-in table.
// It must be called at startup, before any analysis begins; the table is
// not safe for modification once pipelines are running.
func RegisterFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading dialect file: %w", err)
	}

	var file dialectFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing dialect file %s: %w", path, err)
	}

	for _, d := range file.Dialects {
		if d.Name == "" {
			return fmt.Errorf("dialect file %s: dialect with empty name", path)
		}
		if len(d.Operations) == 0 {
			return fmt.Errorf("dialect file %s: dialect %s declares no operations", path, d.Name)
		}
		if d.Separator == "" {
			d.Separator = ","
		}
		d.Name = strings.ToUpper(d.Name)
		builtins[d.Name] = d
	}
	return nil
}
