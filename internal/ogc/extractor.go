package ogc

import (
	"net/url"
	"strings"

	"github.com/geopython/geousage/internal/model"
)

// Extract classifies an access record against a service dialect.
// The second return value is false when the record is not a request to
// the target service: wrong endpoint, missing or different SERVICE
// value, or an unrecognized REQUEST operation. Unmatched is a normal,
// frequent outcome, not an error.
//
// endpoint, when non-empty, must equal the record's path exactly.
// POST requests carrying XML bodies instead of KVP query strings are
// not inspected and come out unmatched.
func Extract(rec *model.AccessRecord, d Dialect, endpoint string) (model.Request, bool) {
	path, query, _ := strings.Cut(rec.Target, "?")

	if endpoint != "" && path != endpoint {
		return model.Request{}, false
	}

	kvp := parseKVP(query)

	if !strings.EqualFold(kvp["service"], d.Name) {
		return model.Request{}, false
	}

	operation, ok := matchOperation(kvp["request"], d.Operations)
	if !ok {
		return model.Request{}, false
	}

	return model.Request{
		Service:    d.Name,
		Operation:  operation,
		Resources:  extractResources(kvp, d),
		RemoteAddr: rec.RemoteAddr,
		Timestamp:  rec.Timestamp,
		Size:       rec.Size,
		UserAgent:  rec.UserAgent,
	}, true
}

// parseKVP splits a query string into key/value pairs. Keys are
// lowercased (OGC parameter names are matched case-insensitively) and
// both keys and values are URL-decoded. On duplicate keys the last
// occurrence wins.
func parseKVP(query string) map[string]string {
	kvp := make(map[string]string)
	for _, pair := range strings.Split(query, "&") {
		k, v, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		if dk, err := url.QueryUnescape(k); err == nil {
			k = dk
		}
		if dv, err := url.QueryUnescape(v); err == nil {
			v = dv
		}
		kvp[strings.ToLower(k)] = v
	}
	return kvp
}

// matchOperation resolves a REQUEST value to its canonical operation
// name so that aggregation keys do not depend on client casing.
func matchOperation(request string, operations []string) (string, bool) {
	for _, op := range operations {
		if strings.EqualFold(request, op) {
			return op, true
		}
	}
	return "", false
}

// extractResources pulls resource identifiers from the first declared
// resource parameter present in the request. An absent parameter yields
// nil: the request is still valid, it just names no resource.
func extractResources(kvp map[string]string, d Dialect) []string {
	sep := d.Separator
	if sep == "" {
		sep = ","
	}

	for _, param := range d.ResourceParams {
		raw, ok := kvp[param]
		if !ok {
			continue
		}
		var resources []string
		for _, r := range strings.Split(raw, sep) {
			r = strings.TrimSpace(r)
			if r != "" {
				resources = append(resources, r)
			}
		}
		return resources
	}
	return nil
}
