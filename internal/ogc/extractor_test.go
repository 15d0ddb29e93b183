package ogc

import (
	"reflect"
	"testing"
	"time"

	"github.com/geopython/geousage/internal/model"
)

func record(target string) *model.AccessRecord {
	return &model.AccessRecord{
		RemoteAddr: "10.1.2.3",
		Timestamp:  time.Date(2018, 2, 12, 14, 18, 16, 0, time.UTC),
		Method:     "GET",
		Target:     target,
		Protocol:   "HTTP/1.1",
		StatusCode: 200,
	}
}

func mustLookup(t *testing.T, name string) Dialect {
	t.Helper()
	d, ok := Lookup(name)
	if !ok {
		t.Fatalf("Lookup(%q) failed", name)
	}
	return d
}

func TestExtract_WMSGetMapMultiLayer(t *testing.T) {
	wms := mustLookup(t, "WMS")
	req, ok := Extract(record("/ows?SERVICE=WMS&REQUEST=GetMap&LAYERS=roads,rivers"), wms, "")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Service != "WMS" || req.Operation != "GetMap" {
		t.Errorf("got service=%q operation=%q", req.Service, req.Operation)
	}
	if !reflect.DeepEqual(req.Resources, []string{"roads", "rivers"}) {
		t.Errorf("Resources = %v, want [roads rivers]", req.Resources)
	}
}

func TestExtract_CarriesSizeAndUserAgent(t *testing.T) {
	wms := mustLookup(t, "WMS")

	rec := record("/ows?SERVICE=WMS&REQUEST=GetMap&LAYERS=roads")
	rec.Size = 11420
	rec.UserAgent = "QGIS/3.0"

	req, ok := Extract(rec, wms, "")
	if !ok {
		t.Fatal("expected match")
	}
	if req.Size != 11420 {
		t.Errorf("Size = %d, want 11420", req.Size)
	}
	if req.UserAgent != "QGIS/3.0" {
		t.Errorf("UserAgent = %q, want QGIS/3.0", req.UserAgent)
	}
}

func TestExtract_CaseInsensitiveKVP(t *testing.T) {
	wms := mustLookup(t, "WMS")

	targets := []string{
		"/ows?service=wms&request=getmap&layers=roads",
		"/ows?Service=Wms&Request=GetMap&Layers=roads",
		"/ows?SERVICE=WMS&REQUEST=GETMAP&LAYERS=roads",
	}
	for _, target := range targets {
		req, ok := Extract(record(target), wms, "")
		if !ok {
			t.Errorf("Extract(%q) unmatched, want match", target)
			continue
		}
		// Operation is canonicalized regardless of request casing.
		if req.Operation != "GetMap" {
			t.Errorf("Extract(%q) operation = %q, want GetMap", target, req.Operation)
		}
	}
}

func TestExtract_ServiceMismatch(t *testing.T) {
	wms := mustLookup(t, "WMS")
	_, ok := Extract(record("/ows?SERVICE=WFS&REQUEST=GetFeature&TYPENAME=parks"), wms, "")
	if ok {
		t.Error("WFS request matched against WMS dialect")
	}
}

func TestExtract_MissingService(t *testing.T) {
	wms := mustLookup(t, "WMS")
	_, ok := Extract(record("/ows?REQUEST=GetMap&LAYERS=roads"), wms, "")
	if ok {
		t.Error("request without SERVICE parameter matched")
	}
}

func TestExtract_UnknownOperation(t *testing.T) {
	wms := mustLookup(t, "WMS")
	_, ok := Extract(record("/ows?SERVICE=WMS&REQUEST=GetSandwich"), wms, "")
	if ok {
		t.Error("unrecognized operation matched")
	}
}

func TestExtract_NoQueryString(t *testing.T) {
	wms := mustLookup(t, "WMS")
	_, ok := Extract(record("/ows"), wms, "")
	if ok {
		t.Error("bare path matched")
	}
}

func TestExtract_EndpointFilter(t *testing.T) {
	wms := mustLookup(t, "WMS")
	target := "/geoserver/ows?SERVICE=WMS&REQUEST=GetMap&LAYERS=roads"

	if _, ok := Extract(record(target), wms, "/geoserver/ows"); !ok {
		t.Error("exact endpoint match rejected")
	}
	if _, ok := Extract(record(target), wms, "/other/ows"); ok {
		t.Error("different endpoint matched")
	}
	if _, ok := Extract(record(target), wms, ""); !ok {
		t.Error("absent endpoint filter rejected an eligible path")
	}
}

func TestExtract_NoResourceStillValid(t *testing.T) {
	wms := mustLookup(t, "WMS")
	req, ok := Extract(record("/ows?SERVICE=WMS&REQUEST=GetCapabilities"), wms, "")
	if !ok {
		t.Fatal("GetCapabilities without resource should match")
	}
	if len(req.Resources) != 0 {
		t.Errorf("Resources = %v, want none", req.Resources)
	}
}

func TestExtract_URLEncodedValues(t *testing.T) {
	wfs := mustLookup(t, "WFS")
	req, ok := Extract(record("/ows?SERVICE=WFS&REQUEST=GetFeature&TYPENAME=ns%3Aparks%2Cns%3Alakes"), wfs, "")
	if !ok {
		t.Fatal("expected match")
	}
	if !reflect.DeepEqual(req.Resources, []string{"ns:parks", "ns:lakes"}) {
		t.Errorf("Resources = %v, want [ns:parks ns:lakes]", req.Resources)
	}
}

func TestExtract_WPSExecute(t *testing.T) {
	wps := mustLookup(t, "WPS")
	req, ok := Extract(record("/wps?service=WPS&request=Execute&identifier=buffer"), wps, "")
	if !ok {
		t.Fatal("expected match")
	}
	if !reflect.DeepEqual(req.Resources, []string{"buffer"}) {
		t.Errorf("Resources = %v, want [buffer]", req.Resources)
	}
}

func TestExtract_DuplicateKeysLastWins(t *testing.T) {
	wms := mustLookup(t, "WMS")
	req, ok := Extract(record("/ows?SERVICE=WMS&REQUEST=GetMap&LAYERS=old&LAYERS=new"), wms, "")
	if !ok {
		t.Fatal("expected match")
	}
	if !reflect.DeepEqual(req.Resources, []string{"new"}) {
		t.Errorf("Resources = %v, want [new]", req.Resources)
	}
}
