package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"todo/internal/codec"
	"todo/internal/service"
)

func sampleListing() service.Listing {
	return service.NewListing([]service.Task{
		{Title: "Buy milk", Description: "2%, organic", CreatedAt: "2024-03-01 09:30:00"},
		{Title: "Café", Description: "", CreatedAt: "2024-03-01 09:31:12", Completed: true},
	})
}

func TestRender_CSV(t *testing.T) {
	data, err := Render("CSV", sampleListing())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("csv output does not parse: %v", err)
	}
	want := [][]string{
		{"position", "title", "description", "created_at", "completed"},
		{"1", "Buy milk", "2%, organic", "2024-03-01 09:30:00", "false"},
		{"2", "Café", "", "2024-03-01 09:31:12", "true"},
	}
	if !reflect.DeepEqual(records, want) {
		t.Errorf("unexpected records\nwant %q\ngot  %q", want, records)
	}
}

func TestRender_Codecs(t *testing.T) {
	listing := sampleListing()
	for _, f := range []codec.Format{codec.JSON, codec.YAML, codec.TOML} {
		data, err := Render(string(f), listing)
		if err != nil {
			t.Fatalf("%s: render: %v", f, err)
		}
		got, err := codec.Decode(f, data)
		if err != nil {
			t.Fatalf("%s: decode: %v", f, err)
		}
		if !reflect.DeepEqual(got, listing.Tasks()) {
			t.Errorf("%s: mismatch\nwant %+v\ngot  %+v", f, listing.Tasks(), got)
		}
	}
}

func TestRender_PDF(t *testing.T) {
	for _, listing := range []service.Listing{sampleListing(), service.NewListing(nil)} {
		data, err := Render("pdf", listing)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF-")) {
			t.Errorf("output is not a PDF: %q", data[:min(len(data), 16)])
		}
	}
}

func TestRender_Unknown(t *testing.T) {
	if _, err := Render("xml", sampleListing()); err == nil {
		t.Error("expected error for unknown format")
	}
}
