package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/p2pscrape/internal/dates"
	"github.com/hyperifyio/p2pscrape/internal/listing"
)

func sampleListing() listing.Listing {
	return listing.Listing{
		Name:                  "사업확장 <대출>",
		Grade:                 "B2",
		Duration:              24,
		AnnualPercentageYield: 0.105,
		Amount:                3925321,
		Records: []listing.PeriodRecord{
			{Date: dates.MustParse("2016-04-11"), Figures: [4]int64{1694, 612, 160, 340}},
			{Date: dates.MustParse("2018-03-12"), Figures: [4]int64{2290, 16, 0, 0}},
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleListing()); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"name": "사업확장 <대출>"`) {
		t.Fatalf("name not written unescaped:\n%s", out)
	}
	var back listing.Listing
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Records[1].Date != dates.MustParse("2018-03-12") || back.Amount != 3925321 {
		t.Fatalf("unexpected decode %+v", back)
	}
}

func TestWriteJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "829.json")
	if err := WriteJSONFile(path, sampleListing()); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil || !strings.HasSuffix(string(b), "}\n") {
		t.Fatalf("unexpected file %q, %v", b, err)
	}
}

func TestWritePDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "829.pdf")
	opts := PDFOptions{FigureHeaders: [4]string{"a", "b", "c", "d"}}
	if err := WritePDFFile(path, sampleListing(), opts); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf: %q", b[:8])
	}
}

func TestWritePDF_MissingFontFails(t *testing.T) {
	var buf bytes.Buffer
	err := WritePDF(&buf, sampleListing(), PDFOptions{FontPath: filepath.Join(t.TempDir(), "none.ttf")})
	if err == nil {
		t.Fatalf("expected error for missing font")
	}
}

func TestGroupThousands(t *testing.T) {
	cases := map[int64]string{0: "0", 160: "160", 1694: "1,694", 3925321: "3,925,321", -1000: "-1,000"}
	for in, want := range cases {
		if got := groupThousands(in); got != want {
			t.Fatalf("groupThousands(%d)=%q, want %q", in, got, want)
		}
	}
}
