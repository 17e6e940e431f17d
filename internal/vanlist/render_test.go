package vanlist

import (
	"strings"
	"testing"

	"github.com/me/covweb/pkg/model"
)

func TestRenderEmpty(t *testing.T) {
	for _, recs := range [][]model.InspectionRecord{nil, {}} {
		got := string(Render(recs))
		if got != `<p class="text-center text-muted">No inspections found.</p>` {
			t.Errorf("Render(%v) = %q", recs, got)
		}
	}
}

func TestRenderCard(t *testing.T) {
	got := string(Render([]model.InspectionRecord{{
		VanNumber:     "1234",
		Date:          "2024-05-01T14:30:00Z",
		InspectorID:   "555001",
		EventName:     "Summer Rally",
		OdometerIn:    "48213",
		VideoFilename: "cov_1234.mov",
	}}))
	for _, want := range []string{
		"<h3>COV 1234</h3>",
		"5/1/2024",
		"2:30:00 PM",
		"555001",
		"Summer Rally",
		"48,213 mi",
		`href="/video/cov_1234.mov"`,
		`src="/thumbnail/cov_1234.jpg"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, NoVideo) {
		t.Error("card with a video shows the no-video placeholder")
	}
}

func TestRenderFallbacks(t *testing.T) {
	got := string(Render([]model.InspectionRecord{{
		VanNumber:   "77",
		Date:        "sometime",
		InspectorID: "1",
	}}))
	for _, want := range []string{NoEvent, NoOdometer, NoVideo, "sometime"} {
		if !strings.Contains(got, want) {
			t.Errorf("card missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<img") {
		t.Error("thumbnail rendered without a video")
	}
}

func TestRenderEscapesFields(t *testing.T) {
	got := string(Render([]model.InspectionRecord{{
		VanNumber:     `<script>alert(1)</script>`,
		InspectorID:   `"><b>x</b>`,
		EventName:     `Tom & Jerry`,
		VideoFilename: `a"b.mov`,
	}}))
	if strings.Contains(got, "<script>") || strings.Contains(got, "<b>x</b>") {
		t.Errorf("unescaped markup:\n%s", got)
	}
	for _, want := range []string{"&lt;script&gt;", "Tom &amp; Jerry"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing escaped %q:\n%s", want, got)
		}
	}
}

func TestRenderMediaBase(t *testing.T) {
	r := HTMLRenderer{MediaBase: "http://backend:8500/"}
	got := r.Records([]model.InspectionRecord{{VanNumber: "1", VideoFilename: "x.mov"}})
	if !strings.Contains(got, `src="http://backend:8500/thumbnail/x.jpg"`) {
		t.Errorf("thumbnail not prefixed:\n%s", got)
	}
	if !strings.Contains(got, `href="http://backend:8500/video/x.mov"`) {
		t.Errorf("video not prefixed:\n%s", got)
	}
}

func TestRenderPagination(t *testing.T) {
	tests := []struct {
		name         string
		current      int
		total        int
		prevDisabled bool
		nextDisabled bool
	}{
		{"first", 1, 5, true, false},
		{"middle", 3, 5, false, false},
		{"last", 5, 5, false, true},
		{"two pages", 2, 2, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(RenderPagination(tt.current, tt.total))
			if d := strings.Contains(got, "disabled>Previous"); d != tt.prevDisabled {
				t.Errorf("Previous disabled = %v, want %v:\n%s", d, tt.prevDisabled, got)
			}
			if d := strings.Contains(got, "disabled>Next"); d != tt.nextDisabled {
				t.Errorf("Next disabled = %v, want %v:\n%s", d, tt.nextDisabled, got)
			}
			if n := strings.Count(got, `class="current-page"`); n != 1 {
				t.Errorf("current-page count = %d", n)
			}
			// One control per page, plus Previous and Next.
			if n := strings.Count(got, "<button"); n != tt.total+2 {
				t.Errorf("buttons = %d, want %d", n, tt.total+2)
			}
		})
	}
}

func TestRenderPaginationSinglePage(t *testing.T) {
	for _, total := range []int{-1, 0, 1} {
		if got := RenderPagination(1, total); got != "" {
			t.Errorf("RenderPagination(1, %d) = %q, want empty", total, got)
		}
	}
}

func TestTextRenderer(t *testing.T) {
	var r TextRenderer
	if got := r.Records(nil); got != NoRecords+"\n" {
		t.Errorf("empty = %q", got)
	}
	got := r.Records([]model.InspectionRecord{
		{VanNumber: "12", Date: "2024-05-01T14:30:00Z", InspectorID: "9", OdometerIn: "1500", VideoFilename: "v.mov"},
		{VanNumber: "13", InspectorID: "9"},
	})
	for _, want := range []string{"COV 12", "1,500 mi", "v.mov (/video/v.mov)", "COV 13", NoEvent, NoOdometer, NoVideo} {
		if !strings.Contains(got, want) {
			t.Errorf("text missing %q:\n%s", want, got)
		}
	}
	if got := r.Pagination(5, 5); got != "Previous 1 2 3 4 [5] (Next)\n" {
		t.Errorf("pagination = %q", got)
	}
	if got := r.Pagination(1, 1); got != "" {
		t.Errorf("single page = %q", got)
	}
	if got := r.Error(ErrorMessage); got != ErrorMessage+"\n" {
		t.Errorf("error = %q", got)
	}
}

func TestFormatOdometer(t *testing.T) {
	tests := map[string]string{
		"":          NoOdometer,
		"  ":        NoOdometer,
		"999":       "999",
		"1000":      "1,000",
		"1,234,567": "1,234,567",
		"12.5":      "12.5",
		"abc":       "abc",
	}
	for in, want := range tests {
		if got := formatOdometer(in); got != want {
			t.Errorf("formatOdometer(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestOdometerLabel(t *testing.T) {
	tests := map[string]string{
		"":      NoOdometer,
		"48213": "48,213 mi",
		"12.5":  "12.5 mi",
	}
	for in, want := range tests {
		if got := odometerLabel(in); got != want {
			t.Errorf("odometerLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
