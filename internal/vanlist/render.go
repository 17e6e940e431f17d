package vanlist

import (
	"bytes"
	"html/template"
	"path"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/me/covweb/internal/client"
	"github.com/me/covweb/pkg/model"
)

// Placeholders used when a record field is absent.
const (
	NoRecords  = "No inspections found."
	NoEvent    = "No Event"
	NoOdometer = "N/A"
	NoVideo    = "No video"
)

const (
	dateLayout = "1/2/2006"
	timeLayout = "3:04:05 PM"

	// Odometer readings are recorded in miles.
	odometerUnit = "mi"
)

// card is the display form of one InspectionRecord, shared by renderers.
type card struct {
	Van       string
	Date      string
	Time      string
	Inspector string
	Event     string
	Odometer  string
	HasVideo  bool
	Video     string
	VideoURL  string
	ThumbURL  string
}

func newCard(rec model.InspectionRecord, mediaBase string) card {
	c := card{
		Van:       rec.VanNumber,
		Inspector: rec.InspectorID,
		Event:     rec.EventName,
		Odometer:  odometerLabel(rec.OdometerIn),
	}
	if ts, ok := model.ParseTimestamp(rec.Date); ok {
		c.Date = ts.Format(dateLayout)
		c.Time = ts.Format(timeLayout)
	} else {
		c.Date = rec.Date
	}
	if strings.TrimSpace(c.Event) == "" {
		c.Event = NoEvent
	}
	if rec.HasVideo() {
		c.HasVideo = true
		c.Video = rec.VideoFilename
		c.VideoURL = mediaBase + client.VideoPath(rec.VideoFilename)
		c.ThumbURL = mediaBase + client.ThumbnailPath(rec.VideoFilename)
	}
	return c
}

// formatOdometer adds thousands separators to integer readings and passes
// anything else through unchanged.
func formatOdometer(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return NoOdometer
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
	if err != nil {
		return s
	}
	return humanize.Comma(n)
}

// odometerLabel is the reading with its unit, or NoOdometer when absent.
func odometerLabel(s string) string {
	v := formatOdometer(s)
	if v == NoOdometer {
		return v
	}
	return v + " " + odometerUnit
}

func cards(records []model.InspectionRecord, mediaBase string) []card {
	out := make([]card, 0, len(records))
	for _, rec := range records {
		out = append(out, newCard(rec, mediaBase))
	}
	return out
}

// pager is the display form of the pagination controls.
type pager struct {
	Current int
	Total   int
	Pages   []int
	Prev    int
	Next    int
	First   bool
	Last    bool
}

func newPager(current, total int) (pager, bool) {
	if total <= 1 {
		return pager{}, false
	}
	p := pager{
		Current: current,
		Total:   total,
		Pages:   make([]int, 0, total),
		Prev:    current - 1,
		Next:    current + 1,
		First:   current <= 1,
		Last:    current >= total,
	}
	for i := 1; i <= total; i++ {
		p.Pages = append(p.Pages, i)
	}
	return p, true
}

var htmlTemplates = template.Must(template.New("vanlist").Parse(`
{{define "records"}}{{if not .}}<p class="text-center text-muted">` + NoRecords + `</p>{{else}}{{range .}}
<div class="inspection-card">
  <div class="inspection-details">
    <h3>COV {{.Van}}</h3>
    <p><strong>Date:</strong> {{.Date}}</p>
    <p><strong>Time:</strong> {{.Time}}</p>
    <p><strong>Inspector:</strong> {{.Inspector}}</p>
    <p><strong>Event:</strong> {{.Event}}</p>
    <p><strong>Odometer:</strong> {{.Odometer}}</p>
  </div>
  <div class="video-preview">{{if .HasVideo}}
    <a href="{{.VideoURL}}" target="_blank" rel="noopener" title="Play {{.Video}}"><img src="{{.ThumbURL}}" alt="Video thumbnail" class="video-thumbnail"></a>{{else}}
    <p>` + NoVideo + `</p>{{end}}
  </div>
</div>{{end}}{{end}}{{end}}

{{define "pagination"}}<nav class="pagination" aria-label="Inspected vans pages">
  <button type="button" data-page="{{.Prev}}"{{if .First}} disabled{{end}}>Previous</button>{{range .Pages}}{{if eq . $.Current}}
  <button type="button" class="current-page" aria-current="page">{{.}}</button>{{else}}
  <button type="button" data-page="{{.}}">{{.}}</button>{{end}}{{end}}
  <button type="button" data-page="{{.Next}}"{{if .Last}} disabled{{end}}>Next</button>
</nav>{{end}}

{{define "error"}}<p class="text-center text-error">{{.}}</p>{{end}}
`))

func execute(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&buf, name, data); err != nil {
		// The templates are static and the data carries only strings and ints.
		panic("vanlist: render " + name + ": " + err.Error())
	}
	return template.HTML(strings.TrimSpace(buf.String()))
}

// Render returns the list markup for records. Every field is escaped.
func Render(records []model.InspectionRecord) template.HTML {
	return HTMLRenderer{}.html(records)
}

// RenderPagination returns the pagination markup. It is empty when total <= 1.
func RenderPagination(current, total int) template.HTML {
	p, ok := newPager(current, total)
	if !ok {
		return ""
	}
	return execute("pagination", p)
}

// HTMLRenderer renders html/template fragments. MediaBase is prefixed to
// thumbnail and video paths; leave it empty when media is served by the
// same origin as the page.
type HTMLRenderer struct {
	MediaBase string
}

func (r HTMLRenderer) html(records []model.InspectionRecord) template.HTML {
	return execute("records", cards(records, strings.TrimRight(r.MediaBase, "/")))
}

func (r HTMLRenderer) Records(records []model.InspectionRecord) string {
	return string(r.html(records))
}

func (HTMLRenderer) Pagination(current, total int) string {
	return string(RenderPagination(current, total))
}

func (HTMLRenderer) Error(message string) string {
	return string(execute("error", message))
}

// mediaLabel is the short name of a video shown by the text renderer.
func mediaLabel(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}
