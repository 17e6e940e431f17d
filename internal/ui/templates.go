package ui

import (
	"fmt"
	"html/template"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/me/covweb/pkg/model"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatDate": func(s string) string {
		t, ok := model.ParseTimestamp(s)
		if !ok {
			return s
		}
		return t.Format("1/2/2006 3:04 PM")
	},
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	},
	"orDefault": func(s, fallback string) string {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	},
}

// parseComponents parses every shared component into tmpl.
func parseComponents(tmpl *template.Template) error {
	for compName, compContent := range templates {
		if strings.HasPrefix(compName, "components/") {
			if _, err := tmpl.New(filepath.Base(compName)).Parse(compContent); err != nil {
				return fmt.Errorf("parse component %s: %w", compName, err)
			}
		}
	}
	return nil
}

// renderTemplate renders a page inside the layout.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}
	if _, err := tmpl.New("content").Parse(content); err != nil {
		return fmt.Errorf("parse content: %w", err)
	}
	if err := parseComponents(tmpl); err != nil {
		return err
	}
	return tmpl.Execute(w, data)
}

// renderComponent renders a single component, for htmx swaps.
func renderComponent(w io.Writer, name string, data map[string]any) error {
	if _, ok := templates["components/"+name]; !ok {
		return fmt.Errorf("component not found: %s", name)
	}
	tmpl := template.New("fragments").Funcs(templateFuncs)
	if err := parseComponents(tmpl); err != nil {
		return err
	}
	return tmpl.ExecuteTemplate(w, name, data)
}

// templates holds all template content.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>
        .pagination { display: flex; gap: 0.25rem; justify-content: center; margin-top: 1rem; }
        .pagination button { padding: 0.25rem 0.75rem; border: 1px solid #D1D5DB; border-radius: 0.375rem; background: white; }
        .pagination button[disabled] { opacity: 0.5; cursor: not-allowed; }
        .pagination .current-page { background: #4F46E5; color: white; border-color: #4F46E5; cursor: default; }
        .inspection-card { display: flex; justify-content: space-between; gap: 1rem; padding: 1rem; margin-bottom: 0.75rem; background: white; border-radius: 0.5rem; box-shadow: 0 1px 2px rgba(0,0,0,0.08); }
        .video-thumbnail { width: 160px; border-radius: 0.375rem; }
        .text-error { color: #B91C1C; }
        .htmx-indicator { display: none; }
        .htmx-request .htmx-indicator { display: inline-block; }
    </style>
</head>
<body class="bg-gray-50 min-h-screen">
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-5xl mx-auto px-4 flex justify-between h-16">
            <div class="flex items-center space-x-8">
                <a href="/" class="text-xl font-bold text-indigo-600">COV Inspections</a>
                <a href="/ui/vans" hx-get="/ui/vans" hx-target="#app" class="text-sm font-medium text-gray-500 hover:text-gray-700">Inspected Vans</a>
                <a href="/ui/events" hx-get="/ui/events" hx-target="#app" class="text-sm font-medium text-gray-500 hover:text-gray-700">New Inspection</a>
                <a href="/ui/missing" hx-get="/ui/missing" hx-target="#app" class="text-sm font-medium text-gray-500 hover:text-gray-700">Attach Videos</a>
            </div>
            <div class="flex items-center">
                <a href="/ui/logout" class="text-sm text-gray-500 hover:text-gray-700">Logout</a>
            </div>
        </div>
    </nav>

    <main id="app" class="max-w-5xl mx-auto py-6 px-4">
        {{template "content" .}}
    </main>

    <script>
        document.addEventListener('click', function (e) {
            var btn = e.target.closest('#pagination button[data-page]');
            if (!btn || btn.disabled) return;
            htmx.ajax('POST', '/ui/vans/page/' + btn.dataset.page, {target: '#vansResults'});
        });
    </script>
</body>
</html>`,

	"home": `{{define "content"}}
{{if eq .Section "inspectedVansSection"}}{{template "vans" .}}
{{else if eq .Section "eventSelectionSection"}}{{template "events" .}}
{{else if eq .Section "missingVideosSection"}}{{template "missing" .}}
{{else}}{{template "menu" .}}{{end}}
{{end}}`,

	"components/menu": `{{define "menu"}}
<section id="mainMenu" class="section">
    <h1 class="text-2xl font-semibold text-gray-900 mb-6">COV Inspections</h1>
    <div class="grid grid-cols-1 gap-4 sm:grid-cols-3">
        <a href="/ui/events" hx-get="/ui/events" hx-target="#app" class="block p-6 bg-white rounded-lg shadow text-center font-medium text-indigo-600">New Inspection</a>
        <a href="/ui/missing" hx-get="/ui/missing" hx-target="#app" class="block p-6 bg-white rounded-lg shadow text-center font-medium text-indigo-600">Attach Videos</a>
        <a href="/ui/vans" hx-get="/ui/vans" hx-target="#app" class="block p-6 bg-white rounded-lg shadow text-center font-medium text-indigo-600">Inspected Vans</a>
    </div>
</section>
{{end}}`,

	"components/vans": `{{define "vans"}}
<section id="inspectedVansSection" class="section">
    <h1 class="text-2xl font-semibold text-gray-900 mb-4">Inspected Vans</h1>
    <form id="vansControls" class="flex space-x-4 mb-4" hx-post="/ui/vans/refresh" hx-trigger="change" hx-target="#vansResults">
        <label class="text-sm text-gray-700">Sort by
            <select name="sort" id="sortSelect" class="ml-1 border-gray-300 rounded-md">
                {{range .SortOptions}}<option value="{{.Value}}"{{if eq .Value $.Sort}} selected{{end}}>{{.Label}}</option>{{end}}
            </select>
        </label>
        <label class="text-sm text-gray-700">Per page
            <select name="per_page" id="perPageSelect" class="ml-1 border-gray-300 rounded-md">
                {{range .PageSizeOptions}}<option value="{{.}}"{{if eq . $.PerPage}} selected{{end}}>{{.}}</option>{{end}}
            </select>
        </label>
        <span class="htmx-indicator text-sm text-gray-500">Loading...</span>
    </form>
    <div id="vansResults">{{template "vansResults" .}}</div>
</section>
{{end}}`,

	"components/vansResults": `{{define "vansResults"}}
<div id="inspectionsList">{{.List}}</div>
<div id="pagination">{{.Pagination}}</div>
{{end}}`,

	"components/events": `{{define "events"}}
<section id="eventSelectionSection" class="section">
    <h1 class="text-2xl font-semibold text-gray-900 mb-4">Select Event</h1>
    <form hx-post="/ui/events" hx-target="#eventResult" class="space-y-2">
        <div id="eventList">
            {{if .EventsError}}<p class="text-error">Error loading events. Please try again.</p>
            {{else}}{{range .Events}}
            <div class="event-item"><label><input type="radio" name="event" value="{{.Name}}"{{if eq .Name $.SelectedEvent}} checked{{end}}> {{.Name}}</label></div>{{end}}
            <div class="event-item">
                <label><input type="radio" name="event" value="create_new"> Other - Create New Event</label>
                <input type="text" name="new_event_name" placeholder="New event name" class="ml-2 border-gray-300 rounded-md">
            </div>{{end}}
        </div>
        <button type="submit" class="px-4 py-2 rounded-md text-white bg-indigo-600 hover:bg-indigo-700">Continue</button>
    </form>
    <div id="eventResult" class="mt-4"></div>
</section>
{{end}}`,

	"components/eventResult": `{{define "eventResult"}}
{{if .Prompt}}<p class="text-error">{{.Prompt}}</p>
{{else if .Similar}}
<div class="rounded-md bg-yellow-50 p-4">
    <p class="text-sm text-yellow-800">{{.Message}}</p>
    <ul class="mt-2">{{range .Similar}}
        <li><form hx-post="/ui/events" hx-target="#eventResult" class="inline">
            <input type="hidden" name="event" value="{{.Name}}">
            <button type="submit" class="text-indigo-600 underline">Use {{.Name}}</button>
        </form></li>{{end}}
    </ul>
    <form hx-post="/ui/events" hx-target="#eventResult" class="mt-2">
        <input type="hidden" name="event" value="create_new">
        <input type="hidden" name="new_event_name" value="{{.RequestedName}}">
        <input type="hidden" name="force" value="1">
        <button type="submit" class="px-3 py-1 rounded-md text-white bg-indigo-600">Create "{{.RequestedName}}" anyway</button>
    </form>
</div>
{{else if .Error}}<p class="text-error">{{.Error}}</p>
{{else}}
<div class="rounded-md bg-green-50 p-4">
    <p class="text-sm text-green-800">Selected event: <strong>{{.Event}}</strong></p>
    {{if .COVsError}}<p class="text-error">Error loading COVs. Please try again.</p>
    {{else}}<label class="text-sm text-gray-700">COV
        <select name="cov_number" class="ml-1 border-gray-300 rounded-md">
            <option value="">Select COV</option>
            {{range .COVs}}<option value="{{.Number}}">{{.Number}}</option>{{end}}
        </select>
    </label>{{end}}
</div>
{{end}}
{{end}}`,

	"components/missing": `{{define "missing"}}
<section id="missingVideosSection" class="section">
    <h1 class="text-2xl font-semibold text-gray-900 mb-4">Attach Videos</h1>
    {{if .MissingError}}<p class="text-error">Error loading data. Please try again.</p>
    {{else if .AllAttached}}<div class="rounded-md bg-green-50 p-4 text-green-800">&#x2705; All inspections have videos attached!</div>
    {{else}}
    <form hx-get="/ui/missing" hx-target="#app" hx-trigger="change" class="mb-4">
        <label class="text-sm text-gray-700">Event
            <select name="event" class="ml-1 border-gray-300 rounded-md">
                <option value="">All events</option>
                {{range .Events}}<option value="{{.Name}}"{{if eq .Name $.Event}} selected{{end}}>{{.Name}}</option>{{end}}
            </select>
        </label>
    </form>
    <ul id="missingList" class="space-y-2">{{range .Missing}}
        <li class="p-3 bg-white rounded-md shadow-sm">COV {{.VanNumber}} &middot; {{formatDate .Date}} &middot; Inspector {{.InspectorID}} &middot; {{orDefault .EventName "No Event"}}</li>{{end}}
    </ul>
    {{if not .Missing}}<p class="text-sm text-gray-500 mt-2">No inspections without video for this event.</p>{{end}}
    {{end}}
</section>
{{end}}`,
}
