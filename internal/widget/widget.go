// Gradus - Notion XP Level Progress Widget
// Copyright 2026 Gradus contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/gradusapp/gradus

// Package widget renders the embeddable level progress page.
//
// The page is a self-contained HTML document with an SVG ring gauge and a
// client-side reload timer, sized for iframe embeds. All dynamic values go
// through html/template so upstream data cannot inject markup.
package widget

import (
	"fmt"
	"html/template"
	"io"
	"strconv"
	"time"
)

// Progress is the view model for one widget render.
type Progress struct {
	// Total is the aggregate XP across all records.
	Total float64

	// Level is the number of whole levels completed.
	Level int

	// Percent is the progress toward the next level, in [0, 100).
	Percent float64

	// PointsPerLevel is the fixed XP divisor, shown in the caption.
	PointsPerLevel int
}

// Renderer renders the widget page and its error counterpart.
type Renderer struct {
	title    string
	reload   time.Duration
	widget   *template.Template
	errorTpl *template.Template
}

// NewRenderer parses the page templates. The title appears above the gauge
// and reload is the client-side refresh interval.
func NewRenderer(title string, reload time.Duration) (*Renderer, error) {
	widgetTpl, err := template.New("widget").Parse(widgetTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse widget template: %w", err)
	}
	errTpl, err := template.New("error").Parse(errorTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse error template: %w", err)
	}
	return &Renderer{
		title:    title,
		reload:   reload,
		widget:   widgetTpl,
		errorTpl: errTpl,
	}, nil
}

// widgetData is the resolved template input. Formatting happens here so the
// template stays free of logic.
type widgetData struct {
	Title        string
	Total        string
	Level        int
	Percent      string
	PointsPerLvl int
	ReloadMillis int64
}

// Widget writes the progress page.
//
// The dash array of the progress arc is "percent, 100": on a ring with
// circumference 100 the first dash covers exactly percent units.
func (r *Renderer) Widget(w io.Writer, p Progress) error {
	data := widgetData{
		Title: r.title,
		// Trailing zeros are trimmed so whole totals render as integers.
		Total:        strconv.FormatFloat(p.Total, 'f', -1, 64),
		Level:        p.Level,
		Percent:      fmt.Sprintf("%.2f", p.Percent),
		PointsPerLvl: p.PointsPerLevel,
		ReloadMillis: r.reload.Milliseconds(),
	}
	if err := r.widget.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render widget: %w", err)
	}
	return nil
}

// Error writes the error page shown in place of the gauge when the upstream
// data cannot be retrieved.
func (r *Renderer) Error(w io.Writer, message string) error {
	data := struct{ Message string }{Message: message}
	if err := r.errorTpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render error page: %w", err)
	}
	return nil
}

const widgetTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <meta http-equiv="Cache-Control" content="no-cache, no-store, must-revalidate" />
  <meta http-equiv="Pragma" content="no-cache" />
  <meta http-equiv="Expires" content="0" />
  <script>
    // Reload the embed periodically to pick up fresh data
    setInterval(function() {
      window.location.reload();
    }, {{.ReloadMillis}});
  </script>
  <style>
    html, body {
      height: 100%;
      background: #0f1226;
      color: #eaf0ff;
      margin: 0;
      font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial, "Apple Color Emoji","Segoe UI Emoji";
    }
    .wrap {
      height: 100%;
      display: flex;
      align-items: center;
      justify-content: center;
      gap: 18px;
      flex-direction: column;
      padding: 16px;
    }
    .title { font-weight: 600; opacity: .9; }
    .meta { opacity: .8; font-size: 14px; }
    svg { filter: drop-shadow(0 6px 16px rgba(0,0,0,.4)); }
    .track { stroke: #2a2f58; }
    .bar {
      stroke: #7aa2ff;
      transition: stroke-dasharray 1s ease-out;
    }
  </style>
</head>
<body>
  <div class="wrap">
    <div class="title">{{.Title}}</div>
    <svg viewBox="0 0 36 36" width="180" height="180">
      <!-- background ring -->
      <path class="track"
        d="M18 2.0845
           a 15.9155 15.9155 0 0 1 0 31.831
           a 15.9155 15.9155 0 0 1 0 -31.831"
        fill="none" stroke-width="2"/>
      <!-- progress arc -->
      <path class="bar"
        d="M18 2.0845
           a 15.9155 15.9155 0 0 1 0 31.831
           a 15.9155 15.9155 0 0 1 0 -31.831"
        fill="none" stroke-width="2"
        stroke-dasharray="{{.Percent}}, 100" />
      <!-- level in the center -->
      <text x="18" y="19.5" fill="#eaf0ff" font-size="5" text-anchor="middle" style="font-weight:700">
        Lvl {{.Level}}
      </text>
    </svg>
    <div class="meta">{{.Total}} XP total &#8226; {{.PointsPerLvl}} XP / level</div>
  </div>
</body>
</html>
`

const errorTemplate = `<!DOCTYPE html>
<html>
<body style="background:#111;color:#eee;font-family:system-ui;padding:24px">
  <h3>Widget error</h3>
  <p>{{.Message}}</p>
  <p>Check NOTION_TOKEN / DATABASE_ID and that the integration has access to the database.</p>
</body>
</html>
`
