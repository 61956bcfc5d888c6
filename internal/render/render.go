package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/godilite/cs-dashboard/internal/service"
)

// ErrNothingToRender is returned when the dashboard holds no data for the
// requested chart.
var ErrNothingToRender = errors.New("nothing to render")

// Kind names a dashboard chart.
type Kind string

const (
	KindPeriod         Kind = "period"
	KindDurations      Kind = "durations"
	KindCustomerTypes  Kind = "customer_types"
	KindScoreMeans     Kind = "score_means"
	KindGroupedScores  Kind = "grouped_scores"
	KindScoreHistogram Kind = "score_histogram"
	KindScoreTrend     Kind = "score_trend"
	KindTerms          Kind = "terms"
)

// Kinds lists every chart in page order.
var Kinds = []Kind{
	KindPeriod, KindDurations, KindCustomerTypes, KindScoreMeans,
	KindGroupedScores, KindScoreHistogram, KindScoreTrend, KindTerms,
}

// ParseKind validates a chart name.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

const (
	defaultWidth  = 960
	defaultHeight = 480
	maxTermBars   = 20
)

var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorGreen,
	chart.ColorRed,
	chart.ColorOrange,
	chart.ColorAlternateGray,
	chart.ColorCyan,
}

// Renderer draws dashboard tables as PNG images.
type Renderer struct {
	font   *truetype.Font
	width  int
	height int
}

type Option func(*Renderer)

// WithFont sets the label font. The built-in font has no Hangul glyphs.
func WithFont(f *truetype.Font) Option {
	return func(r *Renderer) {
		r.font = f
	}
}

func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 {
			r.width = width
		}
		if height > 0 {
			r.height = height
		}
	}
}

func New(opts ...Option) *Renderer {
	r := &Renderer{width: defaultWidth, height: defaultHeight}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadFont parses a TrueType font file.
func LoadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

// PNG renders one chart of d into a byte slice.
func (r *Renderer) PNG(kind Kind, d service.Dashboard) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, kind, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render writes one chart of d to w as PNG.
func (r *Renderer) Render(w io.Writer, kind Kind, d service.Dashboard) error {
	if d.NoData {
		return ErrNothingToRender
	}

	switch kind {
	case KindPeriod:
		return r.period(w, d)
	case KindDurations:
		return r.durations(w, d)
	case KindCustomerTypes:
		return r.customerTypes(w, d)
	case KindScoreMeans:
		return r.scoreMeans(w, d)
	case KindGroupedScores:
		return r.groupedScores(w, d)
	case KindScoreHistogram:
		return r.scoreHistogram(w, d)
	case KindScoreTrend:
		return r.scoreTrend(w, d)
	case KindTerms:
		return r.terms(w, d)
	}
	return fmt.Errorf("%w: unknown chart %q", service.ErrInvalidRequest, kind)
}

func (r *Renderer) period(w io.Writer, d service.Dashboard) error {
	if len(d.PeriodCounts) == 0 {
		return ErrNothingToRender
	}

	labels := make([]string, len(d.PeriodCounts))
	values := make([]*float64, len(d.PeriodCounts))
	for i, p := range d.PeriodCounts {
		labels[i] = p.Label
		v := float64(p.Count)
		values[i] = &v
	}

	return r.lines(w, "CS 문의량 추이", "CS 문의량", labels, []namedSeries{{name: "문의량", values: values}}, false)
}

func (r *Renderer) durations(w io.Writer, d service.Dashboard) error {
	if len(d.Durations) == 0 {
		return ErrNothingToRender
	}

	var (
		labels []string
		months = make(map[string]int)
		order  []string
		byKind = make(map[string][]*float64)
	)
	for _, p := range d.Durations {
		if _, ok := months[p.Month]; !ok {
			months[p.Month] = len(labels)
			labels = append(labels, p.Label)
		}
	}
	for _, p := range d.Durations {
		vals, ok := byKind[p.KindLabel]
		if !ok {
			vals = make([]*float64, len(labels))
			order = append(order, p.KindLabel)
		}
		vals[months[p.Month]] = p.Minutes
		byKind[p.KindLabel] = vals
	}

	series := make([]namedSeries, len(order))
	for i, name := range order {
		series[i] = namedSeries{name: name, values: byKind[name]}
	}
	return r.lines(w, "월간 응답/해결 시간", "평균 시간(분)", labels, series, true)
}

func (r *Renderer) scoreTrend(w io.Writer, d service.Dashboard) error {
	if d.ScoreTrend == nil || len(d.ScoreTrend.Points) == 0 {
		return ErrNothingToRender
	}

	labels := make([]string, len(d.ScoreTrend.Points))
	values := make([]*float64, len(d.ScoreTrend.Points))
	for i, p := range d.ScoreTrend.Points {
		labels[i] = p.Label
		values[i] = p.Mean
	}
	title := fmt.Sprintf("월별 CSat 점수 (%s)", d.ScoreTrend.Question)
	return r.lines(w, title, "평균 점수", labels, []namedSeries{{name: d.ScoreTrend.Question, values: values}}, false)
}

func (r *Renderer) customerTypes(w io.Writer, d service.Dashboard) error {
	var values []chart.Value
	for i, s := range d.CustomerTypes {
		if s.Count == 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: s.Label,
			Value: float64(s.Count),
			Style: chart.Style{FillColor: palette[i%len(palette)]},
		})
	}
	if len(values) == 0 {
		return ErrNothingToRender
	}

	donut := chart.DonutChart{
		Title:  "고객유형별 CS 문의량",
		Width:  r.height,
		Height: r.height,
		Font:   r.font,
		Values: values,
	}
	return donut.Render(chart.PNG, w)
}

func (r *Renderer) scoreMeans(w io.Writer, d service.Dashboard) error {
	var bars []chart.Value
	for _, m := range d.ScoreMeans {
		if m.Mean == nil {
			continue
		}
		bars = append(bars, chart.Value{Label: m.Question, Value: *m.Mean})
	}
	return r.bars(w, "CSat 문항별 평균 점수", bars, 5)
}

func (r *Renderer) groupedScores(w io.Writer, d service.Dashboard) error {
	if d.GroupedScores == nil {
		return ErrNothingToRender
	}
	bars := make([]chart.Value, 0, len(d.GroupedScores.Groups))
	for _, g := range d.GroupedScores.Groups {
		bars = append(bars, chart.Value{Label: g.Group, Value: g.Mean})
	}
	title := fmt.Sprintf("%s별 CSat 교차분석 (%s)", d.GroupedScores.Field, d.GroupedScores.Question)
	return r.bars(w, title, bars, 5)
}

func (r *Renderer) scoreHistogram(w io.Writer, d service.Dashboard) error {
	if d.ScoreHistogram == nil {
		return ErrNothingToRender
	}
	bars := make([]chart.Value, 0, len(d.ScoreHistogram.Buckets))
	for _, b := range d.ScoreHistogram.Buckets {
		bars = append(bars, chart.Value{Label: fmt.Sprint(b.Score), Value: float64(b.Count)})
	}
	title := fmt.Sprintf("CSat 점수 분포 (%s)", d.ScoreHistogram.Question)
	return r.bars(w, title, bars, 0)
}

func (r *Renderer) terms(w io.Writer, d service.Dashboard) error {
	if d.Comments == nil || d.Comments.Empty || len(d.Comments.Terms) == 0 {
		return ErrNothingToRender
	}
	terms := d.Comments.Terms
	if len(terms) > maxTermBars {
		terms = terms[:maxTermBars]
	}
	bars := make([]chart.Value, len(terms))
	for i, t := range terms {
		bars[i] = chart.Value{Label: t.Term, Value: float64(t.Count)}
	}
	title := fmt.Sprintf("자유서술형 코멘트 주요 단어 (%s)", d.Comments.Question)
	return r.bars(w, title, bars, 0)
}

type namedSeries struct {
	name   string
	values []*float64
}

// lines draws one line per series over categorical x positions. Nil values
// leave a gap in the point list.
func (r *Renderer) lines(w io.Writer, title, yName string, labels []string, series []namedSeries, legend bool) error {
	ticks := make([]chart.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}

	maxY := 0.0
	var out []chart.Series
	for i, s := range series {
		var xs, ys []float64
		for j, v := range s.values {
			if v == nil || math.IsNaN(*v) {
				continue
			}
			xs = append(xs, float64(j))
			ys = append(ys, *v)
			maxY = math.Max(maxY, *v)
		}
		if len(xs) == 0 {
			continue
		}
		col := palette[i%len(palette)]
		out = append(out, chart.ContinuousSeries{
			Name:    s.name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: col,
				StrokeWidth: 2,
				DotColor:    col,
				DotWidth:    3,
			},
		})
	}
	if len(out) == 0 {
		return ErrNothingToRender
	}

	ch := chart.Chart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  "월",
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: &chart.ContinuousRange{Min: 0, Max: headroom(maxY)},
		},
		Series: out,
	}
	if legend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}
	return ch.Render(chart.PNG, w)
}

// bars draws a bar chart. A positive ceiling fixes the y-axis maximum.
func (r *Renderer) bars(w io.Writer, title string, bars []chart.Value, ceiling float64) error {
	if len(bars) == 0 {
		return ErrNothingToRender
	}

	maxY := ceiling
	if maxY <= 0 {
		for _, b := range bars {
			maxY = math.Max(maxY, b.Value)
		}
		maxY = headroom(maxY)
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      r.width,
		Height:     r.height,
		Font:       r.font,
		BarWidth:   barWidth(r.width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxY},
		},
		Bars: bars,
	}
	return bc.Render(chart.PNG, w)
}

func headroom(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v * 1.1
}

func barWidth(width, n int) int {
	w := width / (2 * (n + 1))
	if w < 8 {
		return 8
	}
	if w > 80 {
		return 80
	}
	return w
}
