package subtitle

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"montage/pkg/timefmt"
)

// Margin offsets in script pixels for the named positions.
const (
	marginVertical   = 40
	marginHorizontal = 20
)

// Document is a rendered ASS subtitle script: canvas metadata, one style
// block per caption entry, one timed event per entry.
type Document struct {
	Width  int
	Height int
	Styles []styleBlock
	Events []eventLine
}

type styleBlock struct {
	name        string
	fontFamily  string
	fontSize    int
	primary     string
	outline     string
	back        string
	borderStyle int
	borderWidth int
	alignment   int
	marginL     int
	marginR     int
	marginV     int
}

type eventLine struct {
	start    float64
	end      float64
	style    string
	override string
	text     string
}

// Render converts caption entries into a styled document for the given
// canvas. Each entry gets its own named style; styling is never shared
// between entries.
func Render(entries []Entry, canvasWidth, canvasHeight int) (*Document, error) {
	if canvasWidth <= 0 || canvasHeight <= 0 {
		return nil, fmt.Errorf("canvas dimensions must be positive: %dx%d", canvasWidth, canvasHeight)
	}

	doc := &Document{Width: canvasWidth, Height: canvasHeight}

	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("caption %d: %w", i+1, err)
		}

		name := fmt.Sprintf("Caption%d", i+1)
		doc.Styles = append(doc.Styles, buildStyle(name, entry))
		doc.Events = append(doc.Events, buildEvent(name, entry, canvasWidth))
	}

	return doc, nil
}

func buildStyle(name string, e Entry) styleBlock {
	s := styleBlock{
		name:        name,
		fontFamily:  e.FontFamily,
		fontSize:    e.FontSize,
		primary:     assColor(e.FontColor, 100),
		outline:     assColor("#000000", 100),
		back:        assColor("#000000", 100),
		borderStyle: 1,
		borderWidth: 1,
		alignment:   anchorCode(e.Position, e.Alignment),
		marginL:     marginHorizontal,
		marginR:     marginHorizontal,
	}

	if e.BorderColor != "" {
		s.outline = assColor(e.BorderColor, 100)
		s.borderWidth = 2
	}
	if e.BorderWidth != nil {
		s.borderWidth = *e.BorderWidth
	}

	if e.BackgroundColor != "" {
		opacity := 100.0
		if e.BackgroundOpacity != nil {
			opacity = *e.BackgroundOpacity
		}
		s.borderStyle = 4
		s.back = assColor(e.BackgroundColor, opacity)
	}

	switch e.Position {
	case PositionTop, PositionBottom:
		s.marginV = marginVertical
	case PositionCustom:
		// Absolute positioning overrides margins entirely.
		s.marginL = 0
		s.marginR = 0
	}

	return s
}

func buildEvent(styleName string, e Entry, canvasWidth int) eventLine {
	ev := eventLine{
		start: e.Start,
		end:   e.End,
		style: styleName,
		text:  wrapText(e.Text, wrapBudget(canvasWidth, e.FontSize)),
	}

	if e.Position == PositionCustom {
		ev.override = fmt.Sprintf("{\\pos(%d,%d)}", *e.CustomX, *e.CustomY)
	}

	return ev
}

// anchorCode maps position x alignment onto the nine ASS numpad anchor
// codes. Custom positions anchor at the middle row so \pos marks the
// caption's center line.
func anchorCode(p Position, a Alignment) int {
	column := 2
	switch a {
	case AlignLeft:
		column = 1
	case AlignRight:
		column = 3
	}

	switch p {
	case PositionBottom:
		return column
	case PositionTop:
		return 6 + column
	default:
		return 3 + column
	}
}

// assColor converts a hex RGB color and 0-100 opacity to the ASS
// alpha-first &HAABBGGRR form. alpha = round((100-opacity)*2.55).
func assColor(hexColor string, opacity float64) string {
	hexColor = strings.TrimPrefix(hexColor, "#")
	value, err := strconv.ParseUint(hexColor, 16, 32)
	if err != nil {
		value = 0xFFFFFF
	}

	r := (value >> 16) & 0xFF
	g := (value >> 8) & 0xFF
	b := value & 0xFF
	alpha := int(math.Round((100 - opacity) * 255 / 100))
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 255 {
		alpha = 255
	}

	return fmt.Sprintf("&H%02X%02X%02X%02X", alpha, b, g, r)
}

// String emits the complete document. WrapStyle 2 disables libass's own
// wrapping; line breaks are decided here.
func (d *Document) String() string {
	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: montage captions\n")
	sb.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", d.Width)
	fmt.Fprintf(&sb, "PlayResY: %d\n", d.Height)
	sb.WriteString("WrapStyle: 2\n")
	sb.WriteString("ScaledBorderAndShadow: yes\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	for _, s := range d.Styles {
		fmt.Fprintf(&sb, "Style: %s,%s,%d,%s,%s,%s,%s,0,0,0,0,100,100,0,0,%d,%d,0,%d,%d,%d,%d,1\n",
			s.name, s.fontFamily, s.fontSize,
			s.primary, s.primary, s.outline, s.back,
			s.borderStyle, s.borderWidth,
			s.alignment, s.marginL, s.marginR, s.marginV)
	}
	sb.WriteString("\n")

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, ev := range d.Events {
		fmt.Fprintf(&sb, "Dialogue: 0,%s,%s,%s,,0,0,0,,%s%s\n",
			timefmt.ASS(ev.start), timefmt.ASS(ev.end),
			ev.style, ev.override, ev.text)
	}

	return sb.String()
}

// WriteFile writes the document to path.
func (d *Document) WriteFile(path string) error {
	return os.WriteFile(path, []byte(d.String()), 0644)
}
