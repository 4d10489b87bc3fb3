package subtitle

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func styledEntry(text string, start, end float64) Entry {
	e := Entry{Text: text, Start: start, End: end}
	e.ApplyDefaults("Arial", 24, "#FFFFFF")
	return e
}

func TestRenderOneStylePerEntry(t *testing.T) {
	entries := []Entry{
		styledEntry("First caption", 0, 2),
		styledEntry("Second caption", 2, 4),
		styledEntry("Third caption", 4, 6),
	}

	doc, err := Render(entries, 1920, 1080)
	require.NoError(t, err)
	require.Len(t, doc.Styles, 3)
	require.Len(t, doc.Events, 3)

	for i, s := range doc.Styles {
		assert.Equal(t, fmt.Sprintf("Caption%d", i+1), s.name)
		assert.Equal(t, s.name, doc.Events[i].style, "event must reference its own style")
	}
}

func TestRenderRejectsInvalidEntry(t *testing.T) {
	entries := []Entry{
		styledEntry("fine", 0, 2),
		styledEntry("end before start", 5, 3),
	}

	_, err := Render(entries, 1920, 1080)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "caption 2")
}

func TestRenderRejectsBadCanvas(t *testing.T) {
	_, err := Render(nil, 0, 1080)
	assert.Error(t, err)
}

func TestAnchorCodes(t *testing.T) {
	cases := []struct {
		position  Position
		alignment Alignment
		want      int
	}{
		{PositionBottom, AlignLeft, 1},
		{PositionBottom, AlignCenter, 2},
		{PositionBottom, AlignRight, 3},
		{PositionMiddle, AlignLeft, 4},
		{PositionMiddle, AlignCenter, 5},
		{PositionMiddle, AlignRight, 6},
		{PositionTop, AlignLeft, 7},
		{PositionTop, AlignCenter, 8},
		{PositionTop, AlignRight, 9},
		{PositionCustom, AlignCenter, 5},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%s", tc.position, tc.alignment), func(t *testing.T) {
			assert.Equal(t, tc.want, anchorCode(tc.position, tc.alignment))
		})
	}
}

func TestAssColorChannelOrder(t *testing.T) {
	// #RRGGBB becomes alpha-first &HAABBGGRR.
	assert.Equal(t, "&H00FFFFFF", assColor("#FFFFFF", 100))
	assert.Equal(t, "&H00CC9933", assColor("#3399CC", 100))
	assert.Equal(t, "&HFF000000", assColor("000000", 0))
}

// Opacity must survive the trip through the alpha byte within one percent for
// every integer opacity.
func TestAssColorAlphaRoundTrip(t *testing.T) {
	for opacity := 0; opacity <= 100; opacity++ {
		encoded := assColor("#808080", float64(opacity))
		alpha, err := strconv.ParseUint(encoded[2:4], 16, 8)
		require.NoError(t, err, "encoded color %q", encoded)

		recovered := 100 - float64(alpha)/2.55
		if math.Abs(recovered-float64(opacity)) > 1.0 {
			t.Errorf("opacity %d -> alpha %d -> %f, drift too large", opacity, alpha, recovered)
		}
	}
}

func TestAssColorMalformedFallsBackToWhite(t *testing.T) {
	assert.Equal(t, "&H00FFFFFF", assColor("not-a-color", 100))
}

func TestBuildStyleBackground(t *testing.T) {
	opacity := 50.0
	e := styledEntry("boxed", 0, 2)
	e.BackgroundColor = "#000000"
	e.BackgroundOpacity = &opacity

	s := buildStyle("Caption1", e)

	assert.Equal(t, 4, s.borderStyle, "background uses the opaque-box border style")
	assert.Equal(t, "&H80000000", s.back)
}

func TestBuildStyleBorder(t *testing.T) {
	e := styledEntry("outlined", 0, 2)
	e.BorderColor = "#FF0000"

	s := buildStyle("Caption1", e)

	assert.Equal(t, 1, s.borderStyle)
	assert.Equal(t, 2, s.borderWidth, "explicit border color widens the default outline")
	assert.Equal(t, "&H000000FF", s.outline)

	width := 4
	e.BorderWidth = &width
	assert.Equal(t, 4, buildStyle("Caption1", e).borderWidth)
}

func TestBuildStyleMargins(t *testing.T) {
	bottom := styledEntry("low", 0, 2)
	s := buildStyle("Caption1", bottom)
	assert.Equal(t, marginVertical, s.marginV)
	assert.Equal(t, marginHorizontal, s.marginL)

	middle := styledEntry("mid", 0, 2)
	middle.Position = PositionMiddle
	assert.Equal(t, 0, buildStyle("Caption1", middle).marginV)
}

func TestCustomPositionOverride(t *testing.T) {
	x, y := 960, 540
	e := styledEntry("pinned", 1, 3)
	e.Position = PositionCustom
	e.CustomX = &x
	e.CustomY = &y

	doc, err := Render([]Entry{e}, 1920, 1080)
	require.NoError(t, err)

	assert.Equal(t, "{\\pos(960,540)}", doc.Events[0].override)

	s := doc.Styles[0]
	assert.Zero(t, s.marginL, "absolute positioning suppresses margins")
	assert.Zero(t, s.marginR)
	assert.Zero(t, s.marginV)
}

func TestDocumentString(t *testing.T) {
	e := styledEntry("Hello there", 1.5, 4)
	doc, err := Render([]Entry{e}, 1280, 720)
	require.NoError(t, err)

	text := doc.String()

	assert.Contains(t, text, "[Script Info]")
	assert.Contains(t, text, "PlayResX: 1280")
	assert.Contains(t, text, "PlayResY: 720")
	assert.Contains(t, text, "WrapStyle: 2")
	assert.Contains(t, text, "[V4+ Styles]")
	assert.Contains(t, text, "[Events]")
	assert.Contains(t, text, "Dialogue: 0,0:00:01.50,0:00:04.00,Caption1,,0,0,0,,Hello there")

	styleLine := ""
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "Style: Caption1,") {
			styleLine = line
		}
	}
	require.NotEmpty(t, styleLine)
	fields := strings.Split(strings.TrimPrefix(styleLine, "Style: "), ",")
	assert.Len(t, fields, 23, "style line must carry the full field set")
	assert.Equal(t, "Arial", fields[1])
	assert.Equal(t, "24", fields[2])
}

func TestDocumentStringDeterministic(t *testing.T) {
	entries := []Entry{
		styledEntry("one", 0, 1),
		styledEntry("two", 1, 2),
	}

	first, err := Render(entries, 1920, 1080)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := Render(entries, 1920, 1080)
		require.NoError(t, err)
		require.Equal(t, first.String(), next.String(), "run %d", i)
	}
}
