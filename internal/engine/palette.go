package engine

import "github.com/rupeetrack/rupeetrack-bfa-go/internal/domain"

const (
	barAlpha    = 0.7
	borderAlpha = 1.0
	areaAlpha   = 0.2
)

// categoryPalette is cycled by category index, period 10.
var categoryPalette = [...]domain.Color{
	domain.RGBA(255, 99, 132, barAlpha),  // red
	domain.RGBA(54, 162, 235, barAlpha),  // blue
	domain.RGBA(255, 206, 86, barAlpha),  // yellow
	domain.RGBA(75, 192, 192, barAlpha),  // green
	domain.RGBA(153, 102, 255, barAlpha), // purple
	domain.RGBA(255, 159, 64, barAlpha),  // orange
	domain.RGBA(199, 199, 199, barAlpha), // grey
	domain.RGBA(83, 102, 255, barAlpha),  // indigo
	domain.RGBA(233, 30, 99, barAlpha),   // pink
	domain.RGBA(0, 150, 136, barAlpha),   // teal
}

var (
	// Accent is the income / positive-flow color.
	Accent = domain.RGBA(16, 185, 129, borderAlpha)
	// Alert is the expense / negative-flow color.
	Alert = domain.RGBA(239, 68, 68, borderAlpha)
)

// PaletteSize is the number of distinct category colors.
const PaletteSize = len(categoryPalette)

// ColorForIndex returns the bar color of the i-th category. Index i and
// i+PaletteSize always share a color.
func ColorForIndex(i int) domain.Color {
	n := len(categoryPalette)
	return categoryPalette[((i%n)+n)%n]
}

// ColorForSign returns the bar color of a cash-flow value: accent for v >= 0,
// alert otherwise.
func ColorForSign(v float64) domain.Color {
	if v >= 0 {
		return Accent.WithAlpha(barAlpha)
	}
	return Alert.WithAlpha(barAlpha)
}
