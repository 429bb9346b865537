package theme

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/jmylchreest/easytoast/internal/config"
)

// PaletteCSS returns the rules that color one toast. class scopes the rules
// to a single surface so toasts on the same display don't share colors.
func PaletteCSS(class string, title, text, back color.RGBA) string {
	var b strings.Builder
	fmt.Fprintf(&b, ".%s.toast { background-color: %s; }\n", class, config.FormatColor(back))
	fmt.Fprintf(&b, ".%s .toast-title { color: %s; }\n", class, config.FormatColor(title))
	fmt.Fprintf(&b, ".%s .toast-message { color: %s; }\n", class, config.FormatColor(text))
	return b.String()
}
