package display

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/easytoast/internal/geometry"
	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/theme"
	"github.com/jmylchreest/easytoast/internal/toast"
)

// layerNamespace identifies toast surfaces to the compositor.
const layerNamespace = "easytoast"

// Surface is a single toast window laid out on a gtk.Fixed.
type Surface struct {
	backend *Backend
	layout  *layout.Layout
	class   string

	window  *gtk.Window
	fixed   *gtk.Fixed
	icon    *gtk.Image
	title   *gtk.Label
	message *gtk.Label

	palette  *gtk.CSSProvider
	display  *gdk.Display
	titleCol color.RGBA
	textCol  color.RGBA
	backCol  color.RGBA

	size      geometry.Size
	destroyed bool
}

var _ toast.Surface = (*Surface)(nil)

func newSurface(b *Backend, serial uint64) *Surface {
	s := &Surface{
		backend: b,
		layout:  b.layout,
		class:   fmt.Sprintf("toast-%d", serial),
		size:    b.layout.Size,
		palette: gtk.NewCSSProvider(),
	}

	s.window = gtk.NewWindow()
	if b.app != nil {
		s.window.SetApplication(b.app)
	}
	s.window.SetDecorated(false)
	s.window.SetResizable(false)
	s.window.AddCSSClass("easytoast")
	s.window.AddCSSClass(colorSchemeClass())

	layershell.InitForWindow(s.window)
	layershell.SetNamespace(s.window, layerNamespace)
	layershell.SetLayer(s.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(s.window, 0)
	layershell.SetKeyboardMode(s.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(s.window, layershell.LayerShellEdgeLeft, true)
	if monitor := b.outputMonitor(); monitor != nil {
		layershell.SetMonitor(s.window, monitor)
	}

	s.buildUI()

	s.display = s.window.Display()
	if s.display == nil {
		s.display = gdk.DisplayGetDefault()
	}
	if s.display != nil {
		gtk.StyleContextAddProviderForDisplay(s.display, s.palette, gtk.STYLE_PROVIDER_PRIORITY_USER)
	}

	return s
}

// buildUI places the three children at their template positions.
func (s *Surface) buildUI() {
	s.fixed = gtk.NewFixed()
	s.fixed.AddCSSClass("toast")
	s.fixed.AddCSSClass(s.class)
	s.fixed.SetSizeRequest(s.size.Width, s.size.Height)

	s.icon = gtk.NewImage()
	s.icon.AddCSSClass("toast-icon")
	s.icon.SetVisible(false)
	s.place(s.icon, s.layout.Icon)

	s.title = gtk.NewLabel("")
	s.title.AddCSSClass("toast-title")
	s.title.SetXAlign(0)
	s.title.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	s.place(s.title, s.layout.Title)

	s.message = gtk.NewLabel("")
	s.message.AddCSSClass("toast-message")
	s.message.SetXAlign(0)
	s.message.SetYAlign(0)
	s.place(s.message, s.layout.Message)

	s.window.SetChild(s.fixed)
}

func (s *Surface) place(w gtk.Widgetter, elem layout.Element) {
	if elem.Type == "" {
		return
	}
	widget := gtk.BaseWidget(w)
	if elem.Size.Width > 0 || elem.Size.Height > 0 {
		widget.SetSizeRequest(elem.Size.Width, elem.Size.Height)
	}
	at := elem.DrawAt()
	s.fixed.Put(w, float64(at.X), float64(at.Y))
}

// colorSchemeClass follows the libadwaita light/dark preference.
func colorSchemeClass() string {
	if adw.StyleManagerGetDefault().Dark() {
		return "dark"
	}
	return "light"
}

// IconName maps an icon handle to a themed icon name. Handles that are not
// built in pass through unchanged.
func IconName(icon toast.Icon) string {
	switch icon {
	case toast.IconInfo:
		return "dialog-information"
	case toast.IconCheck:
		return "emblem-ok-symbolic"
	case toast.IconError:
		return "dialog-error"
	default:
		return string(icon)
	}
}

// isIconFile reports whether a non-builtin handle looks like a file path.
func isIconFile(icon toast.Icon) bool {
	return strings.ContainsRune(string(icon), '/')
}

func (s *Surface) SetIcon(icon toast.Icon) {
	if icon == toast.IconNone {
		s.icon.Clear()
		s.icon.SetVisible(false)
		return
	}
	if !icon.Builtin() && isIconFile(icon) {
		s.icon.SetFromFile(string(icon))
	} else {
		s.icon.SetFromIconName(IconName(icon))
	}
	s.icon.SetVisible(true)
}

func (s *Surface) SetTitle(title string) {
	s.title.SetText(title)
}

func (s *Surface) SetText(text string) {
	s.message.SetText(text)
}

func (s *Surface) SetTitleColor(c color.RGBA) {
	s.titleCol = c
	s.updatePalette()
}

func (s *Surface) SetTextColor(c color.RGBA) {
	s.textCol = c
	s.updatePalette()
}

func (s *Surface) SetBackColor(c color.RGBA) {
	s.backCol = c
	s.updatePalette()
}

func (s *Surface) updatePalette() {
	s.palette.LoadFromString(theme.PaletteCSS(s.class, s.titleCol, s.textCol, s.backCol))
}

// MessageRegion measures the message label at its natural size.
func (s *Surface) MessageRegion() geometry.Region {
	_, width, _, _ := s.message.Measure(gtk.OrientationHorizontal, -1)
	_, height, _, _ := s.message.Measure(gtk.OrientationVertical, width)
	return s.layout.MessageRegion(geometry.Size{Width: width, Height: height})
}

// GrowPadding returns the padding used when the toast grows.
func (s *Surface) GrowPadding() int {
	return s.layout.GrowPadding
}

func (s *Surface) Size() geometry.Size {
	return s.size
}

func (s *Surface) Resize(size geometry.Size) {
	s.size = size
	s.fixed.SetSizeRequest(size.Width, size.Height)
	s.window.SetDefaultSize(size.Width, size.Height)
}

// Move places the surface through its top and left layer-shell margins.
func (s *Surface) Move(pt geometry.Point) {
	layershell.SetMargin(s.window, layershell.LayerShellEdgeLeft, pt.X)
	layershell.SetMargin(s.window, layershell.LayerShellEdgeTop, pt.Y)
}

func (s *Surface) Present() {
	s.window.Present()
}

func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	if s.display != nil {
		gtk.StyleContextRemoveProviderForDisplay(s.display, s.palette)
	}
	s.window.Destroy()
}
