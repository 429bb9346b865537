package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/jmylchreest/easytoast/internal/audio"
	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/daemon"
	"github.com/jmylchreest/easytoast/internal/dbus"
	"github.com/jmylchreest/easytoast/internal/display"
	"github.com/jmylchreest/easytoast/internal/layout"
	"github.com/jmylchreest/easytoast/internal/terminal"
	"github.com/jmylchreest/easytoast/internal/theme"
	"github.com/jmylchreest/easytoast/internal/toast"
)

type showOptions struct {
	preset     string
	title      string
	icon       string
	titleColor string
	textColor  string
	backColor  string
	position   string
	marginX    int
	marginY    int
	interval   string
	backend    string
	local      bool
	wait       bool
}

var showOpts showOptions

var showCmd = &cobra.Command{
	Use:   "show [text...]",
	Short: "Show a toast",
	Long: `Show a toast notification.

The message is taken from the arguments, or from stdin when no arguments are
given and stdin is not a terminal. Every property can be set with a flag;
unset properties come from the config file and the preset.

With the gtk backend the toast is sent to a running 'easytoast serve' when
one is reachable on D-Bus. Otherwise, or with --local, the toast runs in this
process and the command returns once it closes. The terminal backend always
draws in the current terminal.

Examples:
  easytoast show --preset success "Backup finished"
  make 2>&1 | tail -n 3 | easytoast show --preset error --title "Build failed"
  easytoast show --position top-center --interval 2s --backend terminal hi`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showOpts.register(showCmd.Flags())
}

func (o *showOptions) register(f *pflag.FlagSet) {
	f.StringVarP(&o.preset, "preset", "p", "", "Preset (info, success, error)")
	f.StringVarP(&o.title, "title", "t", "", "Title (default: preset title)")
	f.StringVarP(&o.icon, "icon", "i", "", "Icon: info, check, error, an icon name or an image path")
	f.StringVar(&o.titleColor, "title-color", "", "Title color (#rrggbb or name)")
	f.StringVar(&o.textColor, "text-color", "", "Message color (#rrggbb or name)")
	f.StringVar(&o.backColor, "back-color", "", "Background color (#rrggbb or name)")
	f.StringVar(&o.position, "position", "", "Anchor, e.g. bottom-right, top-center")
	f.IntVar(&o.marginX, "margin-x", 0, "Horizontal distance from the anchor edge")
	f.IntVar(&o.marginY, "margin-y", 0, "Vertical distance from the anchor edge")
	f.StringVar(&o.interval, "interval", "", "How long the toast stays, e.g. 3s or 1500 (ms)")
	f.StringVarP(&o.backend, "backend", "b", "", "Backend: auto, gtk or terminal (default from config)")
	f.BoolVar(&o.local, "local", false, "Run the toast in this process even if a daemon is running")
	f.BoolVarP(&o.wait, "wait", "w", false, "Wait until a daemon toast closes")
}

func runShow(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(cmd, &showOpts, args)
	if err != nil {
		return err
	}

	backend := config.Backend(cfg.Display.Backend)
	if showOpts.backend != "" {
		backend = config.Backend(showOpts.backend)
	}
	backend, err = chooseBackend(backend, hasGraphicalSession(), term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if backend == config.BackendTerminal {
		return showInTerminal(ctx, cmd, req)
	}

	if !showOpts.local {
		id, err := showViaDaemon(ctx, req)
		if err == nil {
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}
		logger.Debug("no daemon reachable, showing toast in-process", "error", err)
	}
	return showInProcess(req)
}

// buildRequest collects the flags that were set into a request.
func buildRequest(cmd *cobra.Command, o *showOptions, args []string) (daemon.Request, error) {
	preset, err := toast.ParsePreset(o.preset)
	if err != nil {
		return daemon.Request{}, err
	}

	text := strings.Join(args, " ")
	if len(args) == 0 && !term.IsTerminal(int(os.Stdin.Fd())) {
		data, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 64<<10))
		if err != nil {
			return daemon.Request{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	req := daemon.Request{
		Preset:     preset,
		Title:      o.title,
		Text:       text,
		Icon:       o.icon,
		TitleColor: o.titleColor,
		TextColor:  o.textColor,
		BackColor:  o.backColor,
		Position:   o.position,
	}
	if cmd.Flags().Changed("margin-x") {
		req.MarginX = &o.marginX
	}
	if cmd.Flags().Changed("margin-y") {
		req.MarginY = &o.marginY
	}
	if o.interval != "" {
		if err := req.Interval.UnmarshalText([]byte(o.interval)); err != nil {
			return daemon.Request{}, err
		}
	}

	// Validate before anything is sent or drawn.
	if _, err := daemon.ResolveOptions(cfg, req); err != nil {
		return daemon.Request{}, err
	}
	return req, nil
}

// hasGraphicalSession reports whether a Wayland or X11 display is set.
func hasGraphicalSession() bool {
	return os.Getenv("WAYLAND_DISPLAY") != "" || os.Getenv("DISPLAY") != ""
}

// chooseBackend resolves auto: the terminal backend is only picked when
// there is no graphical session and stdout is a terminal.
func chooseBackend(b config.Backend, graphical, tty bool) (config.Backend, error) {
	switch b {
	case config.BackendGTK, config.BackendTerminal:
		return b, nil
	case config.BackendAuto, "":
		if !graphical && tty {
			return config.BackendTerminal, nil
		}
		return config.BackendGTK, nil
	default:
		return "", fmt.Errorf("unknown backend %q, must be one of: auto, gtk, terminal", b)
	}
}

func showViaDaemon(ctx context.Context, req daemon.Request) (string, error) {
	client, err := dbus.NewClient()
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx); err != nil {
		return "", err
	}

	if showOpts.wait {
		return client.ShowAndWait(ctx, req)
	}
	showCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return client.Show(showCtx, req)
}

// showInTerminal draws the toast in the current terminal. Pixel margins
// from the config make no sense in cells, so unset margins use the
// terminal default.
func showInTerminal(ctx context.Context, cmd *cobra.Command, req daemon.Request) error {
	if req.MarginX == nil {
		m := terminal.DefaultMargin
		req.MarginX = &m
	}
	if req.MarginY == nil {
		m := terminal.DefaultMargin
		req.MarginY = &m
	}
	opts, err := daemon.ResolveOptions(cfg, req)
	if err != nil {
		return err
	}

	l, err := loadLayout(layout.TerminalTemplateName)
	if err != nil {
		return err
	}
	return terminal.Run(ctx, terminal.NewBackend(l, logger), opts, logger)
}

// showInProcess runs a short-lived GTK application hosting one toast.
func showInProcess(req daemon.Request) error {
	app := adw.NewApplication(appID+".show", gio.ApplicationNonUnique)

	var showErr error
	app.ConnectActivate(func() {
		l, err := loadLayout(cfg.Display.Layout)
		if err != nil {
			showErr = err
			app.Quit()
			return
		}

		loader := theme.NewLoader("", logger)
		if err := loader.LoadTheme(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme", "error", err)
		}
		loader.Apply(nil)

		backend := display.New(&app.Application, l, cfg.Display.Monitor, logger)
		svc := daemon.NewService(cfg, backend, daemon.Inline, logger)
		sounds := audio.NewManager(cfg, logger)
		svc.SetSoundPlayer(sounds)
		svc.OnClosed(func(string) {
			sounds.Stop()
			app.Quit()
		})

		// Keep running between activation and the toast closing.
		app.Hold()
		if _, err := svc.Show(context.Background(), req); err != nil {
			showErr = err
			app.Release()
			app.Quit()
		}
	})

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		coreglib.IdleAdd(app.Quit)
	}()

	if status := app.Run([]string{os.Args[0]}); status != 0 && showErr == nil {
		showErr = fmt.Errorf("application exited with status %d", status)
	}
	return showErr
}

// loadLayout resolves a layout template, user directory first.
func loadLayout(name string) (*layout.Layout, error) {
	dir, err := layout.TemplatesDir()
	if err != nil {
		logger.Debug("no user layout directory", "error", err)
	}
	l, err := layout.NewLoader(dir).Load(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load layout %q: %w", name, err)
	}
	return l, nil
}
