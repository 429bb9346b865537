package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	coreglib "github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/easytoast/internal/audio"
	"github.com/jmylchreest/easytoast/internal/config"
	"github.com/jmylchreest/easytoast/internal/daemon"
	"github.com/jmylchreest/easytoast/internal/dbus"
	"github.com/jmylchreest/easytoast/internal/display"
	"github.com/jmylchreest/easytoast/internal/httpapi"
	"github.com/jmylchreest/easytoast/internal/store"
	"github.com/jmylchreest/easytoast/internal/theme"
)

var serveOpts struct {
	httpListen string
	notices    bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the toast service",
	Long: `Run easytoast as a session service.

Toasts are accepted over D-Bus (io.github.jmylchreest.EasyToast) and, when
server.http_listen is set or --http is given, over HTTP:

  curl -d '{"preset":"success","text":"done"}' http://127.0.0.1:7878/v1/toasts

The config file and the CSS theme are reloaded when they change.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOpts.httpListen, "http", "",
		"HTTP listen address, e.g. 127.0.0.1:7878 (default from config)")
	serveCmd.Flags().BoolVar(&serveOpts.notices, "notices", true,
		"Show toasts about config reloads and errors")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger.Info("starting easytoast service", "version", version)

	app := adw.NewApplication(appID, 0)

	var (
		dbusServer    *dbus.ToastServer
		themeLoader   *theme.Loader
		audioManager  *audio.Manager
		configWatcher *config.Watcher
		history       *store.Store
		startErr      error
		running       atomic.Bool
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		coreglib.IdleAdd(app.Quit)
	}()

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		l, err := loadLayout(cfg.Display.Layout)
		if err != nil {
			startErr = err
			app.Quit()
			return
		}

		themeLoader = theme.NewLoader("", logger)
		if err := themeLoader.LoadTheme(cfg.Theme.Name); err != nil {
			logger.Warn("failed to load theme", "error", err)
		}
		themeLoader.Apply(nil)
		themeLoader.StartHotReload(ctx)

		backend := display.New(&app.Application, l, cfg.Display.Monitor, logger)
		svc := daemon.NewService(cfg, backend, backend.Dispatch, logger)

		audioManager = audio.NewManager(cfg, logger)
		audioManager.Start()
		svc.SetSoundPlayer(audioManager)

		if cfg.History.Enabled {
			history, err = openHistory(cfg)
			if err != nil {
				logger.Warn("toast history disabled", "error", err)
			} else {
				svc.SetHistory(history)
			}
		}

		dbusServer = dbus.NewToastServer(svc, logger)
		dbusServer.SetServerInfo(dbus.ServerInfo{
			Name:    appName,
			Vendor:  "jmylchreest",
			Version: version,
		})
		if err := dbusServer.Start(); err != nil {
			startErr = err
			app.Quit()
			return
		}
		svc.OnClosed(func(id string) {
			if err := dbusServer.EmitToastClosed(id); err != nil {
				logger.Warn("failed to emit close signal", "toast_id", id, "error", err)
			}
		})

		notifier := daemon.NewInternalNotifier(svc.Show, logger)
		notifier.SetEnabled(serveOpts.notices)

		if addr := httpListenAddr(); addr != "" {
			srv := httpapi.New(svc, logger)
			go func() {
				if err := srv.ListenAndServe(ctx, addr); err != nil {
					logger.Error("HTTP endpoint stopped", "error", err)
				}
			}()
		}

		currentTheme := cfg.Theme.Name
		configWatcher, err = config.NewWatcher(configPath(), func(newConfig *config.Config) {
			svc.UpdateConfig(newConfig)
			audioManager.UpdateConfig(newConfig)

			if newConfig.Theme.Name != currentTheme {
				currentTheme = newConfig.Theme.Name
				coreglib.IdleAdd(func() {
					if err := themeLoader.LoadTheme(newConfig.Theme.Name); err != nil {
						logger.Warn("failed to load new theme", "theme", newConfig.Theme.Name, "error", err)
						// Notices go through the main loop, which is busy here.
						go notifier.NotifyThemeError(err)
						return
					}
					themeLoader.StartHotReload(ctx)
				})
			}

			notifier.NotifyConfigReloaded()
		}, logger)
		if err != nil {
			logger.Warn("failed to create config watcher", "error", err)
		} else {
			configWatcher.SetErrorCallback(notifier.NotifyConfigError)
			if err := configWatcher.Start(); err != nil {
				logger.Warn("failed to start config watcher", "error", err)
			}
		}

		// Keep the application alive while no toast is open.
		app.Hold()

		go notifier.NotifyStartup(version)
		logger.Info("easytoast ready", "dbus_interface", dbus.DBusInterface)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		cancel()
		if configWatcher != nil {
			_ = configWatcher.Stop()
		}
		if themeLoader != nil {
			themeLoader.StopHotReload()
		}
		if audioManager != nil {
			audioManager.Stop()
		}
		if dbusServer != nil {
			_ = dbusServer.Stop()
		}
		if history != nil {
			_ = history.Close()
		}
		running.Store(false)
	})

	status := app.Run([]string{os.Args[0]})

	if startErr != nil {
		if errors.Is(startErr, dbus.ErrAlreadyRunning) {
			return fmt.Errorf("%w; use 'easytoast status' to inspect it", startErr)
		}
		return startErr
	}
	if status != 0 {
		return fmt.Errorf("application exited with status %d", status)
	}

	logger.Info("easytoast stopped")
	return nil
}

// httpListenAddr returns the --http flag or the configured address.
func httpListenAddr() string {
	if serveOpts.httpListen != "" {
		return serveOpts.httpListen
	}
	return cfg.Server.HTTPListen
}
