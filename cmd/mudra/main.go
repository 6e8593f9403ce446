package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/preview"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
)

func main() {
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	var err error
	switch command {
	case "serve":
		err = handleServe(args)
	case "plot":
		err = handlePlot(args)
	case "export":
		err = handleExport(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("%s: %v", command, err)
	}
}

func printUsage() {
	fmt.Println(`mudra - pinch gesture recognition service

Usage: mudra <command> [options]

Commands:
  serve      Run the HTTP and websocket service
  plot       Render templates to PNG files
  export     Write the template set to a JSON file
  help       Show this help message

Run 'mudra <command> -h' for the options of a command.`)
}

func handleServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a JSON config file")
	addr := fs.String("addr", "", "Listen address (overrides listen_addr)")
	dbPath := fs.String("db", "", "SQLite journal path (overrides db_path)")
	pluginDir := fs.String("plugins", "", "Plugin directory (overrides plugin_dir)")
	webDir := fs.String("web", "", "Directory of static files to serve")
	noJournal := fs.Bool("no-journal", false, "Do not record recognitions")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.ListenAddr = addr
	}
	if *dbPath != "" {
		cfg.DBPath = dbPath
	}
	if *pluginDir != "" {
		cfg.PluginDir = pluginDir
	}
	if cfg.GetPluginDir() == "" {
		if dir := findDir("plugins"); dir != "" {
			cfg.PluginDir = &dir
		}
	}

	opts := app.Options{}
	if !*noJournal {
		path := cfg.GetDBPath()
		if path == "" {
			dir, err := dataDir()
			if err != nil {
				return err
			}
			path = filepath.Join(dir, "mudra.db")
		}
		st, err := store.New(path)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()
		opts.Store = st
		log.Printf("Journaling recognitions to %s", path)
	}

	a, err := app.New(cfg, opts)
	if err != nil {
		return err
	}
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	static := *webDir
	if static == "" {
		static = findDir("web")
	}
	if static != "" {
		log.Printf("Serving static files from: %s", static)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(server.Config{App: a, StaticDir: static})
	return srv.ListenAndServe(ctx, cfg.GetListenAddr())
}

func handlePlot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a JSON config file")
	out := fs.String("out", "previews", "Output directory")
	fs.Parse(args)

	templates, err := loadTemplates(*configPath)
	if err != nil {
		return err
	}

	written, err := plotTemplates(*out, templates, fs.Args())
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Println(path)
	}
	return nil
}

// plotTemplates renders the named templates, or all of them when names is
// empty, and returns the files written.
func plotTemplates(dir string, templates []gesture.Template, names []string) ([]string, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var written []string
	for _, t := range templates {
		if len(want) > 0 && !want[t.Name] {
			continue
		}
		delete(want, t.Name)

		path := filepath.Join(dir, t.Name+".png")
		if err := preview.Save(path, t.Name, preview.Layer{Label: t.Name, Points: t.Points}); err != nil {
			return written, fmt.Errorf("plot %s: %w", t.Name, err)
		}
		written = append(written, path)
	}

	for n := range want {
		return written, fmt.Errorf("no template named %q", n)
	}
	return written, nil
}

func handleExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a JSON config file")
	out := fs.String("out", "templates.json", "Output file")
	fs.Parse(args)

	templates, err := loadTemplates(*configPath)
	if err != nil {
		return err
	}
	if err := gesture.SaveTemplates(*out, templates); err != nil {
		return err
	}
	fmt.Printf("Wrote %d templates to %s\n", len(templates), *out)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// loadTemplates returns the normalized template set the service would use.
func loadTemplates(configPath string) ([]gesture.Template, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	a, err := app.New(cfg, app.Options{})
	if err != nil {
		return nil, err
	}

	r := a.Recognizer()
	var templates []gesture.Template
	for _, info := range r.Templates() {
		t, _ := r.Template(info.Name)
		templates = append(templates, t)
	}
	return templates, nil
}

// dataDir returns ~/.mudra, creating it if needed.
func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

// findDir searches for name in the working directory, its parents and
// ~/.mudra. It returns the first existing directory or "".
func findDir(name string) string {
	for _, p := range []string{name, filepath.Join("..", name), filepath.Join("..", "..", name)} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			if abs, err := filepath.Abs(p); err == nil {
				return abs
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(homeDir, ".mudra", name)
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return ""
}
