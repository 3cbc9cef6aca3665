package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/consultly/internal/booking"
	"github.com/naveenspark/consultly/internal/config"
	"github.com/naveenspark/consultly/internal/logging"
	"github.com/naveenspark/consultly/internal/session"
	"github.com/naveenspark/consultly/internal/tui"
	"github.com/naveenspark/consultly/pkg/client"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env is everything a command needs, built once from config.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   session.Store
	api     *client.Client
	catalog *booking.Catalog
	avail   *booking.Availability
	orch    *booking.Orchestrator
	history *booking.History
	in      *bufio.Reader
	inFd    uintptr
	inFile  bool // stdin is an *os.File
	out     io.Writer
}

func setup(in io.Reader, out io.Writer) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}

	// A token from the environment wins and is never written to disk.
	var store session.Store
	if cfg.Token != "" {
		sess, err := client.SessionFromToken(cfg.Token)
		if err != nil {
			return nil, fmt.Errorf("CONSULTLY_TOKEN: %w", err)
		}
		store = session.NewMemoryStore(sess)
	} else {
		fs, err := session.OpenFileStore(cfg.SessionFile)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	api := client.New(cfg.APIURL,
		client.WithTokenSource(store),
		client.WithTimeout(cfg.RequestTimeout),
		client.WithRateLimit(cfg.RateLimit, 2),
	)
	loc := cfg.Location()

	var inFd uintptr
	f, inFile := in.(*os.File)
	if inFile {
		inFd = f.Fd()
	}

	return &env{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		api:     api,
		catalog: booking.NewCatalog(api, logger),
		avail:   booking.NewAvailability(api, loc, logger),
		orch:    booking.NewOrchestrator(api, logger),
		history: booking.NewHistory(api),
		in:      bufio.NewReader(in),
		inFd:    inFd,
		inFile:  inFile,
		out:     out,
	}, nil
}

func run(args []string, in io.Reader, out io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(out, "consultly "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(out)
		return nil
	}

	e, err := setup(in, out)
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck // best-effort flush

	e.logger.Debug("command", zap.String("name", cmd), zap.String("version", version))

	switch cmd {
	case "":
		return e.runTUI()
	case "login":
		return e.runLogin(args)
	case "logout":
		return e.runLogout()
	case "whoami":
		return e.runWhoami()
	case "services":
		return e.runServices()
	case "slots":
		return e.runSlots(args)
	case "book":
		return e.runBook(args)
	case "bookings":
		return e.runBookings()
	default:
		printHelp(out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (e *env) runTUI() error {
	app := tui.NewApp(tui.Deps{
		Catalog:       e.catalog,
		Availability:  e.avail,
		Orchestrator:  e.orch,
		History:       e.history,
		Auth:          e.api,
		Gate:          session.NewGate[tea.Cmd](e.store),
		Logger:        e.logger,
		PaymentMethod: e.cfg.PaymentMethod,
		WebURL:        e.cfg.WebURL,
		Location:      e.cfg.Location(),
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
