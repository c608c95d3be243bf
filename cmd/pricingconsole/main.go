package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/pricing-console/internal/application"
	"github.com/example/pricing-console/internal/broadcast"
	"github.com/example/pricing-console/internal/config"
	"github.com/example/pricing-console/internal/forms"
	"github.com/example/pricing-console/internal/persistence"
	"github.com/example/pricing-console/internal/persistence/sqlite"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(ctx); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	priceStore := persistence.NewPriceStore(storage)
	sessionStore := persistence.NewSessionStore(storage)

	allowList, err := application.NewDemoAllowList()
	if err != nil {
		logger.Error("failed to build credential allow-list", "error", err)
		os.Exit(1)
	}

	gate := application.NewSessionGateWithLogger(sessionStore, allowList, nil, nil, nil, cfg.SessionTTL, logger)

	broker := broadcast.NewBroker(logger)
	announcer := broadcast.NewStorageAnnouncer(priceStore, 0, logger)
	publisher := broadcast.Fanout{broker, announcer}

	fields := forms.NewFieldSet()
	prices := application.NewPriceServiceWithLogger(priceStore, fields, publisher, cfg.DataVersion, nil, nil, logger)

	console := &console{
		ctx:        ctx,
		cfg:        cfg,
		gate:       gate,
		prices:     prices,
		priceStore: priceStore,
		broker:     broker,
		fields:     fields,
		stdin:      bufio.NewScanner(os.Stdin),
		logger:     logger,
	}
	console.run()
}

type console struct {
	ctx        context.Context
	cfg        config.Config
	gate       *application.SessionGate
	prices     *application.PriceService
	priceStore *persistence.PriceStore
	broker     *broadcast.Broker
	fields     *forms.FieldSet
	autosave   *application.Debouncer
	stdin      *bufio.Scanner
	logger     *slog.Logger
}

func (c *console) run() {
	// Navigation guard: an existing valid session skips the login surface.
	if application.ResolveSurface(application.SurfaceLogin, c.gate.IsAuthenticated(c.ctx)) == application.SurfaceLogin {
		if !c.login() {
			return
		}
	}

	c.prices.Start(c.ctx)
	c.fields.Populate(c.prices.Table(c.ctx))

	c.autosave = application.NewDebouncer(c.cfg.AutosaveDebounce, func() {
		c.prices.AutoSave(context.Background(), c.operator())
	})
	defer c.autosave.Stop()

	session := c.gate.CurrentSession(c.ctx)
	fmt.Printf("Welcome, %s\n", session.Username)
	fmt.Println(`Type "help" for commands.`)

	for {
		fmt.Print("> ")
		line, ok := c.readLine()
		if !ok {
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "help":
			c.printHelp()
		case "show":
			c.show()
		case "set":
			c.set(args[1:])
		case "update":
			c.update(args[1:])
		case "save":
			c.save()
		case "reset":
			c.reset()
		case "export":
			c.export(args[1:])
		case "import":
			c.importFile(args[1:])
		case "stats":
			c.stats()
		case "watch":
			c.watch(args[1:])
		case "logout":
			if err := c.gate.Logout(c.ctx); err != nil {
				fmt.Println("Logout failed. Please try again.")
				return
			}
			fmt.Println("Logged out.")
			return
		case "quit", "exit":
			return
		default:
			fmt.Printf("Unknown command %q. Type \"help\" for commands.\n", args[0])
		}
	}
}

func (c *console) login() bool {
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Print("Username: ")
		username, ok := c.readLine()
		if !ok {
			return false
		}
		fmt.Print("Password: ")
		password, ok := c.readLine()
		if !ok {
			return false
		}

		_, err := c.gate.Authenticate(c.ctx, username, password)
		switch {
		case err == nil:
			return true
		case errors.Is(err, application.ErrMissingInput):
			fmt.Println("Please fill in all fields.")
		case errors.Is(err, application.ErrInvalidCredentials):
			fmt.Println("Invalid username or password.")
		default:
			fmt.Println("Login failed. Please try again.")
		}
	}
	return false
}

func (c *console) operator() string {
	return c.gate.CurrentSession(c.ctx).Username
}

func (c *console) printHelp() {
	fmt.Println(`Commands:
  show                                display the current price table
  set <room> <slot> <tier> <value>    stage one price field
  update <room>                       validate and save one room
  save                                save every changed room
  reset                               restore the default price grid
  export [path]                       write a snapshot file
  import <path>                       replace all prices from a snapshot file
  stats                               show persisted record details
  watch [duration]                    print broadcast updates as they arrive
  logout                              end the session
  quit                                leave the console`)
}

func (c *console) show() {
	table := c.prices.Table(c.ctx)
	for _, room := range application.RoomTypes() {
		prices := table[room]
		fmt.Printf("%s (%s)\n", room.DisplayName(), room)
		for _, slot := range application.TimeSlots() {
			fmt.Printf("  %-8s", slot)
			for _, tier := range application.RateTiers() {
				fmt.Printf("  %s=%d", tier, prices.Tier(slot, tier))
			}
			fmt.Println()
		}
	}
}

func (c *console) set(args []string) {
	if len(args) != 4 {
		fmt.Println("Usage: set <room> <slot> <tier> <value>")
		return
	}
	room := application.RoomType(args[0])
	if !room.Valid() {
		fmt.Printf("Unknown room %q.\n", args[0])
		return
	}
	c.fields.Set(forms.FieldID(room, application.TimeSlot(args[1]), application.RateTier(args[2])), args[3])
	c.autosave.Trigger()
}

func (c *console) update(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: update <room>")
		return
	}
	room := application.RoomType(args[0])
	_, err := c.prices.UpdateRoom(c.ctx, application.UpdateRoomParams{Operator: c.operator(), RoomType: room})
	if err != nil {
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			fmt.Println("Failed to update prices. Please check your values.")
			for field, message := range vErr.FieldErrors {
				fmt.Printf("  %s: %s\n", field, message)
			}
			return
		}
		fmt.Println("Failed to update prices. Your staged values are kept; please retry.")
		return
	}
	fmt.Printf("%s prices updated successfully!\n", room.DisplayName())
}

func (c *console) save() {
	changed, err := c.prices.SaveAll(c.ctx, application.SaveAllParams{Operator: c.operator()})
	if err != nil {
		fmt.Println("Failed to save all changes. Your staged values are kept; please retry.")
		return
	}
	if changed == 0 {
		fmt.Println("No changes detected.")
		return
	}
	fmt.Println("All room prices updated successfully!")
}

func (c *console) reset() {
	err := c.prices.ResetToDefaults(c.ctx, application.ResetParams{Operator: c.operator(), Confirm: c.confirm})
	if errors.Is(err, application.ErrConfirmationDeclined) {
		return
	}
	if err != nil {
		fmt.Println("Failed to reset prices.")
		return
	}
	c.fields.Populate(c.prices.Table(c.ctx))
	fmt.Println("All prices reset to default values!")
}

func (c *console) export(args []string) {
	data, filename, err := c.prices.ExportSnapshot(c.ctx, c.operator())
	if err != nil {
		fmt.Println("Failed to export data.")
		return
	}
	if len(args) > 0 {
		filename = args[0]
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		fmt.Println("Failed to export data.")
		return
	}
	fmt.Printf("Price data exported to %s\n", filename)
}

func (c *console) importFile(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: import <path>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println("Failed to read the snapshot file.")
		return
	}
	err = c.prices.ImportSnapshot(c.ctx, application.ImportParams{Operator: c.operator(), Data: data, Confirm: c.confirm})
	switch {
	case err == nil:
		c.fields.Populate(c.prices.Table(c.ctx))
		fmt.Println("Price data imported successfully!")
	case errors.Is(err, application.ErrConfirmationDeclined):
	case errors.Is(err, application.ErrSnapshotParse), errors.Is(err, application.ErrSnapshotShape):
		fmt.Println("Failed to import data. Please check the file format.")
	default:
		fmt.Println("Failed to import data.")
	}
}

func (c *console) stats() {
	stats, err := c.prices.Stats(c.ctx)
	if err != nil {
		fmt.Println("Error loading stats.")
		return
	}
	lastUpdated := "Never"
	if !stats.LastUpdated.IsZero() {
		lastUpdated = stats.LastUpdated.Local().Format(time.RFC1123)
	}
	fmt.Printf("Version:      %s\n", stats.Version)
	fmt.Printf("Last Updated: %s\n", lastUpdated)
	fmt.Printf("Data Size:    %.2f KB\n", float64(stats.SizeBytes)/1024)
	fmt.Printf("Rooms:        %d\n", stats.RoomCount)
}

func (c *console) watch(args []string) {
	duration := 30 * time.Second
	if len(args) > 0 {
		parsed, err := time.ParseDuration(args[0])
		if err != nil || parsed <= 0 {
			fmt.Println("Usage: watch [duration]")
			return
		}
		duration = parsed
	}

	watchCtx, cancel := context.WithTimeout(c.ctx, duration)
	defer cancel()

	updates, unsubscribe := c.broker.Subscribe(16)
	defer unsubscribe()

	watcher := broadcast.NewWatcher(c.priceStore, c.broker, time.Second, c.logger)
	go watcher.Run(watchCtx)

	fmt.Printf("Watching for price updates for %s...\n", duration)
	for {
		select {
		case <-watchCtx.Done():
			return
		case update := <-updates:
			fmt.Printf("[%s] %s updated by %s (source %s)\n",
				update.Timestamp.Local().Format(time.TimeOnly), update.RoomType, update.UpdatedBy, update.Source)
		}
	}
}

func (c *console) confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	line, ok := c.readLine()
	if !ok {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (c *console) readLine() (string, bool) {
	if !c.stdin.Scan() {
		return "", false
	}
	return c.stdin.Text(), true
}
