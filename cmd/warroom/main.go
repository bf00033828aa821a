package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/stlalpha/warroom/internal/access"
	"github.com/stlalpha/warroom/internal/asset"
	"github.com/stlalpha/warroom/internal/block"
	"github.com/stlalpha/warroom/internal/config"
	"github.com/stlalpha/warroom/internal/group"
	"github.com/stlalpha/warroom/internal/identity"
	"github.com/stlalpha/warroom/internal/logging"
	"github.com/stlalpha/warroom/internal/message"
	"github.com/stlalpha/warroom/internal/scheduler"
)

var (
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("45"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
)

const banner = `
██     ██  █████  ██████  ██████   ██████   ██████  ███    ███
██     ██ ██   ██ ██   ██ ██   ██ ██    ██ ██    ██ ████  ████
██  █  ██ ███████ ██████  ██████  ██    ██ ██    ██ ██ ████ ██
██ ███ ██ ██   ██ ██   ██ ██   ██ ██    ██ ██    ██ ██  ██  ██
 ███ ███  ██   ██ ██   ██ ██   ██  ██████   ██████  ██      ██
`

// terminal bundles every service the menus operate on.
type terminal struct {
	prompt    *prompter
	operators *identity.Manager
	groups    *group.Manager
	assets    *asset.Registry
	blocks    *block.Service
	messages  *message.Service
}

func main() {
	configPath := flag.String("config", "configs", "path to the configuration directory")
	flag.Parse()

	log.SetOutput(os.Stderr)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	var cfgMu sync.RWMutex
	logging.DebugEnabled = cfg.Debug

	if err := os.MkdirAll(cfg.DataPath, 0750); err != nil {
		log.Fatalf("ERROR: Failed to create data directory %s: %v", cfg.DataPath, err)
	}

	operators, err := identity.NewManager(cfg.DataPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	groups, err := group.NewManager(cfg.DataPath, operators)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	assets, err := asset.NewRegistry(cfg.DataPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	eval := access.NewEvaluator(operators, groups)
	blocks, err := block.NewService(cfg.DataPath, eval)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	messages, err := message.NewService(cfg.DataPath, operators)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	backups := scheduler.NewBackupScheduler(cfg.Backup, cfg.DataPath)
	if err := backups.Start(); err != nil {
		log.Printf("ERROR: %v", err)
	}
	defer backups.Stop()

	watcher, err := NewConfigWatcher(*configPath, &cfg, &cfgMu)
	if err != nil {
		log.Printf("WARN: Config hot-reload unavailable: %v", err)
	} else {
		defer watcher.Stop()
	}

	t := &terminal{
		prompt:    newPrompter(bufio.NewReader(os.Stdin), os.Stdout),
		operators: operators,
		groups:    groups,
		assets:    assets,
		blocks:    blocks,
		messages:  messages,
	}

	fmt.Println(bannerStyle.Render(banner))
	fmt.Println(headerStyle.Render("        AEROSPACE OPERATIONS MANAGEMENT SYSTEM"))
	t.mainLoop()
}

func (t *terminal) mainLoop() {
	for {
		fmt.Println(headerStyle.Render("\n                  :: MAIN ACCESS TERMINAL ::"))
		fmt.Println(infoStyle.Render(
			"  [1] Create New Operator\n" +
				"  [2] Initiate Login\n" +
				"  [3] List All Operators (Control Center)\n" +
				"  [0] Shut Down System"))

		option, ok := t.prompt.intValue("Enter your option > ")
		if !ok {
			continue
		}

		switch option {
		case 1:
			t.createOperator()
		case 2:
			t.login()
		case 3:
			t.listOperators()
		case 0:
			fmt.Println(infoStyle.Render(">>> Shutting down terminal..."))
			return
		default:
			fmt.Println(errorStyle.Render(">>> Invalid command. Please try again."))
		}
	}
}

func (t *terminal) createOperator() {
	fmt.Println(headerStyle.Render("\n--- Create New Operator ---"))
	username := t.prompt.line(fmt.Sprintf("Username (max. %d characters): ", identity.MaxUsername-1))

	password, ok := t.prompt.key("Numeric password: ")
	if !ok {
		return
	}

	fmt.Println("Choose your RANK:")
	for i := 0; i < identity.NumRanks; i++ {
		fmt.Printf("  %d - %s\n", i+1, identity.Rank(i))
	}
	rankOption, ok := t.prompt.intValue("Option > ")
	if !ok {
		return
	}

	unit := t.prompt.line(fmt.Sprintf("Unit/Squadron name (max. %d characters): ", identity.MaxUnit-1))

	op, err := t.operators.Register(username, password, rankOption, unit)
	if err != nil {
		t.fail(err)
		return
	}
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Operator '%s' (%s, %s) created successfully!",
		op.Username, op.Rank, op.Unit)))
}

func (t *terminal) login() {
	fmt.Println(headerStyle.Render("\n--- Initiate Login ---"))
	username := t.prompt.line("Username: ")
	password, ok := t.prompt.key("Password: ")
	if !ok {
		return
	}

	op, err := t.operators.Authenticate(username, password)
	if err != nil {
		t.fail(err)
		return
	}

	sessionID := uuid.New().String()
	log.Printf("INFO: Session %s opened for %q", sessionID, op.Username)
	fmt.Println(okStyle.Render(fmt.Sprintf(">>> Access authorized! Welcome, Operator %s.", op.Username)))

	t.operationsLoop(op)
	log.Printf("INFO: Session %s closed for %q", sessionID, op.Username)
}

func (t *terminal) listOperators() {
	ops, err := t.operators.All()
	if err != nil {
		t.fail(err)
		return
	}

	fmt.Println(headerStyle.Render("\n=== List of Registered Operators ==="))
	if len(ops) == 0 {
		fmt.Println(infoStyle.Render("No operators registered yet."))
		return
	}
	fmt.Printf("%-20s %-15s %-20s\n", "Username", "Rank", "Unit")
	for _, op := range ops {
		fmt.Printf("%-20s %-15s %-20s\n", op.Username, op.Rank, op.Unit)
	}
	fmt.Printf("Total operators: %d\n", len(ops))
}

// fail renders a core error for the operator.
func (t *terminal) fail(err error) {
	fmt.Println(errorStyle.Render(">>> " + err.Error()))
}
