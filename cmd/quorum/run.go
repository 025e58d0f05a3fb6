package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/forgelight/quorum/internal/capability"
	"github.com/forgelight/quorum/internal/config"
	"github.com/forgelight/quorum/internal/coordinator"
	"github.com/forgelight/quorum/internal/store"
	"github.com/forgelight/quorum/internal/team"
	"github.com/forgelight/quorum/pkg/models"
)

var (
	runManifest     string
	runTask         string
	runRequirements string
	runAgents       []string
	runStorePath    string
	runProvider     string
	runEnhancedLog  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one full cycle for a task or manifest",
	Long: `Run drives a task through all four phases and prints the final
report. The task comes from --task or from a manifest file, whose
dependency graph then gates each phase transition.

Agents are given as name=tag,tag pairs:

  quorum run --task "design a session cache" \
    --agent ada=architecture,planning \
    --agent grace=implementation,coding \
    --agent edsger=testing,review`,
	RunE: runCycle,
}

func init() {
	runCmd.Flags().StringVarP(&runManifest, "manifest", "m", "", "Manifest file gating phase transitions")
	runCmd.Flags().StringVarP(&runTask, "task", "t", "", "Task description")
	runCmd.Flags().StringVar(&runRequirements, "requirements", "", "Task requirements")
	runCmd.Flags().StringArrayVarP(&runAgents, "agent", "a", nil, "Agent as name=tag,tag (repeatable)")
	runCmd.Flags().StringVar(&runStorePath, "store", "", "SQLite store path (default: user data directory)")
	runCmd.Flags().StringVar(&runProvider, "provider", "", "Capability provider: rules or anthropic")
	runCmd.Flags().BoolVar(&runEnhancedLog, "enhanced-log", false, "Enable enhanced phase logging")
}

func runCycle(cmd *cobra.Command, args []string) error {
	if runManifest == "" && runTask == "" {
		return fmt.Errorf("either --task or --manifest is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	tm, err := buildTeam(cfg)
	if err != nil {
		return err
	}

	storePath := runStorePath
	if storePath == "" {
		storePath = cfg.Store.Path
	}
	if storePath == "" {
		storePath = store.DefaultDBPath()
	}
	db, err := store.OpenSQLite(storePath)
	if err != nil {
		return err
	}
	defer db.Close()

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	logger := coordinator.NopLogger()
	if runEnhancedLog || cfg.Logging.Enhanced {
		logPath := cfg.Logging.Path
		if logPath == "" {
			logPath = defaultLogPath(storePath)
		}
		logger, err = coordinator.NewDebugLogger(logPath)
		if err != nil {
			return err
		}
		defer logger.Close()
	}

	coord := coordinator.New(tm, db, provider, coordinator.WithLogger(logger))

	if runManifest != "" {
		err = coord.StartCycleFromManifestFile(ctx, runManifest)
	} else {
		err = coord.StartCycle(ctx, &models.Task{
			Description:  runTask,
			Requirements: runRequirements,
		})
	}
	if err != nil {
		return err
	}
	printPhaseDone(coord, models.PhaseExpand)

	for _, phase := range models.PhaseOrder[1:] {
		if err := coord.ProgressToPhase(ctx, phase); err != nil {
			printStatus("✗", fmt.Sprintf("phase %s failed: %v", phase, err), color.FgRed)
			return err
		}
		printPhaseDone(coord, phase)
	}

	return printReport(ctx, db, coord.CycleID())
}

func printPhaseDone(coord *coordinator.Coordinator, phase models.Phase) {
	primus := "(none)"
	if p := coord.Team().Primus(); p != nil {
		primus = p.Name()
	}
	printStatus("✓", fmt.Sprintf("%s completed (primus: %s)", phase, primus), color.FgGreen)
}

func buildTeam(cfg *config.Config) (*team.Team, error) {
	tm := team.New(cfg.Team.Name)
	specs := runAgents
	if len(specs) == 0 {
		// A default trio so single-task runs work out of the box.
		specs = []string{
			"planner=architecture,planning,coordination",
			"builder=implementation,coding,refactoring",
			"reviewer=testing,review,quality",
		}
	}

	for _, spec := range specs {
		name, tags, ok := strings.Cut(spec, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --agent %q, want name=tag,tag", spec)
		}
		agent := configuredAgent{name: name}
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				agent.tags = append(agent.tags, tag)
			}
		}
		if err := tm.AddAgent(agent); err != nil {
			return nil, err
		}
	}
	return tm, nil
}

// configuredAgent is an agent defined entirely by CLI flags or
// config; its opinions come from capability providers.
type configuredAgent struct {
	name string
	tags []string
}

func (a configuredAgent) Name() string        { return a.name }
func (a configuredAgent) Expertise() []string { return a.tags }

func buildProvider(cfg *config.Config) (capability.Provider, error) {
	kind := runProvider
	if kind == "" {
		kind = cfg.Provider.Kind
	}
	switch kind {
	case "", "rules":
		return capability.NewRuleBased(), nil
	case "anthropic":
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return nil, err
		}
		return capability.NewAnthropic(capability.AnthropicConfig{
			Model:  anthropic.Model(cfg.Anthropic.Model),
			APIKey: key,
		})
	}
	return nil, fmt.Errorf("unknown provider %q (want rules or anthropic)", kind)
}

// defaultLogPath places the debug log next to the store database.
func defaultLogPath(storePath string) string {
	return filepath.Join(filepath.Dir(storePath), "quorum-debug.log")
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
