package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/jfmyers9/albumlog/internal/schedule"
	"github.com/spf13/cobra"
)

var (
	scheduleAt      string
	scheduleProject string
)

// scheduleCmd groups the daily run commands
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the export once a day",
	Long: `Install or remove a daily 'albumlog run'.

On macOS this is a launchd agent in ~/Library/LaunchAgents; on Linux a
systemd user service and timer in ~/.config/systemd/user.`,
}

var scheduleInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the daily run",
	Long: `Install the daily run and load it.

This command will:
  - Generate the launchd plist (macOS) or systemd units (Linux)
  - Install them for the current user
  - Load them so the first run happens at the next --at time

Scheduled runs log to ~/.local/share/albumlog/logs/albumlog.log; check
the outcome with 'albumlog status'.`,
	Args: cobra.NoArgs,
	RunE: runScheduleInstall,
}

var scheduleUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the daily run",
	Args:  cobra.NoArgs,
	RunE:  runScheduleUninstall,
}

var schedulePrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the service definition without installing it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := scheduleConfig()
		if err != nil {
			return err
		}
		files, err := scheduleFiles(cfg)
		if err != nil {
			return err
		}
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", f.path, f.content)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
	scheduleCmd.AddCommand(scheduleInstallCmd)
	scheduleCmd.AddCommand(scheduleUninstallCmd)
	scheduleCmd.AddCommand(schedulePrintCmd)

	for _, c := range []*cobra.Command{scheduleInstallCmd, schedulePrintCmd} {
		c.Flags().StringVar(&scheduleAt, "at", "07:00", "Time of day to run (HH:MM, local time)")
		c.Flags().StringVar(&scheduleProject, "project", "", "Project slug (default: configured project)")
	}
}

type unitFile struct {
	path    string
	content string
}

func scheduleConfig() (schedule.Config, error) {
	hour, minute, err := schedule.ParseTime(scheduleAt)
	if err != nil {
		return schedule.Config{}, err
	}

	// Get the path to the current executable
	binaryPath, err := os.Executable()
	if err != nil {
		return schedule.Config{}, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual binary path
	binaryPath, err = filepath.EvalSymlinks(binaryPath)
	if err != nil {
		return schedule.Config{}, fmt.Errorf("failed to resolve executable path: %w", err)
	}

	logPath, err := schedule.GetDefaultLogPath()
	if err != nil {
		return schedule.Config{}, fmt.Errorf("failed to get log path: %w", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return schedule.Config{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	return schedule.Config{
		BinaryPath:       binaryPath,
		Project:          scheduleProject,
		Hour:             hour,
		Minute:           minute,
		LogPath:          logPath,
		WorkingDirectory: home,
	}, nil
}

// scheduleFiles generates the service definition for this platform.
func scheduleFiles(cfg schedule.Config) ([]unitFile, error) {
	switch runtime.GOOS {
	case "darwin":
		path, err := schedule.GetPlistPath()
		if err != nil {
			return nil, err
		}
		plist, err := schedule.GeneratePlist(cfg)
		if err != nil {
			return nil, err
		}
		return []unitFile{{path, plist}}, nil
	case "linux":
		servicePath, timerPath, err := schedule.GetUnitPaths()
		if err != nil {
			return nil, err
		}
		service, err := schedule.GenerateService(cfg)
		if err != nil {
			return nil, err
		}
		timer, err := schedule.GenerateTimer(cfg)
		if err != nil {
			return nil, err
		}
		return []unitFile{{servicePath, service}, {timerPath, timer}}, nil
	default:
		return nil, fmt.Errorf("scheduling is not supported on %s; run 'albumlog run' from your own scheduler", runtime.GOOS)
	}
}

func runScheduleInstall(cmd *cobra.Command, args []string) error {
	cfg, err := scheduleConfig()
	if err != nil {
		return err
	}
	files, err := scheduleFiles(cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.LogPath, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Replace an existing installation
	if _, err := os.Stat(files[0].path); err == nil {
		fmt.Println("Daily run is already installed. Reinstalling...")
		if err := unloadSchedule(); err != nil {
			fmt.Printf("Warning: failed to unload existing schedule: %v\n", err)
		}
	}

	for _, f := range files {
		if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(f.path), err)
		}
		if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.path, err)
		}
		fmt.Printf("✓ Installed %s\n", f.path)
	}

	if err := loadSchedule(files[0].path); err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	fmt.Printf("✓ albumlog will run every day at %02d:%02d\n", cfg.Hour, cfg.Minute)
	fmt.Printf("✓ Logs will be written to %s\n", cfg.LogPath)
	fmt.Println("\nCheck the last run with:")
	fmt.Println("  albumlog status")
	fmt.Println("\nTo uninstall, run:")
	fmt.Println("  albumlog schedule uninstall")

	return nil
}

func runScheduleUninstall(cmd *cobra.Command, args []string) error {
	files, err := scheduleFiles(schedule.Config{})
	if err != nil {
		return err
	}

	if _, err := os.Stat(files[0].path); os.IsNotExist(err) {
		fmt.Println("Daily run is not installed")
		return nil
	}

	if err := unloadSchedule(); err != nil {
		fmt.Printf("Warning: failed to unload schedule: %v\n", err)
		fmt.Println("Continuing with file removal...")
	}

	for _, f := range files {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", f.path, err)
		}
		fmt.Printf("✓ Removed %s\n", f.path)
	}

	return nil
}

// loadSchedule activates the installed definition
func loadSchedule(path string) error {
	switch runtime.GOOS {
	case "darwin":
		domain, err := launchdDomain()
		if err != nil {
			return err
		}
		return runTool("launchctl", "bootstrap", domain, path)
	default:
		if err := runTool("systemctl", "--user", "daemon-reload"); err != nil {
			return err
		}
		return runTool("systemctl", "--user", "enable", "--now", schedule.TimerUnit())
	}
}

// unloadSchedule deactivates the installed definition
func unloadSchedule() error {
	switch runtime.GOOS {
	case "darwin":
		domain, err := launchdDomain()
		if err != nil {
			return err
		}
		return runTool("launchctl", "bootout", domain+"/"+schedule.Label)
	default:
		return runTool("systemctl", "--user", "disable", "--now", schedule.TimerUnit())
	}
}

func launchdDomain() (string, error) {
	// Get current user ID for launchctl bootstrap
	out, err := exec.Command("id", "-u").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get user ID: %w", err)
	}
	return "gui/" + strings.TrimSpace(string(out)), nil
}

func runTool(name string, args ...string) error {
	output, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(output)); msg != "" {
			return fmt.Errorf("%s %s failed: %s", name, args[0], msg)
		}
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}
