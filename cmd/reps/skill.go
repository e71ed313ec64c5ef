// ABOUTME: Install the reps agent skill.
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/reps.

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

func newInstallSkillCmd() *cobra.Command {
	var (
		skipConfirm bool
		dir         string
	)

	cmd := &cobra.Command{
		Use:   "install-skill",
		Short: "Install the reps agent skill",
		Long: `Install the reps skill definition so coding agents can drive the CLI.

The skill is written to ~/.claude/skills/reps/SKILL.md unless --dir is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to get home directory: %w", err)
				}
				dir = filepath.Join(home, ".claude", "skills", "reps")
			}
			return installSkill(cmd.InOrStdin(), out(cmd), dir, skipConfirm)
		},
	}
	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	cmd.Flags().StringVar(&dir, "dir", "", "destination directory")
	return cmd
}

func installSkill(in io.Reader, w io.Writer, skillDir string, skipConfirm bool) error {
	skillPath := filepath.Join(skillDir, "SKILL.md")

	fmt.Fprintln(w, "This will install the reps skill, enabling an agent to:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  • Create AMRAP, For Time and EMOM workouts")
	fmt.Fprintln(w, "  • Add rounds and activities")
	fmt.Fprintln(w, "  • Record and reset rep counts")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Destination:")
	fmt.Fprintf(w, "  %s\n", skillPath)
	fmt.Fprintln(w)

	if _, err := os.Stat(skillPath); err == nil {
		fmt.Fprintln(w, "Note: A skill file already exists and will be overwritten.")
		fmt.Fprintln(w)
	}

	if !skipConfirm {
		fmt.Fprint(w, "Install the reps skill? [y/N] ")
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(w, "Installation canceled.")
			return nil
		}
		fmt.Fprintln(w)
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	success.Fprintln(w, "✓ Installed reps skill successfully!")
	return nil
}
