package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luminalights/lumina/internal/config"
	"github.com/luminalights/lumina/internal/variety"
)

// --- plan ---

var planCmd = &cobra.Command{
	Use:   "plan [day ...]",
	Short: "Generate a deterministic multi-day lighting plan",
	Long: `Generate a deterministic multi-day lighting plan.

Runs entirely offline: no server, no model calls. The same inputs always
produce the same plan, and no two consecutive days repeat an effect.

Examples:
  lumina plan monday tuesday wednesday
  lumina plan --festive friday saturday sunday
  lumina plan --theme "255,0,0;0,0,255" monday tuesday`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := args
		if len(days) == 0 {
			days = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}
		}

		festive, _ := cmd.Flags().GetBool("festive")
		themeStr, _ := cmd.Flags().GetString("theme")
		brightness, _ := cmd.Flags().GetInt("brightness")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg := variety.Config{Festive: festive}
		if themeStr != "" {
			theme, err := parseTheme(themeStr)
			if err != nil {
				return err
			}
			cfg.ThemeColors = theme
		}
		if brightness >= 0 {
			if brightness > 255 {
				brightness = 255
			}
			cfg.BrightnessOverride = &brightness
		}

		entries := variety.Generate(days, cfg)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		for _, e := range entries {
			fmt.Printf("%s\n", colorize(colorBold, e.DayLabel))
			fmt.Printf("  effect %d  speed %d  intensity %d  brightness %d\n",
				e.EffectID, e.Speed, e.Intensity, e.Brightness)
			fmt.Printf("  colors %s\n", formatColors(e.Colors))
		}
		return nil
	},
}

func init() {
	planCmd.Flags().Bool("festive", false, "bias toward celebratory effects")
	planCmd.Flags().String("theme", "", `theme palette as "r,g,b;r,g,b"`)
	planCmd.Flags().Int("brightness", -1, "fixed brightness 0-255 instead of per-day values")
	planCmd.Flags().Bool("json", false, "emit the plan as JSON")
}

// parseTheme parses "255,0,0;0,0,255" into RGB triples.
func parseTheme(s string) ([][]int, error) {
	var theme [][]int
	for _, part := range strings.Split(s, ";") {
		channels := strings.Split(strings.TrimSpace(part), ",")
		if len(channels) != 3 {
			return nil, fmt.Errorf("theme color %q is not an r,g,b triple", part)
		}
		c := make([]int, 3)
		for i, ch := range channels {
			v, err := strconv.Atoi(strings.TrimSpace(ch))
			if err != nil || v < 0 || v > 255 {
				return nil, fmt.Errorf("theme color %q has an invalid channel %q", part, ch)
			}
			c[i] = v
		}
		theme = append(theme, c)
	}
	return theme, nil
}

func formatColors(colors [][]int) string {
	parts := make([]string, 0, len(colors))
	for _, c := range colors {
		if len(c) < 3 {
			continue
		}
		parts = append(parts, fmt.Sprintf("[%d,%d,%d]", c[0], c[1], c[2]))
	}
	return strings.Join(parts, " ")
}

// --- favorites ---

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "Manage saved lighting presets",
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/v1/favorites", user)
		if err != nil {
			return err
		}

		var favorites []struct {
			Name      string          `json:"name"`
			Payload   json.RawMessage `json:"payload"`
			UpdatedAt string          `json:"updatedAt"`
		}
		if err := decodeJSON(resp, &favorites); err != nil {
			return err
		}

		if len(favorites) == 0 {
			fmt.Println("No favorites saved.")
			return nil
		}

		for _, f := range favorites {
			fmt.Printf("%s  %s\n", colorize(colorCyan, f.Name), f.UpdatedAt)
			payload := string(f.Payload)
			if len(payload) > 120 {
				payload = payload[:120] + "..."
			}
			fmt.Printf("  %s\n", payload)
		}
		return nil
	},
}

var favoritesSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save a preset from a JSON file or inline JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		user, _ := cmd.Flags().GetString("user")
		file, _ := cmd.Flags().GetString("file")
		inline, _ := cmd.Flags().GetString("json")

		var payload []byte
		switch {
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			payload = data
		case inline != "":
			payload = []byte(inline)
		default:
			return fmt.Errorf("one of --file or --json is required")
		}
		if !json.Valid(payload) {
			return fmt.Errorf("payload is not valid JSON")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.put(cmd.Context(), "/v1/favorites/"+name, user, payload)
		if err != nil {
			return err
		}

		var result map[string]string
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printSuccess("Saved favorite %q", result["name"])
		return nil
	},
}

var favoritesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		user, _ := cmd.Flags().GetString("user")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.delete(cmd.Context(), "/v1/favorites/"+name, user)
		if err != nil {
			return err
		}
		resp.Body.Close()

		if resp.StatusCode == 404 {
			printWarning("No favorite named %q", name)
			return nil
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("server returned %d", resp.StatusCode)
		}

		printSuccess("Deleted favorite %q", name)
		return nil
	},
}

func init() {
	favoritesCmd.PersistentFlags().String("user", "local", "user the presets belong to")
	favoritesSaveCmd.Flags().String("file", "", "JSON file with the preset body")
	favoritesSaveCmd.Flags().String("json", "", "inline JSON preset body")

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesSaveCmd)
	favoritesCmd.AddCommand(favoritesDeleteCmd)
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
