package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Rorical/PocketDoc/internal/config"
	"github.com/Rorical/PocketDoc/internal/llm"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage remote model profiles",
	Long:  `Manage the profiles used to reach the remote model in online mode.`,
}

var listProfilesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Active Profile: %s\n\n", cfg.ActiveProfile)
		fmt.Fprintln(out, "Available Profiles:")
		for _, name := range cfg.ProfileNames() {
			profile := cfg.Profiles[name]
			marker := ""
			if name == cfg.ActiveProfile {
				marker = " (active)"
			}
			fmt.Fprintf(out, "  %s%s\n", name, marker)
			fmt.Fprintf(out, "    Model: %s\n", profile.Model)
			if profile.BaseURL != "" {
				fmt.Fprintf(out, "    Base URL: %s\n", profile.BaseURL)
			}
			fmt.Fprintf(out, "    API Key: %s\n\n", yesNo(profile.APIKey != ""))
		}
		return nil
	},
}

var showProfileCmd = &cobra.Command{
	Use:   "show [profile-name]",
	Short: "Show profile details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		profile, exists := cfg.Profiles[args[0]]
		if !exists {
			return fmt.Errorf("profile '%s' does not exist", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Profile: %s\n", args[0])
		fmt.Fprintf(out, "Model: %s\n", profile.Model)
		fmt.Fprintf(out, "Base URL: %s\n", profile.BaseURL)
		fmt.Fprintf(out, "Max Tokens: %d\n", profile.MaxTokens)
		key := "Not set"
		if profile.APIKey != "" {
			key = "Set (hidden)"
		}
		fmt.Fprintf(out, "API Key: %s\n", key)
		return nil
	},
}

var addProfileCmd = &cobra.Command{
	Use:   "add [profile-name]",
	Short: "Add a new profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			prompt := promptui.Prompt{Label: "Profile name", Validate: notBlank}
			if name, err = prompt.Run(); err != nil {
				return fmt.Errorf("prompt failed: %w", err)
			}
		}
		if _, exists := cfg.Profiles[name]; exists {
			return fmt.Errorf("profile '%s' already exists", name)
		}

		profile, err := promptProfile(config.Profile{
			BaseURL:   llm.DefaultRemoteBaseURL,
			Model:     llm.DefaultRemoteModel,
			MaxTokens: llm.DefaultRemoteMaxTokens,
		})
		if err != nil {
			return err
		}

		if cfg.Profiles == nil {
			cfg.Profiles = make(map[string]config.Profile)
		}
		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' added successfully!\n", name)
		return nil
	},
}

var editProfileCmd = &cobra.Command{
	Use:   "edit [profile-name]",
	Short: "Edit an existing profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := pickProfile(cfg, args, "Select profile to edit")
		if err != nil {
			return err
		}

		profile, err := promptProfile(cfg.Profiles[name])
		if err != nil {
			return err
		}

		cfg.Profiles[name] = profile
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' updated successfully!\n", name)
		return nil
	},
}

var deleteProfileCmd = &cobra.Command{
	Use:     "delete [profile-name]",
	Aliases: []string{"remove"},
	Short:   "Delete a profile",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := pickProfile(cfg, args, "Select profile to delete")
		if err != nil {
			return err
		}

		confirm := promptui.Prompt{
			Label:     fmt.Sprintf("Delete profile '%s'", name),
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Deletion cancelled")
			return nil
		}

		delete(cfg.Profiles, name)
		if cfg.ActiveProfile == name {
			cfg.ActiveProfile = ""
			if names := cfg.ProfileNames(); len(names) > 0 {
				cfg.ActiveProfile = names[0]
			}
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Profile '%s' deleted successfully!\n", name)
		return nil
	},
}

var switchProfileCmd = &cobra.Command{
	Use:   "switch [profile-name]",
	Short: "Switch to a different profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		name, err := pickProfile(cfg, args, "Select profile to switch to")
		if err != nil {
			return err
		}
		if err := cfg.Use(name); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile '%s'\n", name)
		return nil
	},
}

// pickProfile returns the named profile or asks the user to select one.
func pickProfile(cfg *config.Config, args []string, label string) (string, error) {
	if len(args) > 0 {
		if _, exists := cfg.Profiles[args[0]]; !exists {
			return "", fmt.Errorf("profile '%s' does not exist", args[0])
		}
		return args[0], nil
	}

	names := cfg.ProfileNames()
	if len(names) == 0 {
		return "", errors.New("no profiles available")
	}

	prompt := promptui.Select{Label: label, Items: names}
	_, name, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("selection failed: %w", err)
	}
	return name, nil
}

// promptProfile asks for every profile field, offering current as defaults.
func promptProfile(current config.Profile) (config.Profile, error) {
	profile := current
	var err error

	apiKey := promptui.Prompt{Label: "API Key", Default: current.APIKey, Mask: '*'}
	if profile.APIKey, err = apiKey.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	model := promptui.Prompt{Label: "Model", Default: current.Model, Validate: notBlank}
	if profile.Model, err = model.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	baseURL := promptui.Prompt{Label: "Base URL", Default: current.BaseURL}
	if profile.BaseURL, err = baseURL.Run(); err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}

	maxTokens := promptui.Prompt{
		Label:    "Max tokens",
		Default:  strconv.Itoa(current.MaxTokens),
		Validate: positiveInt,
	}
	raw, err := maxTokens.Run()
	if err != nil {
		return profile, fmt.Errorf("prompt failed: %w", err)
	}
	profile.MaxTokens, _ = strconv.Atoi(raw)

	return profile, nil
}

func notBlank(s string) error {
	if s == "" {
		return errors.New("value is required")
	}
	return nil
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func init() {
	profileCmd.AddCommand(listProfilesCmd)
	profileCmd.AddCommand(showProfileCmd)
	profileCmd.AddCommand(addProfileCmd)
	profileCmd.AddCommand(editProfileCmd)
	profileCmd.AddCommand(deleteProfileCmd)
	profileCmd.AddCommand(switchProfileCmd)
}
