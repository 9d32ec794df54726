// Package initcmder provides the init command for scaffolding a linkdex
// configuration in the current working directory.
package initcmder

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/daylogco/linkdex/pkg/config"
	"github.com/daylogco/linkdex/pkg/enrich"
)

const (
	configFileName = "config.toml"
	vocabFileName  = "vocabulary.yaml"
)

type InitCommander struct {
	notesDir string
	force    bool
}

const initLongDesc string = `Initialize a linkdex configuration in the current working directory.

Writes a config.toml with all settings at their defaults and a
vocabulary.yaml containing the built-in tag vocabulary, ready to edit.
Existing files are left alone unless --force is given.

Examples:
  linkdex init
  linkdex init --notes ~/daylog`

const initShortDesc string = "Scaffold config.toml and vocabulary.yaml"

func NewInitCmd() *cobra.Command {
	cmder := &InitCommander{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	cmd.Flags().StringVar(&cmder.notesDir, "notes", "notes", "Daily notes directory to record in the config")
	cmd.Flags().BoolVar(&cmder.force, "force", false, "Overwrite existing files")

	return cmd
}

func (c *InitCommander) run() error {
	cfg := config.NewDefaultConfig()
	cfg.Notes.Dir = c.notesDir
	cfg.Notes.Vocabulary = vocabFileName

	if err := c.writeConfig(cfg); err != nil {
		return err
	}
	return c.writeVocabulary()
}

func (c *InitCommander) writeConfig(cfg *config.Config) error {
	if !c.force {
		if _, err := os.Stat(configFileName); err == nil {
			fmt.Printf("%s already exists, skipping (use --force to overwrite)\n", configFileName)
			return nil
		}
	}

	f, err := os.Create(configFileName)
	if err != nil {
		return fmt.Errorf("creating %s: %w", configFileName, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding %s: %w", configFileName, err)
	}

	fmt.Printf("Wrote %s\n", configFileName)
	return nil
}

func (c *InitCommander) writeVocabulary() error {
	if !c.force {
		if _, err := os.Stat(vocabFileName); err == nil {
			fmt.Printf("%s already exists, skipping (use --force to overwrite)\n", vocabFileName)
			return nil
		}
	}

	data, err := yaml.Marshal(enrich.DefaultVocabulary())
	if err != nil {
		return fmt.Errorf("encoding %s: %w", vocabFileName, err)
	}
	if err := os.WriteFile(vocabFileName, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", vocabFileName, err)
	}

	fmt.Printf("Wrote %s\n", vocabFileName)
	return nil
}
