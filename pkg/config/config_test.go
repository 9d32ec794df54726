package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/daylogco/linkdex/pkg/config"
)

var _ = Describe("Config", func() {
	Describe("NewDefaultConfig", func() {
		It("populates sane defaults", func() {
			cfg := config.NewDefaultConfig()

			Expect(cfg.Storage.SQLitePath).To(Equal("links.db"))
			Expect(cfg.Fetch.RatePerSecond).To(Equal(1.0))
			Expect(cfg.Fetch.TimeoutSeconds).To(Equal(30))
			Expect(cfg.Pipeline.Workers).To(Equal(4))
			Expect(cfg.Pipeline.BatchSize).To(Equal(50))
			Expect(cfg.Pipeline.RetryFailed).To(BeTrue())
			Expect(cfg.Pipeline.SkipUnchanged).To(BeTrue())
			Expect(cfg.Events.Provider).To(Equal("nop"))
		})
	})

	Describe("Load", func() {
		It("returns defaults when no config file exists", func() {
			cfg, err := config.Load(filepath.Join(GinkgoT().TempDir(), "missing.toml"))
			Expect(err).To(HaveOccurred())
			Expect(cfg).To(BeNil())
		})

		It("reads a TOML config file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "config.toml")
			data := `
[notes]
dir = "/notes/daily"

[fetch]
rate_per_second = 2.5
timeout_seconds = 10

[pipeline]
workers = 8
retry_failed = false
`
			Expect(os.WriteFile(path, []byte(data), 0o644)).To(Succeed())

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Notes.Dir).To(Equal("/notes/daily"))
			Expect(cfg.Fetch.RatePerSecond).To(Equal(2.5))
			Expect(cfg.Fetch.TimeoutSeconds).To(Equal(10))
			Expect(cfg.Pipeline.Workers).To(Equal(8))
			Expect(cfg.Pipeline.RetryFailed).To(BeFalse())

			// Untouched sections keep their defaults.
			Expect(cfg.Storage.SQLitePath).To(Equal("links.db"))
			Expect(cfg.Pipeline.BatchSize).To(Equal(50))
		})

		It("lets environment variables override the file", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, "config.toml")
			Expect(os.WriteFile(path, []byte("[storage]\nsqlite_path = \"file.db\"\n"), 0o644)).To(Succeed())

			GinkgoT().Setenv("LINKDEX_STORAGE_SQLITE_PATH", "env.db")

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Storage.SQLitePath).To(Equal("env.db"))
		})
	})
})
