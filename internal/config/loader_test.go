package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/campuslink/matchengine/internal/config"
	"github.com/campuslink/matchengine/internal/domain/signals"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"MATCH_CONFIG",
		"MATCH_ADDR",
		"MATCH_LOG_LEVEL",
		"MATCH_WORKER_COUNT",
		"MATCH_QUEUE_CAPACITY",
		"MATCH_SCORE_TTL",
		"MATCH_SEED_DEMO",
		"MATCH_POSTGRES_DSN",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.ScoreTTL, convey.ShouldEqual, 24*time.Hour)
				convey.So(cfg.Weights.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("MATCH_ADDR", ":8080")
			_ = os.Setenv("MATCH_WORKER_COUNT", "16")
			_ = os.Setenv("MATCH_QUEUE_CAPACITY", "5000")
			_ = os.Setenv("MATCH_SCORE_TTL", "1h")
			_ = os.Setenv("MATCH_SEED_DEMO", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 16)
				convey.So(cfg.QueueCapacity, convey.ShouldEqual, 5000)
				convey.So(cfg.ScoreTTL, convey.ShouldEqual, time.Hour)
				convey.So(cfg.SeedDemo, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := `
addr: ":7070"
log_level: debug
worker_count: 4
weights:
  version: custom
  skills_alignment: 0.5
  temporal_fit: 0.1
  sustainability: 0.1
  growth_trajectory: 0.1
  trust_reliability: 0.1
  network_affinity: 0.1
`
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("MATCH_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
				convey.So(cfg.Weights.Version, convey.ShouldEqual, "custom")
				convey.So(cfg.Weights.SkillsAlignment, convey.ShouldEqual, 0.5)
			})
		})

		convey.Convey("When the weight profile does not sum to 1", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := `
weights:
  version: broken
  skills_alignment: 0.9
  temporal_fit: 0.25
  sustainability: 0.15
  growth_trajectory: 0.10
  trust_reliability: 0.10
  network_affinity: 0.10
`
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("MATCH_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, signals.ErrInvalidWeights.Error())
			})
		})

		convey.Convey("When the listen address is cleared", func() {
			clearConfigEnvVars()
			_ = os.Setenv("MATCH_ADDR", "")

			// An empty env var is still an override in koanf; Load must
			// reject the resulting empty address.
			cfg, err := config.Load(ctx)
			defer clearConfigEnvVars()

			convey.Convey("Then loading should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the config file is missing", func() {
			clearConfigEnvVars()
			_ = os.Setenv("MATCH_CONFIG", "/nonexistent/config.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading should fail", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
