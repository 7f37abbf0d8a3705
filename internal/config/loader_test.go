package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/omgplay/arcade/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "OMG")
				convey.So(cfg.LeaderboardCapacity, convey.ShouldEqual, 50)
				convey.So(cfg.TokenTTL, convey.ShouldEqual, 24*time.Hour)
				convey.So(cfg.RequireAuth, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("OMG_ADDR", ":9000")
			_ = os.Setenv("OMG_MONGO_DATABASE", "arcade_test")
			_ = os.Setenv("OMG_LEADERBOARD_CAPACITY", "10")
			_ = os.Setenv("OMG_REQUIRE_AUTH", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "arcade_test")
				convey.So(cfg.LeaderboardCapacity, convey.ShouldEqual, 10)
				convey.So(cfg.RequireAuth, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "addr: \":7070\"\nlog_level: debug\nmongo_database: arcade_file\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("OMG_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")
				convey.So(cfg.MongoDatabase, convey.ShouldEqual, "arcade_file")
			})
		})

		convey.Convey("When env overrides both defaults and file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			convey.So(os.WriteFile(path, []byte("addr: \":7070\"\n"), 0o600), convey.ShouldBeNil)
			_ = os.Setenv("OMG_CONFIG", path)
			_ = os.Setenv("OMG_ADDR", ":6060")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When validation fails", func() {
			clearConfigEnvVars()
			_ = os.Setenv("OMG_LEADERBOARD_CAPACITY", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, key := range []string{
		"OMG_CONFIG",
		"OMG_ADDR",
		"OMG_LOG_LEVEL",
		"OMG_MONGO_URI",
		"OMG_MONGO_DATABASE",
		"OMG_LEADERBOARD_CAPACITY",
		"OMG_TOKEN_SECRET",
		"OMG_REQUIRE_AUTH",
	} {
		_ = os.Unsetenv(key)
	}
}
