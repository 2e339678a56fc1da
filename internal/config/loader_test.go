package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/survival/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars(t)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should equal the built-in defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars(t)
			t.Setenv("SURVIVAL_TRAIN_PATH", "/data/train.csv")
			t.Setenv("SURVIVAL_TREE_COUNT", "250")
			t.Setenv("SURVIVAL_MAX_DEPTH", "8")
			t.Setenv("SURVIVAL_RANDOM_STATE", "42")
			t.Setenv("SURVIVAL_BOOTSTRAP", "false")
			t.Setenv("SURVIVAL_FEATURES", "Pclass, Sex")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TrainPath, convey.ShouldEqual, "/data/train.csv")
				convey.So(cfg.TreeCount, convey.ShouldEqual, 250)
				convey.So(cfg.MaxDepth, convey.ShouldEqual, 8)
				convey.So(cfg.RandomState, convey.ShouldEqual, int64(42))
				convey.So(cfg.Bootstrap, convey.ShouldBeFalse)
				convey.So(cfg.Features, convey.ShouldResemble, []string{"Pclass", "Sex"})
				convey.So(cfg.TestPath, convey.ShouldEqual, "titanic/test.csv")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			clearConfigEnvVars(t)
			path := createTempConfigFile(t, `
train_path: fixtures/train.csv
output_path: out/predictions.csv
tree_count: 50
features: [Pclass, Sex, Fare]
groups:
  - name: first_class_rate
    value: "1"
    label: First class survival rate
group_column: Pclass
`)
			t.Setenv("SURVIVAL_CONFIG", path)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TrainPath, convey.ShouldEqual, "fixtures/train.csv")
				convey.So(cfg.OutputPath, convey.ShouldEqual, "out/predictions.csv")
				convey.So(cfg.TreeCount, convey.ShouldEqual, 50)
				convey.So(cfg.Features, convey.ShouldResemble, []string{"Pclass", "Sex", "Fare"})
				convey.So(cfg.GroupColumn, convey.ShouldEqual, "Pclass")
				convey.So(cfg.Groups, convey.ShouldResemble, []config.Group{
					{Name: "first_class_rate", Value: "1", Label: "First class survival rate"},
				})
			})

			convey.Convey("Then fields absent from the file keep their defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MaxDepth, convey.ShouldEqual, 5)
				convey.So(cfg.IDColumn, convey.ShouldEqual, "PassengerId")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			clearConfigEnvVars(t)
			path := createTempConfigFile(t, "tree_count: 50\nmax_depth: 3\n")
			t.Setenv("SURVIVAL_CONFIG", path)
			t.Setenv("SURVIVAL_TREE_COUNT", "75")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.TreeCount, convey.ShouldEqual, 75)
				convey.So(cfg.MaxDepth, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			clearConfigEnvVars(t)
			t.Setenv("SURVIVAL_CONFIG", createTempConfigFile(t, `invalid: yaml: content: [`))

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			clearConfigEnvVars(t)
			t.Setenv("SURVIVAL_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			clearConfigEnvVars(t)
			t.Setenv("SURVIVAL_TREE_COUNT", "not_a_number")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range tree count", func() {
			clearConfigEnvVars(t)
			t.Setenv("SURVIVAL_TREE_COUNT", "0")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// clearConfigEnvVars unsets every SURVIVAL_ variable for the duration of the test.
func clearConfigEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SURVIVAL_CONFIG", "SURVIVAL_TRAIN_PATH", "SURVIVAL_TEST_PATH", "SURVIVAL_OUTPUT_PATH",
		"SURVIVAL_TREE_COUNT", "SURVIVAL_MAX_DEPTH", "SURVIVAL_RANDOM_STATE",
		"SURVIVAL_BOOTSTRAP", "SURVIVAL_FEATURES", "SURVIVAL_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}
