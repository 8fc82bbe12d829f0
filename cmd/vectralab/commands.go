package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vectralab/adapters/excel"
	"vectralab/app"
	"vectralab/domain/gnomon"
	"vectralab/internal"
	"vectralab/internal/config"
	"vectralab/internal/errors"
	"vectralab/ports"
)

// cli carries state shared by every subcommand once flags are parsed
type cli struct {
	kind     string
	alpha    float64
	envFile  string
	logLevel string

	cfg     *config.Config
	logger  *internal.Logger
	reader  ports.ChannelReader
	service *app.AnalysisService
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "vectralab",
		Short: "Estimate rotation periods from gnomon shadow-angle recordings",
		Long: `vectralab fits angular displacement against time for solar (linear) and
sidereal (radial) gnomon channels, converts the fitted angular velocity into a
rotation period and tests it against 24 h or 23 h 56 m.

Channel files are CSV or XLSX with a "Time (s)" column and either an "Angle" column
or an "Angle x"/"Angle y" pair. Relative paths that do not exist are looked up in
VECTRALAB_DATA_DIR. Every command prints JSON on stdout.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.WithCode(errors.CodeValidationError, err)
	})

	rootCmd.PersistentFlags().StringVar(&c.kind, "kind", string(ports.KindAuto), "Channel kind: linear|radial|auto")
	rootCmd.PersistentFlags().Float64Var(&c.alpha, "alpha", 0, "Significance level (default from VECTRALAB_ALPHA, else 0.05)")
	rootCmd.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "Optional dotenv file")
	rootCmd.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "ERROR|WARN|INFO|DEBUG|TRACE (default from LOG_LEVEL)")

	rootCmd.AddCommand(
		c.newDescribeCmd(),
		c.newFitCmd(),
		c.newPeriodCmd(),
		c.newChauvenetCmd(),
		c.newChiSquareCmd(),
		c.newTTestCmd(),
		c.newReportCmd(),
	)
	return rootCmd
}

func (c *cli) setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(c.envFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(errors.IOError(c.envFile, err), "loading env file")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Analysis.Alpha = c.alpha
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	c.cfg = cfg

	c.logger = internal.NewLoggerTo(internal.ParseLogLevel(cfg.LogLevel), cmd.ErrOrStderr())
	if c.logLevel != "" {
		c.logger.SetLevel(internal.ParseLogLevel(c.logLevel))
	}

	excelCfg := excel.DefaultExcelConfig()
	excelCfg.Sheet = cfg.Data.Sheet
	c.reader = excel.NewChannelReader(excelCfg, c.logger)
	c.service = app.NewAnalysisService(c.reader, app.OptionsFromConfig(cfg), c.logger)
	return nil
}

func (c *cli) channelKind() (gnomon.ChannelKind, error) {
	kind := gnomon.ChannelKind(c.kind)
	if kind == ports.KindAuto || kind.Valid() {
		return kind, nil
	}
	return "", errors.ValidationError(fmt.Sprintf("--kind must be linear, radial or auto, got %q", c.kind))
}

// resolvePath falls back to the data directory for relative paths missing from
// the working directory.
func (c *cli) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	candidate := filepath.Join(c.cfg.Data.Dir, path)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return path
}

func (c *cli) load(cmd *cobra.Command, path string) (gnomon.Channel, error) {
	kind, err := c.channelKind()
	if err != nil {
		return gnomon.Channel{}, err
	}
	return c.service.Load(cmd.Context(), c.resolvePath(path), kind)
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE",
		Short: "Summary statistics of a channel's raw angle columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			summary, err := c.service.Describe(ch)
			if err != nil {
				return errors.Wrapf(err, "describe %s", ch.Name)
			}
			return writeJSON(cmd, map[string]interface{}{
				"channel": ch.Name,
				"kind":    ch.Kind,
				"summary": summary,
			})
		},
	}
}

func (c *cli) newFitCmd() *cobra.Command {
	var uncertaintyDeg float64

	cmd := &cobra.Command{
		Use:   "fit FILE",
		Short: "Fit displacement against time and derive the rotation period",
		Long: `Fit displacement = a0 + a1*t by least squares and convert |a1| into a period.

With --uncertainty-deg every reading is weighted by that angular uncertainty and
the reported errors use it as an absolute sigma.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if uncertaintyDeg < 0 {
				return errors.ValidationError("--uncertainty-deg must not be negative")
			}
			c.withUncertainty(uncertaintyDeg)

			ch, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := c.service.Fit(ch)
			if err != nil {
				return errors.Wrapf(err, "fit %s", ch.Name)
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().Float64Var(&uncertaintyDeg, "uncertainty-deg", 0, "Per-reading angle uncertainty in degrees (0 fits unweighted)")
	return cmd
}

func (c *cli) newPeriodCmd() *cobra.Command {
	var expectedHours float64
	var uncertaintyDeg float64

	cmd := &cobra.Command{
		Use:   "period FILE",
		Short: "Test the fitted period against the solar or sidereal day",
		Long: `Fit the channel, derive its period and test it against the expected period
with a t-distribution of one degree of freedom. The expected period defaults to
24 h for linear channels and 23 h 56 m for radial channels.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if expectedHours < 0 {
				return errors.ValidationError("--expected-hours must not be negative")
			}
			c.withUncertainty(uncertaintyDeg)

			ch, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := c.service.PeriodTest(ch, expectedHours)
			if err != nil {
				return errors.Wrapf(err, "period test %s", ch.Name)
			}
			c.logger.Info("%s", out)
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().Float64Var(&expectedHours, "expected-hours", 0, "Expected period in hours (default by channel kind)")
	cmd.Flags().Float64Var(&uncertaintyDeg, "uncertainty-deg", 0, "Per-reading angle uncertainty in degrees")
	return cmd
}

func (c *cli) newChauvenetCmd() *cobra.Command {
	var threshold float64

	cmd := &cobra.Command{
		Use:   "chauvenet FILE",
		Short: "Score every displacement with Chauvenet's criterion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			out, err := c.service.Outliers(ch, threshold)
			if err != nil {
				return errors.Wrapf(err, "chauvenet %s", ch.Name)
			}
			c.logger.Info("%s: %d outlier candidates below %.3g", ch.Name, len(out.Candidates), out.Threshold)
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Criterion below which a reading is a candidate (default from VECTRALAB_CHAUVENET_THRESHOLD, else 0.5)")
	return cmd
}

func (c *cli) newChiSquareCmd() *cobra.Command {
	var binWidth float64

	cmd := &cobra.Command{
		Use:   "chisquare FILE_A FILE_B",
		Short: "Compare two channels' binned displacement with a chi-square test",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("bin-width") && binWidth <= 0 {
				return errors.ValidationError("--bin-width must be positive")
			}
			a, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			b, err := c.load(cmd, args[1])
			if err != nil {
				return err
			}
			res, err := c.service.Compare(a, b, binWidth)
			if err != nil {
				return errors.Wrapf(err, "chisquare %s vs %s", a.Name, b.Name)
			}
			return writeJSON(cmd, app.ChannelComparison{A: a.Name, B: b.Name, Result: &res})
		},
	}

	cmd.Flags().Float64Var(&binWidth, "bin-width", 0, "Bin width in seconds (default from VECTRALAB_BIN_WIDTH, else 300)")
	return cmd
}

func (c *cli) newTTestCmd() *cobra.Command {
	var mean float64

	cmd := &cobra.Command{
		Use:   "ttest FILE --mean M",
		Short: "One-sample t-test of a channel's displacement against a reference mean",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := c.load(cmd, args[0])
			if err != nil {
				return err
			}
			res, err := c.service.MeanTest(ch, mean)
			if err != nil {
				return errors.Wrapf(err, "ttest %s", ch.Name)
			}
			return writeJSON(cmd, map[string]interface{}{
				"channel":        ch.Name,
				"reference_mean": mean,
				"test":           res,
			})
		},
	}

	cmd.Flags().Float64Var(&mean, "mean", 0, "Reference mean displacement in radians")
	_ = cmd.MarkFlagRequired("mean")
	return cmd
}

func (c *cli) newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report FILE...",
		Short: "Analyze several channels concurrently and compare channels of the same kind",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := c.channelKind()
			if err != nil {
				return err
			}
			paths := make([]string, len(args))
			for i, p := range args {
				paths[i] = c.resolvePath(p)
			}
			report, err := c.service.AnalyzeFiles(cmd.Context(), paths, kind)
			if err != nil {
				return err
			}
			return writeJSON(cmd, report)
		},
	}
}

// withUncertainty rebuilds the service with a per-reading sigma.
func (c *cli) withUncertainty(deg float64) {
	if deg == 0 {
		return
	}
	opts := c.service.Options()
	opts.UncertaintyDeg = deg
	c.service = app.NewAnalysisService(c.reader, opts, c.logger)
}
