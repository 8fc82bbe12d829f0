package app

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"vectralab/domain/core"
	"vectralab/domain/gnomon"
	"vectralab/internal"
	"vectralab/internal/analysis/chisquare"
	"vectralab/internal/analysis/describe"
	"vectralab/internal/analysis/hypothesis"
	"vectralab/internal/analysis/outlier"
	"vectralab/internal/analysis/preprocess"
	"vectralab/internal/analysis/regression"
	"vectralab/internal/config"
	"vectralab/internal/errors"
	"vectralab/ports"
)

const degToRad = math.Pi / 180

// AnalysisOptions are the caller-chosen parameters of an analysis run
type AnalysisOptions struct {
	Alpha              float64 `json:"alpha"`
	ChauvenetThreshold float64 `json:"chauvenet_threshold"`
	BinWidth           float64 `json:"bin_width_s"`
	UncertaintyDeg     float64 `json:"uncertainty_deg,omitempty"` // per-reading sigma; 0 fits unweighted
	MaxIterations      int     `json:"max_iterations"`
	Workers            int     `json:"workers"`
}

// OptionsFromConfig maps loaded configuration onto analysis options
func OptionsFromConfig(cfg *config.Config) AnalysisOptions {
	return AnalysisOptions{
		Alpha:              cfg.Analysis.Alpha,
		ChauvenetThreshold: cfg.Analysis.ChauvenetThreshold,
		BinWidth:           cfg.Analysis.BinWidth,
		MaxIterations:      cfg.Analysis.MaxIterations,
		Workers:            cfg.Analysis.Workers,
	}
}

// DefaultAnalysisOptions returns the options of config.Default()
func DefaultAnalysisOptions() AnalysisOptions {
	return OptionsFromConfig(config.Default())
}

// FitOutcome is a fitted line, its residual scatter and the period it implies
type FitOutcome struct {
	Channel     string                `json:"channel"`
	Fit         gnomon.FitResult      `json:"fit"`
	ResidualRMS float64               `json:"residual_rms"`
	Period      gnomon.PeriodEstimate `json:"period"`
}

// PeriodOutcome adds the significance test against the expected period
type PeriodOutcome struct {
	FitOutcome
	ExpectedHours float64                 `json:"expected_period_hours"`
	Test          gnomon.HypothesisResult `json:"test"`
}

// OutlierOutcome holds every Chauvenet score and the ones under the threshold
type OutlierOutcome struct {
	Channel    string                `json:"channel"`
	Threshold  float64               `json:"threshold"`
	Scores     []gnomon.OutlierScore `json:"scores"`
	Candidates []gnomon.OutlierScore `json:"candidates"`
}

// StepError records a failed analysis step without aborting the rest of the report
type StepError struct {
	Step    string `json:"step"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ChannelAnalysis is the full per-channel section of a report. A nil section
// failed; its reason is in Errors.
type ChannelAnalysis struct {
	Channel  string             `json:"channel"`
	Kind     gnomon.ChannelKind `json:"kind"`
	Path     string             `json:"path,omitempty"`
	Readings int                `json:"readings"`
	Summary  []gnomon.Summary   `json:"summary,omitempty"`
	Period   *PeriodOutcome     `json:"period,omitempty"`
	Outliers *OutlierOutcome    `json:"outliers,omitempty"`
	Errors   []StepError        `json:"errors,omitempty"`
}

// ChannelComparison is one pairwise binned chi-square comparison
type ChannelComparison struct {
	A      string                   `json:"a"`
	B      string                   `json:"b"`
	Result *gnomon.BinnedComparison `json:"result,omitempty"`
	Error  *StepError               `json:"error,omitempty"`
}

// Report is the outcome of one analysis run over several channel files
type Report struct {
	RunID       core.RunID          `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Options     AnalysisOptions     `json:"options"`
	Channels    []ChannelAnalysis   `json:"channels"`
	Comparisons []ChannelComparison `json:"comparisons,omitempty"`
	Rejected    []string            `json:"rejected,omitempty"` // channels whose period test rejects the expected period
	RuntimeMs   int64               `json:"runtime_ms"`
}

// AnalysisService composes the analysis core over channels obtained from a reader
type AnalysisService struct {
	reader ports.ChannelReader
	fitter *regression.Fitter
	tester *hypothesis.Tester
	opts   AnalysisOptions
	logger *internal.Logger
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(reader ports.ChannelReader, opts AnalysisOptions, logger *internal.Logger) *AnalysisService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	fitter := regression.NewFitter()
	if opts.MaxIterations > 0 {
		fitter.MaxIterations = opts.MaxIterations
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &AnalysisService{
		reader: reader,
		fitter: fitter,
		tester: hypothesis.NewTesterWithAlpha(opts.Alpha),
		opts:   opts,
		logger: logger,
	}
}

// Options returns the options the service runs with
func (s *AnalysisService) Options() AnalysisOptions {
	return s.opts
}

// Load reads a channel file, naming the channel after the file.
func (s *AnalysisService) Load(ctx context.Context, path string, kind gnomon.ChannelKind) (gnomon.Channel, error) {
	return s.reader.ReadChannel(ctx, path, ChannelName(path), kind)
}

// ChannelName derives a channel name from its file path.
func ChannelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Describe summarizes the raw angle columns of ch.
func (s *AnalysisService) Describe(ch gnomon.Channel) ([]gnomon.Summary, error) {
	return describe.Channel(ch)
}

// Fit normalizes ch, fits displacement against time and converts |slope| to a period.
func (s *AnalysisService) Fit(ch gnomon.Channel) (FitOutcome, error) {
	series, err := preprocess.NormalizeChannel(ch)
	if err != nil {
		return FitOutcome{}, err
	}

	var sigma []float64
	if s.opts.UncertaintyDeg > 0 {
		sigma = make([]float64, series.Len())
		for i := range sigma {
			sigma[i] = s.opts.UncertaintyDeg * degToRad
		}
	}

	fit, err := s.fitter.Fit(series.Time, series.Displacement, sigma)
	if err != nil {
		return FitOutcome{}, err
	}
	period, err := regression.PeriodFromFit(fit)
	if err != nil {
		return FitOutcome{}, err
	}

	s.logger.Debug("[AnalysisService] %s: slope=%.6g±%.3g rad/s after %d iterations, period=%.4f±%.4f h",
		ch.Name, fit.Slope, fit.SlopeErr, fit.Iterations, period.Hours, period.HoursErr)
	return FitOutcome{Channel: ch.Name, Fit: fit, ResidualRMS: residualRMS(fit, series), Period: period}, nil
}

// PeriodTest fits ch and tests the implied period against expectedHours, or
// against the period expected for the channel kind when expectedHours is 0.
func (s *AnalysisService) PeriodTest(ch gnomon.Channel, expectedHours float64) (PeriodOutcome, error) {
	fo, err := s.Fit(ch)
	if err != nil {
		return PeriodOutcome{}, err
	}
	if expectedHours == 0 {
		expectedHours = ch.Kind.ExpectedPeriodHours()
	}

	test, err := s.tester.PeriodSignificance(fo.Period.Hours, fo.Period.HoursErr, expectedHours)
	if err != nil {
		return PeriodOutcome{}, err
	}
	return PeriodOutcome{FitOutcome: fo, ExpectedHours: expectedHours, Test: test}, nil
}

// Outliers scores the displacement series of ch with Chauvenet's criterion.
func (s *AnalysisService) Outliers(ch gnomon.Channel, threshold float64) (OutlierOutcome, error) {
	series, err := preprocess.NormalizeChannel(ch)
	if err != nil {
		return OutlierOutcome{}, err
	}
	scores, err := outlier.Score(series.Displacement)
	if err != nil {
		return OutlierOutcome{}, err
	}
	if threshold <= 0 {
		threshold = s.opts.ChauvenetThreshold
	}

	return OutlierOutcome{
		Channel:    ch.Name,
		Threshold:  threshold,
		Scores:     scores,
		Candidates: outlier.Candidates(scores, threshold),
	}, nil
}

// MeanTest runs a one-sample t-test of the displacement series of ch.
func (s *AnalysisService) MeanTest(ch gnomon.Channel, referenceMean float64) (gnomon.HypothesisResult, error) {
	series, err := preprocess.NormalizeChannel(ch)
	if err != nil {
		return gnomon.HypothesisResult{}, err
	}
	return s.tester.OneSampleTTest(series.Displacement, referenceMean)
}

// Compare bins the displacement series of two channels and compares them.
func (s *AnalysisService) Compare(a, b gnomon.Channel, binWidth float64) (gnomon.BinnedComparison, error) {
	if binWidth == 0 {
		binWidth = s.opts.BinWidth
	}
	sa, err := preprocess.NormalizeChannel(a)
	if err != nil {
		return gnomon.BinnedComparison{}, errors.Wrapf(err, "channel %s", a.Name)
	}
	sb, err := preprocess.NormalizeChannel(b)
	if err != nil {
		return gnomon.BinnedComparison{}, errors.Wrapf(err, "channel %s", b.Name)
	}
	return chisquare.Compare(chisquare.FromNormalized(sa), chisquare.FromNormalized(sb), binWidth)
}

// AnalyzeChannel runs every per-channel step, recording failures per step.
func (s *AnalysisService) AnalyzeChannel(ch gnomon.Channel) ChannelAnalysis {
	res := ChannelAnalysis{Channel: ch.Name, Kind: ch.Kind, Readings: ch.Len()}

	if summary, err := s.Describe(ch); err != nil {
		res.Errors = append(res.Errors, stepError("describe", err))
	} else {
		res.Summary = summary
	}

	if period, err := s.PeriodTest(ch, 0); err != nil {
		res.Errors = append(res.Errors, stepError("period", err))
	} else {
		res.Period = &period
	}

	if outliers, err := s.Outliers(ch, 0); err != nil {
		res.Errors = append(res.Errors, stepError("outliers", err))
	} else {
		res.Outliers = &outliers
	}

	for _, e := range res.Errors {
		s.logger.Warn("[AnalysisService] %s: %s failed: %s", ch.Name, e.Step, e.Message)
	}
	return res
}

// AnalyzeFiles loads and analyzes every file concurrently, then compares each pair
// of channels of the same kind. Read failures abort the run; analysis failures
// are reported per step.
func (s *AnalysisService) AnalyzeFiles(ctx context.Context, paths []string, kind gnomon.ChannelKind) (*Report, error) {
	if len(paths) == 0 {
		return nil, errors.InvalidInput("no channel files given")
	}
	start := time.Now()
	report := &Report{
		RunID:       core.NewRunID(),
		GeneratedAt: start.UTC(),
		Options:     s.opts,
		Channels:    make([]ChannelAnalysis, len(paths)),
	}
	s.logger.Info("[AnalysisService] run %s: analyzing %d channel files", report.RunID, len(paths))

	channels := make([]gnomon.Channel, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, path := range paths {
		g.Go(func() error {
			ch, err := s.Load(gctx, path, kind)
			if err != nil {
				return err
			}
			channels[i] = ch
			report.Channels[i] = s.AnalyzeChannel(ch)
			report.Channels[i].Path = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "run %s", report.RunID)
	}

	report.Comparisons = s.comparePairs(ctx, channels)
	for _, ch := range report.Channels {
		if ch.Period != nil && ch.Period.Test.Verdict.IsReject() {
			report.Rejected = append(report.Rejected, ch.Channel)
		}
	}
	report.RuntimeMs = time.Since(start).Milliseconds()
	s.logger.Info("[AnalysisService] run %s finished in %dms, %d of %d periods rejected",
		report.RunID, report.RuntimeMs, len(report.Rejected), len(report.Channels))
	return report, nil
}

func (s *AnalysisService) comparePairs(ctx context.Context, channels []gnomon.Channel) []ChannelComparison {
	var pairs []ChannelComparison
	var idx [][2]int
	for i := range channels {
		for j := i + 1; j < len(channels); j++ {
			if channels[i].Kind != channels[j].Kind {
				continue
			}
			pairs = append(pairs, ChannelComparison{A: channels[i].Name, B: channels[j].Name})
			idx = append(idx, [2]int{i, j})
		}
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for k := range pairs {
		g.Go(func() error {
			res, err := s.Compare(channels[idx[k][0]], channels[idx[k][1]], 0)
			if err != nil {
				e := stepError("compare", err)
				pairs[k].Error = &e
				return nil
			}
			pairs[k].Result = &res
			return nil
		})
	}
	_ = g.Wait()
	return pairs
}

func residualRMS(fit gnomon.FitResult, series gnomon.NormalizedSeries) float64 {
	ss := 0.0
	for i, t := range series.Time {
		r := series.Displacement[i] - fit.Predict(t)
		ss += r * r
	}
	return math.Sqrt(ss / float64(series.Len()))
}

func stepError(step string, err error) StepError {
	return StepError{Step: step, Code: errors.GetCode(err), Message: err.Error()}
}

// String renders a one-line description of a period outcome for logs.
func (p PeriodOutcome) String() string {
	return fmt.Sprintf("%s: %.4f ± %.4f h vs %.4f h (%s, p=%.3g)",
		p.Channel, p.Period.Hours, p.Period.HoursErr, p.ExpectedHours, p.Test.Verdict, p.Test.PValue)
}
