// Package greenwash flags language patterns associated with greenwashing
// in sustainability reports. The lexicon lives in an embedded YAML file;
// detection is heuristic and errs towards surfacing text for a human.
package greenwash

import (
	_ "embed"
	"math"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/carbon-compass/compass/internal/model"
)

//go:embed patterns.yaml
var patternsYAML []byte

type flagSpec struct {
	Explanation string  `yaml:"explanation"`
	Severity    string  `yaml:"severity"`
	Confidence  float64 `yaml:"confidence"`
}

type phraseSpec struct {
	flagSpec `yaml:",inline"`
	Phrases  []string `yaml:"phrases"`
}

type targetSpec struct {
	Phrases    []string `yaml:"phrases"`
	Timeline   string   `yaml:"timeline"`
	Baseline   string   `yaml:"baseline"`
	NoTimeline flagSpec `yaml:"no_timeline"`
	NoBaseline flagSpec `yaml:"no_baseline"`
}

type unprovenSpec struct {
	phraseSpec   `yaml:",inline"`
	Verification string `yaml:"verification"`
}

type lexicon struct {
	Window         int          `yaml:"window"`
	VagueClaims    phraseSpec   `yaml:"vague_claims"`
	Targets        targetSpec   `yaml:"targets"`
	UnprovenClaims unprovenSpec `yaml:"unproven_claims"`
	Aspirational   phraseSpec   `yaml:"aspirational"`
	CherryPicking  phraseSpec   `yaml:"cherry_picking"`
}

// Detector runs the heuristic checks over report text. Build one with New
// and reuse it; compiled patterns are immutable.
type Detector struct {
	window int

	vague        *regexp.Regexp
	vagueSpec    flagSpec
	targets      *regexp.Regexp
	timeline     *regexp.Regexp
	baseline     *regexp.Regexp
	noTimeline   flagSpec
	noBaseline   flagSpec
	unproven     *regexp.Regexp
	unprovenSpec flagSpec
	verification *regexp.Regexp
	number       *regexp.Regexp
	aspirational *regexp.Regexp
	aspireSpec   flagSpec
	cherry       *regexp.Regexp
	cherrySpec   flagSpec
}

// New compiles the embedded lexicon into a Detector.
func New() (*Detector, error) {
	var lex lexicon
	if err := yaml.Unmarshal(patternsYAML, &lex); err != nil {
		return nil, eris.Wrap(err, "greenwash: parse patterns")
	}

	compile := func(phrases []string) (*regexp.Regexp, error) {
		return regexp.Compile("(?i)(" + strings.Join(phrases, "|") + ")")
	}

	d := &Detector{
		window:       lex.Window,
		vagueSpec:    lex.VagueClaims.flagSpec,
		noTimeline:   lex.Targets.NoTimeline,
		noBaseline:   lex.Targets.NoBaseline,
		unprovenSpec: lex.UnprovenClaims.flagSpec,
		aspireSpec:   lex.Aspirational.flagSpec,
		cherrySpec:   lex.CherryPicking.flagSpec,
		number:       regexp.MustCompile(`\d`),
	}
	if d.window <= 0 {
		d.window = 80
	}

	var err error
	if d.vague, err = compile(lex.VagueClaims.Phrases); err != nil {
		return nil, eris.Wrap(err, "greenwash: vague claim patterns")
	}
	if d.targets, err = compile(lex.Targets.Phrases); err != nil {
		return nil, eris.Wrap(err, "greenwash: target patterns")
	}
	if d.timeline, err = regexp.Compile("(?i)" + lex.Targets.Timeline); err != nil {
		return nil, eris.Wrap(err, "greenwash: timeline pattern")
	}
	if d.baseline, err = regexp.Compile("(?i)" + lex.Targets.Baseline); err != nil {
		return nil, eris.Wrap(err, "greenwash: baseline pattern")
	}
	if d.unproven, err = compile(lex.UnprovenClaims.Phrases); err != nil {
		return nil, eris.Wrap(err, "greenwash: unproven claim patterns")
	}
	if d.verification, err = regexp.Compile("(?i)" + lex.UnprovenClaims.Verification); err != nil {
		return nil, eris.Wrap(err, "greenwash: verification pattern")
	}
	if d.aspirational, err = compile(lex.Aspirational.Phrases); err != nil {
		return nil, eris.Wrap(err, "greenwash: aspirational patterns")
	}
	if d.cherry, err = compile(lex.CherryPicking.Phrases); err != nil {
		return nil, eris.Wrap(err, "greenwash: cherry-picking patterns")
	}
	return d, nil
}

// Analyse runs every check over the full document text and scores the
// combined result.
func (d *Detector) Analyse(fullText string) model.GreenwashingResult {
	var flags []model.GreenwashingFlag
	flags = append(flags, d.flagVagueClaims(fullText)...)
	flags = append(flags, d.flagMissingTimelineOrBaseline(fullText)...)
	flags = append(flags, d.flagUnprovenClaims(fullText)...)
	flags = append(flags, d.flagAspirational(fullText)...)
	flags = append(flags, d.flagCherryPicking(fullText)...)

	return model.GreenwashingResult{
		Flags:     flags,
		RiskScore: riskScore(flags),
	}
}

func (d *Detector) flagVagueClaims(text string) []model.GreenwashingFlag {
	return d.flagEach(text, d.vague, model.IndicatorVagueClaim, d.vagueSpec)
}

// flagMissingTimelineOrBaseline checks every target-like statement for a
// deadline year and a baseline year in its surrounding context. Each
// absence is its own flag.
func (d *Detector) flagMissingTimelineOrBaseline(text string) []model.GreenwashingFlag {
	var flags []model.GreenwashingFlag
	for _, loc := range d.targets.FindAllStringIndex(text, -1) {
		snippet := d.snippet(text, loc[0], loc[1])
		if !d.timeline.MatchString(snippet) {
			flags = append(flags, newFlag(model.IndicatorNoTimeline, snippet, d.noTimeline))
		}
		if !d.baseline.MatchString(snippet) {
			flags = append(flags, newFlag(model.IndicatorNoBaseline, snippet, d.noBaseline))
		}
	}
	return flags
}

// flagUnprovenClaims flags superlative claims whose context carries
// neither figures nor a recognised verification framework.
func (d *Detector) flagUnprovenClaims(text string) []model.GreenwashingFlag {
	var flags []model.GreenwashingFlag
	for _, loc := range d.unproven.FindAllStringIndex(text, -1) {
		snippet := d.snippet(text, loc[0], loc[1])
		if d.number.MatchString(snippet) || d.verification.MatchString(snippet) {
			continue
		}
		flags = append(flags, newFlag(model.IndicatorNoProof, snippet, d.unprovenSpec))
	}
	return flags
}

func (d *Detector) flagAspirational(text string) []model.GreenwashingFlag {
	return d.flagEach(text, d.aspirational, model.IndicatorAspirationalOnly, d.aspireSpec)
}

func (d *Detector) flagCherryPicking(text string) []model.GreenwashingFlag {
	return d.flagEach(text, d.cherry, model.IndicatorCherryPicking, d.cherrySpec)
}

func (d *Detector) flagEach(text string, re *regexp.Regexp, indicator model.IndicatorType, spec flagSpec) []model.GreenwashingFlag {
	var flags []model.GreenwashingFlag
	for _, loc := range re.FindAllStringIndex(text, -1) {
		flags = append(flags, newFlag(indicator, d.snippet(text, loc[0], loc[1]), spec))
	}
	return flags
}

func (d *Detector) snippet(text string, start, end int) string {
	from := start - d.window
	if from < 0 {
		from = 0
	}
	to := end + d.window
	if to > len(text) {
		to = len(text)
	}
	return strings.TrimSpace(text[from:to])
}

func newFlag(indicator model.IndicatorType, snippet string, spec flagSpec) model.GreenwashingFlag {
	return model.GreenwashingFlag{
		IndicatorType: indicator,
		Text:          snippet,
		Explanation:   spec.Explanation,
		Severity:      model.Severity(spec.Severity),
		Confidence:    spec.Confidence,
	}
}

// riskScore weights each flag by severity and confidence and maps the sum
// to 0-100 with a soft cap.
func riskScore(flags []model.GreenwashingFlag) float64 {
	if len(flags) == 0 {
		return 0
	}
	weights := map[model.Severity]float64{
		model.SeverityLow:    1,
		model.SeverityMedium: 2,
		model.SeverityHigh:   3,
	}
	var total float64
	for _, f := range flags {
		total += weights[f.Severity] * f.Confidence
	}
	return math.Round(math.Min(100, total*5)*100) / 100
}
