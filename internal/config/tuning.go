// internal/config/tuning.go
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Tuning carries the empirically tuned knobs of the pipeline. The defaults
// reflect the observed feature-length screenplay corpus; none of them are
// derived from first principles, which is exactly why they live in a file
// instead of the code.
type Tuning struct {
	Breakdown BreakdownTuning `yaml:"breakdown"`
	Narrative NarrativeTuning `yaml:"narrative"`
}

type BreakdownTuning struct {
	// AugmentThresholds sets the minimum plausible character count per scene
	// count tier. Evaluated top-down, first tier whose MinScenes is met wins.
	AugmentThresholds []AugmentThreshold `yaml:"augment_thresholds"`

	// Prop minimums by script length.
	FeatureSceneCount int `yaml:"feature_scene_count"`
	PropMinFeature    int `yaml:"prop_min_feature"`
	PropMinShort      int `yaml:"prop_min_short"`
}

type AugmentThreshold struct {
	MinScenes     int `yaml:"min_scenes"`
	MinCharacters int `yaml:"min_characters"`
}

type NarrativeTuning struct {
	BatchSize        int      `yaml:"batch_size"`
	LargeBatchCutoff int      `yaml:"large_batch_cutoff"`
	LargeBatchModel  string   `yaml:"large_batch_model"`
	SmallBatchModel  string   `yaml:"small_batch_model"`
	BatchInterval    Duration `yaml:"batch_interval"`
	MaxTokens        int      `yaml:"max_tokens"`

	Rubric RubricWeights `yaml:"rubric"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "500ms".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// RubricWeights holds the weight of each validation check. They must sum to
// exactly 100; the score of a scene is the sum of the weights of its passed
// checks.
type RubricWeights struct {
	IntentFulfilled      int `yaml:"intent_fulfilled"`
	ForbiddenRespected   int `yaml:"forbidden_respected"`
	ThreadAdvanced       int `yaml:"thread_advanced"`
	NoPrematureClosure   int `yaml:"no_premature_closure"`
	ToneCoherent         int `yaml:"tone_coherent"`
	NoRepetition         int `yaml:"no_repetition"`
	EmotionalProgression int `yaml:"emotional_progression"`
}

func (w RubricWeights) Sum() int {
	return w.IntentFulfilled + w.ForbiddenRespected + w.ThreadAdvanced +
		w.NoPrematureClosure + w.ToneCoherent + w.NoRepetition + w.EmotionalProgression
}

// DefaultTuning returns the shipped defaults.
func DefaultTuning() *Tuning {
	return &Tuning{
		Breakdown: BreakdownTuning{
			AugmentThresholds: []AugmentThreshold{
				{MinScenes: 200, MinCharacters: 100},
				{MinScenes: 100, MinCharacters: 70},
				{MinScenes: 50, MinCharacters: 35},
				{MinScenes: 0, MinCharacters: 15},
			},
			FeatureSceneCount: 80,
			PropMinFeature:    8,
			PropMinShort:      4,
		},
		Narrative: NarrativeTuning{
			BatchSize:        8,
			LargeBatchCutoff: 5,
			LargeBatchModel:  "anthropic/claude-sonnet-4",
			SmallBatchModel:  "openai/gpt-4o-mini",
			BatchInterval:    Duration(2 * time.Second),
			MaxTokens:        4096,
			Rubric: RubricWeights{
				IntentFulfilled:      20,
				ForbiddenRespected:   15,
				ThreadAdvanced:       15,
				NoPrematureClosure:   15,
				ToneCoherent:         10,
				NoRepetition:         10,
				EmotionalProgression: 15,
			},
		},
	}
}

// LoadTuning reads the tuning file, if any, on top of the defaults.
func LoadTuning(path string) (*Tuning, error) {
	tuning := DefaultTuning()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, tuning); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := tuning.Validate(); err != nil {
		return nil, err
	}
	return tuning, nil
}

func (t *Tuning) Validate() error {
	if sum := t.Narrative.Rubric.Sum(); sum != 100 {
		return fmt.Errorf("rubric weights must sum to 100, got %d", sum)
	}
	if t.Narrative.BatchSize < 1 {
		return fmt.Errorf("narrative batch_size must be positive, got %d", t.Narrative.BatchSize)
	}
	if len(t.Breakdown.AugmentThresholds) == 0 {
		return fmt.Errorf("breakdown augment_thresholds must not be empty")
	}
	return nil
}

// MinCharactersFor returns the minimum plausible character count for a
// script with the given scene count.
func (b BreakdownTuning) MinCharactersFor(sceneCount int) int {
	for _, tier := range b.AugmentThresholds {
		if sceneCount >= tier.MinScenes {
			return tier.MinCharacters
		}
	}
	return 0
}

// MinPropsFor returns the minimum prop count for a script with the given
// scene count.
func (b BreakdownTuning) MinPropsFor(sceneCount int) int {
	if sceneCount >= b.FeatureSceneCount {
		return b.PropMinFeature
	}
	return b.PropMinShort
}
