// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package relabel re-decides Unknown and uncertain segments with an
// optional text classifier. Confidently tagged segments are never sent to
// the classifier and never changed. Classifier failures keep the segment's
// existing label and never abort screening.
package relabel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

// DefaultThreshold is the minimum winning probability needed to relabel.
const DefaultThreshold = 0.65

// Prediction holds per-class probabilities for one text.
type Prediction struct {
	AI      float64 `json:"ai" yaml:"ai"`
	Student float64 `json:"student" yaml:"student"`
}

// Validate rejects probabilities outside [0, 1] and NaN.
func (p Prediction) Validate() error {
	for _, v := range []float64{p.AI, p.Student} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("probability %v out of range", v)
		}
	}
	return nil
}

// Classifier predicts speaker probabilities for a text. Implementations
// must be safe for concurrent use.
type Classifier interface {
	Predict(ctx context.Context, text string) (Prediction, error)
}

// Relabeler applies a Classifier to eligible segments.
type Relabeler struct {
	cls       Classifier
	threshold float64
	logger    *slog.Logger
}

// New returns a Relabeler. A threshold <= 0 means DefaultThreshold; a nil
// logger means slog.Default().
func New(cls Classifier, threshold float64, logger *slog.Logger) *Relabeler {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Relabeler{cls: cls, threshold: threshold, logger: logger}
}

// Threshold returns the effective threshold.
func (r *Relabeler) Threshold() float64 { return r.threshold }

// Eligible reports whether seg may be sent to the classifier: it has
// non-blank text and is Unknown or uncertain.
func Eligible(seg types.Segment) bool {
	if strings.TrimSpace(seg.Text) == "" {
		return false
	}
	return !seg.Speaker.Known() || seg.Uncertain
}

// Apply relabels eligible segments in place and returns how many changed.
// When the winning probability reaches the threshold the segment takes
// that speaker (Student on a tie) and is no longer uncertain.
func (r *Relabeler) Apply(ctx context.Context, segs []types.Segment) int {
	if r == nil || r.cls == nil {
		return 0
	}
	changed := 0
	for i := range segs {
		if !Eligible(segs[i]) {
			continue
		}
		p, err := r.predict(ctx, segs[i].Text)
		if err != nil {
			r.logger.Warn("relabel skipped", "err", err)
			continue
		}
		if math.Max(p.AI, p.Student) < r.threshold {
			continue
		}
		sp := types.SpeakerAI
		if p.Student >= p.AI {
			sp = types.SpeakerStudent
		}
		if sp != segs[i].Speaker || segs[i].Uncertain {
			changed++
		}
		segs[i].Speaker = sp
		segs[i].Uncertain = false
	}
	return changed
}

func (r *Relabeler) predict(ctx context.Context, text string) (p Prediction, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("classifier panic: %v", rec)
		}
	}()
	p, err = r.cls.Predict(ctx, text)
	if err != nil {
		return Prediction{}, err
	}
	if err := p.Validate(); err != nil {
		return Prediction{}, err
	}
	return p, nil
}

// FromConfig builds the Relabeler described by cfg: a linear model when
// ModelPath is set, else a remote classifier when RemoteURL is set. It
// returns nil, nil when neither is configured.
func FromConfig(cfg types.RelabelConfig, apiKey string, logger *slog.Logger) (*Relabeler, error) {
	var cls Classifier
	switch {
	case cfg.ModelPath != "":
		m, err := LoadLinearModel(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		cls = m
	case cfg.RemoteURL != "":
		cls = NewRemote(cfg.RemoteURL, apiKey, cfg.Timeout, cfg.MaxRetries)
	default:
		return nil, nil
	}
	return New(cls, cfg.Threshold, logger), nil
}
