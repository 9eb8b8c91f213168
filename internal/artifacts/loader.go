package artifacts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"croppredict/internal/config"
	"croppredict/internal/predictor"
	"croppredict/internal/types"
)

// Artifact names used in LoadError and logs.
const (
	ArtifactModel        = "model"
	ArtifactScaler       = "scaler"
	ArtifactLabelEncoder = "label_encoder"
	ArtifactCategories   = "category_map"
)

// LoadError reports which artifact could not be loaded or failed the
// cross-artifact consistency checks.
type LoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s from %s: %v", e.Artifact, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Paths locates the four artifacts on disk.
type Paths struct {
	Model        string
	Scaler       string
	LabelEncoder string
	Categories   string
}

// PathsFrom resolves the configured artifact locations against the
// artifact directory.
func PathsFrom(a config.ArtifactConfig) Paths {
	return Paths{
		Model:        a.Resolve(a.ModelPath),
		Scaler:       a.Resolve(a.ScalerPath),
		LabelEncoder: a.Resolve(a.LabelEncoderPath),
		Categories:   a.Resolve(a.CategoryMapPath),
	}
}

// Options adjusts loading.
type Options struct {
	// Classifier replaces the on-disk model, e.g. with a remote inference
	// client. Paths.Model is ignored when set.
	Classifier predictor.Classifier
}

// Bundle is a fully loaded, consistent pipeline. It is read-only after Load.
type Bundle struct {
	Scaler     *Scaler
	Classifier predictor.Classifier
	Decoder    *LabelDecoder
	Categories *CategoryMap
}

// Services exposes the bundle to the dispatcher.
func (b *Bundle) Services() predictor.Services {
	return predictor.Services{
		Scaler:     b.Scaler,
		Classifier: b.Classifier,
		Decoder:    b.Decoder,
		Categories: b.Categories,
	}
}

// Load reads all artifacts concurrently and checks that they fit together.
// The returned error is always a *LoadError.
func Load(ctx context.Context, paths Paths, opts Options, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()

	var (
		b     Bundle
		model Model
	)

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		data, err := readArtifact(paths.Scaler)
		if err == nil {
			b.Scaler, err = ParseScaler(data)
		}
		return wrapLoad(ArtifactScaler, paths.Scaler, err)
	})

	if opts.Classifier == nil {
		g.Go(func() error {
			data, err := readArtifact(paths.Model)
			if err == nil {
				model, err = ParseClassifier(data)
			}
			return wrapLoad(ArtifactModel, paths.Model, err)
		})
	}

	g.Go(func() error {
		data, err := readArtifact(paths.LabelEncoder)
		if err == nil {
			b.Decoder, err = ParseLabelDecoder(data)
		}
		return wrapLoad(ArtifactLabelEncoder, paths.LabelEncoder, err)
	})

	g.Go(func() error {
		data, err := readArtifact(paths.Categories)
		if err == nil {
			b.Categories, err = ParseCategoryMap(data, baseExt(paths.Categories))
		}
		return wrapLoad(ArtifactCategories, paths.Categories, err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if b.Scaler.Width() != types.FeatureCount {
		return nil, &LoadError{
			Artifact: ArtifactScaler,
			Path:     paths.Scaler,
			Err:      fmt.Errorf("scaler width %d, want %d", b.Scaler.Width(), types.FeatureCount),
		}
	}

	if opts.Classifier != nil {
		b.Classifier = opts.Classifier
	} else {
		if model.NumFeatures() != types.FeatureCount {
			return nil, &LoadError{
				Artifact: ArtifactModel,
				Path:     paths.Model,
				Err:      fmt.Errorf("model expects %d features, want %d", model.NumFeatures(), types.FeatureCount),
			}
		}
		if model.NumClasses() != b.Decoder.NumClasses() {
			return nil, &LoadError{
				Artifact: ArtifactModel,
				Path:     paths.Model,
				Err:      fmt.Errorf("model has %d classes but label encoder has %d", model.NumClasses(), b.Decoder.NumClasses()),
			}
		}
		b.Classifier = model
	}

	logger.Info("artifacts loaded",
		"classes", b.Decoder.NumClasses(),
		"categories", b.Categories.Len(),
		"remote_classifier", opts.Classifier != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &b, nil
}

func wrapLoad(artifact, path string, err error) error {
	if err == nil {
		return nil
	}
	return &LoadError{Artifact: artifact, Path: path, Err: err}
}
