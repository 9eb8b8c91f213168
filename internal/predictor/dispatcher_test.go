package predictor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"croppredict/internal/types"
)

// --- Test doubles ---

type identityScaler struct {
	calls int
	err   error
}

func (s *identityScaler) Transform(f []float64) ([]float64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return f, nil
}

type fixedClassifier struct {
	index int
	err   error
	calls int
}

func (c *fixedClassifier) Predict(ctx context.Context, _ []float64) (int, error) {
	c.calls++
	return c.index, c.err
}

type probaClassifier struct {
	fixedClassifier
	probs    []float64
	probaErr error
}

func (c *probaClassifier) PredictProba(ctx context.Context, _ []float64) ([]float64, error) {
	return c.probs, c.probaErr
}

type sliceDecoder []string

func (d sliceDecoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(d) {
		return "", fmt.Errorf("class index %d out of range", i)
	}
	return d[i], nil
}

type mapCategories map[string]string

func (m mapCategories) Lookup(label string) (string, bool) {
	c, ok := m[label]
	return c, ok
}

func newServices(clf Classifier) (Services, *identityScaler) {
	sc := &identityScaler{}
	return Services{
		Scaler:     sc,
		Classifier: clf,
		Decoder:    sliceDecoder{"apple", "maize", "rice"},
		Categories: mapCategories{"rice": "cereal", "maize": "cereal", "apple": "fruit"},
	}, sc
}

// --- Gate precedence ---

func TestDispatch_MissingFieldsWinsOverWarnings(t *testing.T) {
	clf := &fixedClassifier{index: 2}
	svc, sc := newServices(clf)

	r := plausibleReading()
	r.Nitrogen = 0
	r.PH = 12 // would also warn

	out, err := Dispatch(context.Background(), r, true, svc)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeMissingFields, out.Kind)
	assert.Zero(t, sc.calls)
	assert.Zero(t, clf.calls)
}

func TestDispatch_WarningsWinOverModelUnavailable(t *testing.T) {
	svc, _ := newServices(&fixedClassifier{})
	r := plausibleReading()
	r.Temperature = 5

	out, err := Dispatch(context.Background(), r, false, svc)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeValidationWarnings, out.Kind)
	assert.Equal(t, Validate(r), out.Warnings)
}

func TestDispatch_LowNitrogenWarnsWithoutRunningPipeline(t *testing.T) {
	clf := &fixedClassifier{index: 2}
	svc, sc := newServices(clf)
	r := types.SoilReading{Nitrogen: 5, Phosphorus: 50, Potassium: 50, Temperature: 25, Humidity: 60, PH: 6.5}

	out, err := Dispatch(context.Background(), r, true, svc)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeValidationWarnings, out.Kind)
	assert.Equal(t, []string{"Nitrogen (N) value 5 is unrealistically low (expected at least 10)"}, out.Warnings)
	assert.Nil(t, out.Prediction)
	assert.Zero(t, sc.calls)
	assert.Zero(t, clf.calls)
}

func TestDispatch_ModelUnavailable(t *testing.T) {
	clf := &fixedClassifier{}
	svc, sc := newServices(clf)

	out, err := Dispatch(context.Background(), plausibleReading(), false, svc)
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeModelUnavailable, out.Kind)
	assert.Zero(t, sc.calls)
	assert.Zero(t, clf.calls)
}

func TestDispatch_ModelUnavailableWithNilServices(t *testing.T) {
	out, err := Dispatch(context.Background(), plausibleReading(), false, Services{})
	require.NoError(t, err)
	assert.Equal(t, types.OutcomeModelUnavailable, out.Kind)
}

// --- Pipeline ---

func TestDispatch_PredictionWithoutProbabilities(t *testing.T) {
	svc, sc := newServices(&fixedClassifier{index: 2})

	out, err := Dispatch(context.Background(), plausibleReading(), true, svc)
	require.NoError(t, err)
	require.Equal(t, types.OutcomePrediction, out.Kind)
	require.NotNil(t, out.Prediction)
	assert.Equal(t, "rice", out.Prediction.Label)
	assert.Equal(t, "cereal", out.Prediction.Category)
	assert.Nil(t, out.Prediction.Ranked)
	assert.Equal(t, 1, sc.calls)
}

func TestDispatch_UnknownCategory(t *testing.T) {
	svc, _ := newServices(&fixedClassifier{index: 1})
	svc.Categories = mapCategories{}

	out, err := Dispatch(context.Background(), plausibleReading(), true, svc)
	require.NoError(t, err)
	assert.Equal(t, "maize", out.Prediction.Label)
	assert.Equal(t, types.UnknownCategory, out.Prediction.Category)
}

func TestDispatch_Ranking(t *testing.T) {
	clf := &probaClassifier{fixedClassifier: fixedClassifier{index: 1}, probs: []float64{0.1, 0.6, 0.3}}
	svc, _ := newServices(clf)

	out, err := Dispatch(context.Background(), plausibleReading(), true, svc)
	require.NoError(t, err)
	assert.Equal(t, []types.RankedLabel{
		{Label: "maize", Probability: 0.6},
		{Label: "rice", Probability: 0.3},
		{Label: "apple", Probability: 0.1},
	}, out.Prediction.Ranked)
}

func TestDispatch_RankingTruncatesAndBreaksTiesByIndex(t *testing.T) {
	clf := &probaClassifier{
		fixedClassifier: fixedClassifier{index: 0},
		probs:           []float64{0.2, 0.2, 0.1, 0.5},
	}
	svc, _ := newServices(clf)
	svc.Decoder = sliceDecoder{"a", "b", "c", "d"}

	out, err := Dispatch(context.Background(), plausibleReading(), true, svc)
	require.NoError(t, err)
	require.Len(t, out.Prediction.Ranked, types.MaxRanked)
	assert.Equal(t, "d", out.Prediction.Ranked[0].Label)
	assert.Equal(t, "a", out.Prediction.Ranked[1].Label)
	assert.Equal(t, "b", out.Prediction.Ranked[2].Label)
}

func TestDispatch_RankingFewerClassesThanTop(t *testing.T) {
	clf := &probaClassifier{fixedClassifier: fixedClassifier{index: 0}, probs: []float64{0.7, 0.3}}
	svc, _ := newServices(clf)

	out, err := Dispatch(context.Background(), plausibleReading(), true, svc)
	require.NoError(t, err)
	assert.Len(t, out.Prediction.Ranked, 2)
}

// --- Failures ---

func TestDispatch_PipelineFailures(t *testing.T) {
	boom := errors.New("boom")

	t.Run("scaler", func(t *testing.T) {
		svc, sc := newServices(&fixedClassifier{})
		sc.err = boom
		_, err := Dispatch(context.Background(), plausibleReading(), true, svc)
		assertPipelineError(t, err, boom)
	})

	t.Run("classifier", func(t *testing.T) {
		svc, _ := newServices(&fixedClassifier{err: boom})
		_, err := Dispatch(context.Background(), plausibleReading(), true, svc)
		assertPipelineError(t, err, boom)
	})

	t.Run("decoder", func(t *testing.T) {
		svc, _ := newServices(&fixedClassifier{index: 7})
		_, err := Dispatch(context.Background(), plausibleReading(), true, svc)
		var appErr *types.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, types.ErrCodeInternalPipeline, appErr.Code)
	})

	t.Run("probabilities", func(t *testing.T) {
		clf := &probaClassifier{fixedClassifier: fixedClassifier{index: 0}, probaErr: boom}
		svc, _ := newServices(clf)
		_, err := Dispatch(context.Background(), plausibleReading(), true, svc)
		assertPipelineError(t, err, boom)
	})
}

func TestDispatch_UpstreamErrorCodePreserved(t *testing.T) {
	upstream := types.NewAppError(types.ErrCodeUpstreamInference, "inference backend unavailable", nil)
	svc, _ := newServices(&fixedClassifier{err: upstream})

	_, err := Dispatch(context.Background(), plausibleReading(), true, svc)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeUpstreamInference, appErr.Code)
}

func assertPipelineError(t *testing.T, err, cause error) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalPipeline, appErr.Code)
}
