package artifacts

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

const testScalerJSON = `{"kind":"standard","mean":[50,50,50,25,70,6.5],"scale":[10,10,10,5,10,1]}`

const testLabelsJSON = `{"classes":["apple","maize","rice"]}`

const testCategoriesJSON = `{"apple":"fruit","maize":"cereal","rice":"cereal"}`

// testTreesJSON is a three-class, one-iteration ensemble:
//
//	class 0: N <= 0   -> 1.0 else -1.0
//	class 1: T <= 0   -> 0.5 else 2.0 (NaN goes right)
//	class 2: constant 0
const testTreesJSON = `{
  "name": "tree",
  "version": "v3",
  "num_class": 3,
  "num_tree_per_iteration": 3,
  "max_feature_idx": 5,
  "objective": "multiclass num_class:3",
  "feature_names": ["N","P","K","temperature","humidity","ph"],
  "tree_info": [
    {"tree_index": 0, "num_leaves": 2, "num_cat": 0, "shrinkage": 1,
     "tree_structure": {"split_index": 0, "split_feature": 0, "threshold": 0,
       "decision_type": "<=", "default_left": true, "missing_type": "None",
       "left_child": {"leaf_index": 0, "leaf_value": 1.0},
       "right_child": {"leaf_index": 1, "leaf_value": -1.0}}},
    {"tree_index": 1, "num_leaves": 2, "num_cat": 0, "shrinkage": 1,
     "tree_structure": {"split_index": 0, "split_feature": 3, "threshold": 0,
       "decision_type": "<=", "default_left": false, "missing_type": "NaN",
       "left_child": {"leaf_index": 0, "leaf_value": 0.5},
       "right_child": {"leaf_index": 1, "leaf_value": 2.0}}},
    {"tree_index": 2, "num_leaves": 1, "num_cat": 0, "shrinkage": 1,
     "tree_structure": {"leaf_value": 0.0}}
  ]
}`

// testTreesText is the same ensemble as testTreesJSON in the text format
// written by save_model, with class 2 as a split of two zero leaves.
// decision_type 2 is default_left with no missing handling; 8 is NaN
// missing values going right.
const testTreesText = `tree
version=v3
num_class=3
num_tree_per_iteration=3
label_index=0
max_feature_idx=5
objective=multiclass num_class:3
feature_names=N P K temperature humidity ph
feature_infos=[-10:200] [-10:200] [-10:200] [-10:60] [0:100] [0:14]
tree_sizes=300 300 300

Tree=0
num_leaves=2
num_cat=0
split_feature=0
split_gain=1
threshold=0
decision_type=2
left_child=-1
right_child=-2
leaf_value=1 -1
leaf_weight=1 1
leaf_count=1 1
internal_value=0
internal_weight=2
internal_count=2
is_linear=0
shrinkage=1

Tree=1
num_leaves=2
num_cat=0
split_feature=3
split_gain=1
threshold=0
decision_type=8
left_child=-1
right_child=-2
leaf_value=0.5 2
leaf_weight=1 1
leaf_count=1 1
internal_value=0
internal_weight=2
internal_count=2
is_linear=0
shrinkage=1

Tree=2
num_leaves=2
num_cat=0
split_feature=4
split_gain=1
threshold=0
decision_type=2
left_child=-1
right_child=-2
leaf_value=0 0
leaf_weight=1 1
leaf_count=1 1
internal_value=0
internal_weight=2
internal_count=2
is_linear=0
shrinkage=1

end of trees
`

const testLinearJSON = `{"coef":[[1,0,0,0,0,0],[0,1,0,0,0,0],[0,0,1,0,0,0]],"intercept":[0,0,0]}`

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll(data, nil)
}

// writeBundle writes a consistent artifact set and returns its paths.
func writeBundle(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	return Paths{
		Model:        writeFile(t, dir, "model.json", []byte(testTreesJSON)),
		Scaler:       writeFile(t, dir, "scaler.json", []byte(testScalerJSON)),
		LabelEncoder: writeFile(t, dir, "label_encoder.json", []byte(testLabelsJSON)),
		Categories:   writeFile(t, dir, "categories.json", []byte(testCategoriesJSON)),
	}
}
