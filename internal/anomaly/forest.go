package anomaly

import (
	"math"
	"math/rand"
)

// isolationForest is an ensemble of randomly built isolation trees.
// Points that isolate in short paths score closer to -1 (anomalous);
// points deep in the data mass score closer to 0.
type isolationForest struct {
	trees         []*isolationTree
	subsampleSize int
}

type isolationTree struct {
	root *treeNode
}

type treeNode struct {
	// Internal nodes split on splitAttr at splitValue.
	splitAttr  int
	splitValue float64
	left       *treeNode
	right      *treeNode

	// External nodes record the number of samples that reached them.
	size int
}

func (n *treeNode) external() bool { return n.left == nil }

// fitForest builds numTrees isolation trees over random subsamples of
// the scaled training rows. The RNG is seeded by the caller so fits
// are reproducible.
func fitForest(rows [][]float64, numTrees, subsampleSize int, rng *rand.Rand) *isolationForest {
	if subsampleSize > len(rows) {
		subsampleSize = len(rows)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(subsampleSize))))

	trees := make([]*isolationTree, numTrees)
	for i := range trees {
		sample := subsample(rows, subsampleSize, rng)
		trees[i] = &isolationTree{root: buildTree(sample, 0, heightLimit, rng)}
	}

	return &isolationForest{trees: trees, subsampleSize: subsampleSize}
}

// subsample draws n rows without replacement.
func subsample(rows [][]float64, n int, rng *rand.Rand) [][]float64 {
	perm := rng.Perm(len(rows))
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = rows[perm[i]]
	}
	return out
}

func buildTree(rows [][]float64, depth, heightLimit int, rng *rand.Rand) *treeNode {
	if len(rows) <= 1 || depth >= heightLimit {
		return &treeNode{size: len(rows)}
	}

	attr := rng.Intn(len(rows[0]))
	lo, hi := rows[0][attr], rows[0][attr]
	for _, row := range rows[1:] {
		if row[attr] < lo {
			lo = row[attr]
		}
		if row[attr] > hi {
			hi = row[attr]
		}
	}
	if lo == hi {
		return &treeNode{size: len(rows)}
	}

	split := lo + rng.Float64()*(hi-lo)

	var left, right [][]float64
	for _, row := range rows {
		if row[attr] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &treeNode{
		splitAttr:  attr,
		splitValue: split,
		left:       buildTree(left, depth+1, heightLimit, rng),
		right:      buildTree(right, depth+1, heightLimit, rng),
	}
}

// score returns the outlier score for one scaled row. Scores lie in
// (-1, 0]; lower means more anomalous.
func (f *isolationForest) score(row []float64) float64 {
	var total float64
	for _, tree := range f.trees {
		total += pathLength(tree.root, row, 0)
	}
	mean := total / float64(len(f.trees))

	return -math.Pow(2, -mean/averagePathLength(f.subsampleSize))
}

func pathLength(node *treeNode, row []float64, depth int) float64 {
	if node.external() {
		return float64(depth) + averagePathLength(node.size)
	}
	if row[node.splitAttr] < node.splitValue {
		return pathLength(node.left, row, depth+1)
	}
	return pathLength(node.right, row, depth+1)
}

// eulerMascheroni is used in the harmonic-number approximation of the
// average unsuccessful BST search path length.
const eulerMascheroni = 0.5772156649

// averagePathLength is c(n), the expected path length of an
// unsuccessful search in a binary search tree of n nodes.
func averagePathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	fn := float64(n)
	return 2*(math.Log(fn-1)+eulerMascheroni) - 2*(fn-1)/fn
}
