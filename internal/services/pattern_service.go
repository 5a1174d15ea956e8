package services

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/cybershield/intel/internal/models"
	"github.com/cybershield/intel/internal/util"
)

const (
	maxClusters      = 6
	maxVocabulary    = 500
	maxDocumentBytes = 1000
	kmeansIterations = 20
)

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`a about above after again against all am an and any are as at be
		because been before being below between both but by can could did do does doing down during each
		few for from further had has have having he her here hers herself him himself his how i if in into
		is it its itself just me more most my myself no nor not now of off on once only or other our ours
		ourselves out over own same she should so some such than that the their theirs them themselves then
		there these they this those through to too under until up very was we were what when where which
		while who whom why will with would you your yours yourself yourselves via also may using used allows
		allow`) {
		stopWords[w] = struct{}{}
	}
}

// PatternService groups threats with similar descriptions.
type PatternService struct {
	intel *IntelService
}

func NewPatternService(intel *IntelService) *PatternService {
	return &PatternService{intel: intel}
}

// Clusters returns feed threats keyed by cluster label. The map is empty
// when there are no threats.
func (s *PatternService) Clusters(ctx context.Context) (map[string][]models.FeedThreat, error) {
	threats, err := s.intel.FeedThreats(ctx)
	if err != nil {
		return nil, err
	}
	docs := make([]string, len(threats))
	for i, t := range threats {
		docs[i] = t.Description
	}

	labels := ClusterDocuments(docs)
	clusters := make(map[string][]models.FeedThreat)
	for i, label := range labels {
		key := strconv.Itoa(label)
		clusters[key] = append(clusters[key], threats[i])
	}
	return clusters, nil
}

// ClusterCount returns min(6, max(1, n/3)).
func ClusterCount(n int) int {
	k := n / 3
	if k < 1 {
		k = 1
	}
	if k > maxClusters {
		k = maxClusters
	}
	return k
}

// ClusterDocuments assigns each document a cluster label using k-means over
// TF-IDF vectors. Seeding is deterministic (farthest-first from doc 0).
func ClusterDocuments(docs []string) []int {
	if len(docs) == 0 {
		return nil
	}
	vectors := tfidf(docs)
	k := ClusterCount(len(docs))
	if k > len(docs) {
		k = len(docs)
	}

	centroids := seedCentroids(vectors, k)
	labels := make([]int, len(vectors))
	for i, v := range vectors {
		labels[i] = nearest(v, centroids)
	}
	for iter := 0; iter < kmeansIterations; iter++ {
		centroids = recompute(vectors, labels, centroids)
		changed := false
		for i, v := range vectors {
			if c := nearest(v, centroids); c != labels[i] {
				labels[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return labels
}

func tokenize(doc string) []string {
	doc = strings.ToLower(util.Truncate(doc, maxDocumentBytes))
	words := strings.FieldsFunc(doc, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := words[:0]
	for _, w := range words {
		if len(w) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// tfidf builds L2-normalized sparse vectors over the most frequent terms.
func tfidf(docs []string) []map[string]float64 {
	tokens := make([][]string, len(docs))
	df := map[string]int{}
	freq := map[string]int{}
	for i, d := range docs {
		tokens[i] = tokenize(d)
		seen := map[string]bool{}
		for _, w := range tokens[i] {
			freq[w]++
			if !seen[w] {
				df[w]++
				seen[w] = true
			}
		}
	}

	vocab := make([]string, 0, len(freq))
	for w := range freq {
		vocab = append(vocab, w)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if freq[vocab[i]] != freq[vocab[j]] {
			return freq[vocab[i]] > freq[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if len(vocab) > maxVocabulary {
		vocab = vocab[:maxVocabulary]
	}
	keep := make(map[string]bool, len(vocab))
	for _, w := range vocab {
		keep[w] = true
	}

	n := float64(len(docs))
	vectors := make([]map[string]float64, len(docs))
	for i, toks := range tokens {
		v := map[string]float64{}
		for _, w := range toks {
			if keep[w] {
				v[w]++
			}
		}
		for w, tf := range v {
			v[w] = tf * (math.Log((1+n)/(1+float64(df[w]))) + 1)
		}
		normalize(v)
		vectors[i] = v
	}
	return vectors
}

func normalize(v map[string]float64) {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for w := range v {
		v[w] /= norm
	}
}

func distance(a, b map[string]float64) float64 {
	var d float64
	for w, x := range a {
		y := b[w]
		d += (x - y) * (x - y)
	}
	for w, y := range b {
		if _, ok := a[w]; !ok {
			d += y * y
		}
	}
	return d
}

func nearest(v map[string]float64, centroids []map[string]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := distance(v, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func seedCentroids(vectors []map[string]float64, k int) []map[string]float64 {
	centroids := []map[string]float64{copyVec(vectors[0])}
	for len(centroids) < k {
		far, farDist := 0, -1.0
		for i, v := range vectors {
			d := distance(v, centroids[nearest(v, centroids)])
			if d > farDist {
				far, farDist = i, d
			}
		}
		centroids = append(centroids, copyVec(vectors[far]))
	}
	return centroids
}

func recompute(vectors []map[string]float64, labels []int, prev []map[string]float64) []map[string]float64 {
	sums := make([]map[string]float64, len(prev))
	counts := make([]int, len(prev))
	for i := range sums {
		sums[i] = map[string]float64{}
	}
	for i, v := range vectors {
		counts[labels[i]]++
		for w, x := range v {
			sums[labels[i]][w] += x
		}
	}
	for c := range sums {
		if counts[c] == 0 {
			sums[c] = prev[c]
			continue
		}
		for w := range sums[c] {
			sums[c][w] /= float64(counts[c])
		}
	}
	return sums
}

func copyVec(v map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(v))
	for w, x := range v {
		out[w] = x
	}
	return out
}
