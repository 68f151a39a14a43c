package search

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results of Answer.
type Monitor interface {
	Start(question string)
	AfterQueryAnalysis(query Query)
	AfterEmbedding(dimension, passages int)
	AfterScoring(scores []Scored)
	MultiPassageSelected(indices []int)
	SinglePassageSelected(scored Scored)
	LexicalFallback(index, hits int)
	NoAnswer()
	Failed(err error)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                 {}
func (n *noopMonitor) AfterQueryAnalysis(_ Query)     {}
func (n *noopMonitor) AfterEmbedding(_, _ int)        {}
func (n *noopMonitor) AfterScoring(_ []Scored)        {}
func (n *noopMonitor) MultiPassageSelected(_ []int)   {}
func (n *noopMonitor) SinglePassageSelected(_ Scored) {}
func (n *noopMonitor) LexicalFallback(_, _ int)       {}
func (n *noopMonitor) NoAnswer()                      {}
func (n *noopMonitor) Failed(_ error)                 {}
