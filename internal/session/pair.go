package session

// PairController changes the source and target languages
type PairController struct {
	c *core
}

// SetSource sets the source language. Codes are not checked against the catalog.
func (p *PairController) SetSource(code string) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.c.setSourceLocked(code)
}

// SetTarget sets the target language
func (p *PairController) SetTarget(code string) {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	p.c.setTargetLocked(code)
}

// Swap exchanges source and target, moves the primary translation into the input
// and clears the result. The input becomes empty when there is no result.
func (p *PairController) Swap() LanguagePair {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()

	p.c.pair.Source, p.c.pair.Target = p.c.pair.Target, p.c.pair.Source
	input := ""
	if p.c.result != nil {
		input = p.c.result.Primary
	}
	p.c.input = input
	p.c.result = nil
	p.c.generation++
	return p.c.pair
}

// Pair returns the current language pair
func (p *PairController) Pair() LanguagePair {
	p.c.mu.Lock()
	defer p.c.mu.Unlock()
	return p.c.pair
}
