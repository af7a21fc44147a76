package speech

// Transcript accumulates an answer: finalized segments are kept permanently,
// the interim segment is replaced on every update.
type Transcript struct {
	final   string
	interim string
}

// Commit appends a finalized segment.
func (t *Transcript) Commit(segment string) {
	t.final += segment + " "
}

// SetInterim replaces the interim segment.
func (t *Transcript) SetInterim(text string) {
	t.interim = text
}

// Reset clears both parts.
func (t *Transcript) Reset() {
	t.final = ""
	t.interim = ""
}

// Final returns the finalized segments only.
func (t *Transcript) Final() string {
	return t.final
}

// String returns finalized segments followed by the interim segment.
func (t *Transcript) String() string {
	return t.final + t.interim
}

// Apply folds one batch of results into the transcript the way a
// continuous recognizer reports them: final results are committed in order
// and the non-final ones together form the new interim segment.
func (t *Transcript) Apply(results []Result) {
	interim := ""
	for _, r := range results {
		if r.Final {
			t.Commit(r.Text)
		} else {
			interim += r.Text
		}
	}
	t.SetInterim(interim)
}
