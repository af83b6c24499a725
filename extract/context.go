package extract

// questionState is the cross-block memory for one question number: whether
// it is in variant mode, the next part number to assign, and the bullet
// labels already turned into variants.
type questionState struct {
	stemID        int64
	stemText      string
	inVariantMode bool
	nextPart      int
	variants      map[string]int64 // bullet label -> question id
}

// Context carries the mutable extraction state for one sheet-processing run.
// One Context per run, discarded at run end; nothing is shared across
// sheets, which keeps independent files safe to process in parallel.
type Context struct {
	states map[string]*questionState
}

// NewContext returns an empty per-run context.
func NewContext() *Context {
	return &Context{states: make(map[string]*questionState)}
}

// state returns the state for a question number, creating it on first use.
func (c *Context) state(number string) *questionState {
	st, ok := c.states[number]
	if !ok {
		st = &questionState{variants: make(map[string]int64)}
		c.states[number] = st
	}
	return st
}
