package flow

// Context is the mutable key-value store shared by every step, condition and
// callback of one workflow run. It is exclusively owned by that run and must
// not be shared between concurrent runs; mutations from earlier steps stay
// visible for the rest of the run and in the final result even when a later
// required step fails (forward-only, never rolled back).
type Context struct {
	values map[string]any
}

// NewContext returns an empty context. Seed holds optional initial values.
func NewContext(seed map[string]any) *Context {
	c := &Context{values: make(map[string]any, len(seed))}
	for k, v := range seed {
		c.values[k] = v
	}
	return c
}

// Set stores a value under key, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.values[key] = value
}

// Get returns the raw value and whether it exists.
func (c *Context) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// GetString returns the value as a string, or "" when missing or not a string.
func (c *Context) GetString(key string) string {
	s, _ := c.values[key].(string)
	return s
}

// GetInt returns the value as an int, or 0 when missing or not an int.
func (c *Context) GetInt(key string) int {
	n, _ := c.values[key].(int)
	return n
}

// GetBool returns the value as a bool, or false when missing or not a bool.
func (c *Context) GetBool(key string) bool {
	b, _ := c.values[key].(bool)
	return b
}

// Has reports whether key is present.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// MergeMap copies every entry of m into the context.
func (c *Context) MergeMap(m map[string]any) {
	for k, v := range m {
		c.values[k] = v
	}
}

// Values exposes the underlying map for expression evaluation. Callers must
// treat it as read-only.
func (c *Context) Values() map[string]any {
	return c.values
}
