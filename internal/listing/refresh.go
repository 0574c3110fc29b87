package listing

import "sync"

// RefreshCoordinator owns a token that callers change whenever server-side
// data changed. Every watching view refetches on a change.
type RefreshCoordinator struct {
	mu       sync.Mutex
	token    int
	nextID   int
	watchers map[int]func(token int)
}

func NewRefreshCoordinator() *RefreshCoordinator {
	return &RefreshCoordinator{watchers: make(map[int]func(int))}
}

func (c *RefreshCoordinator) Token() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Bump increments the token and returns the new value.
func (c *RefreshCoordinator) Bump() int {
	c.mu.Lock()
	c.token++
	token := c.token
	watchers := c.snapshot()
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(token)
	}
	return token
}

// Set changes the token. Setting the current value notifies nobody.
func (c *RefreshCoordinator) Set(token int) {
	c.mu.Lock()
	if token == c.token {
		c.mu.Unlock()
		return
	}
	c.token = token
	watchers := c.snapshot()
	c.mu.Unlock()

	for _, fn := range watchers {
		fn(token)
	}
}

// Watch registers fn for token changes. Watchers are called outside the
// coordinator's lock.
func (c *RefreshCoordinator) Watch(fn func(token int)) (cancel func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.watchers, id)
			c.mu.Unlock()
		})
	}
}

func (c *RefreshCoordinator) snapshot() []func(int) {
	out := make([]func(int), 0, len(c.watchers))
	for _, fn := range c.watchers {
		out = append(out, fn)
	}
	return out
}
