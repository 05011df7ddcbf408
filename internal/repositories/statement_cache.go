package repositories

import "sync"

// statementCache memoizes compiled WHERE clause text per filter shape.
// The shape space is bounded (2^5 combinations), so the cache converges
// to a fixed size. Keys never depend on filter values. Two goroutines
// racing on the same miss may both compile; the second store overwrites
// the first with identical text, which is harmless.
type statementCache struct {
	mu         sync.RWMutex
	statements map[filterShape]string
}

func newStatementCache() *statementCache {
	return &statementCache{statements: make(map[filterShape]string)}
}

func (c *statementCache) whereFor(s filterShape) string {
	c.mu.RLock()
	stmt, ok := c.statements[s]
	c.mu.RUnlock()
	if ok {
		return stmt
	}

	stmt = compileWhere(s)

	c.mu.Lock()
	c.statements[s] = stmt
	c.mu.Unlock()
	return stmt
}

func (c *statementCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.statements)
}
